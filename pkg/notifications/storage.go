package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Storage persists delivery records and answers the count queries the
// rate limiter and stats aggregator need. All mutation is append-only
// except MarkRead, which sets ReadAt exactly once, and Delete, which is a
// hard delete.
type Storage interface {
	// CreateRecord stores a new delivery record.
	CreateRecord(ctx context.Context, rec *Record) error

	// GetRecord returns one record scoped to its recipient.
	GetRecord(ctx context.Context, recipientID int64, id uuid.UUID) (*Record, error)

	// ListRecords returns a recipient's records, newest first.
	ListRecords(ctx context.Context, recipientID int64, opts ListOptions) ([]Record, error)

	// CountUnread returns the recipient's unread count.
	CountUnread(ctx context.Context, recipientID int64) (int, error)

	// MarkRead sets ReadAt if not set. Marking an already-read record is a
	// no-op, not an error; ErrRecordNotFound if the record does not exist.
	MarkRead(ctx context.Context, recipientID int64, id uuid.UUID) error

	// MarkAllRead marks every unread record of the recipient and returns
	// how many changed.
	MarkAllRead(ctx context.Context, recipientID int64) (int, error)

	// DeleteRecord removes one record. ErrRecordNotFound if absent.
	DeleteRecord(ctx context.Context, recipientID int64, id uuid.UUID) error

	// CountDeliveredOn counts records created for the recipient on the
	// given calendar day. Feeds the per-user daily limit.
	CountDeliveredOn(ctx context.Context, recipientID int64, day time.Time) (int, error)

	// Stats aggregates counts over all records, or over the given
	// recipients when the list is non-empty.
	Stats(ctx context.Context, recipientIDs []int64) (*Stats, error)
}

// ListOptions filters and paginates record listings.
type ListOptions struct {
	Limit      int
	Offset     int
	OnlyUnread bool
	Type       Class      // zero value matches every class
	Since      *time.Time // only records created after this time
}

// Stats is the aggregate read/unread breakdown for a scope.
type Stats struct {
	TotalSent   int            `json:"total_sent"`
	TotalRead   int            `json:"total_read"`
	TotalUnread int            `json:"total_unread"`
	ReadRate    float64        `json:"read_rate"`
	ByType      map[string]int `json:"by_type"`
	Last24h     int            `json:"last_24h"`
}
