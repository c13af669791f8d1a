package notifications

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStorage is the Postgres Storage implementation over the notifications
// table.
type PgStorage struct {
	pool *pgxpool.Pool
}

// NewPgStorage creates a Postgres-backed storage.
func NewPgStorage(pool *pgxpool.Pool) *PgStorage {
	return &PgStorage{pool: pool}
}

func (ps *PgStorage) CreateRecord(ctx context.Context, rec *Record) error {
	_, err := ps.pool.Exec(ctx, `
		INSERT INTO notifications (id, recipient_id, channel, type, data, created_at, read_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.RecipientID, rec.Channel, rec.Type, rec.Data, rec.CreatedAt, rec.ReadAt,
	)
	if err != nil {
		return fmt.Errorf("notifications: create record: %w", err)
	}
	return nil
}

func (ps *PgStorage) GetRecord(ctx context.Context, recipientID int64, id uuid.UUID) (*Record, error) {
	row := ps.pool.QueryRow(ctx, `
		SELECT id, recipient_id, channel, type, data, created_at, read_at
		FROM notifications
		WHERE id = $1 AND recipient_id = $2`,
		id, recipientID,
	)

	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("notifications: get record: %w", err)
	}
	return rec, nil
}

func (ps *PgStorage) ListRecords(ctx context.Context, recipientID int64, opts ListOptions) ([]Record, error) {
	query := `
		SELECT id, recipient_id, channel, type, data, created_at, read_at
		FROM notifications
		WHERE recipient_id = $1`
	args := []any{recipientID}

	if opts.OnlyUnread {
		query += ` AND read_at IS NULL`
	}
	if opts.Type != "" {
		args = append(args, opts.Type)
		query += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	if opts.Since != nil {
		args = append(args, *opts.Since)
		query += fmt.Sprintf(` AND created_at > $%d`, len(args))
	}

	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := ps.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("notifications: list records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("notifications: list records: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("notifications: list records: %w", err)
	}
	return out, nil
}

func (ps *PgStorage) CountUnread(ctx context.Context, recipientID int64) (int, error) {
	var count int
	err := ps.pool.QueryRow(ctx, `
		SELECT count(*) FROM notifications
		WHERE recipient_id = $1 AND read_at IS NULL`,
		recipientID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("notifications: count unread: %w", err)
	}
	return count, nil
}

func (ps *PgStorage) MarkRead(ctx context.Context, recipientID int64, id uuid.UUID) error {
	// read_at only moves from NULL to a timestamp; a second mark leaves
	// the original timestamp in place.
	tag, err := ps.pool.Exec(ctx, `
		UPDATE notifications
		SET read_at = COALESCE(read_at, now())
		WHERE id = $1 AND recipient_id = $2`,
		id, recipientID,
	)
	if err != nil {
		return fmt.Errorf("notifications: mark read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (ps *PgStorage) MarkAllRead(ctx context.Context, recipientID int64) (int, error) {
	tag, err := ps.pool.Exec(ctx, `
		UPDATE notifications
		SET read_at = now()
		WHERE recipient_id = $1 AND read_at IS NULL`,
		recipientID,
	)
	if err != nil {
		return 0, fmt.Errorf("notifications: mark all read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (ps *PgStorage) DeleteRecord(ctx context.Context, recipientID int64, id uuid.UUID) error {
	tag, err := ps.pool.Exec(ctx, `
		DELETE FROM notifications
		WHERE id = $1 AND recipient_id = $2`,
		id, recipientID,
	)
	if err != nil {
		return fmt.Errorf("notifications: delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (ps *PgStorage) CountDeliveredOn(ctx context.Context, recipientID int64, day time.Time) (int, error) {
	var count int
	err := ps.pool.QueryRow(ctx, `
		SELECT count(*) FROM notifications
		WHERE recipient_id = $1 AND created_at::date = $2::date`,
		recipientID, day,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("notifications: count deliveries: %w", err)
	}
	return count, nil
}

func (ps *PgStorage) Stats(ctx context.Context, recipientIDs []int64) (*Stats, error) {
	scopeClause := ""
	args := []any{}
	if len(recipientIDs) > 0 {
		scopeClause = ` WHERE recipient_id = ANY($1)`
		args = append(args, recipientIDs)
	}

	stats := &Stats{ByType: make(map[string]int)}
	err := ps.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(read_at),
		       count(*) FILTER (WHERE created_at >= now() - interval '24 hours')
		FROM notifications`+scopeClause,
		args...,
	).Scan(&stats.TotalSent, &stats.TotalRead, &stats.Last24h)
	if err != nil {
		return nil, fmt.Errorf("notifications: stats totals: %w", err)
	}

	rows, err := ps.pool.Query(ctx, `
		SELECT type, count(*) FROM notifications`+scopeClause+`
		GROUP BY type`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("notifications: stats by type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			typ   string
			count int
		)
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, fmt.Errorf("notifications: stats by type: %w", err)
		}
		stats.ByType[typ] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("notifications: stats by type: %w", err)
	}

	stats.TotalUnread = stats.TotalSent - stats.TotalRead
	if stats.TotalSent > 0 {
		rate := float64(stats.TotalRead) / float64(stats.TotalSent) * 100
		stats.ReadRate = math.Round(rate*100) / 100
	}
	return stats, nil
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	if err := row.Scan(
		&rec.ID, &rec.RecipientID, &rec.Channel, &rec.Type,
		&rec.Data, &rec.CreatedAt, &rec.ReadAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}
