package directory

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgDirectory reads users from the shared Postgres users table.
type PgDirectory struct {
	pool *pgxpool.Pool
}

// NewPgDirectory creates a Postgres-backed directory.
func NewPgDirectory(pool *pgxpool.Pool) *PgDirectory {
	return &PgDirectory{pool: pool}
}

const userColumns = `id, email, name, organization_id, role, active, preferences`

func (d *PgDirectory) Get(ctx context.Context, id int64) (*User, error) {
	row := d.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("directory: get user %d: %w", id, err)
	}
	return u, nil
}

func (d *PgDirectory) ListByIDs(ctx context.Context, ids []int64) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := d.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("directory: list users: %w", err)
	}
	defer rows.Close()

	byID := make(map[int64]User, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("directory: list users: %w", err)
		}
		byID[u.ID] = *u
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: list users: %w", err)
	}

	// Preserve input order, skip unknown IDs.
	out := make([]User, 0, len(byID))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d *PgDirectory) ActiveIDs(ctx context.Context) ([]int64, error) {
	return d.queryIDs(ctx,
		`SELECT id FROM users WHERE active ORDER BY id`)
}

func (d *PgDirectory) OrganizationMemberIDs(ctx context.Context, orgID int64) ([]int64, error) {
	return d.queryIDs(ctx,
		`SELECT id FROM users WHERE active AND organization_id = $1 ORDER BY id`, orgID)
}

func (d *PgDirectory) RoleMemberIDs(ctx context.Context, roles []string) ([]int64, error) {
	return d.queryIDs(ctx,
		`SELECT id FROM users WHERE active AND role = ANY($1) ORDER BY id`, roles)
}

func (d *PgDirectory) queryIDs(ctx context.Context, sql string, args ...any) ([]int64, error) {
	rows, err := d.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("directory: list ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("directory: list ids: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: list ids: %w", err)
	}
	return ids, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.OrganizationID,
		&u.Role, &u.Active, &u.Preferences,
	); err != nil {
		return nil, err
	}
	return &u, nil
}
