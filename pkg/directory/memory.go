package directory

import (
	"context"
	"slices"
	"sync"
)

// MemoryDirectory is an in-memory Directory for tests and local
// development.
type MemoryDirectory struct {
	mu    sync.RWMutex
	users map[int64]User
}

// NewMemoryDirectory creates a directory pre-populated with the given
// users.
func NewMemoryDirectory(users ...User) *MemoryDirectory {
	d := &MemoryDirectory{users: make(map[int64]User, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

// Put adds or replaces a user.
func (d *MemoryDirectory) Put(u User) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

func (d *MemoryDirectory) Get(ctx context.Context, id int64) (*User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (d *MemoryDirectory) ListByIDs(ctx context.Context, ids []int64) ([]User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]User, 0, len(ids))
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d *MemoryDirectory) ActiveIDs(ctx context.Context) ([]int64, error) {
	return d.filterIDs(func(u User) bool { return u.Active }), nil
}

func (d *MemoryDirectory) OrganizationMemberIDs(ctx context.Context, orgID int64) ([]int64, error) {
	return d.filterIDs(func(u User) bool {
		return u.Active && u.OrganizationID == orgID
	}), nil
}

func (d *MemoryDirectory) RoleMemberIDs(ctx context.Context, roles []string) ([]int64, error) {
	return d.filterIDs(func(u User) bool {
		return u.Active && slices.Contains(roles, u.Role)
	}), nil
}

func (d *MemoryDirectory) filterIDs(keep func(User) bool) []int64 {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var ids []int64
	for id, u := range d.users {
		if keep(u) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}
