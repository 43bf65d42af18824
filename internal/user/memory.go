package user

import (
	"context"
	"sort"
	"sync"
)

// MemoryDirectory is a concurrency-safe in-memory Directory. It backs tests
// and ad-hoc runs that do not need the SQLite file.
type MemoryDirectory struct {
	mu sync.RWMutex

	// key: email (the identity key), value: user
	byEmail map[string]User
	nextID  uint
}

// NewMemoryDirectory creates an empty MemoryDirectory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byEmail: make(map[string]User),
		nextID:  1,
	}
}

func (d *MemoryDirectory) Create(_ context.Context, name, email, location string) (User, error) {
	if name == "" || email == "" || location == "" {
		return User{}, ErrInvalid
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.byEmail[email]; exists {
		return User{}, ErrDuplicateEmail
	}

	u := User{ID: d.nextID, Name: name, Email: email, Location: location}
	d.nextID++
	d.byEmail[email] = u
	return u, nil
}

func (d *MemoryDirectory) FindByEmail(_ context.Context, email string) (User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.byEmail[email]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (d *MemoryDirectory) UpdateLocation(_ context.Context, id uint, location string) (User, error) {
	if location == "" {
		return User{}, ErrInvalid
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for email, u := range d.byEmail {
		if u.ID == id {
			u.Location = location
			d.byEmail[email] = u
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (d *MemoryDirectory) ListAll(_ context.Context) ([]User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	users := make([]User, 0, len(d.byEmail))
	for _, u := range d.byEmail {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}
