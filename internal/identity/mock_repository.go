package identity

import (
	"context"
	"sync"
	"time"
)

// In-memory doubles for the persistence interfaces, used by the package
// tests. The user mock deliberately enforces no identity uniqueness so the
// duplicate-row contract of the lookups can be exercised.

type mockUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   []userRecord
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{nextID: 1}
}

func (r *mockUserRepository) ListActive(_ context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var users []User
	for _, rec := range r.rows {
		if rec.Status == StatusActive {
			users = append(users, rec.user())
		}
	}
	return users, nil
}

func (r *mockUserRepository) GetByID(_ context.Context, id int64) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getOne(func(rec userRecord) bool { return rec.ID == id })
}

func (r *mockUserRepository) GetByIdentity(_ context.Context, identity string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.getOne(func(rec userRecord) bool { return rec.Identity == identity })
}

func (r *mockUserRepository) getOne(match func(userRecord) bool) (User, error) {
	var found []userRecord
	for _, rec := range r.rows {
		if rec.Status == StatusActive && match(rec) {
			found = append(found, rec)
		}
	}
	if len(found) != 1 {
		return User{}, ErrUserNotFound
	}
	return found[0].user(), nil
}

func (r *mockUserRepository) Create(_ context.Context, nu NewUser) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := userRecord{
		ID:       r.nextID,
		Identity: nu.Identity,
		Nickname: nu.Nickname,
		Created:  time.Now(),
		Type:     nu.Type,
		Status:   StatusActive,
	}
	r.nextID++
	r.rows = append(r.rows, rec)
	return rec.user(), nil
}

func (r *mockUserRepository) Update(_ context.Context, u User) (User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, rec := range r.rows {
		if rec.ID == u.ID && rec.Status == StatusActive {
			r.rows[i].Identity = u.Identity
			r.rows[i].Nickname = u.Nickname
		}
	}
	return u, nil
}

func (r *mockUserRepository) Deactivate(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, rec := range r.rows {
		if rec.ID == id {
			r.rows[i].Status = StatusInactive
		}
	}
	return nil
}

type mockCredentialRepository struct {
	mu        sync.RWMutex
	passwords map[int64][][]byte
	secrets   map[int64]string
}

func newMockCredentialRepository() *mockCredentialRepository {
	return &mockCredentialRepository{
		passwords: make(map[int64][][]byte),
		secrets:   make(map[int64]string),
	}
}

func (r *mockCredentialRepository) AddPassword(_ context.Context, userID int64, hash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.passwords[userID] = append(r.passwords[userID], hash)
	return nil
}

func (r *mockCredentialRepository) ListPasswords(_ context.Context, userID int64) ([][]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hashes := make([][]byte, len(r.passwords[userID]))
	copy(hashes, r.passwords[userID])
	return hashes, nil
}

func (r *mockCredentialRepository) TOTPSecret(_ context.Context, userID int64) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	secret, ok := r.secrets[userID]
	return secret, ok, nil
}

func (r *mockCredentialRepository) SetTOTPSecret(_ context.Context, userID int64, secret string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.secrets[userID] = secret
	return nil
}
