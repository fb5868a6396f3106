package repo

import (
	"context"
	"sync"
	"time"

	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/user/entity"
)

// MemoryRepo keeps users in process memory. Email uniqueness is checked
// under the same lock as the write.
type MemoryRepo struct {
	mu      sync.RWMutex
	byID    map[int64]entity.User
	byEmail map[string]int64
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[int64]entity.User), byEmail: make(map[string]int64)}
}

func (r *MemoryRepo) Create(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[u.Email]; taken {
		return &apperror.DuplicateKeyError{Fields: []string{"email"}}
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.byID[u.ID] = *u
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryRepo) Update(ctx context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[u.ID]
	if !ok {
		return ErrNotFound
	}
	if owner, taken := r.byEmail[u.Email]; taken && owner != u.ID {
		return &apperror.DuplicateKeyError{Fields: []string{"email"}}
	}
	delete(r.byEmail, cur.Email)
	cur.Name, cur.Email, cur.LastName, cur.Location = u.Name, u.Email, u.LastName, u.Location
	cur.UpdatedAt = time.Now().UTC()
	r.byID[u.ID] = cur
	r.byEmail[cur.Email] = cur.ID
	*u = cur
	return nil
}
