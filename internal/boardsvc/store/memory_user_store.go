package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
)

var ErrDuplicate = errors.New("duplicate key")

// MemoryUserStore backs accounts when the service runs without Postgres.
type MemoryUserStore struct {
	mu     sync.RWMutex
	users  map[int64]models.User
	lastId int64
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[int64]models.User)}
}

func (r *MemoryUserStore) CreateUser(ctx context.Context, user models.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Name, user.Name) {
			return 0, ErrDuplicate
		}
	}
	r.lastId++
	user.UserId = r.lastId
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.UserId] = user
	return user.UserId, nil
}

func (r *MemoryUserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *MemoryUserStore) GetByName(ctx context.Context, name string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Name, name) {
			return &u, nil
		}
	}
	return nil, nil
}
