package memory

import (
	"context"
	"sync"

	"github.com/xavierca1/lead-capture/internal/entity"
)

type UserRepo struct {
	mu    sync.RWMutex
	users map[string]*entity.User // tenant|email
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[string]*entity.User)}
}

func userKey(tenantID, email string) string {
	return tenantID + "|" + email
}

func (r *UserRepo) CreateUser(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := userKey(u.TenantID, u.Email)
	if _, ok := r.users[key]; ok {
		return entity.ErrUserExists
	}

	cp := *u
	r.users[key] = &cp
	return nil
}

func (r *UserRepo) FindUserByEmail(_ context.Context, tenantID, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userKey(tenantID, email)]
	if !ok {
		return nil, entity.ErrUserNotFound
	}

	cp := *u
	return &cp, nil
}
