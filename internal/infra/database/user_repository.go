package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/xavierca1/lead-capture/internal/entity"
)

type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (id, tenant_id, email, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.DB.ExecContext(ctx, query,
		u.ID,
		u.TenantID,
		u.Email,
		u.HashedPassword,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return entity.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, tenantID, email string) (*entity.User, error) {
	query := `
		SELECT id, tenant_id, email, hashed_password, created_at, updated_at
		FROM users
		WHERE tenant_id = $1 AND email = $2
	`

	var u entity.User
	err := r.DB.QueryRowContext(ctx, query, tenantID, email).Scan(
		&u.ID,
		&u.TenantID,
		&u.Email,
		&u.HashedPassword,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, entity.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &u, nil
}
