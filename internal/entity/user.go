package entity

import (
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"
)

// User is an operator account. Email is unique within a tenant, not globally.
type User struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewUser(tenantID, email, hashedPassword string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:             uuid.New().String(),
		TenantID:       tenantID,
		Email:          email,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

func (u *User) Validate() error {
	if u.TenantID == "" {
		return errors.New("tenant id is required")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return errors.New("invalid email address")
	}
	if u.HashedPassword == "" {
		return errors.New("password hash is required")
	}
	return nil
}
