package model

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Account is an authenticated operator of the shop.
type Account struct {
	BaseModel
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email"`
	Name         string     `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'seller'" json:"role" validate:"required,oneof=admin seller"`
	Active       bool       `gorm:"not null" json:"active"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	TokenVersion string     `gorm:"type:varchar(255);default:''" json:"-"` // single session enforcement
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
}

// SetPassword hashes and stores the password.
func (a *Account) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hashed)
	return nil
}

// CheckPassword verifies the password against the stored hash.
func (a *Account) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// AccountResponse is the account without credentials.
type AccountResponse struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Role       Role       `json:"role"`
	RoleLabel  string     `json:"role_label"`
	Active     bool       `json:"active"`
	CreatedAt  time.Time  `json:"created_at"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
	Privileges []string   `json:"privileges"`
}

func (a *Account) ToResponse() AccountResponse {
	return AccountResponse{
		ID:         a.ID,
		Email:      a.Email,
		Name:       a.Name,
		Role:       a.Role,
		RoleLabel:  a.Role.Label(),
		Active:     a.Active,
		CreatedAt:  a.CreatedAt,
		LastSeenAt: a.LastSeenAt,
		Privileges: a.Role.Privileges(),
	}
}
