// Package session carries the authenticated operator through a request.
// A Session is built by the auth middleware once the token validates and is
// handed to services via context instead of any process-wide "current user".
package session

import (
	"context"

	"deposito-pos/internal/model"

	"github.com/google/uuid"
)

type Session struct {
	AccountID    uuid.UUID
	Email        string
	Name         string
	Role         model.Role
	TokenVersion string
}

func (s Session) IsAdmin() bool {
	return s.Role == model.RoleAdmin
}

// Can reports whether the session's role holds the privilege code.
func (s Session) Can(code string) bool {
	return s.Role.Can(code)
}

// FromAccount builds a session for a freshly authenticated account.
func FromAccount(a *model.Account) Session {
	return Session{
		AccountID:    a.ID,
		Email:        a.Email,
		Name:         a.Name,
		Role:         a.Role,
		TokenVersion: a.TokenVersion,
	}
}

type ctxKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext extracts the session placed by WithSession.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(Session)
	return s, ok && s.AccountID != uuid.Nil
}
