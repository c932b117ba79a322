package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"deposito-pos/internal/model"
	"deposito-pos/internal/repository"
	"deposito-pos/internal/session"
	"deposito-pos/internal/ws"
	"deposito-pos/pkg/jwt"
	"deposito-pos/pkg/validator"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LoginLimiter counts login attempts per email.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
	ValidateToken(ctx context.Context, token string) (*session.Session, *model.Account, error)
	Heartbeat(ctx context.Context) error
	CreateIdentity(ctx context.Context, email, password, name string, role model.Role) (*model.Account, error)
}

type LoginResponse struct {
	Token      string                `json:"token"`
	Account    model.AccountResponse `json:"account"`
	Privileges []string              `json:"privileges"`
}

type AuthConfig struct {
	// IdleTimeout ends sessions without a heartbeat for this long. Zero disables it.
	IdleTimeout time.Duration
}

type authService struct {
	accounts repository.AccountRepository
	tokens   *jwt.Manager
	limiter  LoginLimiter
	hub      ws.Broadcaster
	cfg      AuthConfig
	now      func() time.Time
}

func NewAuthService(accounts repository.AccountRepository, tokens *jwt.Manager, limiter LoginLimiter, hub ws.Broadcaster, cfg AuthConfig) AuthService {
	return &authService{
		accounts: accounts,
		tokens:   tokens,
		limiter:  limiter,
		hub:      hub,
		cfg:      cfg,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	email = normalizeEmail(email)
	if validator.Var(email, "required,email") != nil {
		return nil, ErrInvalidEmail
	}

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		log.Warn().Err(err).Msg("login limiter unavailable, allowing attempt")
	}
	if !allowed {
		return nil, ErrTooManyAttempts
	}

	account, err := s.accounts.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, storeErr("find account", err)
	}
	if !account.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if !account.Active {
		return nil, ErrAccountInactive
	}

	if err := s.limiter.Reset(ctx, email); err != nil {
		log.Warn().Err(err).Msg("could not reset login attempts")
	}

	// A new token version ends every other session of this account.
	now := s.now()
	account.TokenVersion = uuid.NewString()
	account.LastSeenAt = &now
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, storeErr("start session", err)
	}

	token, err := s.tokens.Generate(account.ID, account.Email, account.Name, string(account.Role), account.TokenVersion)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	log.Info().Str("account_id", account.ID.String()).Str("role", string(account.Role)).Msg("login")
	return &LoginResponse{
		Token:      token,
		Account:    account.ToResponse(),
		Privileges: account.Role.Privileges(),
	}, nil
}

func (s *authService) Logout(ctx context.Context) error {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if err := s.accounts.UpdateTokenVersion(ctx, sess.AccountID, uuid.NewString()); err != nil {
		return storeErr("end session", err)
	}
	s.presence(sess.AccountID, "offline")
	return nil
}

func (s *authService) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if len(newPassword) < 6 {
		return invalid("new_password", "a senha deve ter pelo menos 6 caracteres")
	}

	account, err := s.accounts.FindByID(ctx, sess.AccountID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAccountNotFound
	}
	if err != nil {
		return storeErr("find account", err)
	}
	if !account.CheckPassword(currentPassword) {
		return ErrWrongPassword
	}
	if err := account.SetPassword(newPassword); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return storeErr("update password", s.accounts.UpdatePassword(ctx, account.ID, account.PasswordHash))
}

// ValidateToken checks signature and expiry, then that the account is still
// active, that no newer login replaced the token and, when configured, that
// the session has not been idle too long.
func (s *authService) ValidateToken(ctx context.Context, token string) (*session.Session, *model.Account, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, nil, err
	}

	account, err := s.accounts.FindByID(ctx, claims.AccountID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, nil, storeErr("find account", err)
	}
	if !account.Active {
		return nil, nil, ErrAccountInactive
	}
	if account.TokenVersion != claims.TokenVersion {
		return nil, nil, ErrSessionReplaced
	}
	if s.cfg.IdleTimeout > 0 {
		if account.LastSeenAt == nil || s.now().Sub(*account.LastSeenAt) > s.cfg.IdleTimeout {
			return nil, nil, ErrSessionExpired
		}
	}

	sess := session.FromAccount(account)
	return &sess, account, nil
}

func (s *authService) Heartbeat(ctx context.Context) error {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	if err := s.accounts.UpdateLastSeen(ctx, sess.AccountID, s.now()); err != nil {
		return storeErr("heartbeat", err)
	}
	s.presence(sess.AccountID, "online")
	return nil
}

func (s *authService) presence(id uuid.UUID, status string) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastJSON(ws.Event{
		Type: "user_status_update",
		Data: map[string]any{
			"user_id":      id.String(),
			"status":       status,
			"last_seen_at": s.now(),
		},
	})
}

// CreateIdentity registers a new account with a hashed password.
func (s *authService) CreateIdentity(ctx context.Context, email, password, name string, role model.Role) (*model.Account, error) {
	email = normalizeEmail(email)
	if validator.Var(email, "required,email") != nil {
		return nil, ErrInvalidEmail
	}
	if len(password) < 6 {
		return nil, invalid("password", "a senha deve ter pelo menos 6 caracteres")
	}
	if strings.TrimSpace(name) == "" {
		return nil, invalid("name", "nome é obrigatório")
	}
	if !role.Valid() {
		return nil, invalid("role", "perfil inválido: %q", role)
	}

	account := &model.Account{
		Email:  email,
		Name:   strings.TrimSpace(name),
		Role:   role,
		Active: true,
	}
	if err := account.SetPassword(password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, storeErr("create account", err)
	}
	return account, nil
}
