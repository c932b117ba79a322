package service

import (
	"context"
	"strings"

	"deposito-pos/internal/model"
	"deposito-pos/internal/repository"
	"deposito-pos/internal/session"
	"deposito-pos/internal/ws"
	"deposito-pos/pkg/validator"

	"github.com/google/uuid"
)

type AccountService interface {
	CreateAccount(ctx context.Context, req *CreateAccountRequest) (*model.AccountResponse, error)
	UpdateAccount(ctx context.Context, id uuid.UUID, req *UpdateAccountRequest) (*model.AccountResponse, error)
	ToggleActive(ctx context.Context, id uuid.UUID) (*model.AccountResponse, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	ListAccounts(ctx context.Context) ([]model.AccountResponse, error)
	GetAccount(ctx context.Context, id uuid.UUID) (*model.AccountResponse, error)
}

type CreateAccountRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,min=6"`
	Name     string     `json:"name" validate:"required"`
	Role     model.Role `json:"role" validate:"required,oneof=admin seller"`
}

// UpdateAccountRequest is a partial update; nil fields are left unchanged.
type UpdateAccountRequest struct {
	Name   *string     `json:"name" validate:"omitempty,min=1"`
	Role   *model.Role `json:"role" validate:"omitempty,oneof=admin seller"`
	Active *bool       `json:"active"`
}

// validate runs the struct tags and returns the first failure as a ValidationError.
func validate(req interface{}) error {
	errs := validator.ValidateStruct(req)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	return &ValidationError{Field: first.FailedField, Message: "failed on '" + first.Tag + "'"}
}

type accountService struct {
	accounts repository.AccountRepository
	auth     AuthService
	hub      ws.Broadcaster
}

func NewAccountService(accounts repository.AccountRepository, auth AuthService, hub ws.Broadcaster) AccountService {
	return &accountService{accounts: accounts, auth: auth, hub: hub}
}

func requireAdmin(ctx context.Context) (session.Session, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return session.Session{}, ErrUnauthenticated
	}
	if !sess.IsAdmin() {
		return sess, ErrForbidden
	}
	return sess, nil
}

func (s *accountService) CreateAccount(ctx context.Context, req *CreateAccountRequest) (*model.AccountResponse, error) {
	sess, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if existing, err := s.accounts.FindByEmail(ctx, normalizeEmail(req.Email)); err == nil && existing != nil {
		return nil, ErrConflict
	}

	account, err := s.auth.CreateIdentity(ctx, req.Email, req.Password, req.Name, req.Role)
	if err != nil {
		return nil, err
	}
	resp := account.ToResponse()
	notify(s.hub, "account_update", "account_created", sess, resp, "%s criou o usuário '%s'", sess.Name, account.Name)
	return &resp, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, id uuid.UUID, req *UpdateAccountRequest) (*model.AccountResponse, error) {
	sess, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find account", err)
	}
	if req.Name != nil {
		account.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		if id == sess.AccountID && *req.Role != model.RoleAdmin {
			return nil, invalid("role", "você não pode remover seu próprio perfil de administrador")
		}
		account.Role = *req.Role
	}
	if req.Active != nil {
		if id == sess.AccountID && !*req.Active {
			return nil, invalid("active", "você não pode desativar seu próprio usuário")
		}
		account.Active = *req.Active
	}
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, storeErr("update account", err)
	}

	resp := account.ToResponse()
	notify(s.hub, "account_update", "account_updated", sess, resp, "%s atualizou o usuário '%s'", sess.Name, account.Name)
	return &resp, nil
}

func (s *accountService) ToggleActive(ctx context.Context, id uuid.UUID) (*model.AccountResponse, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find account", err)
	}
	active := !account.Active
	return s.UpdateAccount(ctx, id, &UpdateAccountRequest{Active: &active})
}

func (s *accountService) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	sess, err := requireAdmin(ctx)
	if err != nil {
		return err
	}
	if id == sess.AccountID {
		return invalid("id", "você não pode excluir seu próprio usuário")
	}
	if err := s.accounts.Delete(ctx, id); err != nil {
		return storeErr("delete account", err)
	}
	notify(s.hub, "account_update", "account_deleted", sess, map[string]string{"id": id.String()}, "%s excluiu um usuário", sess.Name)
	return nil
}

func (s *accountService) ListAccounts(ctx context.Context) ([]model.AccountResponse, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	accounts, err := s.accounts.FindAll(ctx)
	if err != nil {
		return nil, storeErr("list accounts", err)
	}
	out := make([]model.AccountResponse, len(accounts))
	for i := range accounts {
		out[i] = accounts[i].ToResponse()
	}
	return out, nil
}

func (s *accountService) GetAccount(ctx context.Context, id uuid.UUID) (*model.AccountResponse, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find account", err)
	}
	resp := account.ToResponse()
	return &resp, nil
}
