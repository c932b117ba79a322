package service

import (
	"errors"
	"fmt"
	"strings"

	"deposito-pos/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("already exists")
	ErrForbidden       = errors.New("forbidden")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrSetupDone       = errors.New("initial setup already done")

	// Authentication failures. AuthMessage maps them to user-facing text.
	ErrAccountNotFound    = errors.New("account not found")
	ErrWrongPassword      = errors.New("wrong password")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrSessionExpired     = errors.New("session expired due to inactivity")
	ErrSessionReplaced    = errors.New("session ended or replaced by a newer login")

	// ErrPartialStockUpdate is matched by PartialStockError.
	ErrPartialStockUpdate = errors.New("sale recorded but stock update failed")
)

// ValidationError rejects input before anything is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// PartialStockError reports a sale that was persisted while some of its stock
// writes were not. Nothing is rolled back.
type PartialStockError struct {
	SaleID  uuid.UUID
	Number  string
	Failed  []uuid.UUID
	Updated []uuid.UUID
	Err     error
}

func (e *PartialStockError) Error() string {
	ids := make([]string, len(e.Failed))
	for i, id := range e.Failed {
		ids[i] = id.String()
	}
	return fmt.Sprintf("sale %s recorded but stock not updated for products [%s]: %v", e.Number, strings.Join(ids, ", "), e.Err)
}

func (e *PartialStockError) Is(target error) bool { return target == ErrPartialStockUpdate }

func (e *PartialStockError) Unwrap() error { return e.Err }

// storeErr maps repository sentinels onto service errors and wraps the rest.
func storeErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrConflict
	case errors.Is(err, repository.ErrInvalidRecord):
		return &ValidationError{Message: err.Error()}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// AuthMessage returns the pt-BR message shown on the login screen.
func AuthMessage(err error) string {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return "Usuário não encontrado. Verifique o email."
	case errors.Is(err, ErrWrongPassword):
		return "Senha incorreta. Tente novamente."
	case errors.Is(err, ErrInvalidEmail):
		return "Email inválido."
	case errors.Is(err, ErrInvalidCredentials):
		return "Email ou senha incorretos."
	case errors.Is(err, ErrTooManyAttempts):
		return "Muitas tentativas. Aguarde alguns minutos."
	case errors.Is(err, ErrAccountInactive):
		return "Usuário inativo. Procure o administrador."
	case errors.Is(err, ErrSessionExpired), errors.Is(err, ErrSessionReplaced):
		return "Sessão expirada. Faça login novamente."
	case err == nil:
		return ""
	}
	return "Erro ao fazer login. Tente novamente."
}
