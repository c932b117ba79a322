package service

import (
	"context"
	"testing"

	"deposito-pos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountFixture(t *testing.T) (AccountService, *memStore, *captureHub, *model.Account, context.Context) {
	t.Helper()
	store := newMemStore()
	hub := &captureHub{}
	auth := NewAuthService(memAccounts{store}, nil, newMemLimiter(5), hub, AuthConfig{})
	admin, err := auth.CreateIdentity(context.Background(), "admin@deposito.com", "123456", "Administrador", model.RoleAdmin)
	require.NoError(t, err)
	return NewAccountService(memAccounts{store}, auth, hub), store, hub, admin, asSession(context.Background(), admin)
}

func TestCreateAccount(t *testing.T) {
	svc, _, hub, _, ctx := newAccountFixture(t)

	resp, err := svc.CreateAccount(ctx, &CreateAccountRequest{Email: "joao@deposito.com", Password: "123456", Name: "João", Role: model.RoleSeller})
	require.NoError(t, err)
	assert.Equal(t, "Vendedor", resp.RoleLabel)
	assert.Contains(t, hub.types(), "account_update")

	_, err = svc.CreateAccount(ctx, &CreateAccountRequest{Email: "joao@deposito.com", Password: "123456", Name: "João 2", Role: model.RoleSeller})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.CreateAccount(ctx, &CreateAccountRequest{Email: "x@deposito.com", Password: "1", Name: "X", Role: model.RoleSeller})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	all, err := svc.ListAccounts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAccountService_SellerForbidden(t *testing.T) {
	svc, _, _, _, ctx := newAccountFixture(t)
	resp, err := svc.CreateAccount(ctx, &CreateAccountRequest{Email: "joao@deposito.com", Password: "123456", Name: "João", Role: model.RoleSeller})
	require.NoError(t, err)

	sellerCtx := asSession(context.Background(), &model.Account{BaseModel: model.BaseModel{ID: resp.ID}, Name: "João", Role: model.RoleSeller})
	_, err = svc.ListAccounts(sellerCtx)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, svc.DeleteAccount(sellerCtx, resp.ID), ErrForbidden)

	_, err = svc.ListAccounts(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestAccountService_AdminCannotLockThemselvesOut(t *testing.T) {
	svc, _, _, admin, ctx := newAccountFixture(t)
	var verr *ValidationError

	seller := model.RoleSeller
	_, err := svc.UpdateAccount(ctx, admin.ID, &UpdateAccountRequest{Role: &seller})
	assert.ErrorAs(t, err, &verr)

	_, err = svc.ToggleActive(ctx, admin.ID)
	assert.ErrorAs(t, err, &verr)

	assert.ErrorAs(t, svc.DeleteAccount(ctx, admin.ID), &verr)
}

func TestToggleActiveAndDelete(t *testing.T) {
	svc, store, _, _, ctx := newAccountFixture(t)
	resp, err := svc.CreateAccount(ctx, &CreateAccountRequest{Email: "joao@deposito.com", Password: "123456", Name: "João", Role: model.RoleSeller})
	require.NoError(t, err)

	toggled, err := svc.ToggleActive(ctx, resp.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	name := "João Silva"
	updated, err := svc.UpdateAccount(ctx, resp.ID, &UpdateAccountRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "João Silva", updated.Name)
	assert.False(t, updated.Active)

	require.NoError(t, svc.DeleteAccount(ctx, resp.ID))
	assert.Len(t, store.accounts, 1)
	assert.ErrorIs(t, svc.DeleteAccount(ctx, uuid.New()), ErrNotFound)

	_, err = svc.GetAccount(ctx, resp.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
