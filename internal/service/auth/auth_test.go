// internal/service/auth/auth_test.go
package auth

import (
	"context"
	"testing"
	"time"

	"settings-service/internal/domain/account"
	xerrors "settings-service/internal/pkg/errors"
	"settings-service/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type memAccounts struct {
	nextID   int64
	accounts []*account.Account
}

func (m *memAccounts) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	for _, acc := range m.accounts {
		if acc.Email == email {
			return acc, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (m *memAccounts) FindByID(ctx context.Context, id int64) (*account.Account, error) {
	for _, acc := range m.accounts {
		if acc.ID == id {
			return acc, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (m *memAccounts) Create(ctx context.Context, acc *account.Account) error {
	m.nextID++
	acc.ID = m.nextID
	m.accounts = append(m.accounts, acc)
	return nil
}

func newAuthService(t *testing.T) (*Service, *memAccounts) {
	t.Helper()
	manager, err := jwt.NewManager(jwt.Config{
		Secret:   "test-secret-test-secret-test-secret!",
		Issuer:   "settings-service",
		Audience: "admin-panel",
		TTL:      time.Hour,
	})
	require.NoError(t, err)

	accounts := &memAccounts{}
	return NewService(accounts, manager, nil, zap.NewNop()), accounts
}

func seedAccount(t *testing.T, store *memAccounts, email, password string, role account.Role, active bool) *account.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	acc := &account.Account{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Test Account",
		Role:         role,
		Active:       active,
	}
	require.NoError(t, store.Create(context.Background(), acc))
	return acc
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, store := newAuthService(t)
	acc := seedAccount(t, store, "owner@estate.test", "s3cret", account.RoleOwner, true)

	resp, err := svc.Login(context.Background(), &account.LoginRequest{
		Email:    "Owner@Estate.Test",
		Password: "s3cret",
	})
	require.NoError(t, err)
	assert.Equal(t, acc.ID, resp.Account.ID)

	claims, err := svc.jwtManager.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, claims.AccountID)
	assert.Equal(t, string(account.RoleOwner), claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, store := newAuthService(t)
	seedAccount(t, store, "owner@estate.test", "s3cret", account.RoleOwner, true)

	_, err := svc.Login(context.Background(), &account.LoginRequest{
		Email:    "owner@estate.test",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), &account.LoginRequest{
		Email:    "ghost@estate.test",
		Password: "whatever",
	})
	assert.ErrorIs(t, err, xerrors.ErrUnauthorized)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, store := newAuthService(t)
	seedAccount(t, store, "former@estate.test", "s3cret", account.RoleStaff, false)

	_, err := svc.Login(context.Background(), &account.LoginRequest{
		Email:    "former@estate.test",
		Password: "s3cret",
	})
	assert.ErrorIs(t, err, xerrors.ErrForbidden)
}

func TestEnsureAdminSeedsOnce(t *testing.T) {
	svc, store := newAuthService(t)

	first, err := svc.EnsureAdmin(context.Background(), "admin@estate.test", "bootstrap", "Admin")
	require.NoError(t, err)
	assert.Equal(t, account.RoleAdmin, first.Role)
	assert.True(t, first.Active)

	second, err := svc.EnsureAdmin(context.Background(), "admin@estate.test", "different", "Admin")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	require.Len(t, store.accounts, 1)

	// The seeded credentials work end to end.
	_, err = svc.Login(context.Background(), &account.LoginRequest{
		Email:    "admin@estate.test",
		Password: "bootstrap",
	})
	assert.NoError(t, err)
}
