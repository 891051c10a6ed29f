package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/eventbus"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/model"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/storage"
)

const testSecret = "test-secret-0123456789abcdef0123456789"

type testEnv struct {
	store  *storage.MemoryStore
	events *eventbus.RecordingEventBus
	tokens *TokenService
	svc    *Service
	authn  *Authenticator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	tokens, err := NewTokenService(TokenConfig{Secret: testSecret, TTL: 30 * time.Minute, Issuer: "test"})
	require.NoError(t, err)

	store := storage.NewMemoryStore()
	events := eventbus.NewRecordingEventBus()
	hasher := NewPasswordHasher(bcrypt.MinCost)

	return &testEnv{
		store:  store,
		events: events,
		tokens: tokens,
		svc:    NewService(store, hasher, tokens, events, nil),
		authn:  NewAuthenticator(tokens, store, events),
	}
}

// register 注册用户，admin 角色通过管理员身份创建
func (e *testEnv) register(t *testing.T, email, password string, role model.UserRole) *model.User {
	t.Helper()
	var caller *Identity
	if role != "" && role != model.DefaultUserRole {
		caller = &Identity{UserID: "bootstrap", Role: model.UserRoleAdmin}
	}
	u, err := e.svc.Register(context.Background(), RegisterInput{
		Email: email, FullName: "Test User", Password: password, Role: string(role),
	}, caller)
	require.NoError(t, err)
	return u
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	res, err := e.svc.Login(context.Background(), email, password)
	require.NoError(t, err)
	return res.AccessToken
}
