package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticket-reservation/internal/apperr"
	"github.com/iliyamo/event-ticket-reservation/internal/clock"
	"github.com/iliyamo/event-ticket-reservation/internal/model"
	"github.com/iliyamo/event-ticket-reservation/internal/repository"
)

type memUsers struct {
	mu    sync.Mutex
	users []model.User
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, other := range m.users {
		if other.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = uint64(len(m.users) + 1)
	m.users = append(m.users, *u)
	return nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

func (m *memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, repository.ErrUserNotFound
}

type memTokens struct {
	mu       sync.Mutex
	sessions map[string]model.AccessToken
}

func newMemTokens() *memTokens { return &memTokens{sessions: map[string]model.AccessToken{}} }

func (m *memTokens) Store(_ context.Context, userID uint64, hash string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[hash] = model.AccessToken{UserID: userID, TokenHash: hash, ExpiresAt: exp}
	return nil
}

func (m *memTokens) Find(_ context.Context, hash string) (model.AccessToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tok, ok := m.sessions[hash]
	if !ok {
		return model.AccessToken{}, repository.ErrTokenNotFound
	}
	return tok, nil
}

func (m *memTokens) Revoke(_ context.Context, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[hash]; !ok {
		return repository.ErrTokenNotFound
	}
	delete(m.sessions, hash)
	return nil
}

func newAuthService() *AuthService {
	return NewAuthService(&memUsers{}, newMemTokens(), "secret", time.Hour, 4, clock.NewSystem())
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthService()
	ok := RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "password1", PasswordConfirmation: "password1"}

	cases := map[string]func(in *RegisterInput){
		"missing name":  func(in *RegisterInput) { in.Name = "" },
		"bad email":     func(in *RegisterInput) { in.Email = "not-an-email" },
		"short":         func(in *RegisterInput) { in.Password, in.PasswordConfirmation = "short", "short" },
		"mismatch":      func(in *RegisterInput) { in.PasswordConfirmation = "password2" },
		"display email": func(in *RegisterInput) { in.Email = "Ada <ada@example.com>" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := ok
			mutate(&in)
			_, err := svc.Register(context.Background(), in)
			assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
		})
	}
}

func TestRegisterLoginLogout(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService()

	u, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: " Ada@Example.com", Password: "password1", PasswordConfirmation: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.NotNil(t, u.EmailVerifiedAt)
	assert.NotEqual(t, "password1", u.PasswordHash)

	_, err = svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "password1", PasswordConfirmation: "password1"})
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))

	_, err = svc.Login(ctx, "ada@example.com", "wrong-password")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
	assert.Equal(t, "wrong credentials", apperr.Message(err))
	_, err = svc.Login(ctx, "nobody@example.com", "password1")
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))

	token, err := svc.Login(ctx, "ada@example.com", "password1")
	require.NoError(t, err)

	sess, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)

	me, err := svc.Me(ctx, sess.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", me.Name)

	require.NoError(t, svc.Logout(ctx, sess))
	_, err = svc.Authenticate(ctx, token)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(svc.Logout(ctx, sess)))
}

func TestAuthenticateRejectsForeignToken(t *testing.T) {
	other := NewAuthService(&memUsers{}, newMemTokens(), "other-secret", time.Hour, 4, clock.NewSystem())
	ctx := context.Background()
	_, err := other.Register(ctx, RegisterInput{Name: "B", Email: "b@example.com", Password: "password1", PasswordConfirmation: "password1"})
	require.NoError(t, err)
	token, err := other.Login(ctx, "b@example.com", "password1")
	require.NoError(t, err)

	_, err = newAuthService().Authenticate(ctx, token)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

// stepClock is a clock the test can move forward.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestAuthenticateExpiresWithServiceClock(t *testing.T) {
	ctx := context.Background()
	clk := &stepClock{now: time.Now().UTC()}
	tokens := newMemTokens()
	svc := NewAuthService(&memUsers{}, tokens, "secret", time.Hour, 4, clk)

	_, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "password1", PasswordConfirmation: "password1"})
	require.NoError(t, err)
	token, err := svc.Login(ctx, "ada@example.com", "password1")
	require.NoError(t, err)

	clk.advance(59 * time.Minute)
	_, err = svc.Authenticate(ctx, token)
	require.NoError(t, err)

	clk.advance(time.Minute)
	_, err = svc.Authenticate(ctx, token)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}

func TestAuthenticateRejectsExpiredSessionRow(t *testing.T) {
	ctx := context.Background()
	clk := &stepClock{now: time.Now().UTC()}
	tokens := newMemTokens()
	svc := NewAuthService(&memUsers{}, tokens, "secret", time.Hour, 4, clk)

	_, err := svc.Register(ctx, RegisterInput{Name: "Ada", Email: "ada@example.com", Password: "password1", PasswordConfirmation: "password1"})
	require.NoError(t, err)
	token, err := svc.Login(ctx, "ada@example.com", "password1")
	require.NoError(t, err)

	// the stored session ends before the JWT does
	tokens.mu.Lock()
	for hash, tok := range tokens.sessions {
		tok.ExpiresAt = clk.Now().Add(10 * time.Minute)
		tokens.sessions[hash] = tok
	}
	tokens.mu.Unlock()

	clk.advance(15 * time.Minute)
	_, err = svc.Authenticate(ctx, token)
	assert.Equal(t, apperr.Unauthorized, apperr.KindOf(err))
}
