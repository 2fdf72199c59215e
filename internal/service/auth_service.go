package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/iliyamo/event-ticket-reservation/internal/apperr"
	"github.com/iliyamo/event-ticket-reservation/internal/clock"
	"github.com/iliyamo/event-ticket-reservation/internal/model"
	"github.com/iliyamo/event-ticket-reservation/internal/repository"
	"github.com/iliyamo/event-ticket-reservation/internal/utils"
)

// UserRepository is the persistence contract for users.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id uint64) (model.User, error)
}

// TokenRepository persists access token sessions by hash.
type TokenRepository interface {
	Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	Find(ctx context.Context, tokenHash string) (model.AccessToken, error)
	Revoke(ctx context.Context, tokenHash string) error
}

// RegisterInput is the body of a registration request.
type RegisterInput struct {
	Name                 string
	Email                string
	Password             string
	PasswordConfirmation string
}

// Session identifies an authenticated request.
type Session struct {
	UserID    uint64
	TokenHash string
}

// AuthService issues and checks bearer tokens and registers users.
type AuthService struct {
	users      UserRepository
	tokens     TokenRepository
	secret     string
	ttl        time.Duration
	bcryptCost int
	clock      clock.Clock
}

func NewAuthService(users UserRepository, tokens TokenRepository, secret string, ttl time.Duration, bcryptCost int, clk clock.Clock) *AuthService {
	return &AuthService{users: users, tokens: tokens, secret: secret, ttl: ttl, bcryptCost: bcryptCost, clock: clk}
}

// Register creates a verified user.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	switch {
	case name == "":
		return model.User{}, apperr.InvalidInputf("name is required")
	case len(name) > maxNameLen:
		return model.User{}, apperr.InvalidInputf("name must not exceed %d characters", maxNameLen)
	case email == "" || len(email) > maxNameLen || !validEmail(email):
		return model.User{}, apperr.InvalidInputf("a valid email is required")
	case len(in.Password) < utils.MinPasswordLen:
		return model.User{}, apperr.InvalidInputf("password must be at least %d characters", utils.MinPasswordLen)
	case in.Password != in.PasswordConfirmation:
		return model.User{}, apperr.InvalidInputf("password confirmation does not match")
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.User{}, apperr.Wrap(err, apperr.Internal, "hash password")
	}
	now := s.clock.Now()
	u := model.User{Name: name, Email: email, PasswordHash: hash, EmailVerifiedAt: &now}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.User{}, apperr.Wrap(err, apperr.Conflict, "email already exists")
		}
		return model.User{}, apperr.Wrap(err, apperr.Internal, "create user")
	}
	return u, nil
}

// Login verifies the credentials and returns a new bearer token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", apperr.Unauthorizedf("wrong credentials")
		}
		return "", apperr.Wrap(err, apperr.Internal, "load user")
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return "", apperr.Unauthorizedf("wrong credentials")
	}
	tok, err := utils.NewAccessToken(s.secret, u.ID, s.ttl, s.clock.Now())
	if err != nil {
		return "", apperr.Wrap(err, apperr.Internal, "issue token")
	}
	if err := s.tokens.Store(ctx, u.ID, utils.HashToken(tok.ID), tok.Exp); err != nil {
		return "", apperr.Wrap(err, apperr.Internal, "store token")
	}
	return tok.Token, nil
}

// Authenticate checks the signature of raw and that its session is neither
// revoked nor expired.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (Session, error) {
	now := s.clock.Now()
	claims, err := utils.ParseAccessToken(s.secret, raw, now)
	if err != nil {
		return Session{}, apperr.Wrap(err, apperr.Unauthorized, "invalid token")
	}
	hash := utils.HashToken(claims.TokenID)
	tok, err := s.tokens.Find(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return Session{}, apperr.Wrap(err, apperr.Unauthorized, "invalid token")
		}
		return Session{}, apperr.Wrap(err, apperr.Internal, "validate token")
	}
	if !now.Before(tok.ExpiresAt) || tok.UserID != claims.UserID {
		return Session{}, apperr.Unauthorizedf("invalid token")
	}
	return Session{UserID: tok.UserID, TokenHash: hash}, nil
}

// Logout revokes the session.
func (s *AuthService) Logout(ctx context.Context, sess Session) error {
	if err := s.tokens.Revoke(ctx, sess.TokenHash); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return apperr.Wrap(err, apperr.Unauthorized, "invalid token")
		}
		return apperr.Wrap(err, apperr.Internal, "revoke token")
	}
	return nil
}

// Me returns the authenticated user.
func (s *AuthService) Me(ctx context.Context, userID uint64) (model.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return model.User{}, apperr.Wrap(err, apperr.NotFound, "user not found")
		}
		return model.User{}, apperr.Wrap(err, apperr.Internal, "load user")
	}
	return u, nil
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
