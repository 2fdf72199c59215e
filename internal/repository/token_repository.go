package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/event-ticket-reservation/internal/model"
)

// TokenRepo persists access token sessions.  Only the hash of a token's
// jti is stored (single 'token_hash' column).
type TokenRepo struct{ db *sqlx.DB }

func NewTokenRepo(db *sqlx.DB) *TokenRepo { return &TokenRepo{db: db} }

// Store inserts a session row.
func (r *TokenRepo) Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error {
	_, err := exec(ctx, conn(ctx, r.db),
		"INSERT INTO access_tokens (user_id, token_hash, expires_at) VALUES (?, ?, ?)",
		userID, tokenHash, exp.UTC())
	return err
}

// Find returns the session row for the hash.  Unknown and revoked tokens
// yield ErrTokenNotFound; expiry is left to the caller.
func (r *TokenRepo) Find(ctx context.Context, tokenHash string) (model.AccessToken, error) {
	q := conn(ctx, r.db)
	var tok model.AccessToken
	err := sqlx.GetContext(ctx, q, &tok,
		q.Rebind("SELECT id, user_id, token_hash, expires_at, revoked_at, created_at FROM access_tokens WHERE token_hash = ? AND revoked_at IS NULL"),
		tokenHash)
	if err != nil {
		return model.AccessToken{}, translate(err, ErrTokenNotFound)
	}
	return tok, nil
}

// Revoke marks a session as revoked.  Revoking an unknown or already
// revoked token yields ErrTokenNotFound.
func (r *TokenRepo) Revoke(ctx context.Context, tokenHash string) error {
	n, err := exec(ctx, conn(ctx, r.db),
		"UPDATE access_tokens SET revoked_at = CURRENT_TIMESTAMP WHERE token_hash = ? AND revoked_at IS NULL",
		tokenHash)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTokenNotFound
	}
	return nil
}
