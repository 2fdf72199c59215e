package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for stored token ids
	"encoding/hex"  // hex encoding and decoding functions
	"errors"
	"strconv"
	"time" // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// ErrInvalidToken is returned for tokens that are malformed, expired,
// signed with another key or missing required claims.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT access token along with its expiry.
// ID is the token's jti; only its hash is persisted so that a session can
// be revoked on logout.
type AccessToken struct {
	Token string    // the serialized JWT string
	ID    string    // the jti claim
	Exp   time.Time // the UTC expiration time
}

// Claims are the values the server relies on after verifying a token.
type Claims struct {
	UserID  uint64
	TokenID string
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The token
// carries sub (user id), jti (random id), exp and iat.
func NewAccessToken(secret string, userID uint64, ttl time.Duration, now time.Time) (AccessToken, error) {
	jti, err := randomHex(16)
	if err != nil {
		return AccessToken{}, err
	}
	exp := now.UTC().Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(userID, 10),
		ID:        jti,
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(now.UTC()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, ID: jti, Exp: exp}, nil
}

// ParseAccessToken verifies the signature of raw and its expiry as of now,
// and returns its claims.  Only HS256 is accepted.
func ParseAccessToken(secret, raw string, now time.Time) (Claims, error) {
	var rc jwt.RegisteredClaims
	tok, err := jwt.ParseWithClaims(raw, &rc, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }))
	if err != nil || !tok.Valid {
		return Claims{}, ErrInvalidToken
	}
	uid, err := strconv.ParseUint(rc.Subject, 10, 64)
	if err != nil || uid == 0 || rc.ID == "" {
		return Claims{}, ErrInvalidToken
	}
	return Claims{UserID: uid, TokenID: rc.ID}, nil
}

// HashToken returns the SHA-256 hash of a token id as a hex string.
func HashToken(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
