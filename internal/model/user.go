package model

import "time"

// User represents an application user record as stored in the
// `users` table.  PasswordHash never leaves the server; handlers
// expose users through the json tags below, which skip it.
//
// Fields:
//  ID              – primary key identifier of the user.
//  Name            – display name.
//  Email           – unique email address (lower-cased).
//  PasswordHash    – bcrypt hashed password.
//  EmailVerifiedAt – when the address was verified (nullable).
//  CreatedAt       – timestamp of creation.
//  UpdatedAt       – timestamp of last update.
type User struct {
	ID              uint64     `db:"id"                json:"id"`
	Name            string     `db:"name"              json:"name"`
	Email           string     `db:"email"             json:"email"`
	PasswordHash    string     `db:"password_hash"     json:"-"`
	EmailVerifiedAt *time.Time `db:"email_verified_at" json:"email_verified_at"`
	CreatedAt       time.Time  `db:"created_at"        json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"        json:"updated_at"`
}

// AccessToken models an entry in the `access_tokens` table.  The bearer
// token itself is not stored; only the SHA-256 hash of its jti.
type AccessToken struct {
	ID        uint64     `db:"id"`
	UserID    uint64     `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `db:"created_at"`
}
