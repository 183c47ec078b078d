// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// PasswordHash holds a bcrypt hash, never the raw password. The original
// system compared plaintext credentials; here verification goes through
// auth.PasswordService so the stored value is only ever a hash.
//
// LastLogin is a pointer because a freshly registered user has never logged
// in through the login flow; nil serializes to JSON null.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	DisplayName  string     `json:"display_name"`
	Bio          string     `json:"bio,omitempty"`
	Reputation   int        `json:"reputation"`
	AvatarURL    string     `json:"avatar_url,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	IsActive     bool       `json:"is_active"`
}

func (u User) RecordID() int64 { return u.ID }

// UserBrief is the author summary attached to questions, answers, and
// comments when they are returned to callers.
type UserBrief struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Reputation  int    `json:"reputation"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

// Brief strips a User down to the fields safe to embed in content responses.
func (u User) Brief() UserBrief {
	return UserBrief{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Reputation:  u.Reputation,
		AvatarURL:   u.AvatarURL,
	}
}
