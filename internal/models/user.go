package models

import "time"

type User struct {
	ID        string
	Email     string
	Password  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AuthCode is a one-time code exchanged for a session on /home.
type AuthCode struct {
	Code      string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Session binds a refresh token to the client fingerprint it was issued to.
type Session struct {
	ID           string
	UserID       string
	Fingerprint  string
	RefreshToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
