package model

import "time"

type AuthRequest struct {
	Username string `json:"username" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=5,max=72"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// User is the stored credential record. PasswordHash never leaves the server.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the client-facing view of a user.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}

// AuthIdentity is attached to a request after its bearer token verifies.
type AuthIdentity struct {
	Subject string
	Type    string
}

type LoginResult struct {
	Identity     PublicUser `json:"identity"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
	ExpiresIn    int64      `json:"expiresIn"`
}

type RefreshResult struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}
