package model

import "time"

// AdminLogin is the admin panel login request
type AdminLogin struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is returned after a successful admin login
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Username    string    `json:"username"`
}

// AdminEvent is an audit record of an admin action
type AdminEvent struct {
	Action    string    `json:"action"`
	Target    string    `json:"target"`
	Username  string    `json:"username"`
	RequestID string    `json:"requestId,omitempty"`
	Status    int       `json:"status"`
	At        time.Time `json:"at"`
}
