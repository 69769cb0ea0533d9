package posserver

import "time"

type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AdminUnlockRequest struct {
	Pin string `json:"pin"`
}

// SessionToken is returned whenever a session token is issued.
type SessionToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	SessionId string    `json:"sessionId"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}
