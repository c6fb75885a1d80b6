package domain

import "time"

// DefaultSubject is the owner of a single-user deployment
const DefaultSubject = "owner"

// Principal is the identity carried by a validated access token
type Principal struct {
	Subject   string    `json:"subject"`
	TokenID   string    `json:"token_id"`
	ExpiresAt time.Time `json:"expires_at"`
}
