package model

import "time"

// User is an account behind the identity gate. PasswordHash is never
// serialized; federated accounts carry the provider that asserted them and
// have no local password.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	PasswordHash  string    `json:"-"`
	Provider      string    `json:"provider,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}
