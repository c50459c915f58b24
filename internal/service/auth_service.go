package service

import "context"

// AuthService issues and validates admin credentials.
type AuthService interface {
	// Login checks the username/password pair against the stored admin
	// identity and returns a signed, time-bounded bearer token. Every failure
	// mode is ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (string, error)

	// Verify validates a bearer token and returns the admin username it
	// carries, or an error for expired/tampered tokens.
	Verify(token string) (string, error)
}
