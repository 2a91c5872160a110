package dto

import (
	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
)

// LoginFailedMessage is the only failure text the login endpoint ever returns, whatever failed.
const LoginFailedMessage = "Invalid username or password"

// LockedMessage is returned with 429 while a login name is locked out.
const LockedMessage = "Too many failed login attempts"

// UserResponse is the public view of an authenticated identity.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Name     string `json:"name"`
}

// LoginResponse is the body of POST /api/auth/login.
type LoginResponse struct {
	Success  bool          `json:"success"`
	User     *UserResponse `json:"user,omitempty"`
	Redirect string        `json:"redirect,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// LogoutResponse is the body of POST /api/auth/logout.
type LogoutResponse struct {
	Success bool `json:"success"`
}

// SessionResponse is the body of GET /api/auth/session.
type SessionResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *UserResponse `json:"user,omitempty"`
}

// MapIdentityToResponse converts a domain identity to its API representation.
func MapIdentityToResponse(identity *authDomain.Identity) *UserResponse {
	return &UserResponse{
		ID:       identity.ID,
		Username: identity.Username,
		Role:     identity.Role.String(),
		Name:     identity.Name,
	}
}

// NewLoginSuccess builds the success body, pointing the browser at the role's landing page.
func NewLoginSuccess(identity *authDomain.Identity) LoginResponse {
	return LoginResponse{
		Success:  true,
		User:     MapIdentityToResponse(identity),
		Redirect: identity.Role.HomePath(),
	}
}

// NewLoginFailure builds a failure body with the given message.
func NewLoginFailure(message string) LoginResponse {
	return LoginResponse{Success: false, Error: message}
}
