package dto

import "github.com/polkiloo/hubsai/internal/domain/model"

// SignUpRequest describes the sign-up payload.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// SignInRequest describes the sign-in payload.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the sign-up/sign-in result union.
type AuthResult struct {
	Success bool        `json:"success"`
	User    *model.User `json:"user,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ErrorResponse carries a user facing message and, for stateful calls,
// the state left in place.
type ErrorResponse struct {
	Error string `json:"error"`
	State any    `json:"state,omitempty"`
}
