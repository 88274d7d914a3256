package auth

import "github.com/frahmantamala/resource-dashboard/internal/core/identity"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string            `json:"token"`
	User  identity.Identity `json:"user"`
}

// ErrorBody is the shape the backend uses for every non-2xx answer.
type ErrorBody struct {
	Message string `json:"message"`
}
