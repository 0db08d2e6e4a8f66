// Package dto defines data transfer objects for the auth feature's HTTP transport layer.
package dto

// SignupReq represents the request body for the /api/signup endpoint.
// It uses Gin's binding tags for validation (required, email format, minimum password length).
type SignupReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// UserRes is the public view of a user. It never carries the password.
type UserRes struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}
