// Package api holds the wire shapes shared by every feature's HTTP handlers.
package api

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DetailResponse is returned by operations that have no resource to return.
type DetailResponse struct {
	Detail string `json:"detail"`
}
