package jwtmw

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"blog_backend/internal/api"
)

// ContextSubject is the gin context key holding the verified token subject (email).
const ContextSubject = "subject"

// Verifier validates a bearer token and returns its subject.
type Verifier interface {
	VerifyToken(token string) (string, error)
}

// AuthRequired returns a Gin middleware function that validates bearer tokens
// and restricts access to authenticated callers only.
// Every failure is a 401; an expired token gets its own message.
func AuthRequired(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get Authorization header ("Bearer <token>", scheme is case-insensitive)
		scheme, tokenStr, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		tokenStr = strings.TrimSpace(tokenStr)
		if !ok || !strings.EqualFold(scheme, "Bearer") || tokenStr == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}

		// 2. Verify signature and expiry
		subject, err := v.VerifyToken(tokenStr)
		if err != nil {
			slog.Warn("token rejected", "error", err, "remote_addr", c.ClientIP())
			if errors.Is(err, ErrExpiredToken) {
				abortUnauthorized(c, "token expired")
				return
			}
			abortUnauthorized(c, "invalid token")
			return
		}

		// 3. Pass the subject to the handlers
		c.Set(ContextSubject, subject)
		c.Next()
	}
}

// SubjectFrom returns the subject stored by AuthRequired.
func SubjectFrom(c *gin.Context) (string, bool) {
	subject := c.GetString(ContextSubject)
	return subject, subject != ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: msg})
}
