package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog_backend/internal/api"
	"blog_backend/internal/feature/auth/domain/entity"
	"blog_backend/internal/feature/auth/usecase"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// mockAuthUsecase はAuthUsecaseインターフェースのモック実装です。
type mockAuthUsecase struct {
	SignupFunc func(ctx context.Context, email, password string) (*entity.User, error)
	LoginFunc  func(ctx context.Context, email, password string) (string, error)
}

func (m *mockAuthUsecase) Signup(ctx context.Context, email, password string) (*entity.User, error) {
	if m.SignupFunc != nil {
		return m.SignupFunc(ctx, email, password)
	}
	return &entity.User{ID: 1, Email: email}, nil
}

func (m *mockAuthUsecase) Login(ctx context.Context, email, password string) (string, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return "", usecase.ErrInvalidCredentials
}

func perform(t *testing.T, h gin.HandlerFunc, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	router := gin.New()
	router.POST(path, h)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var res api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestAuthHandler_Signup(t *testing.T) {
	t.Run("success returns id and email without password", func(t *testing.T) {
		uc := &mockAuthUsecase{
			SignupFunc: func(ctx context.Context, email, password string) (*entity.User, error) {
				assert.Equal(t, "password123", password)
				return &entity.User{ID: 5, Email: email, Password: "$2a$hash"}, nil
			},
		}
		w := perform(t, NewAuthHandler(uc).Signup, "/signup", `{"email":"test@example.com","password":"password123"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id":5,"email":"test@example.com"}`, w.Body.String())
	})

	t.Run("long password reaches the usecase", func(t *testing.T) {
		long := strings.Repeat("p", 100)
		called := false
		uc := &mockAuthUsecase{
			SignupFunc: func(ctx context.Context, email, password string) (*entity.User, error) {
				called = true
				assert.Equal(t, long, password)
				return &entity.User{ID: 6, Email: email}, nil
			},
		}
		w := perform(t, NewAuthHandler(uc).Signup, "/signup", `{"email":"test@example.com","password":"`+long+`"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, called)
	})

	validation := []struct {
		name  string
		body  string
		field string
	}{
		{"invalid email", `{"email":"invalid-email","password":"password123"}`, "email"},
		{"missing email", `{"password":"password123"}`, "email"},
		{"short password", `{"email":"test@example.com","password":"short"}`, "password"},
		{"wrong type", `{"email":"test@example.com","password":123456}`, "password"},
		{"malformed json", `{"email":`, "body"},
	}
	for _, tt := range validation {
		t.Run("422 on "+tt.name, func(t *testing.T) {
			uc := &mockAuthUsecase{
				SignupFunc: func(ctx context.Context, email, password string) (*entity.User, error) {
					t.Fatal("usecase must not be called")
					return nil, nil
				},
			}
			w := perform(t, NewAuthHandler(uc).Signup, "/signup", tt.body)

			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
			res := decodeError(t, w)
			require.NotEmpty(t, res.Details)
			assert.Equal(t, tt.field, res.Details[0].Field)
		})
	}

	errorCases := []struct {
		name   string
		err    error
		status int
	}{
		{"duplicate email", usecase.ErrEmailAlreadyExists, http.StatusConflict},
		{"invalid input from usecase", usecase.ErrInvalidInput, http.StatusUnprocessableEntity},
		{"unexpected failure", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockAuthUsecase{
				SignupFunc: func(ctx context.Context, email, password string) (*entity.User, error) { return nil, tt.err },
			}
			w := perform(t, NewAuthHandler(uc).Signup, "/signup", `{"email":"test@example.com","password":"password123"}`)

			assert.Equal(t, tt.status, w.Code)
			assert.NotContains(t, w.Body.String(), "db down")
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success returns bearer token", func(t *testing.T) {
		uc := &mockAuthUsecase{
			LoginFunc: func(ctx context.Context, email, password string) (string, error) { return "jwt-token", nil },
		}
		w := perform(t, NewAuthHandler(uc).Login, "/login", `{"email":"test@example.com","password":"password123"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"access_token":"jwt-token","token_type":"bearer"}`, w.Body.String())
	})

	t.Run("invalid credentials return 401", func(t *testing.T) {
		w := perform(t, NewAuthHandler(&mockAuthUsecase{}).Login, "/login", `{"email":"test@example.com","password":"wrong"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
		assert.Equal(t, "Invalid credentials", decodeError(t, w).Error)
	})

	t.Run("missing password returns 422", func(t *testing.T) {
		w := perform(t, NewAuthHandler(&mockAuthUsecase{}).Login, "/login", `{"email":"test@example.com"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		res := decodeError(t, w)
		require.Len(t, res.Details, 1)
		assert.Equal(t, "password", res.Details[0].Field)
		assert.Equal(t, "is required", res.Details[0].Message)
	})

	t.Run("unexpected failure returns 500", func(t *testing.T) {
		uc := &mockAuthUsecase{
			LoginFunc: func(ctx context.Context, email, password string) (string, error) {
				return "", errors.New("failed to find user: timeout")
			},
		}
		w := perform(t, NewAuthHandler(uc).Login, "/login", `{"email":"test@example.com","password":"password123"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
