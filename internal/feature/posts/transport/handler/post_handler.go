// Package handler はpostsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	"blog_backend/internal/api"
	"blog_backend/internal/feature/posts/domain/entity"
	"blog_backend/internal/feature/posts/transport/http/dto"
	"blog_backend/internal/feature/posts/usecase"
	jwtmw "blog_backend/internal/platform/jwt"
)

// maxBodyBytes bounds the request body. JSON escaping can inflate text well past
// entity.MaxTextBytes, so the cap is generous; the real limit is applied to the decoded text.
const maxBodyBytes = 8 * entity.MaxTextBytes

const msgPostNotFound = "Post not found or you don't have permission"

// PostUsecase は投稿操作のユースケースを定義します。
type PostUsecase interface {
	CreatePost(ctx context.Context, subject, text string) (*entity.Post, error)
	ListPosts(ctx context.Context, subject string) ([]entity.Post, error)
	DeletePost(ctx context.Context, subject string, postID uint) error
}

// PostHandler は投稿操作のHTTPリクエストを処理します。
// すべてのルートはjwtmw.AuthRequiredの後ろに置かれる前提です。
type PostHandler struct {
	posts PostUsecase
}

// NewPostHandler はPostHandlerの新しいインスタンスを生成します。
func NewPostHandler(posts PostUsecase) *PostHandler {
	return &PostHandler{posts: posts}
}

// CreatePost は POST /api/post を処理します。
func (h *PostHandler) CreatePost(c *gin.Context) {
	subject, ok := jwtmw.SubjectFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var req dto.CreatePostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, api.ErrorResponse{Error: "post text too large"})
			return
		}
		slog.Warn("create post validation failed", "error", err, "subject", subject)
		c.JSON(http.StatusUnprocessableEntity, api.NewValidationError(err))
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), subject, req.Text)
	if err != nil {
		h.writeError(c, "create post", subject, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewPostRes(*post))
}

// ListPosts は GET /api/posts を処理します。呼び出し元自身の投稿だけを返します。
func (h *PostHandler) ListPosts(c *gin.Context) {
	subject, ok := jwtmw.SubjectFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	posts, err := h.posts.ListPosts(c.Request.Context(), subject)
	if err != nil {
		h.writeError(c, "list posts", subject, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPostListRes(posts))
}

// DeletePost は DELETE /api/post/:post_id を処理します。
// 存在しない投稿と他人の投稿は同じ404になります。
func (h *PostHandler) DeletePost(c *gin.Context) {
	subject, ok := jwtmw.SubjectFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	var postID int64
	err := runtime.BindStyledParameterWithOptions("simple", "post_id", c.Param("post_id"), &postID,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil || postID <= 0 {
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{
			Error:   "validation failed",
			Details: []api.FieldError{{Field: "post_id", Message: "must be a positive integer"}},
		})
		return
	}

	if err := h.posts.DeletePost(c.Request.Context(), subject, uint(postID)); err != nil {
		h.writeError(c, "delete post", subject, err)
		return
	}

	slog.Info("post deleted", "post_id", postID, "subject", subject)
	c.JSON(http.StatusOK, api.DetailResponse{Detail: "Post deleted"})
}

// writeError はユースケースのエラーをHTTPステータスに変換します。
func (h *PostHandler) writeError(c *gin.Context, op, subject string, err error) {
	switch {
	case errors.Is(err, usecase.ErrUnauthorized):
		slog.Warn(op+" rejected: user no longer exists", "subject", subject)
		c.Header("WWW-Authenticate", "Bearer")
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
	case errors.Is(err, usecase.ErrPayloadTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, api.ErrorResponse{Error: "post text too large"})
	case errors.Is(err, usecase.ErrInvalidInput):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{
			Error:   "validation failed",
			Details: []api.FieldError{{Field: "text", Message: "is required"}},
		})
	case errors.Is(err, usecase.ErrPostNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: msgPostNotFound})
	default:
		slog.Error(op+" failed", "error", err, "subject", subject)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
	}
}
