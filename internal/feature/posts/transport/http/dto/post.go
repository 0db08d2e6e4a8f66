// Package dto defines data transfer objects for the posts feature's HTTP transport layer.
package dto

import "blog_backend/internal/feature/posts/domain/entity"

// CreatePostReq represents the request body for POST /api/post.
// Size is checked after binding so an oversized body maps to 413, not 422.
type CreatePostReq struct {
	Text string `json:"text" binding:"required"`
}

// PostRes is the public view of a post.
type PostRes struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}

// NewPostRes converts an entity to its response shape.
func NewPostRes(p entity.Post) PostRes {
	return PostRes{ID: p.ID, Text: p.Text, Timestamp: p.Timestamp}
}

// NewPostListRes converts posts to a response slice. An empty list encodes as [].
func NewPostListRes(posts []entity.Post) []PostRes {
	out := make([]PostRes, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewPostRes(p))
	}
	return out
}
