// Package comment stores user comments after sanitizing them.
package comment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrEmptyComment is returned when a comment has no visible content,
	// either as submitted or after sanitization.
	ErrEmptyComment = errors.New("comment is empty")
	// ErrCommentTooLong is returned when the raw comment exceeds the
	// configured byte limit.
	ErrCommentTooLong = errors.New("comment is too long")
	// ErrInvalidEncoding is returned for input that is not valid UTF-8.
	ErrInvalidEncoding = errors.New("comment is not valid UTF-8")
)

// Comment is a stored comment. Body is already sanitized HTML.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists comments in insertion order.
type Store interface {
	// Add appends a comment.
	Add(ctx context.Context, c Comment) error
	// List returns all comments, oldest first.
	List(ctx context.Context) ([]Comment, error)
	// Clear removes every comment.
	Clear(ctx context.Context) error
}
