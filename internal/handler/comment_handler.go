package handler

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/njchilds90/allowhtml"
	"github.com/njchilds90/allowhtml/internal/comment"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies before the service sees them.
// The service applies its own, smaller comment limit.
const maxBodyBytes = 1 << 20

//go:embed templates/comments.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/comments.html"))

// CommentService is what the comment handler needs from comment.Service.
type CommentService interface {
	Preview(raw string) (string, allowhtml.Report, error)
	Submit(ctx context.Context, raw string) (*comment.Comment, error)
	List(ctx context.Context) ([]comment.Comment, error)
	Clear(ctx context.Context) error
}

// CommentHandler serves the comment page and its JSON API.
type CommentHandler struct {
	service CommentService
	policy  *allowhtml.Policy
	logger  *zap.Logger
}

// NewCommentHandler creates a CommentHandler. policy should be the one the
// service sanitizes with; the page lists its tags and uses it to close
// tags a stored comment left open. A nil policy means DefaultPolicy.
func NewCommentHandler(service CommentService, policy *allowhtml.Policy, logger *zap.Logger) *CommentHandler {
	if policy == nil {
		policy = allowhtml.DefaultPolicy()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommentHandler{
		service: service,
		policy:  policy,
		logger:  logger,
	}
}

type commentRequest struct {
	Comment string `json:"comment"`
}

type sanitizeResponse struct {
	Sanitized string           `json:"sanitized"`
	Report    allowhtml.Report `json:"report"`
}

type commentsResponse struct {
	Comments []comment.Comment `json:"comments"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// pageComment is a stored comment as the page template sees it.
type pageComment struct {
	ID        string
	Body      template.HTML
	CreatedAt string
}

type pageData struct {
	AllowedTags []string
	Comments    []pageComment
	Error       string
}

// Page renders the comment form and every stored comment.
// GET /comment
func (h *CommentHandler) Page(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, "")
}

// SubmitForm stores the form field "comment" and renders the page.
// POST /comment
func (h *CommentHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.renderPage(w, r, http.StatusRequestEntityTooLarge, comment.ErrCommentTooLong.Error())
			return
		}
		h.renderPage(w, r, http.StatusBadRequest, "invalid form")
		return
	}

	if _, err := h.service.Submit(r.Context(), r.PostForm.Get("comment")); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("failed to submit comment", zap.Error(err))
			h.renderPage(w, r, status, "internal error")
			return
		}
		h.renderPage(w, r, status, err.Error())
		return
	}
	h.renderPage(w, r, http.StatusOK, "")
}

// Clear removes every comment.
// DELETE /comments
func (h *CommentHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Clear(r.Context()); err != nil {
		h.logger.Error("failed to clear comments", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// ListJSON returns the stored comments.
// GET /api/comments
func (h *CommentHandler) ListJSON(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list comments", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if comments == nil {
		comments = []comment.Comment{}
	}
	writeJSON(w, http.StatusOK, commentsResponse{Comments: comments})
}

// SubmitJSON stores a comment and returns it.
// POST /api/comments
func (h *CommentHandler) SubmitJSON(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCommentRequest(w, r)
	if !ok {
		return
	}

	c, err := h.service.Submit(r.Context(), req.Comment)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Sanitize returns the sanitized comment and a report without storing it.
// POST /api/sanitize
func (h *CommentHandler) Sanitize(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCommentRequest(w, r)
	if !ok {
		return
	}

	clean, report, err := h.service.Preview(req.Comment)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sanitizeResponse{Sanitized: clean, Report: report})
}

func (h *CommentHandler) renderPage(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	comments, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list comments", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := pageData{
		AllowedTags: h.policy.AllowedTags(),
		Error:       errMsg,
		Comments:    make([]pageComment, 0, len(comments)),
	}
	for _, c := range comments {
		// Bodies were sanitized before they were stored. Closing their
		// open tags keeps one comment from styling the next.
		body := allowhtml.SanitizeBalanced(c.Body, h.policy)
		data.Comments = append(data.Comments, pageComment{
			ID:        c.ID.String(),
			Body:      template.HTML(body),
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("failed to render comment page", zap.Error(err))
	}
}

func (h *CommentHandler) writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("comment service failed", zap.Error(err))
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

// statusFor maps service errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, comment.ErrEmptyComment), errors.Is(err, comment.ErrInvalidEncoding):
		return http.StatusBadRequest
	case errors.Is(err, comment.ErrCommentTooLong):
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

func decodeCommentRequest(w http.ResponseWriter, r *http.Request) (commentRequest, bool) {
	var req commentRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, comment.ErrCommentTooLong.Error())
			return req, false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
