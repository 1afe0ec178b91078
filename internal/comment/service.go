package comment

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/njchilds90/allowhtml"
	"github.com/njchilds90/allowhtml/internal/metrics"
	"go.uber.org/zap"
)

// Rejection reasons reported to metrics.
const (
	ReasonEmpty          = "empty"
	ReasonTooLong        = "too_long"
	ReasonEncoding       = "invalid_encoding"
	ReasonEmptySanitized = "empty_after_sanitize"
)

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// Policy is applied to every comment. Nil means allowhtml.DefaultPolicy.
	Policy *allowhtml.Policy
	// MaxBytes bounds the raw comment size before sanitization.
	MaxBytes int
}

// Service sanitizes comments once, before they are stored.
type Service struct {
	store    Store
	policy   *allowhtml.Policy
	maxBytes int
	metrics  metrics.Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a Service. rec and logger may be nil.
func NewService(store Store, cfg ServiceConfig, rec metrics.Recorder, logger *zap.Logger) *Service {
	if cfg.Policy == nil {
		cfg.Policy = allowhtml.DefaultPolicy()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		policy:   cfg.Policy,
		maxBytes: cfg.MaxBytes,
		metrics:  rec,
		logger:   logger,
		now:      time.Now,
	}
}

// Preview validates and sanitizes raw without storing it.
func (s *Service) Preview(raw string) (string, allowhtml.Report, error) {
	if err := s.validate(raw); err != nil {
		return "", allowhtml.Report{}, err
	}
	clean, report := s.sanitize(raw)
	return clean, report, nil
}

// Submit validates, sanitizes and stores raw.
func (s *Service) Submit(ctx context.Context, raw string) (*Comment, error) {
	if err := s.validate(raw); err != nil {
		return nil, err
	}

	clean, report := s.sanitize(raw)
	if strings.TrimSpace(clean) == "" {
		s.metrics.RecordRejected(ReasonEmptySanitized)
		return nil, ErrEmptyComment
	}

	c := Comment{
		ID:        uuid.New(),
		Body:      clean,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Add(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to store comment: %w", err)
	}
	s.metrics.RecordAccepted()

	if report.Changed() {
		s.logger.Info("comment sanitized",
			zap.String("comment_id", c.ID.String()),
			zap.Int("stripped_tags", report.StrippedTags),
			zap.Int("stripped_attributes", report.StrippedAttributes),
			zap.Int("suppressed_elements", report.SuppressedElements),
			zap.Int("malformed", report.Malformed),
		)
	}
	return &c, nil
}

// List returns the stored comments, oldest first.
func (s *Service) List(ctx context.Context) ([]Comment, error) {
	comments, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

// Clear removes every stored comment.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear comments: %w", err)
	}
	s.logger.Info("comments cleared")
	return nil
}

func (s *Service) validate(raw string) error {
	switch {
	case strings.TrimSpace(raw) == "":
		s.metrics.RecordRejected(ReasonEmpty)
		return ErrEmptyComment
	case s.maxBytes > 0 && len(raw) > s.maxBytes:
		s.metrics.RecordRejected(ReasonTooLong)
		return ErrCommentTooLong
	case !utf8.ValidString(raw):
		s.metrics.RecordRejected(ReasonEncoding)
		return ErrInvalidEncoding
	}
	return nil
}

func (s *Service) sanitize(raw string) (string, allowhtml.Report) {
	start := time.Now()
	clean, report := allowhtml.SanitizeReport(raw, s.policy)
	s.metrics.RecordSanitized(report, time.Since(start))
	return clean, report
}
