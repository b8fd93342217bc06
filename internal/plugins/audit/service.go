package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gobarber/gobarber/internal/apperror"
)

// perPage is the number of entries per activity page.
const perPage = 50

// maxUserAgentLen matches the user_agent column width.
const maxUserAgentLen = 255

// AuditService handles business logic for the activity log.
type AuditService interface {
	// Log validates and records an entry.
	Log(ctx context.Context, entry *Entry) error

	// LogActivity records an event and swallows the error after logging it,
	// so it can be called after the primary operation already succeeded.
	LogActivity(ctx context.Context, userID, action, ip, userAgent string)

	// Activity returns one page of a user's entries and the total count.
	Activity(ctx context.Context, userID string, page int) ([]Entry, int, error)
}

// auditService implements AuditService.
type auditService struct {
	repo AuditRepository
}

// NewAuditService creates a new audit service with the given repository.
func NewAuditService(repo AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Log(ctx context.Context, entry *Entry) error {
	if entry.UserID == "" {
		return apperror.NewBadRequest("user ID is required for activity entry")
	}
	if entry.Action == "" {
		return apperror.NewBadRequest("action is required for activity entry")
	}
	if len(entry.UserAgent) > maxUserAgentLen {
		entry.UserAgent = entry.UserAgent[:maxUserAgentLen]
	}

	if err := s.repo.Log(ctx, entry); err != nil {
		slog.Error("failed to write activity entry",
			slog.String("user_id", entry.UserID),
			slog.String("action", entry.Action),
			slog.Any("error", err),
		)
		return apperror.NewInternal(fmt.Errorf("writing activity entry: %w", err))
	}
	return nil
}

func (s *auditService) LogActivity(ctx context.Context, userID, action, ip, userAgent string) {
	// Log already reports repository failures.
	_ = s.Log(ctx, &Entry{
		UserID:    userID,
		Action:    action,
		IP:        ip,
		UserAgent: userAgent,
	})
}

// Activity pages are 1-indexed; invalid page numbers are clamped to 1.
func (s *auditService) Activity(ctx context.Context, userID string, page int) ([]Entry, int, error) {
	if userID == "" {
		return nil, 0, apperror.NewBadRequest("user ID is required")
	}
	if page < 1 {
		page = 1
	}

	entries, total, err := s.repo.ListByUser(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, apperror.NewInternal(fmt.Errorf("listing activity: %w", err))
	}
	return entries, total, nil
}
