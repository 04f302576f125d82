package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Kiranbanna12/xrozen-chat/internal/repository"
)

// ProjectUnread is one project's slice of a user's unread summary.
type ProjectUnread struct {
	ProjectID     string     `json:"project_id"`
	Count         int64      `json:"count"`
	LastPreview   string     `json:"last_preview,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
}

// UnreadSummary is the full per-user unread report.
type UnreadSummary struct {
	PerProject []ProjectUnread `json:"per_project"`
	Total      int64           `json:"total"`
}

// IUnreadService defines the interface for the unread counter
type IUnreadService interface {
	UnreadFor(ctx context.Context, userID string) (*UnreadSummary, error)
	MarkProjectRead(ctx context.Context, projectID, userID string) error
}

// UnreadService implements the IUnreadService interface. It owns no state:
// counts are recomputed from messages and watermarks on every call, so
// they can never drift from the store the way persisted counters do.
type UnreadService struct {
	messageRepo  repository.IMessageRepository
	memberRepo   repository.IMemberRepository
	lastReadRepo repository.ILastReadRepository
}

// NewUnreadService creates a new IUnreadService instance
func NewUnreadService(
	messageRepo repository.IMessageRepository,
	memberRepo repository.IMemberRepository,
	lastReadRepo repository.ILastReadRepository,
) IUnreadService {
	return &UnreadService{
		messageRepo:  messageRepo,
		memberRepo:   memberRepo,
		lastReadRepo: lastReadRepo,
	}
}

// UnreadFor reports, for every project the user is an active member of,
// how many messages arrived after the user's watermark. A user with no
// watermark for a project has read nothing there, so every message counts.
func (s *UnreadService) UnreadFor(ctx context.Context, userID string) (*UnreadSummary, error) {
	memberships, err := s.memberRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	summary := &UnreadSummary{PerProject: make([]ProjectUnread, 0, len(memberships))}
	for _, membership := range memberships {
		watermark, err := s.lastReadRepo.Find(ctx, membership.ProjectID, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to load watermark: %w", err)
		}

		var after *time.Time
		if watermark != nil {
			after = &watermark.LastReadAt
		}

		count, err := s.messageRepo.CountAfter(ctx, membership.ProjectID, after)
		if err != nil {
			return nil, fmt.Errorf("failed to count messages: %w", err)
		}

		entry := ProjectUnread{ProjectID: membership.ProjectID, Count: count}
		if latest, err := s.messageRepo.LatestByProject(ctx, membership.ProjectID); err != nil {
			return nil, fmt.Errorf("failed to load latest message: %w", err)
		} else if latest != nil {
			entry.LastPreview = preview(latest.Content)
			at := latest.CreatedAt
			entry.LastMessageAt = &at
		}

		summary.PerProject = append(summary.PerProject, entry)
		summary.Total += count
	}
	return summary, nil
}

// MarkProjectRead moves the user's watermark for a project to now. The
// upsert is monotonic at the storage layer, so out-of-order calls can
// only ever move the watermark forward.
func (s *UnreadService) MarkProjectRead(ctx context.Context, projectID, userID string) error {
	if err := s.lastReadRepo.Upsert(ctx, projectID, userID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to update watermark: %w", err)
	}
	return nil
}

const previewLength = 80

func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "…"
}
