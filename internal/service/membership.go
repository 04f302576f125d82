package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Kiranbanna12/xrozen-chat/internal/model"
	"github.com/Kiranbanna12/xrozen-chat/internal/repository"
)

// ShareCapabilities are the flags a new share link grants.
type ShareCapabilities struct {
	CanView bool `json:"can_view"`
	CanEdit bool `json:"can_edit"`
	CanChat bool `json:"can_chat"`
}

// IMembershipService defines the interface for the membership registry
type IMembershipService interface {
	Join(ctx context.Context, projectID string, identity model.Identity, shareID string) (*model.ChatMember, error)
	Remove(ctx context.Context, memberID, removedBy string) error
	ListMembers(ctx context.Context, projectID string) ([]*model.ChatMember, error)
	ActiveMember(ctx context.Context, projectID string, identity model.Identity) (*model.ChatMember, error)
	TouchLastSeen(ctx context.Context, memberID string) error

	RequestJoin(ctx context.Context, projectID string, identity model.Identity) (*model.JoinRequest, error)
	Respond(ctx context.Context, requestID string, approve bool, responderID string) (*model.JoinRequest, error)
	ListPendingRequests(ctx context.Context, projectID string) ([]*model.JoinRequest, error)

	CreateShare(ctx context.Context, projectID, creatorID string, caps ShareCapabilities, expiresAt *time.Time) (*model.ShareLink, error)
	ListShares(ctx context.Context, projectID string) ([]*model.ShareLink, error)
	ResolveShare(ctx context.Context, token string) (*model.ShareLink, error)
	RevokeShare(ctx context.Context, shareID, byUserID string) error
}

// MembershipService implements the IMembershipService interface
type MembershipService struct {
	memberRepo  repository.IMemberRepository
	requestRepo repository.IJoinRequestRepository
	shareRepo   repository.IShareRepository
	projectRepo repository.IProjectRepository
	notifier    Notifier
	logger      *zap.Logger
}

// NewMembershipService creates a new IMembershipService instance
func NewMembershipService(
	memberRepo repository.IMemberRepository,
	requestRepo repository.IJoinRequestRepository,
	shareRepo repository.IShareRepository,
	projectRepo repository.IProjectRepository,
	notifier Notifier,
	logger *zap.Logger,
) IMembershipService {
	return &MembershipService{
		memberRepo:  memberRepo,
		requestRepo: requestRepo,
		shareRepo:   shareRepo,
		projectRepo: projectRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// Join adds an identity to a project conversation. Joining twice returns
// the existing active membership. When the join arrives through a share
// link, the project creator is refused a share-attributed row: creators
// only ever hold direct memberships.
func (s *MembershipService) Join(ctx context.Context, projectID string, identity model.Identity, shareID string) (*model.ChatMember, error) {
	if !identity.Valid() {
		return nil, ErrInvalidIdentity
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	if shareID != "" {
		share, err := s.shareRepo.FindByID(ctx, shareID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up share link: %w", err)
		}
		if share == nil || share.ProjectID != projectID {
			return nil, ErrShareNotFound
		}
		if identity.IsUser() && identity.UserID == project.CreatorID {
			// The creator following their own link keeps any direct
			// membership they already have; a share-attributed row is
			// never created for them.
			if existing, err := s.memberRepo.FindActive(ctx, projectID, identity); err != nil {
				return nil, fmt.Errorf("failed to look up membership: %w", err)
			} else if existing != nil {
				return existing, nil
			}
			return nil, ErrCreatorViaShare
		}
	}

	if existing, err := s.memberRepo.FindActive(ctx, projectID, identity); err != nil {
		return nil, fmt.Errorf("failed to look up membership: %w", err)
	} else if existing != nil {
		return existing, nil
	}

	member := &model.ChatMember{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Identity:  identity,
		ShareID:   shareID,
		JoinedAt:  time.Now().UTC(),
		IsActive:  true,
	}
	created, err := s.memberRepo.Insert(ctx, member)
	if err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}
	if !created {
		// Lost a concurrent join race; the winner's row is the membership.
		existing, err := s.memberRepo.FindActive(ctx, projectID, identity)
		if err != nil {
			return nil, fmt.Errorf("failed to look up membership: %w", err)
		}
		if existing == nil {
			return nil, fmt.Errorf("membership insert conflicted but no active row found for %s", identity)
		}
		return existing, nil
	}

	s.notifier.Publish(ctx, projectID, EventMemberJoined, member)
	return member, nil
}

// Remove soft-deletes a membership. History stays; only the active flag
// flips and removal metadata is recorded. A member may remove themself,
// otherwise the project creator must be acting.
func (s *MembershipService) Remove(ctx context.Context, memberID, removedBy string) error {
	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return fmt.Errorf("failed to look up member: %w", err)
	}
	if member == nil {
		return ErrMemberNotFound
	}
	if !member.IsActive {
		return ErrMemberRemoved
	}

	if member.Identity.UserID != removedBy {
		project, err := s.projectRepo.FindByID(ctx, member.ProjectID)
		if err != nil {
			return fmt.Errorf("failed to look up project: %w", err)
		}
		if project == nil || project.CreatorID != removedBy {
			return ErrNotProjectCreator
		}
	}

	if err := s.memberRepo.Deactivate(ctx, memberID, removedBy, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	s.notifier.Publish(ctx, member.ProjectID, EventMemberRemoved, map[string]string{
		"member_id":  memberID,
		"removed_by": removedBy,
	})
	return nil
}

// ListMembers retrieves a project's active members
func (s *MembershipService) ListMembers(ctx context.Context, projectID string) ([]*model.ChatMember, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	return s.memberRepo.ListActiveByProject(ctx, projectID)
}

// ActiveMember retrieves the caller's active membership in a project.
func (s *MembershipService) ActiveMember(ctx context.Context, projectID string, identity model.Identity) (*model.ChatMember, error) {
	if !identity.Valid() {
		return nil, ErrInvalidIdentity
	}
	member, err := s.memberRepo.FindActive(ctx, projectID, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to look up member: %w", err)
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}
	return member, nil
}

// TouchLastSeen stamps a member's last activity time.
func (s *MembershipService) TouchLastSeen(ctx context.Context, memberID string) error {
	return s.memberRepo.TouchLastSeen(ctx, memberID, time.Now().UTC())
}

// RequestJoin files a pending join request for projects that gate chat
// behind approval. An identity with a pending request gets that request
// back instead of a duplicate.
func (s *MembershipService) RequestJoin(ctx context.Context, projectID string, identity model.Identity) (*model.JoinRequest, error) {
	if !identity.Valid() {
		return nil, ErrInvalidIdentity
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}

	if pending, err := s.requestRepo.FindPending(ctx, projectID, identity); err != nil {
		return nil, fmt.Errorf("failed to look up pending request: %w", err)
	} else if pending != nil {
		return pending, nil
	}

	request := &model.JoinRequest{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Identity:    identity,
		Status:      model.JoinRequestPending,
		RequestedAt: time.Now().UTC(),
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create join request: %w", err)
	}
	return request, nil
}

// Respond approves or rejects a pending join request. Both outcomes are
// terminal: a second respond, whatever its verdict, conflicts. Approval
// performs the equivalent of a direct Join.
func (s *MembershipService) Respond(ctx context.Context, requestID string, approve bool, responderID string) (*model.JoinRequest, error) {
	request, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up join request: %w", err)
	}
	if request == nil {
		return nil, ErrRequestNotFound
	}

	project, err := s.projectRepo.FindByID(ctx, request.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if project.CreatorID != responderID {
		return nil, ErrNotProjectCreator
	}

	status := model.JoinRequestRejected
	if approve {
		status = model.JoinRequestApproved
	}

	now := time.Now().UTC()
	transitioned, err := s.requestRepo.MarkResponded(ctx, requestID, status, responderID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to respond to join request: %w", err)
	}
	if !transitioned {
		return nil, ErrAlreadyResponded
	}

	if approve {
		if _, err := s.Join(ctx, request.ProjectID, request.Identity, ""); err != nil {
			// The transition already happened; an approval whose join
			// fails is surfaced so the caller can retry the join.
			return nil, fmt.Errorf("request approved but join failed: %w", err)
		}
	}

	request.Status = status
	request.RespondedAt = &now
	request.RespondedBy = responderID
	return request, nil
}

// ListPendingRequests retrieves a project's pending join requests
func (s *MembershipService) ListPendingRequests(ctx context.Context, projectID string) ([]*model.JoinRequest, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	return s.requestRepo.ListPendingByProject(ctx, projectID)
}

// CreateShare issues a share link for a project. Only the project creator
// may issue links.
func (s *MembershipService) CreateShare(ctx context.Context, projectID, creatorID string, caps ShareCapabilities, expiresAt *time.Time) (*model.ShareLink, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if project.CreatorID != creatorID {
		return nil, ErrNotProjectCreator
	}

	token, err := generateShareToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate share token: %w", err)
	}

	now := time.Now().UTC()
	share := &model.ShareLink{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		CreatorID:  creatorID,
		ShareToken: token,
		CanView:    caps.CanView,
		CanEdit:    caps.CanEdit,
		CanChat:    caps.CanChat,
		IsActive:   true,
		ExpiresAt:  expiresAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.shareRepo.Create(ctx, share); err != nil {
		return nil, fmt.Errorf("failed to create share link: %w", err)
	}
	return share, nil
}

// ListShares retrieves every share link of a project, revoked ones
// included.
func (s *MembershipService) ListShares(ctx context.Context, projectID string) ([]*model.ShareLink, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	return s.shareRepo.ListByProject(ctx, projectID)
}

// ResolveShare validates a share token for chat access
func (s *MembershipService) ResolveShare(ctx context.Context, token string) (*model.ShareLink, error) {
	share, err := s.shareRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to look up share link: %w", err)
	}
	if share == nil {
		return nil, ErrShareNotFound
	}
	if !share.IsActive {
		return nil, ErrShareInactive
	}
	if share.Expired(time.Now().UTC()) {
		return nil, ErrShareExpired
	}
	if !share.CanChat {
		return nil, ErrShareNoChat
	}
	return share, nil
}

// RevokeShare deactivates a share link. Members who already joined
// through it keep their membership; only new joins are cut off.
func (s *MembershipService) RevokeShare(ctx context.Context, shareID, byUserID string) error {
	share, err := s.shareRepo.FindByID(ctx, shareID)
	if err != nil {
		return fmt.Errorf("failed to look up share link: %w", err)
	}
	if share == nil {
		return ErrShareNotFound
	}

	project, err := s.projectRepo.FindByID(ctx, share.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to look up project: %w", err)
	}
	if project == nil || project.CreatorID != byUserID {
		return ErrNotProjectCreator
	}

	return s.shareRepo.Revoke(ctx, shareID, time.Now().UTC())
}

func generateShareToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
