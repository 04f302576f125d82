package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Kiranbanna12/xrozen-chat/internal/model"
	"github.com/Kiranbanna12/xrozen-chat/internal/repository"
)

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

// IProjectService defines the interface for project operations. Projects
// are owned by the wider product; this service exists so the chat core
// can run standalone and to backfill the creator's membership on create.
type IProjectService interface {
	CreateProject(ctx context.Context, creatorID, name string) (*model.Project, error)
	GetProject(ctx context.Context, id string) (*model.Project, error)
}

// ProjectService implements the IProjectService interface
type ProjectService struct {
	projectRepo repository.IProjectRepository
	membership  IMembershipService
}

// NewProjectService creates a new IProjectService instance
func NewProjectService(projectRepo repository.IProjectRepository, membership IMembershipService) IProjectService {
	return &ProjectService{projectRepo: projectRepo, membership: membership}
}

// CreateProject stores a project and joins the creator to its chat
// through the direct path (creator backfill).
func (s *ProjectService) CreateProject(ctx context.Context, creatorID, name string) (*model.Project, error) {
	project := &model.Project{
		ID:        uuid.New().String(),
		Name:      name,
		CreatorID: creatorID,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	if _, err := s.membership.Join(ctx, project.ID, model.UserIdentity(creatorID), ""); err != nil {
		return nil, fmt.Errorf("failed to backfill creator membership: %w", err)
	}
	return project, nil
}

// GetProject retrieves a project by ID
func (s *ProjectService) GetProject(ctx context.Context, id string) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up project: %w", err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	return project, nil
}
