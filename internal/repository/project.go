package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Kiranbanna12/xrozen-chat/internal/model"
)

// IProjectRepository defines the interface for project lookups
type IProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	FindByID(ctx context.Context, id string) (*model.Project, error)
}

// ProjectRepository implements IProjectRepository over gorm
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new IProjectRepository instance
func NewProjectRepository(db *gorm.DB) IProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts a new project
func (r *ProjectRepository) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// FindByID finds a project by ID, or (nil, nil) when absent
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &project, nil
}
