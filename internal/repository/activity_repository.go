package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/yukikurage/project-collab-api/internal/database"
	"github.com/yukikurage/project-collab-api/internal/models"
	"github.com/yukikurage/project-collab-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormActivityRepository is a GORM implementation of ActivityRepository
type GormActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &GormActivityRepository{db: db}
}

func (r *GormActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(activity).Error
}

func (r *GormActivityRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	var activity models.Activity
	if err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&activity).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *GormActivityRepository) ListByProject(ctx context.Context, projectID uuid.UUID, params utils.PaginationParams) ([]models.Activity, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Activity{}).Where("project_id = ?", projectID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var activities []models.Activity
	if err := query.
		Preload("User").
		Scopes(database.NewestFirst, database.Paginate(params)).
		Find(&activities).Error; err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}
