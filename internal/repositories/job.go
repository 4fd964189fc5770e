package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/resume-matcher/internal/models"
)

var ErrJobNotFound = errors.New("job query not found")

type JobRepository interface {
	// Save writes the snapshot under its ID, replacing any earlier one.
	Save(ctx context.Context, job *models.JobQuery) error
	FindByID(ctx context.Context, id string) (*models.JobQuery, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Save(ctx context.Context, job *models.JobQuery) error {
	if job == nil || job.ID == "" {
		return errors.New("job query id is required")
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(job).Error
	if err != nil {
		return fmt.Errorf("failed to save job query: %w", err)
	}

	return nil
}

func (r *jobRepository) FindByID(ctx context.Context, id string) (*models.JobQuery, error) {
	var job models.JobQuery
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to find job query: %w", err)
	}

	return &job, nil
}
