package repositories

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/resume-matcher/internal/models"
)

var (
	ErrResumeNotFound  = errors.New("resume not found")
	ErrInvalidIdentity = errors.New("resume identity must be a valid email")
)

// ResumeRepository is the record store. StreamAll yields records in identity
// order; every call re-reads the collection.
type ResumeRepository interface {
	Upsert(ctx context.Context, resume *models.Resume) error
	FindByEmail(ctx context.Context, email string) (*models.Resume, error)
	StreamAll(ctx context.Context) iter.Seq2[models.Resume, error]
}

type resumeRepository struct {
	db *gorm.DB
}

func NewResumeRepository(db *gorm.DB) ResumeRepository {
	return &resumeRepository{db: db}
}

// Upsert implements ResumeRepository. The insert-or-replace is a single
// statement, so readers never see a half-written row.
func (r *resumeRepository) Upsert(ctx context.Context, resume *models.Resume) error {
	if err := checkIdentity(resume); err != nil {
		return err
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			UpdateAll: true,
		}).
		Create(resume).Error
	if err != nil {
		return fmt.Errorf("failed to upsert resume: %w", err)
	}

	return nil
}

// FindByEmail implements ResumeRepository.
func (r *resumeRepository) FindByEmail(ctx context.Context, email string) (*models.Resume, error) {
	var resume models.Resume
	err := r.db.WithContext(ctx).
		Where("email = ?", models.NormalizeEmail(email)).
		First(&resume).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResumeNotFound
		}
		return nil, fmt.Errorf("failed to find resume: %w", err)
	}

	return &resume, nil
}

// StreamAll implements ResumeRepository.
func (r *resumeRepository) StreamAll(ctx context.Context) iter.Seq2[models.Resume, error] {
	return func(yield func(models.Resume, error) bool) {
		db := r.db.WithContext(ctx)
		rows, err := db.Model(&models.Resume{}).Order("email ASC").Rows()
		if err != nil {
			yield(models.Resume{}, fmt.Errorf("failed to stream resumes: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var resume models.Resume
			if err := db.ScanRows(rows, &resume); err != nil {
				yield(models.Resume{}, fmt.Errorf("failed to scan resume: %w", err))
				return
			}
			if !yield(resume, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(models.Resume{}, fmt.Errorf("failed to stream resumes: %w", err))
		}
	}
}

func checkIdentity(resume *models.Resume) error {
	if resume == nil || !models.IsValidEmail(resume.Email) || resume.Email != models.NormalizeEmail(resume.Email) {
		return ErrInvalidIdentity
	}
	return nil
}
