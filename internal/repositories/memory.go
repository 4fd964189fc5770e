package repositories

import (
	"context"
	"errors"
	"iter"
	"slices"
	"sync"

	"alfredoptarigan/resume-matcher/internal/models"
)

// MemoryResumeRepository keeps records in process. It backs the "memory"
// database driver for local runs and the CLI.
type MemoryResumeRepository struct {
	mu      sync.RWMutex
	resumes map[string]models.Resume
}

func NewMemoryResumeRepository() *MemoryResumeRepository {
	return &MemoryResumeRepository{resumes: make(map[string]models.Resume)}
}

func (m *MemoryResumeRepository) Upsert(ctx context.Context, resume *models.Resume) error {
	if err := checkIdentity(resume); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumes[resume.Email] = cloneResume(*resume)
	return nil
}

func (m *MemoryResumeRepository) FindByEmail(ctx context.Context, email string) (*models.Resume, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	resume, ok := m.resumes[models.NormalizeEmail(email)]
	if !ok {
		return nil, ErrResumeNotFound
	}
	out := cloneResume(resume)
	return &out, nil
}

// StreamAll yields a point-in-time snapshot in identity order.
func (m *MemoryResumeRepository) StreamAll(ctx context.Context) iter.Seq2[models.Resume, error] {
	return func(yield func(models.Resume, error) bool) {
		m.mu.RLock()
		keys := make([]string, 0, len(m.resumes))
		for k := range m.resumes {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		snapshot := make([]models.Resume, 0, len(keys))
		for _, k := range keys {
			snapshot = append(snapshot, cloneResume(m.resumes[k]))
		}
		m.mu.RUnlock()

		for _, resume := range snapshot {
			if err := ctx.Err(); err != nil {
				yield(models.Resume{}, err)
				return
			}
			if !yield(resume, nil) {
				return
			}
		}
	}
}

func (m *MemoryResumeRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.resumes)
}

func cloneResume(r models.Resume) models.Resume {
	r.Skills = slices.Clone(r.Skills)
	r.WorkExperience = slices.Clone(r.WorkExperience)
	r.Education = slices.Clone(r.Education)
	r.Certifications = slices.Clone(r.Certifications)
	r.ExtracurricularActivities = slices.Clone(r.ExtracurricularActivities)
	r.Achievements = slices.Clone(r.Achievements)
	r.Projects = slices.Clone(r.Projects)
	r.Languages = slices.Clone(r.Languages)
	return r
}

type MemoryJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]models.JobQuery
}

func NewMemoryJobRepository() *MemoryJobRepository {
	return &MemoryJobRepository{jobs: make(map[string]models.JobQuery)}
}

func (m *MemoryJobRepository) Save(_ context.Context, job *models.JobQuery) error {
	if job == nil || job.ID == "" {
		return errors.New("job query id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	stored := *job
	stored.Matches = slices.Clone(job.Matches)
	m.jobs[job.ID] = stored
	return nil
}

func (m *MemoryJobRepository) FindByID(_ context.Context, id string) (*models.JobQuery, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	job.Matches = slices.Clone(job.Matches)
	return &job, nil
}
