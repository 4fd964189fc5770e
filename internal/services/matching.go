package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/metrics"
	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
)

// MatchOutcome is the result of one company request.
type MatchOutcome struct {
	Job        *models.JobQuery
	Matches    []models.MatchResult
	TopMatches []models.MatchResult
	EmailSent  bool
}

type MatchingService interface {
	MatchCompany(ctx context.Context, req models.CompanyRequest) (*MatchOutcome, error)
	FindJob(ctx context.Context, companyName string) (*models.JobQuery, error)
}

type matchingService struct {
	resumes  repositories.ResumeRepository
	jobs     repositories.JobRepository
	ranking  RankingService
	notifier Notifier
	exporter ShortlistExporter
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

// NewMatchingService wires the company flow. exporter may be nil.
func NewMatchingService(
	resumes repositories.ResumeRepository,
	jobs repositories.JobRepository,
	ranking RankingService,
	notifier Notifier,
	exporter ShortlistExporter,
	m *metrics.Metrics,
	log *zap.Logger,
) MatchingService {
	return &matchingService{
		resumes:  resumes,
		jobs:     jobs,
		ranking:  ranking,
		notifier: notifier,
		exporter: exporter,
		metrics:  m,
		log:      log.Named("matching"),
		now:      time.Now,
	}
}

// NewJobQuery builds the snapshot for a validated request.
func NewJobQuery(req models.CompanyRequest, now time.Time) *models.JobQuery {
	return &models.JobQuery{
		ID:             models.CompanyKey(req.CompanyName),
		CompanyName:    strings.TrimSpace(req.CompanyName),
		CompanyEmail:   models.NormalizeEmail(req.CompanyEmail),
		HiringType:     strings.TrimSpace(req.HiringType),
		WorkMode:       strings.TrimSpace(req.WorkMode),
		JobRole:        strings.TrimSpace(req.JobRole),
		JobDescription: req.JobDescription,
		CreatedAt:      now.UTC(),
	}
}

// MatchCompany implements MatchingService. Ranking and persistence errors are
// returned; export and notification failures are only logged.
func (s *matchingService) MatchCompany(ctx context.Context, req models.CompanyRequest) (*MatchOutcome, error) {
	job := NewJobQuery(req, s.now())

	matches, err := s.ranking.Rank(ctx, job, s.resumes.StreamAll(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to rank candidates: %w", err)
	}

	if err := job.SetMatches(matches); err != nil {
		return nil, err
	}
	if err := s.jobs.Save(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job query: %w", err)
	}

	if s.exporter != nil && len(matches) > 0 {
		if err := s.exporter.Export(ctx, job, matches); err != nil {
			s.log.Warn("shortlist export failed", zap.String("company", job.ID), zap.Error(err))
		}
	}

	outcome := &MatchOutcome{
		Job:        job,
		Matches:    matches,
		TopMatches: TopMatches(matches, TopMatchesLimit),
		EmailSent:  s.notify(ctx, job, matches),
	}
	return outcome, nil
}

func (s *matchingService) notify(ctx context.Context, job *models.JobQuery, matches []models.MatchResult) bool {
	if len(matches) == 0 {
		s.metrics.IncNotification(metrics.OutcomeSkipped)
		return false
	}

	err := s.notifier.Notify(ctx, Shortlist{
		Recipient:   job.CompanyEmail,
		CompanyName: job.CompanyName,
		JobRole:     job.JobRole,
		Matches:     matches,
	})
	switch {
	case err == nil:
		s.metrics.IncNotification(metrics.OutcomeOK)
		return true
	case errors.Is(err, ErrNotifierDisabled):
		s.metrics.IncNotification(metrics.OutcomeSkipped)
		s.log.Info("email notifications disabled", zap.String("company", job.ID))
	default:
		s.metrics.IncNotification(metrics.OutcomeFailed)
		s.log.Error("failed to send shortlist email", zap.String("company", job.ID), zap.Error(err))
	}
	return false
}

// FindJob implements MatchingService.
func (s *matchingService) FindJob(ctx context.Context, companyName string) (*models.JobQuery, error) {
	return s.jobs.FindByID(ctx, models.CompanyKey(companyName))
}
