package services

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"

	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/metrics"
	"alfredoptarigan/resume-matcher/internal/models"
)

const (
	// MatchThreshold is the lowest score kept on a shortlist.
	MatchThreshold = 60
	// TopMatchesLimit caps the entries returned to the API caller.
	TopMatchesLimit = 5
	// NotificationLimit caps the entries rendered in the email.
	NotificationLimit = 10
)

type RankingService interface {
	Rank(ctx context.Context, job *models.JobQuery, resumes iter.Seq2[models.Resume, error]) ([]models.MatchResult, error)
}

type rankingService struct {
	pool    *scoringPool
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewRankingService(scorer ScoringEngine, concurrency int, m *metrics.Metrics, log *zap.Logger) RankingService {
	log = log.Named("ranking")
	return &rankingService{
		pool:    newScoringPool(scorer, concurrency, log),
		metrics: m,
		log:     log,
	}
}

// Rank implements RankingService. A store error aborts the run before any
// scoring; individual scoring failures never do.
func (r *rankingService) Rank(ctx context.Context, job *models.JobQuery, resumes iter.Seq2[models.Resume, error]) ([]models.MatchResult, error) {
	var candidates []models.Resume
	for resume, err := range resumes {
		if err != nil {
			return nil, fmt.Errorf("failed to read resumes: %w", err)
		}
		candidates = append(candidates, resume)
	}

	r.log.Info("ranking candidates",
		zap.String("company", job.ID),
		zap.Int("candidates", len(candidates)),
	)

	scored := r.pool.Run(ctx, candidates, job.JobDescription)
	shortlist := BuildShortlist(scored)

	r.metrics.ObserveRanking(len(candidates), len(shortlist))
	r.log.Info("ranking completed",
		zap.String("company", job.ID),
		zap.Int("shortlisted", len(shortlist)),
	)

	return shortlist, nil
}

// BuildShortlist keeps results at or above MatchThreshold, highest score first.
// Ties keep their input order.
func BuildShortlist(results []models.MatchResult) []models.MatchResult {
	out := make([]models.MatchResult, 0, len(results))
	for _, res := range results {
		if res.Score >= MatchThreshold {
			out = append(out, res)
		}
	}

	slices.SortStableFunc(out, func(a, b models.MatchResult) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}

// TopMatches returns at most n leading entries of a shortlist.
func TopMatches(shortlist []models.MatchResult, n int) []models.MatchResult {
	if n < 0 {
		n = 0
	}
	return shortlist[:min(n, len(shortlist))]
}
