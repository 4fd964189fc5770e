package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/metrics"
	"alfredoptarigan/resume-matcher/internal/models"
)

// Fallback reasons, also used as metric labels.
const (
	ReasonTimeout   = "timeout"
	ReasonCanceled  = "canceled"
	ReasonMalformed = "malformed_response"
	ReasonService   = "service_error"
)

// ScoringEngine scores one candidate against one job description. It never
// fails: any problem collapses into models.FallbackMatch.
type ScoringEngine interface {
	Score(ctx context.Context, resume models.Resume, jobDescription string) models.MatchResult
}

type scoringEngine struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
	timeout       time.Duration
	metrics       *metrics.Metrics
	log           *zap.Logger
}

func NewScoringEngine(gemini GeminiService, timeout time.Duration, m *metrics.Metrics, log *zap.Logger) ScoringEngine {
	return &scoringEngine{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		timeout:       timeout,
		metrics:       m,
		log:           log.Named("scorer"),
	}
}

type scoreResponse struct {
	Score          *float64  `json:"score"`
	MatchingSkills *[]string `json:"matching_skills"`
	Explanation    *string   `json:"explanation"`
}

// Score implements ScoringEngine.
func (s *scoringEngine) Score(ctx context.Context, resume models.Resume, jobDescription string) models.MatchResult {
	start := time.Now()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	result, err := s.score(ctx, resume, jobDescription)
	reason := ""
	if err != nil {
		reason = fallbackReason(err)
		s.log.Warn("scoring fell back",
			zap.String("candidate", resume.Email),
			zap.String("reason", reason),
			zap.Error(err),
		)
		result = models.FallbackMatch(resume.Email)
	}
	s.metrics.ObserveScoring(time.Since(start), reason)

	result.CandidateID = resume.Email
	result.CandidateName = resume.DisplayName()
	result.ResumeURL = resume.ResumeURL
	return result
}

func (s *scoringEngine) score(ctx context.Context, resume models.Resume, jobDescription string) (models.MatchResult, error) {
	prompt := s.promptBuilder.BuildMatchPrompt(resume.Skills, resume.WorkExperienceText(), jobDescription)

	raw, err := s.gemini.GenerateJSON(ctx, JSONRequest{
		SystemInstruction: matchScorerInstruction,
		Prompt:            prompt,
		Schema:            matchResponseSchema(),
	})
	if err != nil {
		return models.MatchResult{}, err
	}

	return parseScoreResponse(raw)
}

// parseScoreResponse validates raw model output into a MatchResult. All three
// fields are required; the score is rounded and clamped into range.
func parseScoreResponse(raw string) (models.MatchResult, error) {
	var resp scoreResponse
	if err := decodeStrict(raw, &resp); err != nil {
		return models.MatchResult{}, err
	}

	switch {
	case resp.Score == nil:
		return models.MatchResult{}, fmt.Errorf("%w: missing score", ErrMalformedResponse)
	case resp.MatchingSkills == nil:
		return models.MatchResult{}, fmt.Errorf("%w: missing matching_skills", ErrMalformedResponse)
	case resp.Explanation == nil:
		return models.MatchResult{}, fmt.Errorf("%w: missing explanation", ErrMalformedResponse)
	}

	score := *resp.Score
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return models.MatchResult{}, fmt.Errorf("%w: score is not a number", ErrMalformedResponse)
	}
	score = math.Max(models.MinScore, math.Min(models.MaxScore, math.Round(score)))

	return models.MatchResult{
		Score:             models.ClampScore(int(score)),
		MatchedQualifiers: cleanSkills(*resp.MatchingSkills),
		Explanation:       strings.TrimSpace(*resp.Explanation),
	}, nil
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	case errors.Is(err, ErrMalformedResponse):
		return ReasonMalformed
	default:
		return ReasonService
	}
}
