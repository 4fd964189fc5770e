package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wneessen/go-mail"

	"alfredoptarigan/resume-matcher/internal/models"
)

type stubGemini struct {
	fn    func(ctx context.Context, req JSONRequest) (string, error)
	calls atomic.Int32
}

func (s *stubGemini) GenerateJSON(ctx context.Context, req JSONRequest) (string, error) {
	s.calls.Add(1)
	return s.fn(ctx, req)
}

// stubScorer returns fixed scores by candidate email and can sleep per
// candidate to shuffle completion order.
type stubScorer struct {
	scores map[string]int
	delays map[string]time.Duration
	mu     sync.Mutex
	seen   []string
}

func (s *stubScorer) Score(ctx context.Context, resume models.Resume, jobDescription string) models.MatchResult {
	if d := s.delays[resume.Email]; d > 0 {
		time.Sleep(d)
	}
	s.mu.Lock()
	s.seen = append(s.seen, resume.Email)
	s.mu.Unlock()

	score, ok := s.scores[resume.Email]
	if !ok {
		return models.FallbackMatch(resume.Email)
	}
	return models.MatchResult{
		CandidateID:       resume.Email,
		Score:             score,
		MatchedQualifiers: []string{"Go"},
		Explanation:       "stub",
	}
}

func (s *stubScorer) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

type stubNotifier struct {
	err   error
	calls []Shortlist
}

func (s *stubNotifier) Notify(ctx context.Context, shortlist Shortlist) error {
	s.calls = append(s.calls, shortlist)
	return s.err
}

type stubExporter struct {
	err   error
	calls int
}

func (s *stubExporter) Export(ctx context.Context, job *models.JobQuery, matches []models.MatchResult) error {
	s.calls++
	return s.err
}

type stubSender struct {
	err  error
	sent []*mail.Msg
}

func (s *stubSender) DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error {
	s.sent = append(s.sent, messages...)
	return s.err
}

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) ExtractText(filePath string) (string, error) {
	return s.text, s.err
}

type stubParser struct {
	resume *models.Resume
	err    error
	input  string
}

func (s *stubParser) Parse(ctx context.Context, text string) (*models.Resume, error) {
	s.input = text
	if s.err != nil {
		return nil, s.err
	}
	clone := *s.resume
	return &clone, nil
}

type stubStorage struct {
	url   string
	err   error
	calls int
}

func (s *stubStorage) Upload(ctx context.Context, filePath, publicID string) (string, error) {
	s.calls++
	return s.url, s.err
}

func strPtr(s string) *string { return &s }
