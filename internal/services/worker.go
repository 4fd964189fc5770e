package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
)

type scoreJob struct {
	index  int
	resume models.Resume
}

// scoringPool fans scoring calls out to a fixed number of workers. Results
// land in the slot of their input, so completion order never leaks out.
type scoringPool struct {
	scorer      ScoringEngine
	concurrency int
	log         *zap.Logger
}

func newScoringPool(scorer ScoringEngine, concurrency int, log *zap.Logger) *scoringPool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &scoringPool{
		scorer:      scorer,
		concurrency: concurrency,
		log:         log,
	}
}

func (p *scoringPool) Run(ctx context.Context, resumes []models.Resume, jobDescription string) []models.MatchResult {
	results := make([]models.MatchResult, len(resumes))
	if len(resumes) == 0 {
		return results
	}

	workers := min(p.concurrency, len(resumes))
	jobQueue := make(chan scoreJob)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range jobQueue {
				p.log.Debug("scoring candidate",
					zap.Int("worker", workerID),
					zap.String("candidate", job.resume.Email),
				)
				results[job.index] = p.scorer.Score(ctx, job.resume, jobDescription)
			}
		}(i + 1)
	}

	for i, resume := range resumes {
		jobQueue <- scoreJob{index: i, resume: resume}
	}
	close(jobQueue)
	wg.Wait()

	return results
}
