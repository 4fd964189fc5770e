package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
)

var ErrEmptyQuery = errors.New("query must not be empty")

type SearchService interface {
	Search(ctx context.Context, query string) ([]models.Resume, error)
	Get(ctx context.Context, email string) (*models.Resume, error)
}

type searchService struct {
	resumes repositories.ResumeRepository
}

func NewSearchService(resumes repositories.ResumeRepository) SearchService {
	return &searchService{resumes: resumes}
}

// Search implements SearchService: a case-insensitive substring match over
// each record's JSON form, in store order.
func (s *searchService) Search(ctx context.Context, query string) ([]models.Resume, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil, ErrEmptyQuery
	}

	matches := []models.Resume{}
	var buf bytes.Buffer
	for resume, err := range s.resumes.StreamAll(ctx) {
		if err != nil {
			return nil, fmt.Errorf("failed to read resumes: %w", err)
		}

		buf.Reset()
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(resume); err != nil {
			return nil, fmt.Errorf("failed to encode resume: %w", err)
		}

		if strings.Contains(strings.ToLower(buf.String()), needle) {
			matches = append(matches, resume)
		}
	}

	return matches, nil
}

// Get implements SearchService.
func (s *searchService) Get(ctx context.Context, email string) (*models.Resume, error) {
	return s.resumes.FindByEmail(ctx, email)
}
