package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"alfredoptarigan/resume-matcher/internal/models"
)

// ShortlistExporter mirrors a finished shortlist somewhere recruiters can see it.
type ShortlistExporter interface {
	Export(ctx context.Context, job *models.JobQuery, matches []models.MatchResult) error
}

type SheetsSettings struct {
	CredentialsPath string
	SpreadsheetID   string
	Range           string
}

type sheetsExporter struct {
	service       *sheets.Service
	spreadsheetID string
	writeRange    string
	now           func() time.Time
}

// NewSheetsExporter appends one row per shortlisted candidate. Extra client
// options are appended after the credentials option.
func NewSheetsExporter(ctx context.Context, settings SheetsSettings, extra ...option.ClientOption) (ShortlistExporter, error) {
	if settings.SpreadsheetID == "" {
		return nil, errors.New("sheets: spreadsheet id is required")
	}

	var opts []option.ClientOption
	if settings.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(settings.CredentialsPath))
	}
	opts = append(opts, extra...)
	if len(opts) == 0 {
		return nil, errors.New("sheets: credentials path is required")
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: failed to create service: %w", err)
	}

	writeRange := settings.Range
	if writeRange == "" {
		writeRange = "Shortlist!A1"
	}

	return &sheetsExporter{
		service:       service,
		spreadsheetID: settings.SpreadsheetID,
		writeRange:    writeRange,
		now:           time.Now,
	}, nil
}

// Export implements ShortlistExporter.
func (s *sheetsExporter) Export(ctx context.Context, job *models.JobQuery, matches []models.MatchResult) error {
	if len(matches) == 0 {
		return nil
	}

	exportedAt := s.now().UTC().Format(time.RFC3339)
	values := make([][]interface{}, 0, len(matches))
	for i, m := range matches {
		values = append(values, []interface{}{
			exportedAt,
			job.CompanyName,
			job.JobRole,
			i + 1,
			m.CandidateID,
			m.CandidateName,
			m.Score,
			strings.Join(m.MatchedQualifiers, ", "),
			m.ResumeURL,
		})
	}

	_, err := s.service.Spreadsheets.Values.Append(s.spreadsheetID, s.writeRange, &sheets.ValueRange{
		Values: values,
	}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: failed to append shortlist: %w", err)
	}
	return nil
}
