package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/metrics"
	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
)

// Intake stages reported in IntakeError.
const (
	StageExtract   = "extract"
	StageParse     = "parse"
	StageValidate  = "validate"
	StageStoreFile = "store_file"
	StagePersist   = "persist"
)

var ErrInvalidResumeEmail = errors.New("resume does not contain a valid email address")

// IntakeError tells the caller which upload step failed.
type IntakeError struct {
	Stage string
	Err   error
}

func (e *IntakeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *IntakeError) Unwrap() error {
	return e.Err
}

// IsClientError reports whether the failure was caused by the uploaded content.
func (e *IntakeError) IsClientError() bool {
	return e.Stage == StageValidate
}

type IntakeRequest struct {
	FilePath  string
	FileName  string
	UserID    string
	UserEmail string
}

type IntakeService interface {
	Ingest(ctx context.Context, req IntakeRequest) (*models.Resume, error)
}

type intakeService struct {
	extractor TextExtractor
	parser    ResumeParser
	storage   ObjectStorage
	resumes   repositories.ResumeRepository
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

func NewIntakeService(
	extractor TextExtractor,
	parser ResumeParser,
	storage ObjectStorage,
	resumes repositories.ResumeRepository,
	m *metrics.Metrics,
	log *zap.Logger,
) IntakeService {
	return &intakeService{
		extractor: extractor,
		parser:    parser,
		storage:   storage,
		resumes:   resumes,
		metrics:   m,
		log:       log.Named("intake"),
		now:       time.Now,
	}
}

// Ingest implements IntakeService. Nothing is written unless every step succeeds.
func (s *intakeService) Ingest(ctx context.Context, req IntakeRequest) (*models.Resume, error) {
	resume, err := s.ingest(ctx, req)
	if err != nil {
		s.metrics.IncUpload(metrics.OutcomeFailed)
		s.log.Warn("resume intake failed",
			zap.String("file", req.FileName),
			zap.String("user_id", req.UserID),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.IncUpload(metrics.OutcomeOK)
	s.log.Info("resume stored",
		zap.String("email", resume.Email),
		zap.String("user_id", resume.UserID),
		zap.Int("skills", len(resume.Skills)),
	)
	return resume, nil
}

func (s *intakeService) ingest(ctx context.Context, req IntakeRequest) (*models.Resume, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, &IntakeError{Stage: StageValidate, Err: errors.New("user id is required")}
	}

	text, err := s.extractor.ExtractText(req.FilePath)
	if err != nil {
		return nil, &IntakeError{Stage: StageExtract, Err: err}
	}

	resume, err := s.parser.Parse(ctx, CleanText(text))
	if err != nil {
		return nil, &IntakeError{Stage: StageParse, Err: err}
	}

	var email string
	if resume.PersonalInfo.Email != nil {
		email = models.NormalizeEmail(*resume.PersonalInfo.Email)
	}
	if !models.IsValidEmail(email) {
		return nil, &IntakeError{Stage: StageValidate, Err: ErrInvalidResumeEmail}
	}

	url, err := s.storage.Upload(ctx, req.FilePath, "resume_"+uuid.New().String())
	if err != nil {
		return nil, &IntakeError{Stage: StageStoreFile, Err: err}
	}

	resume.Email = email
	resume.PersonalInfo.Email = &email
	resume.UserID = strings.TrimSpace(req.UserID)
	resume.UserEmail = strings.TrimSpace(req.UserEmail)
	resume.ResumeURL = url
	resume.UploadedAt = s.now().UTC()

	if err := s.resumes.Upsert(ctx, resume); err != nil {
		return nil, &IntakeError{Stage: StagePersist, Err: err}
	}

	return resume, nil
}
