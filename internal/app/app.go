// Package app builds the service graph shared by the API server and matchctl.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/config"
	"alfredoptarigan/resume-matcher/internal/metrics"
	"alfredoptarigan/resume-matcher/internal/repositories"
	"alfredoptarigan/resume-matcher/internal/services"
)

type Deps struct {
	Config  *config.Config
	Log     *zap.Logger
	Metrics *metrics.Metrics

	Resumes repositories.ResumeRepository
	Jobs    repositories.JobRepository

	TempStorage services.TempStorage
	Intake      services.IntakeService
	Ranking     services.RankingService
	Matching    services.MatchingService
	Search      services.SearchService

	closers []func() error
}

// Build wires every component from cfg. Optional integrations (SMTP, Sheets)
// degrade to disabled with a warning; required ones fail the build.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Deps, error) {
	d := &Deps{
		Config:  cfg,
		Log:     log,
		Metrics: metrics.New(),
	}

	if err := d.buildRepositories(cfg, log); err != nil {
		return nil, err
	}

	gemini, err := services.NewGeminiService(ctx, services.GeminiSettings{
		APIKey:          cfg.Gemini.APIKey,
		Model:           cfg.Gemini.Model,
		Temperature:     cfg.Gemini.Temperature,
		MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
	}, log)
	if err != nil {
		d.Close()
		return nil, fmt.Errorf("failed to initialize gemini: %w", err)
	}
	log.Info("gemini initialized", zap.String("model", cfg.Gemini.Model))

	objectStorage, err := buildObjectStorage(cfg)
	if err != nil {
		d.Close()
		return nil, err
	}
	log.Info("object storage initialized", zap.String("provider", cfg.Storage.Provider))

	d.TempStorage = services.NewTempStorage(cfg.Storage.TempPath, log)
	if err := d.TempStorage.EnsureDir(); err != nil {
		d.Close()
		return nil, err
	}

	scorer := services.NewScoringEngine(gemini, cfg.Ranking.ScoreTimeout, d.Metrics, log)
	d.Ranking = services.NewRankingService(scorer, cfg.Ranking.Concurrency, d.Metrics, log)

	d.Intake = services.NewIntakeService(
		services.NewTextExtractor(),
		services.NewResumeParser(gemini, log),
		objectStorage,
		d.Resumes,
		d.Metrics,
		log,
	)

	d.Matching = services.NewMatchingService(
		d.Resumes,
		d.Jobs,
		d.Ranking,
		buildNotifier(cfg, log),
		buildExporter(ctx, cfg, log),
		d.Metrics,
		log,
	)

	d.Search = services.NewSearchService(d.Resumes)

	return d, nil
}

// Close releases the database connection, if any.
func (d *Deps) Close() error {
	var errs []error
	for _, c := range d.closers {
		errs = append(errs, c())
	}
	d.closers = nil
	return errors.Join(errs...)
}

func (d *Deps) buildRepositories(cfg *config.Config, log *zap.Logger) error {
	if cfg.Database.Driver == "memory" {
		log.Warn("using in-memory record store; data is lost on exit")
		d.Resumes = repositories.NewMemoryResumeRepository()
		d.Jobs = repositories.NewMemoryJobRepository()
		return nil
	}

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access database handle: %w", err)
	}
	d.closers = append(d.closers, sqlDB.Close)

	d.Resumes = repositories.NewResumeRepository(db)
	d.Jobs = repositories.NewJobRepository(db)
	return nil
}

func buildObjectStorage(cfg *config.Config) (services.ObjectStorage, error) {
	switch cfg.Storage.Provider {
	case "cloudinary":
		c := cfg.Cloudinary
		storage, err := services.NewCloudinaryStorage(c.CloudName, c.APIKey, c.APISecret, c.Folder)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
		}
		return storage, nil
	default:
		storage, err := services.NewLocalStorage(cfg.Storage.UploadPath, cfg.Storage.PublicBaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local storage: %w", err)
		}
		return storage, nil
	}
}

func buildNotifier(cfg *config.Config, log *zap.Logger) services.Notifier {
	if !cfg.SMTP.Enabled {
		log.Warn("smtp disabled; shortlist emails will not be sent")
		return services.NewDisabledNotifier()
	}

	notifier, err := services.NewEmailNotifier(services.SMTPSettings{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	}, log)
	if err != nil {
		log.Warn("failed to initialize smtp notifier", zap.Error(err))
		return services.NewDisabledNotifier()
	}

	log.Info("smtp notifier initialized", zap.String("host", cfg.SMTP.Host))
	return notifier
}

func buildExporter(ctx context.Context, cfg *config.Config, log *zap.Logger) services.ShortlistExporter {
	if cfg.Sheets.SpreadsheetID == "" {
		return nil
	}

	exporter, err := services.NewSheetsExporter(ctx, services.SheetsSettings{
		CredentialsPath: cfg.Sheets.CredentialsPath,
		SpreadsheetID:   cfg.Sheets.SpreadsheetID,
		Range:           cfg.Sheets.Range,
	})
	if err != nil {
		log.Warn("failed to initialize sheets exporter", zap.Error(err))
		return nil
	}

	log.Info("sheets exporter initialized", zap.String("spreadsheet", cfg.Sheets.SpreadsheetID))
	return exporter
}
