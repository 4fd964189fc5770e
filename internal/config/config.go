package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix     = "MATCHER_"
	configFileEnv = "MATCHER_CONFIG"
)

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Gemini     GeminiConfig     `koanf:"gemini"`
	Storage    StorageConfig    `koanf:"storage"`
	Cloudinary CloudinaryConfig `koanf:"cloudinary"`
	SMTP       SMTPConfig       `koanf:"smtp"`
	Sheets     SheetsConfig     `koanf:"sheets"`
	Ranking    RankingConfig    `koanf:"ranking"`
	Log        LogConfig        `koanf:"log"`
}

type ServerConfig struct {
	Port         string        `koanf:"port"`
	Env          string        `koanf:"env"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

type DatabaseConfig struct {
	// Driver selects the record store: "postgres" or "memory".
	Driver   string `koanf:"driver"`
	Host     string `koanf:"host"`
	Port     string `koanf:"port"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Name     string `koanf:"name"`
	SSLMode  string `koanf:"sslmode"`
}

type GeminiConfig struct {
	APIKey          string  `koanf:"api_key"`
	Model           string  `koanf:"model"`
	Temperature     float32 `koanf:"temperature"`
	MaxOutputTokens int32   `koanf:"max_output_tokens"`
}

type StorageConfig struct {
	// Provider selects where original files go: "cloudinary" or "local".
	Provider      string `koanf:"provider"`
	UploadPath    string `koanf:"upload_path"`
	TempPath      string `koanf:"temp_path"`
	MaxFileSize   int64  `koanf:"max_file_size"`
	PublicBaseURL string `koanf:"public_base_url"`
}

type CloudinaryConfig struct {
	CloudName string `koanf:"cloud_name"`
	APIKey    string `koanf:"api_key"`
	APISecret string `koanf:"api_secret"`
	Folder    string `koanf:"folder"`
}

type SMTPConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from"`
}

type SheetsConfig struct {
	CredentialsPath string `koanf:"credentials_path"`
	SpreadsheetID   string `koanf:"spreadsheet_id"`
	Range           string `koanf:"range"`
}

type RankingConfig struct {
	// Concurrency bounds outstanding scoring calls per ranking run.
	Concurrency  int           `koanf:"concurrency"`
	ScoreTimeout time.Duration `koanf:"score_timeout"`
}

type LogConfig struct {
	Level string `koanf:"level"`
	JSON  bool   `koanf:"json"`
}

// Default returns the compiled-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "5000",
			Env:          "development",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute,
		},
		Database: DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			Name:     "resume_matcher",
			SSLMode:  "disable",
		},
		Gemini: GeminiConfig{
			Model:           "gemini-2.5-flash",
			Temperature:     0,
			MaxOutputTokens: 2048,
		},
		Storage: StorageConfig{
			Provider:      "local",
			UploadPath:    "./uploads",
			TempPath:      "./temp",
			MaxFileSize:   10485760,
			PublicBaseURL: "http://localhost:5000",
		},
		Cloudinary: CloudinaryConfig{
			Folder: "resumes",
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
		Sheets: SheetsConfig{
			Range: "Shortlist!A1",
		},
		Ranking: RankingConfig{
			Concurrency:  4,
			ScoreTimeout: 45 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds a Config by layering defaults, an optional YAML file and env vars.
// Order of precedence (low -> high):
//  1. defaults
//  2. file (YAML) if MATCHER_CONFIG is set
//  3. env (prefix MATCHER_), e.g. MATCHER_DATABASE_HOST -> database.host
func Load() (*Config, error) {
	// A missing .env is fine; the process environment still applies.
	_ = godotenv.Load()

	k := koanf.New(".")

	if path := os.Getenv(configFileEnv); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(envPrefix, ".", envKey)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load env config: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envKey maps MATCHER_SECTION_SOME_KEY to section.some_key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	if s == "config" {
		return ""
	}
	return strings.Replace(s, "_", ".", 1)
}

func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, errors.New("server.port must not be empty"))
	}

	switch c.Database.Driver {
	case "postgres", "memory":
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}

	switch c.Storage.Provider {
	case "cloudinary", "local":
	default:
		errs = append(errs, fmt.Errorf("unknown storage.provider %q", c.Storage.Provider))
	}

	if c.Storage.MaxFileSize <= 0 {
		errs = append(errs, errors.New("storage.max_file_size must be positive"))
	}
	if c.Ranking.Concurrency < 1 {
		errs = append(errs, errors.New("ranking.concurrency must be at least 1"))
	}
	if c.Ranking.ScoreTimeout <= 0 {
		errs = append(errs, errors.New("ranking.score_timeout must be positive"))
	}

	return errors.Join(errs...)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}
