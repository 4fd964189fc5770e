package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TempStorage holds uploads on local disk for the duration of one request.
type TempStorage interface {
	SaveTemp(file *multipart.FileHeader) (path string, cleanup func(), err error)
	EnsureDir() error
}

type tempStorage struct {
	tempPath string
	log      *zap.Logger
}

func NewTempStorage(tempPath string, log *zap.Logger) TempStorage {
	return &tempStorage{
		tempPath: tempPath,
		log:      log.Named("temp_storage"),
	}
}

func (s *tempStorage) EnsureDir() error {
	if err := os.MkdirAll(s.tempPath, 0755); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	return nil
}

// SaveTemp implements TempStorage. cleanup is safe to call more than once.
func (s *tempStorage) SaveTemp(file *multipart.FileHeader) (string, func(), error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	filePath := filepath.Join(s.tempPath, uuid.New().String()+ext)

	src, err := file.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	if err := copyToFile(filePath, src); err != nil {
		_ = os.Remove(filePath)
		return "", nil, err
	}

	cleanup := func() {
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			s.log.Warn("failed to remove temp file", zap.String("path", filePath), zap.Error(err))
		}
	}
	return filePath, cleanup, nil
}

// ObjectStorage keeps the original document and returns a durable URL for it.
type ObjectStorage interface {
	Upload(ctx context.Context, filePath, publicID string) (string, error)
}

type localStorage struct {
	uploadPath    string
	publicBaseURL string
}

// NewLocalStorage stores documents under uploadPath; they are served from
// publicBaseURL + "/files/".
func NewLocalStorage(uploadPath, publicBaseURL string) (ObjectStorage, error) {
	if err := os.MkdirAll(uploadPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &localStorage{
		uploadPath:    uploadPath,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

// Upload implements ObjectStorage.
func (s *localStorage) Upload(ctx context.Context, filePath, publicID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	filename := publicID + strings.ToLower(filepath.Ext(filePath))

	src, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	if err := copyToFile(filepath.Join(s.uploadPath, filename), src); err != nil {
		return "", err
	}

	return s.publicBaseURL + "/files/" + url.PathEscape(filename), nil
}

func copyToFile(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}
