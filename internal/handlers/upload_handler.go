package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/services"
)

type UploadHandler struct {
	intake      services.IntakeService
	tempStorage services.TempStorage
	maxFileSize int64
	log         *zap.Logger
}

func NewUploadHandler(
	intake services.IntakeService,
	tempStorage services.TempStorage,
	maxFileSize int64,
	log *zap.Logger,
) *UploadHandler {
	return &UploadHandler{
		intake:      intake,
		tempStorage: tempStorage,
		maxFileSize: maxFileSize,
		log:         log.Named("upload_handler"),
	}
}

// HandleUpload handles POST /upload
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file provided",
		})
	}

	userID := strings.TrimSpace(c.FormValue("userId"))
	if file.Filename == "" || userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file selected or user not authenticated",
		})
	}

	if !services.IsSupportedExtension(file.Filename) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Unsupported file type. Allowed: %s", strings.Join(services.SupportedExtensions, ", ")),
		})
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	tempPath, cleanup, err := h.tempStorage.SaveTemp(file)
	if err != nil {
		h.log.Error("failed to save upload", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save uploaded file",
		})
	}
	defer cleanup()

	resume, err := h.intake.Ingest(c.UserContext(), services.IntakeRequest{
		FilePath:  tempPath,
		FileName:  file.Filename,
		UserID:    userID,
		UserEmail: c.FormValue("userEmail"),
	})
	if err != nil {
		status, msg := intakeFailure(err)
		return c.Status(status).JSON(fiber.Map{
			"error": msg,
		})
	}

	return c.JSON(models.UploadResponse{
		Message:    "Resume uploaded successfully",
		DocumentID: resume.Email,
		PDFURL:     resume.ResumeURL,
	})
}

func intakeFailure(err error) (int, string) {
	var intakeErr *services.IntakeError
	if !errors.As(err, &intakeErr) {
		return fiber.StatusInternalServerError, "Failed to process resume"
	}

	switch intakeErr.Stage {
	case services.StageValidate:
		return fiber.StatusUnprocessableEntity, intakeErr.Err.Error()
	case services.StageExtract:
		return fiber.StatusInternalServerError, "Failed to extract text from resume"
	case services.StageParse:
		return fiber.StatusInternalServerError, "Failed to parse resume"
	case services.StageStoreFile:
		return fiber.StatusInternalServerError, "Failed to upload resume file"
	default:
		return fiber.StatusInternalServerError, "Failed to store resume"
	}
}
