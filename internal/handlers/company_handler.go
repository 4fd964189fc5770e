package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
	"alfredoptarigan/resume-matcher/internal/services"
)

type CompanyHandler struct {
	matching services.MatchingService
	validate *validator.Validate
	log      *zap.Logger
}

func NewCompanyHandler(matching services.MatchingService, log *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		matching: matching,
		validate: newValidator(),
		log:      log.Named("company_handler"),
	}
}

// HandleCompany handles POST /company
func (h *CompanyHandler) HandleCompany(c *fiber.Ctx) error {
	var req models.CompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request payload",
		})
	}

	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.JobDescription = strings.TrimSpace(req.JobDescription)
	req.HiringType = strings.TrimSpace(req.HiringType)
	req.WorkMode = strings.TrimSpace(req.WorkMode)
	req.JobRole = strings.TrimSpace(req.JobRole)
	req.CompanyEmail = strings.TrimSpace(req.CompanyEmail)

	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": validationMessage(err),
		})
	}

	outcome, err := h.matching.MatchCompany(c.UserContext(), req)
	if err != nil {
		h.log.Error("company matching failed", zap.String("company", req.CompanyName), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to match candidates",
		})
	}

	return c.JSON(models.CompanyResponse{
		Message:      "Job details submitted successfully",
		TotalMatches: len(outcome.Matches),
		TopMatches:   outcome.TopMatches,
		EmailSent:    outcome.EmailSent,
	})
}

// HandleGetCompany handles GET /company/:name
func (h *CompanyHandler) HandleGetCompany(c *fiber.Ctx) error {
	job, err := h.matching.FindJob(c.UserContext(), pathParam(c, "name"))
	if err != nil {
		if errors.Is(err, repositories.ErrJobNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Company not found",
			})
		}
		h.log.Error("failed to load company snapshot", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load company",
		})
	}

	return c.JSON(job)
}
