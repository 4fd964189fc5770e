package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/resume-matcher/internal/models"
	"alfredoptarigan/resume-matcher/internal/repositories"
	"alfredoptarigan/resume-matcher/internal/services"
)

type ResumeHandler struct {
	search services.SearchService
	log    *zap.Logger
}

func NewResumeHandler(search services.SearchService, log *zap.Logger) *ResumeHandler {
	return &ResumeHandler{
		search: search,
		log:    log.Named("resume_handler"),
	}
}

// HandleSearch handles GET /search_resumes?query=
func (h *ResumeHandler) HandleSearch(c *fiber.Ctx) error {
	resumes, err := h.search.Search(c.UserContext(), c.Query("query"))
	if err != nil {
		if errors.Is(err, services.ErrEmptyQuery) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Query parameter is required",
			})
		}
		h.log.Error("resume search failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search resumes",
		})
	}

	return c.JSON(models.SearchResponse{
		TotalMatches:    len(resumes),
		MatchingResumes: resumes,
	})
}

// HandleGetResume handles GET /get_resume/:email
func (h *ResumeHandler) HandleGetResume(c *fiber.Ctx) error {
	resume, err := h.search.Get(c.UserContext(), pathParam(c, "email"))
	if err != nil {
		if errors.Is(err, repositories.ErrResumeNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Resume not found",
			})
		}
		h.log.Error("failed to load resume", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load resume",
		})
	}

	return c.JSON(resume)
}
