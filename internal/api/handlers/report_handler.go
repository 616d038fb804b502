package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pvlab/backend/internal/archive"
	"github.com/pvlab/backend/internal/llm"
	"github.com/pvlab/backend/internal/models"
	"github.com/pvlab/backend/internal/quality"
	"github.com/pvlab/backend/internal/report"
	"github.com/pvlab/backend/internal/template"
	"github.com/pvlab/backend/pkg/logger"
)

// TextEnhancer is the slice of the model client the enhance endpoint needs.
type TextEnhancer interface {
	EnhanceText(ctx context.Context, text, tone string) llm.Result
}

type ReportHandler struct {
	generator *report.Generator
	templates *template.Registry
	archive   *archive.Store
	quality   *quality.Checker
	enhancer  TextEnhancer
}

func NewReportHandler(generator *report.Generator, templates *template.Registry, archiveStore *archive.Store, checker *quality.Checker, enhancer TextEnhancer) *ReportHandler {
	return &ReportHandler{
		generator: generator,
		templates: templates,
		archive:   archiveStore,
		quality:   checker,
		enhancer:  enhancer,
	}
}

func (h *ReportHandler) GenerateReport(c *fiber.Ctx) error {
	var req models.ReportRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse report request", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resp := h.generator.Generate(c.Context(), &req)
	if !resp.Success && len(resp.Files) == 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	}
	return c.JSON(resp)
}

func (h *ReportHandler) ListTemplates(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"templates": h.templates.List(),
	})
}

func (h *ReportHandler) ValidateTemplate(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := template.Validate(req.Content); err != nil {
		return c.JSON(fiber.Map{
			"valid":  false,
			"errors": []string{err.Error()},
		})
	}
	return c.JSON(fiber.Map{
		"valid":  true,
		"errors": []string{},
	})
}

// QualityCheck runs the quality pass over caller-supplied report content,
// outside of report generation.
func (h *ReportHandler) QualityCheck(c *fiber.Ctx) error {
	var req struct {
		Content     string              `json:"content"`
		TestResults []models.TestResult `json:"test_results,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "content is required",
		})
	}

	return c.JSON(h.quality.Check(c.Context(), req.Content, req.TestResults))
}

// ValidateData sanity-checks a single test result without generating a
// report: impossible values, absent critical fields, unit-less measurements.
func (h *ReportHandler) ValidateData(c *fiber.Ctx) error {
	var test models.TestResult
	if err := c.BodyParser(&test); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	validation := quality.ValidateRecord(test)
	if units := quality.CheckUnitsConsistency(test.Measurements); !units.IsValid {
		validation.IsValid = false
		validation.Issues = append(validation.Issues, units.Issues...)
	}
	return c.JSON(validation)
}

// EnhanceText rewrites report prose in the requested tone. The caller's text
// comes back unchanged when the model is unavailable.
func (h *ReportHandler) EnhanceText(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
		Tone string `json:"tone,omitempty"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "text is required",
		})
	}

	result := h.enhancer.EnhanceText(c.Context(), req.Text, req.Tone)
	if !result.Success {
		logger.Warn("Text enhancement unavailable", zap.String("error", result.Error))
		return c.JSON(fiber.Map{
			"enhanced":      false,
			"enhanced_text": req.Text,
		})
	}
	return c.JSON(fiber.Map{
		"enhanced":      true,
		"enhanced_text": result.Content,
	})
}

func (h *ReportHandler) GetVersions(c *fiber.Ctx) error {
	reportID := c.Params("id")

	versions, err := h.archive.GetVersions(c.Context(), reportID)
	if err != nil {
		logger.Error("Failed to load report versions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load versions",
		})
	}

	return c.JSON(fiber.Map{
		"report_id": reportID,
		"versions":  versions,
	})
}

func (h *ReportHandler) GetVersionSummary(c *fiber.Ctx) error {
	reportID := c.Params("id")

	summary, err := h.archive.GetSummary(c.Context(), reportID)
	if err != nil {
		logger.Error("Failed to load report summary", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load summary",
		})
	}
	return c.JSON(summary)
}

func (h *ReportHandler) CompareVersions(c *fiber.Ctx) error {
	reportID := c.Params("id")
	v1 := c.Query("v1")
	v2 := c.Query("v2")

	if v1 == "" || v2 == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "v1 and v2 query parameters are required",
		})
	}

	comparison, err := h.archive.Compare(c.Context(), reportID, v1, v2)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(comparison)
}

func (h *ReportHandler) DeleteVersion(c *fiber.Ctx) error {
	reportID := c.Params("id")
	version := c.Params("version")

	deleted, err := h.archive.DeleteVersion(c.Context(), reportID, version)
	if err != nil {
		logger.Error("Failed to delete version", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete version",
		})
	}
	if !deleted {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Version not found",
		})
	}

	return c.JSON(fiber.Map{
		"deleted":   true,
		"report_id": reportID,
		"version":   version,
	})
}
