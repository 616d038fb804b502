package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/pvlab/backend/internal/assistant"
	"github.com/pvlab/backend/internal/metrics"
	"github.com/pvlab/backend/pkg/logger"
)

type AssistantHandler struct {
	engine *assistant.Engine
}

func NewAssistantHandler(engine *assistant.Engine) *AssistantHandler {
	return &AssistantHandler{engine: engine}
}

func (h *AssistantHandler) HandleChat(c *fiber.Ctx) error {
	var req struct {
		Message        string `json:"message"`
		SessionID      string `json:"session_id"`
		UserID         string `json:"user_id"`
		IncludeContext *bool  `json:"include_context"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	includeContext := true
	if req.IncludeContext != nil {
		includeContext = *req.IncludeContext
	}

	start := time.Now()
	resp := h.engine.Chat(c.Context(), req.Message, req.SessionID, req.UserID, includeContext)
	metrics.ChatDuration.WithLabelValues("chat").Observe(time.Since(start).Seconds())

	if !resp.Success {
		metrics.ChatTotal.WithLabelValues("chat", "error").Inc()
		return c.Status(fiber.StatusBadGateway).JSON(resp)
	}

	metrics.ChatTotal.WithLabelValues("chat", "ok").Inc()
	metrics.RecordTokens(resp.Usage.InputTokens, resp.Usage.OutputTokens)
	metrics.ActiveSessions.Set(float64(h.engine.Sessions().Len()))

	return c.JSON(resp)
}

func (h *AssistantHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req struct {
		Data         map[string]any `json:"data"`
		TestType     string         `json:"test_type"`
		AnalysisType string         `json:"analysis_type"`
		SessionID    string         `json:"session_id"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if len(req.Data) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Data is required",
		})
	}

	start := time.Now()
	result := h.engine.AnalyzeData(c.Context(), req.Data, req.TestType, req.AnalysisType, req.SessionID)
	metrics.ChatDuration.WithLabelValues("analyze").Observe(time.Since(start).Seconds())

	if !result.Success {
		metrics.ChatTotal.WithLabelValues("analyze", "error").Inc()
		return c.Status(fiber.StatusBadGateway).JSON(result)
	}

	metrics.ChatTotal.WithLabelValues("analyze", "ok").Inc()
	metrics.RecordTokens(result.Usage.InputTokens, result.Usage.OutputTokens)

	return c.JSON(fiber.Map{
		"success":   true,
		"analysis":  result.Content,
		"usage":     result.Usage,
		"timestamp": result.Timestamp,
	})
}

func (h *AssistantHandler) HandleReview(c *fiber.Ctx) error {
	var req struct {
		ReportData map[string]any `json:"report_data"`
		Standards  []string       `json:"standards"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if len(req.ReportData) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "report_data is required",
		})
	}

	start := time.Now()
	resp := h.engine.ReviewReport(c.Context(), req.ReportData, req.Standards)
	metrics.ChatDuration.WithLabelValues("review").Observe(time.Since(start).Seconds())

	if !resp.Success {
		metrics.ChatTotal.WithLabelValues("review", "error").Inc()
		return c.Status(fiber.StatusBadGateway).JSON(resp)
	}

	metrics.ChatTotal.WithLabelValues("review", "ok").Inc()
	metrics.RecordTokens(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	return c.JSON(fiber.Map{
		"success":           true,
		"review":            resp.Content,
		"structured_review": resp.StructuredReview,
		"usage":             resp.Usage,
		"timestamp":         resp.Timestamp,
	})
}

func (h *AssistantHandler) HandleTroubleshoot(c *fiber.Ctx) error {
	var req struct {
		Issue     string         `json:"issue"`
		Equipment string         `json:"equipment"`
		TestType  string         `json:"test_type"`
		ErrorData map[string]any `json:"error_data"`
		SessionID string         `json:"session_id"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Issue == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Issue description is required",
		})
	}

	start := time.Now()
	result := h.engine.Troubleshoot(c.Context(), req.Issue, req.Equipment, req.TestType, req.ErrorData, req.SessionID)
	metrics.ChatDuration.WithLabelValues("troubleshoot").Observe(time.Since(start).Seconds())

	if !result.Success {
		metrics.ChatTotal.WithLabelValues("troubleshoot", "error").Inc()
		return c.Status(fiber.StatusBadGateway).JSON(result)
	}

	metrics.ChatTotal.WithLabelValues("troubleshoot", "ok").Inc()
	metrics.RecordTokens(result.Usage.InputTokens, result.Usage.OutputTokens)

	return c.JSON(fiber.Map{
		"success":   true,
		"guidance":  result.Content,
		"usage":     result.Usage,
		"timestamp": result.Timestamp,
	})
}

func (h *AssistantHandler) HandleDecision(c *fiber.Ctx) error {
	var req struct {
		Context   string           `json:"context"`
		Options   []map[string]any `json:"options"`
		Criteria  []string         `json:"criteria"`
		SessionID string           `json:"session_id"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Context == "" || len(req.Options) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Context and options are required",
		})
	}

	start := time.Now()
	result := h.engine.DecisionSupport(c.Context(), req.Context, req.Options, req.Criteria, req.SessionID)
	metrics.ChatDuration.WithLabelValues("decision").Observe(time.Since(start).Seconds())

	if !result.Success {
		metrics.ChatTotal.WithLabelValues("decision", "error").Inc()
		return c.Status(fiber.StatusBadGateway).JSON(result)
	}

	metrics.ChatTotal.WithLabelValues("decision", "ok").Inc()
	metrics.RecordTokens(result.Usage.InputTokens, result.Usage.OutputTokens)

	return c.JSON(fiber.Map{
		"success":        true,
		"recommendation": result.Content,
		"usage":          result.Usage,
		"timestamp":      result.Timestamp,
	})
}

func (h *AssistantHandler) HandleIntent(c *fiber.Ctx) error {
	var req struct {
		Message string `json:"message"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Message is required",
		})
	}

	result := h.engine.DetectIntent(req.Message)
	metrics.IntentDetected.WithLabelValues(result.Intent).Inc()

	return c.JSON(result)
}

func (h *AssistantHandler) HandleInsights(c *fiber.Ctx) error {
	scope := c.Query("scope", "recent")
	return c.JSON(h.engine.GetInsights(scope))
}

func (h *AssistantHandler) GetSessionStats(c *fiber.Ctx) error {
	return c.JSON(h.engine.Sessions().Stats())
}

func (h *AssistantHandler) GetSessionHistory(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	sess, ok := h.engine.Sessions().Get(sessionID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	return c.JSON(fiber.Map{
		"session_id":    sess.ID,
		"user_id":       sess.UserID,
		"created_at":    sess.CreatedAt,
		"message_count": sess.MessageCount(),
		"messages":      sess.History(),
	})
}

func (h *AssistantHandler) DeleteSession(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	if !h.engine.Sessions().Delete(sessionID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	metrics.ActiveSessions.Set(float64(h.engine.Sessions().Len()))
	return c.JSON(fiber.Map{
		"deleted":    true,
		"session_id": sessionID,
	})
}
