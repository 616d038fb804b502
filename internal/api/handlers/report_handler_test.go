package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvlab/backend/internal/llm"
	"github.com/pvlab/backend/internal/quality"
)

type stubQualityGateway struct{}

func (stubQualityGateway) CheckSpellingGrammar(context.Context, string) (llm.GrammarReport, llm.Result) {
	return llm.GrammarReport{}, llm.Result{Success: true}
}

func (stubQualityGateway) ValidateCompliance(context.Context, string, string) (llm.ComplianceReport, llm.Result) {
	compliant := true
	return llm.ComplianceReport{Compliant: &compliant}, llm.Result{Success: true}
}

type stubEnhancer struct{ fail bool }

func (s stubEnhancer) EnhanceText(_ context.Context, text, _ string) llm.Result {
	if s.fail {
		return llm.Result{Success: false, Error: "model unavailable"}
	}
	return llm.Result{Success: true, Content: "Enhanced: " + text}
}

func newReportTestApp(enhancer TextEnhancer) *fiber.App {
	h := NewReportHandler(nil, nil, nil, quality.NewChecker(stubQualityGateway{}), enhancer)

	app := fiber.New()
	app.Post("/reports/quality-check", h.QualityCheck)
	app.Post("/reports/validate-data", h.ValidateData)
	app.Post("/reports/enhance-text", h.EnhanceText)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) (*http.Response, map[string]any) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal(data, &parsed))
	return resp, parsed
}

func TestValidateDataEndpoint(t *testing.T) {
	app := newReportTestApp(stubEnhancer{})

	t.Run("incomplete record is rejected", func(t *testing.T) {
		resp, body := postJSON(t, app, "/reports/validate-data", map[string]any{
			"test_id":      "T-1",
			"measurements": map[string]any{"power": -5},
		})

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, false, body["is_valid"])

		issues, ok := body["issues"].([]any)
		require.True(t, ok)
		assert.Contains(t, issues, "Negative value for power: -5")
		assert.Contains(t, issues, "Missing critical field: test_name")
		assert.Contains(t, issues, "Power measurement may be missing units: power")
	})

	t.Run("complete record passes", func(t *testing.T) {
		resp, body := postJSON(t, app, "/reports/validate-data", map[string]any{
			"test_id":        "T-1",
			"test_name":      "Damp Heat",
			"test_method":    "IEC 61215 MQT 13",
			"sample_id":      "S-100",
			"overall_result": "PASS",
			"measurements":   map[string]any{"pmax": "320 W"},
		})

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["is_valid"])
	})
}

func TestQualityCheckEndpoint(t *testing.T) {
	app := newReportTestApp(stubEnhancer{})

	t.Run("returns findings for supplied content", func(t *testing.T) {
		resp, body := postJSON(t, app, "/reports/quality-check", map[string]any{
			"content": "Results: TBD",
		})

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, 100.0, body["overall_quality_score"])

		suggestions, ok := body["suggestions"].([]any)
		require.True(t, ok)
		assert.Contains(t, suggestions, "Report contains placeholder text (TBD/TODO).")
	})

	t.Run("empty content is a bad request", func(t *testing.T) {
		resp, _ := postJSON(t, app, "/reports/quality-check", map[string]any{
			"content": "  ",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestEnhanceTextEndpoint(t *testing.T) {
	t.Run("returns enhanced text", func(t *testing.T) {
		app := newReportTestApp(stubEnhancer{})

		resp, body := postJSON(t, app, "/reports/enhance-text", map[string]any{
			"text": "module passed",
			"tone": "formal",
		})

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["enhanced"])
		assert.Equal(t, "Enhanced: module passed", body["enhanced_text"])
	})

	t.Run("model failure returns the original text", func(t *testing.T) {
		app := newReportTestApp(stubEnhancer{fail: true})

		resp, body := postJSON(t, app, "/reports/enhance-text", map[string]any{
			"text": "module passed",
		})

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, false, body["enhanced"])
		assert.Equal(t, "module passed", body["enhanced_text"])
	})

	t.Run("empty text is a bad request", func(t *testing.T) {
		app := newReportTestApp(stubEnhancer{})

		resp, _ := postJSON(t, app, "/reports/enhance-text", map[string]any{
			"text": "",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
