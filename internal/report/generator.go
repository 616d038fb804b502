// Package report orchestrates report generation: AI enrichment, template
// rendering, multi-format output, quality checking, and version recording.
package report

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pvlab/backend/internal/llm"
	"github.com/pvlab/backend/internal/metrics"
	"github.com/pvlab/backend/internal/models"
	"github.com/pvlab/backend/internal/render"
	"github.com/pvlab/backend/internal/template"
	"github.com/pvlab/backend/pkg/logger"
	"github.com/pvlab/backend/pkg/utils"
)

// Gateway is the slice of the model client the generator needs.
type Gateway interface {
	ExecutiveSummary(ctx context.Context, digests []llm.TestDigest) llm.Result
	InterpretResults(ctx context.Context, testName string, measurements map[string]any, criteria map[string]string) llm.Result
}

// QualityChecker runs the post-render quality pass.
type QualityChecker interface {
	Check(ctx context.Context, reportContent string, testResults []models.TestResult) *models.QualityCheckResult
}

// VersionRecorder archives generated report files. Optional.
type VersionRecorder interface {
	CreateVersion(ctx context.Context, reportID, filePath string, changes []string, createdBy string) (models.ReportVersion, error)
}

type Generator struct {
	gateway   Gateway
	templates *template.Registry
	renderers map[models.ReportFormat]render.Renderer
	quality   QualityChecker
	versions  VersionRecorder
	outputDir string
}

func NewGenerator(gateway Gateway, templates *template.Registry, renderers map[models.ReportFormat]render.Renderer, quality QualityChecker, versions VersionRecorder, outputDir string) *Generator {
	if renderers == nil {
		renderers = render.Defaults()
	}
	return &Generator{
		gateway:   gateway,
		templates: templates,
		renderers: renderers,
		quality:   quality,
		versions:  versions,
		outputDir: outputDir,
	}
}

const (
	summaryDigestLimit = 10
	keyFindingsLimit   = 200
)

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// Generate produces a report in every requested format. Formats render
// independently: one failing format is reported in Errors while the others
// still deliver. Success means every requested format produced a file.
func (g *Generator) Generate(ctx context.Context, req *models.ReportRequest) *models.ReportResponse {
	start := time.Now()
	reportID := uuid.New().String()[:8]

	resp := &models.ReportResponse{
		ReportID:  reportID,
		Files:     make(map[string]string),
		FileSizes: make(map[string]int64),
	}

	if err := validateRequest(req); err != nil {
		resp.Message = "Report generation failed: " + err.Error()
		resp.Errors = append(resp.Errors, err.Error())
		resp.GenerationSeconds = time.Since(start).Seconds()
		return resp
	}

	logger.Info("Generating report",
		zap.String("report_id", reportID),
		zap.String("report_type", string(req.ReportType)),
		zap.Int("test_count", len(req.TestResults)),
	)

	if req.EnableAIEnhancement {
		g.enhanceTestResults(ctx, req.TestResults)
		resp.AIEnhanced = true
	}

	summary := g.executiveSummary(ctx, req.TestResults, resp)

	templateID := req.TemplateID
	if templateID == "" {
		templateID, _ = g.templates.DefaultFor(req.ReportType)
		if templateID == "" {
			templateID = "test_result_iec61215"
		}
	}

	body, err := g.templates.Render(templateID, buildContext(req, summary, reportID))
	if err != nil {
		resp.Message = "Report generation failed: " + err.Error()
		resp.Errors = append(resp.Errors, err.Error())
		resp.GenerationSeconds = time.Since(start).Seconds()
		return resp
	}

	if req.EnableSpellCheck || req.EnableGrammarCheck || req.EnableComplianceCheck {
		resp.QualityCheck = g.quality.Check(ctx, body, req.TestResults)
		resp.QualityChecked = true
		metrics.ObserveQualityScore(resp.QualityCheck.OverallScore)
	}

	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		resp.Message = "Report generation failed: " + err.Error()
		resp.Errors = append(resp.Errors, fmt.Sprintf("failed to create output directory: %v", err))
		resp.GenerationSeconds = time.Since(start).Seconds()
		return resp
	}

	job := render.Job{
		Body:     body,
		Title:    req.ReportTitle,
		Results:  req.TestResults,
		OutDir:   g.outputDir,
		BaseName: reportID + "_" + utils.SanitizeFilename(req.ReportTitle),
	}

	for _, format := range req.OutputFormats {
		renderer, ok := g.renderers[format]
		if !ok {
			resp.Errors = append(resp.Errors, fmt.Sprintf("unsupported output format: %s", format))
			continue
		}

		path, usedFallback, err := renderer.Render(job)
		if err != nil {
			resp.Errors = append(resp.Errors, err.Error())
			metrics.RecordReportRender(string(format), "failed")
			continue
		}

		if usedFallback {
			resp.Warnings = append(resp.Warnings,
				fmt.Sprintf("%s output degraded to fallback format: %s", format, path))
			metrics.RecordReportRender(string(format), "fallback")
		} else {
			metrics.RecordReportRender(string(format), "ok")
		}

		resp.Files[string(format)] = path
		if info, err := os.Stat(path); err == nil {
			resp.FileSizes[string(format)] = info.Size()
		}
	}

	g.recordVersions(ctx, reportID, resp)

	resp.Success = len(resp.Errors) == 0 && len(resp.Files) == len(req.OutputFormats)
	if resp.Success {
		resp.Message = fmt.Sprintf("Report generated successfully in %d format(s)", len(resp.Files))
	} else {
		resp.Message = fmt.Sprintf("Report generation completed with errors (%d of %d formats)",
			len(resp.Files), len(req.OutputFormats))
	}

	resp.GenerationSeconds = time.Since(start).Seconds()
	metrics.ObserveReportDuration(resp.GenerationSeconds)

	logger.Info("Report generation finished",
		zap.String("report_id", reportID),
		zap.Bool("success", resp.Success),
		zap.Float64("seconds", resp.GenerationSeconds),
	)

	return resp
}

func validateRequest(req *models.ReportRequest) error {
	if strings.TrimSpace(req.ReportTitle) == "" {
		return fmt.Errorf("report_title is required")
	}
	if len(req.TestResults) == 0 {
		return fmt.Errorf("at least one test result is required")
	}
	if len(req.OutputFormats) == 0 {
		req.OutputFormats = []models.ReportFormat{models.FormatPDF}
	}
	// Repeated formats collapse to one render so the success check stays a
	// straight comparison against produced files.
	seen := make(map[models.ReportFormat]bool, len(req.OutputFormats))
	formats := req.OutputFormats[:0]
	for _, format := range req.OutputFormats {
		switch format {
		case models.FormatPDF, models.FormatWord, models.FormatExcel:
		default:
			return fmt.Errorf("unsupported output format: %s", format)
		}
		if seen[format] {
			continue
		}
		seen[format] = true
		formats = append(formats, format)
	}
	req.OutputFormats = formats
	for _, test := range req.TestResults {
		if test.Standard != "" && !test.Standard.Valid() {
			return fmt.Errorf("unknown test standard: %s", test.Standard)
		}
	}
	if req.ReportDate.IsZero() {
		req.ReportDate = time.Now().UTC()
	}
	return nil
}

// enhanceTestResults appends an AI interpretation to each test's notes. A
// failed interpretation falls back to boilerplate rather than aborting.
func (g *Generator) enhanceTestResults(ctx context.Context, testResults []models.TestResult) {
	for i := range testResults {
		test := &testResults[i]

		result := g.gateway.InterpretResults(ctx, test.TestName, test.Measurements, test.PassFailCriteria)
		interpretation := result.Content
		if !result.Success {
			interpretation = "Standard test results for " + test.TestName
		}

		if test.Notes != "" {
			test.Notes = test.Notes + "\n\n" + interpretation
		} else {
			test.Notes = interpretation
		}
	}
}

func (g *Generator) executiveSummary(ctx context.Context, testResults []models.TestResult, resp *models.ReportResponse) string {
	digests := make([]llm.TestDigest, 0, summaryDigestLimit)
	for i, test := range testResults {
		if i >= summaryDigestLimit {
			break
		}
		findings := truncate(test.Notes, keyFindingsLimit)
		digests = append(digests, llm.TestDigest{
			TestName:    test.TestName,
			Result:      test.OverallResult,
			KeyFindings: findings,
		})
	}

	result := g.gateway.ExecutiveSummary(ctx, digests)
	if !result.Success {
		resp.Warnings = append(resp.Warnings, "executive summary could not be generated: "+result.Error)
		return "Executive summary unavailable. See individual test sections for outcomes."
	}
	return result.Content
}

// recordVersions archives every generated file as an initial version entry.
func (g *Generator) recordVersions(ctx context.Context, reportID string, resp *models.ReportResponse) {
	if g.versions == nil {
		return
	}

	for format, path := range resp.Files {
		_, err := g.versions.CreateVersion(ctx, reportID, path, []string{"Initial generation"}, "system")
		if err != nil {
			logger.Warn("Failed to record report version",
				zap.String("report_id", reportID),
				zap.String("format", format),
				zap.Error(err),
			)
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("version archive failed for %s output", format))
		}
	}
}
