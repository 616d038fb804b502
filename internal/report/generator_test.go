package report

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvlab/backend/internal/llm"
	"github.com/pvlab/backend/internal/models"
	"github.com/pvlab/backend/internal/render"
	"github.com/pvlab/backend/internal/template"
)

type fakeGateway struct {
	summaryFails   bool
	interpretFails bool
	interpretCalls int
	lastDigests    []llm.TestDigest
}

func (f *fakeGateway) ExecutiveSummary(_ context.Context, digests []llm.TestDigest) llm.Result {
	f.lastDigests = digests
	if f.summaryFails {
		return llm.Result{Success: false, Error: "model unavailable"}
	}
	return llm.Result{Success: true, Content: "All tests completed within specification."}
}

func (f *fakeGateway) InterpretResults(_ context.Context, testName string, _ map[string]any, _ map[string]string) llm.Result {
	f.interpretCalls++
	if f.interpretFails {
		return llm.Result{Success: false, Error: "model unavailable"}
	}
	return llm.Result{Success: true, Content: "Interpretation for " + testName}
}

type fakeQuality struct {
	called bool
}

func (f *fakeQuality) Check(context.Context, string, []models.TestResult) *models.QualityCheckResult {
	f.called = true
	return &models.QualityCheckResult{OverallScore: 95}
}

type fakeVersions struct {
	created []string
	fail    bool
}

func (f *fakeVersions) CreateVersion(_ context.Context, reportID, filePath string, _ []string, _ string) (models.ReportVersion, error) {
	if f.fail {
		return models.ReportVersion{}, errors.New("archive down")
	}
	f.created = append(f.created, filePath)
	return models.ReportVersion{ReportID: reportID, Version: "1.0", FilePath: filePath}, nil
}

func writeFile(ext string) render.Func {
	return func(job render.Job) (string, error) {
		path := filepath.Join(job.OutDir, job.BaseName+ext)
		if err := os.WriteFile(path, []byte(job.Body), 0o644); err != nil {
			return "", err
		}
		return path, nil
	}
}

func fileRenderer(format models.ReportFormat, ext string) render.Renderer {
	return render.Renderer{Format: format, Primary: writeFile(ext)}
}

func failingPrimaryRenderer(format models.ReportFormat, ext string) render.Renderer {
	return render.Renderer{
		Format:   format,
		Primary:  func(render.Job) (string, error) { return "", errors.New("primary broke") },
		Fallback: writeFile(ext),
	}
}

func brokenRenderer(format models.ReportFormat) render.Renderer {
	fail := func(render.Job) (string, error) { return "", errors.New("renderer broke") }
	return render.Renderer{Format: format, Primary: fail, Fallback: fail}
}

func newTestGenerator(t *testing.T, gw *fakeGateway, renderers map[models.ReportFormat]render.Renderer, quality QualityChecker, versions VersionRecorder) *Generator {
	t.Helper()
	registry, err := template.NewRegistry(template.LabInfo{Name: "Test Lab"})
	require.NoError(t, err)
	return NewGenerator(gw, registry, renderers, quality, versions, t.TempDir())
}

func baseRequest() *models.ReportRequest {
	return &models.ReportRequest{
		ReportType:  models.ReportTypeTestResult,
		ReportTitle: "Module Qualification Report",
		ClientName:  "SunCo",
		TestResults: []models.TestResult{
			{
				TestID:        "T-1",
				TestName:      "Performance at STC",
				TestMethod:    "IEC 61215 MQT 06",
				Standard:      models.StandardIEC61215,
				TestDate:      time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
				SampleID:      "S-100",
				Measurements:  map[string]any{"Voc": "45.2 V", "Pmax": "320 W"},
				OverallResult: models.ResultPass,
			},
		},
		OutputFormats: []models.ReportFormat{models.FormatPDF},
	}
}

func TestGenerateSuccess(t *testing.T) {
	gw := &fakeGateway{}
	versions := &fakeVersions{}
	renderers := map[models.ReportFormat]render.Renderer{
		models.FormatPDF: fileRenderer(models.FormatPDF, ".pdf"),
	}
	g := newTestGenerator(t, gw, renderers, &fakeQuality{}, versions)

	resp := g.Generate(context.Background(), baseRequest())

	require.True(t, resp.Success)
	assert.Len(t, resp.ReportID, 8)
	assert.Equal(t, "Report generated successfully in 1 format(s)", resp.Message)
	require.Contains(t, resp.Files, "pdf")
	assert.Greater(t, resp.FileSizes["pdf"], int64(0))
	assert.Empty(t, resp.Errors)

	// Title goes into the filename, sanitized.
	base := filepath.Base(resp.Files["pdf"])
	assert.True(t, strings.HasPrefix(base, resp.ReportID+"_Module_Qualification_Report"))

	// Every delivered file is archived.
	assert.Len(t, versions.created, 1)
}

func TestGenerateFallbackStillSucceeds(t *testing.T) {
	gw := &fakeGateway{}
	renderers := map[models.ReportFormat]render.Renderer{
		models.FormatWord: failingPrimaryRenderer(models.FormatWord, ".txt"),
	}
	g := newTestGenerator(t, gw, renderers, &fakeQuality{}, nil)

	req := baseRequest()
	req.OutputFormats = []models.ReportFormat{models.FormatWord}

	resp := g.Generate(context.Background(), req)

	assert.True(t, resp.Success)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "word output degraded to fallback format")
	assert.Contains(t, resp.Files, "word")
}

func TestGeneratePartialFailure(t *testing.T) {
	gw := &fakeGateway{}
	renderers := map[models.ReportFormat]render.Renderer{
		models.FormatPDF:   fileRenderer(models.FormatPDF, ".pdf"),
		models.FormatExcel: brokenRenderer(models.FormatExcel),
	}
	g := newTestGenerator(t, gw, renderers, &fakeQuality{}, nil)

	req := baseRequest()
	req.OutputFormats = []models.ReportFormat{models.FormatPDF, models.FormatExcel}

	resp := g.Generate(context.Background(), req)

	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "1 of 2 formats")
	assert.Contains(t, resp.Files, "pdf")
	assert.NotContains(t, resp.Files, "excel")
	require.Len(t, resp.Errors, 1)
}

func TestGenerateDuplicateFormats(t *testing.T) {
	gw := &fakeGateway{}
	renderers := map[models.ReportFormat]render.Renderer{
		models.FormatPDF: fileRenderer(models.FormatPDF, ".pdf"),
	}
	g := newTestGenerator(t, gw, renderers, &fakeQuality{}, nil)

	req := baseRequest()
	req.OutputFormats = []models.ReportFormat{models.FormatPDF, models.FormatPDF}

	resp := g.Generate(context.Background(), req)

	assert.True(t, resp.Success)
	assert.Empty(t, resp.Errors)
	assert.Len(t, resp.Files, 1)
	assert.Equal(t, []models.ReportFormat{models.FormatPDF}, req.OutputFormats)
}

func TestGenerateValidation(t *testing.T) {
	g := newTestGenerator(t, &fakeGateway{}, map[models.ReportFormat]render.Renderer{}, nil, nil)

	t.Run("missing title", func(t *testing.T) {
		req := baseRequest()
		req.ReportTitle = "  "
		resp := g.Generate(context.Background(), req)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Errors, "report_title is required")
	})

	t.Run("no test results", func(t *testing.T) {
		req := baseRequest()
		req.TestResults = nil
		resp := g.Generate(context.Background(), req)
		assert.Contains(t, resp.Errors, "at least one test result is required")
	})

	t.Run("unknown format", func(t *testing.T) {
		req := baseRequest()
		req.OutputFormats = []models.ReportFormat{"latex"}
		resp := g.Generate(context.Background(), req)
		assert.Contains(t, resp.Errors, "unsupported output format: latex")
	})

	t.Run("unknown standard", func(t *testing.T) {
		req := baseRequest()
		req.TestResults[0].Standard = "IEC 99999"
		resp := g.Generate(context.Background(), req)
		assert.Contains(t, resp.Errors, "unknown test standard: IEC 99999")
	})

	t.Run("formats default to pdf", func(t *testing.T) {
		req := baseRequest()
		req.OutputFormats = nil
		require.NoError(t, validateRequest(req))
		assert.Equal(t, []models.ReportFormat{models.FormatPDF}, req.OutputFormats)
	})
}

func TestGenerateAIEnhancement(t *testing.T) {
	t.Run("interpretation appended to notes", func(t *testing.T) {
		gw := &fakeGateway{}
		renderers := map[models.ReportFormat]render.Renderer{
			models.FormatPDF: fileRenderer(models.FormatPDF, ".pdf"),
		}
		g := newTestGenerator(t, gw, renderers, nil, nil)

		req := baseRequest()
		req.EnableAIEnhancement = true
		req.TestResults[0].Notes = "Existing note."

		resp := g.Generate(context.Background(), req)

		assert.True(t, resp.AIEnhanced)
		assert.Equal(t, 1, gw.interpretCalls)
		assert.Equal(t, "Existing note.\n\nInterpretation for Performance at STC", req.TestResults[0].Notes)
	})

	t.Run("failed interpretation falls back to boilerplate", func(t *testing.T) {
		gw := &fakeGateway{interpretFails: true}
		renderers := map[models.ReportFormat]render.Renderer{
			models.FormatPDF: fileRenderer(models.FormatPDF, ".pdf"),
		}
		g := newTestGenerator(t, gw, renderers, nil, nil)

		req := baseRequest()
		req.EnableAIEnhancement = true

		g.Generate(context.Background(), req)

		assert.Equal(t, "Standard test results for Performance at STC", req.TestResults[0].Notes)
	})
}

func TestGenerateSummaryFailureIsWarning(t *testing.T) {
	gw := &fakeGateway{summaryFails: true}
	renderers := map[models.ReportFormat]render.Renderer{
		models.FormatPDF: fileRenderer(models.FormatPDF, ".pdf"),
	}
	g := newTestGenerator(t, gw, renderers, nil, nil)

	resp := g.Generate(context.Background(), baseRequest())

	assert.True(t, resp.Success)
	require.NotEmpty(t, resp.Warnings)
	assert.Contains(t, resp.Warnings[0], "executive summary could not be generated")
}

func TestGenerateSummaryDigests(t *testing.T) {
	gw := &fakeGateway{}
	renderers := map[models.ReportFormat]render.Renderer{
		models.FormatPDF: fileRenderer(models.FormatPDF, ".pdf"),
	}
	g := newTestGenerator(t, gw, renderers, nil, nil)

	req := baseRequest()
	long := strings.Repeat("x", 300)
	for i := 0; i < 12; i++ {
		req.TestResults = append(req.TestResults, models.TestResult{
			TestID:        "T-extra",
			TestName:      "Extra",
			OverallResult: models.ResultPass,
			Notes:         long,
		})
	}

	g.Generate(context.Background(), req)

	// Digest list is capped and long findings are truncated.
	require.Len(t, gw.lastDigests, 10)
	assert.Len(t, gw.lastDigests[1].KeyFindings, 200)
}

func TestGenerateSummaryDigestMultibyteNotes(t *testing.T) {
	gw := &fakeGateway{}
	renderers := map[models.ReportFormat]render.Renderer{
		models.FormatPDF: fileRenderer(models.FormatPDF, ".pdf"),
	}
	g := newTestGenerator(t, gw, renderers, nil, nil)

	req := baseRequest()
	// Three-byte runes so the byte cap falls inside a rune.
	req.TestResults[0].Notes = strings.Repeat("✓", 100)

	g.Generate(context.Background(), req)

	require.Len(t, gw.lastDigests, 1)
	findings := gw.lastDigests[0].KeyFindings
	assert.True(t, utf8.ValidString(findings))
	assert.LessOrEqual(t, len(findings), 200)
	assert.Equal(t, 198, len(findings))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 200))
	assert.Equal(t, "ab", truncate("abcd", 2))
	// Never splits a multi-byte rune.
	assert.Equal(t, "é", truncate("éé", 3))
	assert.Equal(t, "", truncate("✓", 2))
}

func TestGenerateQualityCheckToggle(t *testing.T) {
	gw := &fakeGateway{}
	renderers := map[models.ReportFormat]render.Renderer{
		models.FormatPDF: fileRenderer(models.FormatPDF, ".pdf"),
	}

	t.Run("runs when any toggle is set", func(t *testing.T) {
		q := &fakeQuality{}
		g := newTestGenerator(t, gw, renderers, q, nil)

		req := baseRequest()
		req.EnableSpellCheck = true
		resp := g.Generate(context.Background(), req)

		assert.True(t, q.called)
		assert.True(t, resp.QualityChecked)
		require.NotNil(t, resp.QualityCheck)
		assert.Equal(t, 95.0, resp.QualityCheck.OverallScore)
	})

	t.Run("skipped otherwise", func(t *testing.T) {
		q := &fakeQuality{}
		g := newTestGenerator(t, gw, renderers, q, nil)

		resp := g.Generate(context.Background(), baseRequest())

		assert.False(t, q.called)
		assert.Nil(t, resp.QualityCheck)
	})
}

func TestGenerateVersionFailureIsWarning(t *testing.T) {
	gw := &fakeGateway{}
	renderers := map[models.ReportFormat]render.Renderer{
		models.FormatPDF: fileRenderer(models.FormatPDF, ".pdf"),
	}
	g := newTestGenerator(t, gw, renderers, nil, &fakeVersions{fail: true})

	resp := g.Generate(context.Background(), baseRequest())

	assert.True(t, resp.Success)
	assert.Contains(t, resp.Warnings, "version archive failed for pdf output")
}

func TestBuildContext(t *testing.T) {
	req := baseRequest()
	req.CustomFields = map[string]any{"scope": "Full type approval"}

	ctx := buildContext(req, "summary text", "abc12345")

	assert.Equal(t, "abc12345", ctx["report_id"])
	assert.Equal(t, "1.0", ctx["report_version"])
	assert.Equal(t, "summary text", ctx["executive_summary"])
	assert.Equal(t, "Full type approval", ctx["scope"])

	t.Run("module identity comes from the first test", func(t *testing.T) {
		assert.Equal(t, "S-100", ctx["sample_id"])
		assert.Equal(t, "2026-03-10", ctx["test_date"])
	})

	t.Run("iv shortcuts fill from measurements", func(t *testing.T) {
		assert.Equal(t, "45.2 V", ctx["voc"])
		assert.Equal(t, "320 W", ctx["pmax"])
		// Absent curve points degrade to N/A rather than empty.
		assert.Equal(t, "N/A", ctx["isc"])
	})

	t.Run("no voc means no shortcuts", func(t *testing.T) {
		plain := baseRequest()
		plain.TestResults[0].Measurements = map[string]any{"humidity": 85}
		got := buildContext(plain, "", "id")
		assert.NotContains(t, got, "voc")
	})
}

func TestTestView(t *testing.T) {
	test := models.TestResult{
		TestID:        "T-1",
		TestDate:      time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
		OverallResult: models.ResultPass,
		Parameters:    map[string]any{"irradiance": "1000 W/m2", "cell_temp": "25 C"},
	}

	view := testView(test)

	assert.Equal(t, "2026-03-10 09:30", view["test_date"])
	assert.Equal(t, true, view["compliant"])

	rows := view["parameters"].([]row)
	require.Len(t, rows, 2)
	// Rows are sorted by name for stable rendering.
	assert.Equal(t, "cell_temp", rows[0].Name)
	assert.Equal(t, "irradiance", rows[1].Name)

	failed := testView(models.TestResult{OverallResult: models.ResultFail})
	assert.Equal(t, false, failed["compliant"])
}
