// Package render turns assembled report markdown into deliverable files.
// Each format has a primary renderer and a degraded fallback; a report is
// still delivered when the primary path fails.
package render

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pvlab/backend/internal/models"
	"github.com/pvlab/backend/pkg/logger"
)

// Job carries everything a renderer needs to produce one output file.
type Job struct {
	Body     string // report body, markdown
	Title    string
	Results  []models.TestResult
	OutDir   string
	BaseName string // filename without extension
}

// Func writes one output file and returns its path.
type Func func(job Job) (string, error)

// Renderer pairs a primary format renderer with its fallback.
type Renderer struct {
	Format   models.ReportFormat
	Primary  Func
	Fallback Func
}

// Render tries the primary renderer, then the fallback. usedFallback tells
// the caller a degraded file was produced.
func (r Renderer) Render(job Job) (path string, usedFallback bool, err error) {
	path, err = r.Primary(job)
	if err == nil {
		return path, false, nil
	}

	logger.Warn("Primary renderer failed, trying fallback",
		zap.String("format", string(r.Format)),
		zap.String("report", job.BaseName),
		zap.Error(err),
	)

	if r.Fallback == nil {
		return "", false, err
	}

	path, ferr := r.Fallback(job)
	if ferr != nil {
		return "", true, fmt.Errorf("render %s failed: %v (fallback: %w)", r.Format, err, ferr)
	}
	return path, true, nil
}

// Defaults returns the renderer set for every supported format.
func Defaults() map[models.ReportFormat]Renderer {
	return map[models.ReportFormat]Renderer{
		models.FormatPDF: {
			Format:   models.FormatPDF,
			Primary:  PDF,
			Fallback: HTML,
		},
		models.FormatWord: {
			Format:   models.FormatWord,
			Primary:  Word,
			Fallback: PlainText,
		},
		models.FormatExcel: {
			Format:   models.FormatExcel,
			Primary:  Excel,
			Fallback: CSV,
		},
	}
}
