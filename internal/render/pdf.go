package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"
)

// PDF renders the markdown body line by line into an A4 document with page
// numbers. Inline markup beyond bold markers is printed as-is.
func PDF(job Job) (string, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AliasNbPages("")
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, raw := range strings.Split(job.Body, "\n") {
		line := strings.TrimSpace(raw)

		switch {
		case line == "":
			pdf.Ln(2)

		case strings.HasPrefix(line, "### "):
			pdf.SetFont("Helvetica", "B", 11)
			pdf.MultiCell(0, 6, tr(stripInline(line[4:])), "", "L", false)
			pdf.Ln(1)

		case strings.HasPrefix(line, "## "):
			pdf.SetFont("Helvetica", "B", 13)
			pdf.MultiCell(0, 7, tr(stripInline(line[3:])), "", "L", false)
			pdf.Ln(1)

		case strings.HasPrefix(line, "# "):
			pdf.SetFont("Helvetica", "B", 16)
			pdf.MultiCell(0, 9, tr(stripInline(line[2:])), "", "C", false)
			pdf.Ln(2)

		case strings.HasPrefix(line, "---"):
			x, y := pdf.GetX(), pdf.GetY()
			pdf.SetDrawColor(180, 180, 180)
			pdf.Line(x, y+2, 190, y+2)
			pdf.Ln(5)

		case strings.HasPrefix(line, "- "):
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr("  - "+stripInline(line[2:])), "", "L", false)

		case strings.HasPrefix(line, "**") && strings.HasSuffix(line, "**"):
			pdf.SetFont("Helvetica", "B", 10)
			pdf.MultiCell(0, 5, tr(strings.Trim(line, "*")), "", "L", false)

		default:
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(stripInline(line)), "", "L", false)
		}
	}

	path := filepath.Join(job.OutDir, job.BaseName+".pdf")
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write pdf: %w", err)
	}
	return path, nil
}

// HTML is the PDF fallback: the same content as a styled standalone page.
func HTML(job Job) (string, error) {
	bodyHTML, err := markdownToHTML(job.Body)
	if err != nil {
		return "", err
	}

	path := filepath.Join(job.OutDir, job.BaseName+".html")
	if err := os.WriteFile(path, []byte(wrapHTML(job.Title, bodyHTML)), 0o644); err != nil {
		return "", fmt.Errorf("failed to write html: %w", err)
	}
	return path, nil
}
