package render

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/xuri/excelize/v2"
)

const maxTestSheets = 10

var summaryHeader = []string{"Test ID", "Test Name", "Sample ID", "Manufacturer", "Model", "Test Date", "Result"}

// Excel writes a workbook with a Summary sheet and one Parameter/Value
// sheet per test, capped at maxTestSheets.
func Excel(job Job) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return "", fmt.Errorf("failed to create summary sheet: %w", err)
	}

	for col, h := range summaryHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(summary, cell, h); err != nil {
			return "", fmt.Errorf("failed to write summary header: %w", err)
		}
	}

	for row, test := range job.Results {
		values := []any{
			test.TestID, test.TestName, test.SampleID,
			test.Manufacturer, test.Model, test.TestDate,
			string(test.OverallResult),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(summary, cell, v); err != nil {
				return "", fmt.Errorf("failed to write summary row: %w", err)
			}
		}
	}

	for i, test := range job.Results {
		if i >= maxTestSheets {
			break
		}

		// Excel caps sheet names at 31 chars.
		name := fmt.Sprintf("Test_%d", i+1)
		if len(name) > 31 {
			name = name[:31]
		}
		if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("failed to create sheet %s: %w", name, err)
		}

		f.SetCellValue(name, "A1", "Parameter")
		f.SetCellValue(name, "B1", "Value")

		keys := make([]string, 0, len(test.Measurements))
		for k := range test.Measurements {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for row, k := range keys {
			f.SetCellValue(name, fmt.Sprintf("A%d", row+2), k)
			f.SetCellValue(name, fmt.Sprintf("B%d", row+2), fmt.Sprintf("%v", test.Measurements[k]))
		}
	}

	path := filepath.Join(job.OutDir, job.BaseName+".xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to write xlsx: %w", err)
	}
	return path, nil
}

// CSV is the Excel fallback: the summary table only.
func CSV(job Job) (string, error) {
	path := filepath.Join(job.OutDir, job.BaseName+".csv")

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create csv: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"Test ID", "Test Name", "Sample ID", "Result"}); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, test := range job.Results {
		record := []string{test.TestID, test.TestName, test.SampleID, string(test.OverallResult)}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return path, nil
}
