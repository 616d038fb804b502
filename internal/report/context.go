package report

import (
	"sort"

	"github.com/pvlab/backend/internal/models"
)

// row is one name/value line in a rendered detail list.
type row struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// rowsFromMap flattens a map into rows sorted by key, so rendered sections
// are stable across runs.
func rowsFromMap(m map[string]any) []row {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rows := make([]row, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, row{Name: k, Value: m[k]})
	}
	return rows
}

func rowsFromStringMap(m map[string]string) []row {
	anyMap := make(map[string]any, len(m))
	for k, v := range m {
		anyMap[k] = v
	}
	return rowsFromMap(anyMap)
}

// testView is a test result reshaped for template rendering: map fields
// become sorted row lists and the compliance flag is precomputed.
func testView(test models.TestResult) map[string]any {
	return map[string]any{
		"test_id":            test.TestID,
		"test_name":          test.TestName,
		"test_method":        test.TestMethod,
		"standard":           string(test.Standard),
		"test_date":          test.TestDate.Format("2006-01-02 15:04"),
		"operator":           test.Operator,
		"sample_id":          test.SampleID,
		"manufacturer":       test.Manufacturer,
		"model":              test.Model,
		"serial_number":      test.SerialNumber,
		"parameters":         rowsFromMap(test.Parameters),
		"measurements":       rowsFromMap(test.Measurements),
		"calculated_values":  rowsFromMap(test.CalculatedValues),
		"pass_fail_criteria": rowsFromStringMap(test.PassFailCriteria),
		"overall_result":     test.OverallResult,
		"notes":              test.Notes,
		"interpretation":     test.Notes,
		"compliant":          test.OverallResult == models.ResultPass,
	}
}

// buildContext assembles the template context for a report.
func buildContext(req *models.ReportRequest, executiveSummary, reportID string) map[string]any {
	views := make([]map[string]any, 0, len(req.TestResults))
	for _, test := range req.TestResults {
		views = append(views, testView(test))
	}

	ctx := map[string]any{
		"report_id":         reportID,
		"report_date":       req.ReportDate.Format("2006-01-02"),
		"report_version":    "1.0",
		"report_title":      req.ReportTitle,
		"client_name":       req.ClientName,
		"client_address":    req.ClientAddress,
		"project_name":      req.ProjectName,
		"executive_summary": executiveSummary,
		"test_results":      views,
		"conclusions":       "Test results are documented above. Please review the individual test sections for detailed findings.",
	}

	// Performance templates read module identity and I-V shortcuts off the
	// first test.
	if len(req.TestResults) > 0 {
		first := req.TestResults[0]
		ctx["sample_id"] = first.SampleID
		ctx["manufacturer"] = first.Manufacturer
		ctx["model"] = first.Model
		ctx["test_date"] = first.TestDate.Format("2006-01-02")

		if _, ok := first.Measurements["Voc"]; ok {
			ctx["voc"] = measurementOr(first.Measurements, "Voc")
			ctx["isc"] = measurementOr(first.Measurements, "Isc")
			ctx["pmax"] = measurementOr(first.Measurements, "Pmax")
			ctx["vmp"] = measurementOr(first.Measurements, "Vmp")
			ctx["imp"] = measurementOr(first.Measurements, "Imp")
			ctx["fill_factor"] = measurementOr(first.Measurements, "FF")
		}
	}

	for k, v := range req.CustomFields {
		ctx[k] = v
	}

	return ctx
}

func measurementOr(m map[string]any, key string) any {
	if v, ok := m[key]; ok {
		return v
	}
	return "N/A"
}
