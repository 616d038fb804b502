// Package quality validates generated reports: AI-backed editorial and
// compliance passes plus local completeness and data sanity checks.
package quality

import (
	"context"
	"fmt"
	"strings"

	"github.com/pvlab/backend/internal/llm"
	"github.com/pvlab/backend/internal/models"
)

// Gateway is the slice of the model client the checker needs.
type Gateway interface {
	CheckSpellingGrammar(ctx context.Context, text string) (llm.GrammarReport, llm.Result)
	ValidateCompliance(ctx context.Context, reportContent, standard string) (llm.ComplianceReport, llm.Result)
}

type Checker struct {
	gateway Gateway
}

func NewChecker(gateway Gateway) *Checker {
	return &Checker{gateway: gateway}
}

// Score deductions per finding class.
const (
	typoPenalty       = 2.0
	grammarPenalty    = 1.5
	missingPenalty    = 5.0
	compliancePenalty = 3.0
)

// Check runs the full quality pass over a rendered report body. Model-backed
// checks degrade to empty findings when the model is unavailable; the local
// completeness check always runs.
func (c *Checker) Check(ctx context.Context, reportContent string, testResults []models.TestResult) *models.QualityCheckResult {
	result := &models.QualityCheckResult{
		TyposFound:       []models.TypoFinding{},
		GrammarIssues:    []models.GrammarFinding{},
		MissingData:      []string{},
		ComplianceIssues: []models.ComplianceFinding{},
		Suggestions:      []string{},
	}

	grammar, _ := c.gateway.CheckSpellingGrammar(ctx, reportContent)
	if grammar.HasErrors {
		result.HasErrors = true
		for _, typo := range grammar.Typos {
			result.TyposFound = append(result.TyposFound, models.TypoFinding{
				Original:   typo.Original,
				Correction: typo.Correction,
				Reason:     typo.Reason,
			})
		}
		for _, issue := range grammar.GrammarIssues {
			severity := issue.Severity
			if severity == "" {
				severity = "low"
			}
			result.GrammarIssues = append(result.GrammarIssues, models.GrammarFinding{
				Issue:      issue.Issue,
				Suggestion: issue.Suggestion,
				Severity:   severity,
			})
		}
	}

	if missing := CheckCompleteness(testResults); len(missing) > 0 {
		result.HasErrors = true
		result.MissingData = missing
	}

	// Compliance is checked against the first test's standard.
	if len(testResults) > 0 {
		standard := string(testResults[0].Standard)
		compliance, _ := c.gateway.ValidateCompliance(ctx, reportContent, standard)
		if compliance.Compliant == nil || !*compliance.Compliant {
			for _, section := range compliance.MissingSections {
				result.ComplianceIssues = append(result.ComplianceIssues, models.ComplianceFinding{
					Section: "missing",
					Issue:   section,
				})
			}
			result.Suggestions = append(result.Suggestions, compliance.Recommendations...)
		}
	}

	result.Suggestions = append(result.Suggestions, SuggestImprovements(reportContent)...)

	result.OverallScore = Score(result)
	return result
}

// CheckCompleteness verifies required fields across all tests. Messages
// identify the offending test by id.
func CheckCompleteness(testResults []models.TestResult) []string {
	var missing []string

	for _, test := range testResults {
		if test.TestName == "" {
			missing = append(missing, fmt.Sprintf("Test %s: Missing test name", test.TestID))
		}
		if test.TestMethod == "" {
			missing = append(missing, fmt.Sprintf("Test %s: Missing test method", test.TestID))
		}
		if test.SampleID == "" {
			missing = append(missing, fmt.Sprintf("Test %s: Missing sample ID", test.TestID))
		}
		if len(test.Measurements) == 0 {
			missing = append(missing, fmt.Sprintf("Test %s: No measurements recorded", test.TestID))
		}
		if test.OverallResult == "" {
			missing = append(missing, fmt.Sprintf("Test %s: No overall result", test.TestID))
		}
	}

	return missing
}

// Score computes the 0-100 quality score from the finding counts.
func Score(result *models.QualityCheckResult) float64 {
	score := 100.0
	score -= float64(len(result.TyposFound)) * typoPenalty
	score -= float64(len(result.GrammarIssues)) * grammarPenalty
	score -= float64(len(result.MissingData)) * missingPenalty
	score -= float64(len(result.ComplianceIssues)) * compliancePenalty

	if score < 0 {
		return 0
	}
	return score
}

var criticalMeasurementKeys = []string{"power", "efficiency", "voltage", "current"}

// ValidateRecord sanity-checks a single test result: physically impossible
// negative values and absent critical fields.
func ValidateRecord(test models.TestResult) models.ValidationResult {
	var issues []string

	for key, value := range test.Measurements {
		num, ok := asNumber(value)
		if !ok || num >= 0 {
			continue
		}
		keyLower := strings.ToLower(key)
		for _, critical := range criticalMeasurementKeys {
			if keyLower == critical {
				issues = append(issues, fmt.Sprintf("Negative value for %s: %v", key, value))
				break
			}
		}
	}

	critical := map[string]string{
		"test_name":      test.TestName,
		"test_method":    test.TestMethod,
		"sample_id":      test.SampleID,
		"overall_result": test.OverallResult,
	}
	for _, field := range []string{"test_name", "test_method", "sample_id", "overall_result"} {
		if critical[field] == "" {
			issues = append(issues, "Missing critical field: "+field)
		}
	}

	return models.ValidationResult{
		IsValid: len(issues) == 0,
		Issues:  issues,
	}
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// CheckUnitsConsistency flags measurement values that look unit-less for
// keys whose name implies voltage, current, or power.
func CheckUnitsConsistency(measurements map[string]any) models.ValidationResult {
	var issues []string

	patterns := []struct {
		keyHints []string
		units    []string
		label    string
	}{
		{[]string{"voltage", "voc", "vmp"}, []string{"V", "v", "volt", "volts"}, "Voltage"},
		{[]string{"current", "isc", "imp"}, []string{"A", "a", "amp", "amps", "ampere"}, "Current"},
		{[]string{"power", "pmax"}, []string{"W", "w", "watt", "watts"}, "Power"},
	}

	for key, value := range measurements {
		keyLower := strings.ToLower(key)
		valueStr := fmt.Sprintf("%v", value)

		for _, p := range patterns {
			hinted := false
			for _, hint := range p.keyHints {
				if strings.Contains(keyLower, hint) {
					hinted = true
					break
				}
			}
			if !hinted {
				continue
			}

			hasUnit := false
			for _, unit := range p.units {
				if strings.Contains(valueStr, unit) {
					hasUnit = true
					break
				}
			}
			if !hasUnit {
				issues = append(issues, fmt.Sprintf("%s measurement may be missing units: %s", p.label, key))
			}
		}
	}

	return models.ValidationResult{
		IsValid: len(issues) == 0,
		Issues:  issues,
	}
}
