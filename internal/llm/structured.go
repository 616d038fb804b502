package llm

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"github.com/pvlab/backend/pkg/logger"
)

// GrammarReport is the parsed outcome of a spelling/grammar check.
type GrammarReport struct {
	HasErrors         bool           `json:"has_errors"`
	Typos             []TypoIssue    `json:"typos"`
	GrammarIssues     []GrammarIssue `json:"grammar_issues"`
	TechnicalIssues   []TermIssue    `json:"technical_term_issues"`
	OverallAssessment string         `json:"overall_assessment"`
}

type TypoIssue struct {
	Original   string `json:"original"`
	Correction string `json:"correction"`
	Position   string `json:"position"`
	Reason     string `json:"reason"`
}

type GrammarIssue struct {
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
	Position   string `json:"position"`
	Severity   string `json:"severity"`
}

type TermIssue struct {
	Term        string `json:"term"`
	Issue       string `json:"issue"`
	CorrectForm string `json:"correct_form"`
}

// ComplianceReport is the parsed outcome of a standards compliance check.
// Compliant is nil when the check could not run.
type ComplianceReport struct {
	Compliant         *bool              `json:"compliant"`
	MissingSections   []string           `json:"missing_sections"`
	TerminologyIssues []TerminologyIssue `json:"terminology_issues"`
	FormatIssues      []string           `json:"format_issues"`
	CompletenessScore float64            `json:"completeness_score"`
	Recommendations   []string           `json:"recommendations"`
}

type TerminologyIssue struct {
	Issue          string `json:"issue"`
	Recommendation string `json:"recommendation"`
}

// CheckSpellingGrammar runs an editorial pass over text. When the call fails
// or the response cannot be parsed, the returned report finds no errors; the
// Result carries the failure detail.
func (c *Client) CheckSpellingGrammar(ctx context.Context, text string) (GrammarReport, Result) {
	result := c.complete(ctx, "", buildGrammarCheckPrompt(text), nil, TempReview, 0)
	if !result.Success {
		return GrammarReport{OverallAssessment: "Error during checking: " + result.Error}, result
	}

	var report GrammarReport
	if err := json.Unmarshal([]byte(extractJSON(result.Content)), &report); err != nil {
		logger.Warn("Grammar check response not parseable", zap.Error(err))
		return GrammarReport{OverallAssessment: "Response could not be parsed"}, result
	}
	return report, result
}

// ValidateCompliance checks report content against a standard. Parse failures
// degrade to an empty report with Compliant unset.
func (c *Client) ValidateCompliance(ctx context.Context, reportContent, standard string) (ComplianceReport, Result) {
	if standard == "" {
		standard = "IEC 61215"
	}

	result := c.complete(ctx, "", buildCompliancePrompt(reportContent, standard), nil, TempReview, 0)
	if !result.Success {
		return ComplianceReport{}, result
	}

	var report ComplianceReport
	if err := json.Unmarshal([]byte(extractJSON(result.Content)), &report); err != nil {
		logger.Warn("Compliance check response not parseable", zap.Error(err))
		return ComplianceReport{}, result
	}
	return report, result
}

// extractJSON strips markdown code fences that models often wrap JSON in.
func extractJSON(text string) string {
	if idx := strings.Index(text, "```json"); idx >= 0 {
		rest := text[idx+len("```json"):]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
		return strings.TrimSpace(rest)
	}
	return strings.TrimSpace(text)
}
