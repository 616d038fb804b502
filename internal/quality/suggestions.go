package quality

import (
	"strings"

	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"

	"github.com/pvlab/backend/pkg/logger"
)

const (
	minReportLength    = 500
	minSectionBreaks   = 5
	longSentenceWords  = 35
	longSentenceQuorum = 3
)

// SuggestImprovements produces local, deterministic suggestions for a report
// body. No model call involved.
func SuggestImprovements(reportContent string) []string {
	var suggestions []string

	if len(reportContent) < minReportLength {
		suggestions = append(suggestions, "Report seems too brief. Consider adding more details.")
	}

	if strings.Contains(reportContent, "TBD") || strings.Contains(reportContent, "TODO") {
		suggestions = append(suggestions, "Report contains placeholder text (TBD/TODO).")
	}

	if strings.Count(reportContent, "\n\n") < minSectionBreaks {
		suggestions = append(suggestions, "Consider adding more section breaks for readability.")
	}

	if overlong := countOverlongSentences(reportContent); overlong >= longSentenceQuorum {
		suggestions = append(suggestions, "Several sentences are very long. Consider splitting them for clarity.")
	}

	return suggestions
}

// countOverlongSentences tokenizes the body and counts sentences above the
// word threshold. Tokenization failure just disables this check.
func countOverlongSentences(text string) int {
	doc, err := prose.NewDocument(text, prose.WithExtraction(false), prose.WithTagging(false))
	if err != nil {
		logger.Debug("Sentence tokenization failed", zap.Error(err))
		return 0
	}

	overlong := 0
	for _, sentence := range doc.Sentences() {
		if len(strings.Fields(sentence.Text)) > longSentenceWords {
			overlong++
		}
	}
	return overlong
}
