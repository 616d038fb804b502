package assistant

import "strings"

// IntentResult is the outcome of rule-based intent detection.
type IntentResult struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Message    string  `json:"message"`
}

type intentRule struct {
	name     string
	keywords []string
}

// Rules are scored as matched-keywords / total-keywords and evaluated in a
// fixed order; a later rule replaces an earlier one only with a strictly
// higher score, so ties resolve to the first rule listed.
var intentRules = []intentRule{
	{"analyze_data", []string{"analyze", "analysis", "check data", "review data", "examine"}},
	{"troubleshoot", []string{"error", "problem", "issue", "help", "troubleshoot", "not working"}},
	{"question", []string{"what", "how", "why", "when", "where", "explain", "tell me"}},
	{"review_report", []string{"review report", "check report", "validate report"}},
	{"decision_support", []string{"should i", "recommend", "suggest", "which option", "decide"}},
}

// DetectIntent classifies a message by keyword matching. Messages matching
// no rule fall back to "chat" with zero confidence.
func (e *Engine) DetectIntent(message string) IntentResult {
	lower := strings.ToLower(message)

	detected := "chat"
	confidence := 0.0

	for _, rule := range intentRules {
		matches := 0
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				matches++
			}
		}
		if matches == 0 {
			continue
		}
		score := float64(matches) / float64(len(rule.keywords))
		if score > confidence {
			confidence = score
			detected = rule.name
		}
	}

	return IntentResult{
		Intent:     detected,
		Confidence: confidence,
		Message:    message,
	}
}
