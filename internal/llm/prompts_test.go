package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustJSONDeterminism(t *testing.T) {
	a := mustJSON(map[string]any{"voc": 45.2, "isc": 9.1, "pmax": 320.0})
	b := mustJSON(map[string]any{"pmax": 320.0, "isc": 9.1, "voc": 45.2})
	assert.Equal(t, a, b)
	// Keys come out sorted.
	assert.Less(t, strings.Index(a, "isc"), strings.Index(a, "voc"))
}

func TestBuildAnalysisPrompt(t *testing.T) {
	got := buildAnalysisPrompt(map[string]any{"pmax": 320}, "degradation", "Test Type: damp_heat")

	assert.True(t, strings.HasPrefix(got, "Analysis Type: degradation\n\n"))
	assert.Contains(t, got, "Context: Test Type: damp_heat\n\n")
	assert.Contains(t, got, "Data to Analyze:\n")
	assert.Contains(t, got, "1. Key findings")
	assert.Contains(t, got, "4. Recommendations")

	t.Run("empty context note is omitted", func(t *testing.T) {
		got := buildAnalysisPrompt(map[string]any{}, "comprehensive", "")
		assert.NotContains(t, got, "Context:")
	})
}

func TestBuildReviewPrompt(t *testing.T) {
	got := buildReviewPrompt(map[string]any{"title": "TR-1"}, []string{"IEC 61215", "IEC 61730"})

	assert.Contains(t, got, "Please review the following test report:")
	assert.Contains(t, got, "Applicable Standards: IEC 61215, IEC 61730")
	assert.Contains(t, got, "5. Suggestions for improvement")
}

func TestBuildTroubleshootingPrompt(t *testing.T) {
	got := buildTroubleshootingPrompt("irradiance drift", "Solar Simulator", "iv_curve",
		map[string]any{"code": "E42"})

	assert.Contains(t, got, "Issue Description: irradiance drift")
	assert.Contains(t, got, "Equipment: Solar Simulator")
	assert.Contains(t, got, "Test Type: iv_curve")
	assert.Contains(t, got, "Error Data:")
	assert.Contains(t, got, "2. Step-by-step troubleshooting procedure")

	t.Run("optional sections are omitted", func(t *testing.T) {
		got := buildTroubleshootingPrompt("drift", "", "", nil)
		assert.NotContains(t, got, "Equipment:")
		assert.NotContains(t, got, "Test Type:")
		assert.NotContains(t, got, "Error Data:")
	})
}

func TestBuildDecisionPrompt(t *testing.T) {
	got := buildDecisionPrompt("retest or ship",
		[]map[string]any{{"name": "retest"}, {"name": "ship"}},
		[]string{"cost", "schedule"})

	assert.Contains(t, got, "Decision Context: retest or ship")
	assert.Contains(t, got, "Option 1:")
	assert.Contains(t, got, "Option 2:")
	assert.Contains(t, got, "Decision Criteria: cost, schedule")
}

func TestBuildSummaryPrompt(t *testing.T) {
	got := buildSummaryPrompt([]TestDigest{
		{TestName: "Damp Heat", Result: "PASS", KeyFindings: "no degradation"},
	})

	assert.Contains(t, got, "executive summary")
	assert.Contains(t, got, "Damp Heat")
	assert.Contains(t, got, "Write the executive summary:")
}

func TestBuildGrammarCheckPromptTruncates(t *testing.T) {
	long := strings.Repeat("a", grammarCheckLimit+500)
	got := buildGrammarCheckPrompt(long)

	assert.Contains(t, got, `"has_errors": true/false`)
	assert.NotContains(t, got, strings.Repeat("a", grammarCheckLimit+1))
	assert.Contains(t, got, strings.Repeat("a", grammarCheckLimit))
}

func TestBuildCompliancePromptTruncates(t *testing.T) {
	long := strings.Repeat("b", complianceCheckLimit+500)
	got := buildCompliancePrompt(long, "IEC 61730")

	assert.Contains(t, got, "specifically IEC 61730")
	assert.Contains(t, got, `"compliant": true/false`)
	assert.NotContains(t, got, strings.Repeat("b", complianceCheckLimit+1))
}

func TestExtractJSON(t *testing.T) {
	want := `{"has_errors": false}`

	t.Run("json fence", func(t *testing.T) {
		text := "Here is the result:\n```json\n" + want + "\n```\nDone."
		assert.Equal(t, want, extractJSON(text))
	})

	t.Run("bare fence", func(t *testing.T) {
		text := "```\n" + want + "\n```"
		assert.Equal(t, want, extractJSON(text))
	})

	t.Run("unterminated fence", func(t *testing.T) {
		text := "```json\n" + want
		assert.Equal(t, want, extractJSON(text))
	})

	t.Run("no fence passes through trimmed", func(t *testing.T) {
		assert.Equal(t, want, extractJSON("  "+want+"\n"))
	})
}

func TestTemperatureConstants(t *testing.T) {
	// Task temperatures order from most to least deterministic.
	require.Less(t, TempReview, TempAnalysis)
	require.Less(t, TempAnalysis, TempDecision)
	require.Less(t, TempDecision, TempTroubleshoot)
	require.Less(t, TempTroubleshoot, TempChat)
	assert.Equal(t, float32(0.7), TempChat)
	assert.Equal(t, float32(0.2), TempReview)
}
