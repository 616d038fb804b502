package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// System prompts for each task type.
const (
	chatSystemPrompt = `You are an AI assistant specializing in solar photovoltaic (PV) laboratory testing and certification.

You have expertise in:
- IEC 61215, IEC 61730, UL 1703, and other PV standards
- PV module testing procedures (performance, safety, durability)
- Test equipment operation and calibration
- Data analysis and quality control
- Troubleshooting test issues
- Report generation and compliance

Provide accurate, helpful, and safety-conscious guidance. Always reference relevant standards when applicable. Be clear and concise in your explanations.`

	analysisSystemPrompt = `You are a data analysis expert for solar PV laboratory testing.

Your role is to:
- Identify anomalies and outliers in test data
- Detect trends and patterns
- Provide statistical insights
- Suggest root causes for unexpected results
- Recommend corrective actions

Always provide quantitative analysis when possible and explain your reasoning clearly.`

	reviewSystemPrompt = `You are a quality assurance specialist for solar PV test reports.

Your role is to:
- Check completeness of test reports
- Verify compliance with standards
- Identify errors or inconsistencies
- Suggest improvements
- Ensure data quality and accuracy

Be thorough and meticulous. Flag any issues that could affect certification or compliance.`

	troubleshootingSystemPrompt = `You are a troubleshooting expert for solar PV laboratory equipment and testing.

Your role is to:
- Diagnose test equipment problems
- Identify root causes of test failures
- Provide step-by-step solutions
- Suggest preventive measures
- Recommend best practices

Always prioritize safety and provide practical, actionable guidance.`

	decisionSystemPrompt = `You are a decision support advisor for solar PV laboratory operations.

Your role is to:
- Evaluate options objectively
- Consider multiple criteria
- Assess risks and benefits
- Provide evidence-based recommendations
- Explain your reasoning clearly

Be balanced and comprehensive in your analysis.`
)

// mustJSON renders v as indented JSON. encoding/json sorts map keys, so the
// same input always produces the same prompt text.
func mustJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func buildAnalysisPrompt(data map[string]any, analysisType, contextNote string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analysis Type: %s\n\n", analysisType)
	if contextNote != "" {
		fmt.Fprintf(&b, "Context: %s\n\n", contextNote)
	}
	fmt.Fprintf(&b, "Data to Analyze:\n%s\n\n", mustJSON(data))
	b.WriteString("Please provide a detailed analysis including:\n")
	b.WriteString("1. Key findings\n")
	b.WriteString("2. Anomalies or concerns\n")
	b.WriteString("3. Trends or patterns\n")
	b.WriteString("4. Recommendations\n")
	return b.String()
}

func buildReviewPrompt(reportData map[string]any, standards []string) string {
	var b strings.Builder
	b.WriteString("Please review the following test report:\n\n")
	fmt.Fprintf(&b, "%s\n\n", mustJSON(reportData))
	if len(standards) > 0 {
		fmt.Fprintf(&b, "Applicable Standards: %s\n\n", strings.Join(standards, ", "))
	}
	b.WriteString("Please check for:\n")
	b.WriteString("1. Completeness of required data\n")
	b.WriteString("2. Compliance with standards\n")
	b.WriteString("3. Data consistency and accuracy\n")
	b.WriteString("4. Any errors or missing information\n")
	b.WriteString("5. Suggestions for improvement\n")
	return b.String()
}

func buildTroubleshootingPrompt(issue, equipment, testType string, errorData map[string]any) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Issue Description: %s\n\n", issue)
	if equipment != "" {
		fmt.Fprintf(&b, "Equipment: %s\n", equipment)
	}
	if testType != "" {
		fmt.Fprintf(&b, "Test Type: %s\n", testType)
	}
	if len(errorData) > 0 {
		fmt.Fprintf(&b, "\nError Data:\n%s\n", mustJSON(errorData))
	}
	b.WriteString("\nPlease provide:\n")
	b.WriteString("1. Possible root causes\n")
	b.WriteString("2. Step-by-step troubleshooting procedure\n")
	b.WriteString("3. Solutions or workarounds\n")
	b.WriteString("4. Preventive measures\n")
	return b.String()
}

func buildDecisionPrompt(decisionContext string, options []map[string]any, criteria []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Decision Context: %s\n\n", decisionContext)
	b.WriteString("Options:\n")
	for i, option := range options {
		fmt.Fprintf(&b, "\nOption %d:\n%s\n", i+1, mustJSON(option))
	}
	if len(criteria) > 0 {
		fmt.Fprintf(&b, "\nDecision Criteria: %s\n", strings.Join(criteria, ", "))
	}
	b.WriteString("\nPlease provide:\n")
	b.WriteString("1. Evaluation of each option\n")
	b.WriteString("2. Recommended choice with reasoning\n")
	b.WriteString("3. Potential risks and mitigation strategies\n")
	b.WriteString("4. Implementation considerations\n")
	return b.String()
}

func buildSummaryPrompt(digests []TestDigest) string {
	var b strings.Builder
	b.WriteString("You are writing an executive summary for a solar PV module testing report.\n")
	b.WriteString("Based on the following test results, create a concise executive summary (2-3 paragraphs) that:\n")
	b.WriteString("- Summarizes the overall testing outcomes\n")
	b.WriteString("- Highlights key findings and any issues\n")
	b.WriteString("- Provides a clear conclusion on module performance\n")
	b.WriteString("- Uses professional, technical language\n\n")
	fmt.Fprintf(&b, "Test Results:\n%s\n\n", mustJSON(digests))
	b.WriteString("Write the executive summary:\n")
	return b.String()
}

func buildInterpretationPrompt(testName string, measurements map[string]any, criteria map[string]string) string {
	var b strings.Builder
	b.WriteString("You are a solar PV testing engineer. Interpret the following test results:\n\n")
	fmt.Fprintf(&b, "Test: %s\n\n", testName)
	fmt.Fprintf(&b, "Measurements:\n%s\n\n", mustJSON(measurements))
	fmt.Fprintf(&b, "Pass/Fail Criteria:\n%s\n\n", mustJSON(criteria))
	b.WriteString("Provide a professional interpretation that:\n")
	b.WriteString("- Explains what the measurements mean\n")
	b.WriteString("- Compares results against criteria\n")
	b.WriteString("- Provides context about why this matters\n")
	b.WriteString("- Suggests any implications or next steps if applicable\n\n")
	b.WriteString("Keep it concise (2-3 sentences) and technical but clear.\n")
	return b.String()
}

func buildEnhancementPrompt(text, tone string) string {
	var b strings.Builder
	b.WriteString("You are a professional technical writer for a solar PV testing laboratory.\n")
	fmt.Fprintf(&b, "Enhance the following text to make it more %s while maintaining technical accuracy.\n", tone)
	b.WriteString("Keep all technical data, numbers, and measurements exactly as provided.\n")
	b.WriteString("Improve sentence structure, clarity, and flow.\n\n")
	fmt.Fprintf(&b, "Original text:\n%s\n\n", text)
	b.WriteString("Provide only the enhanced text without explanations or comments.\n")
	return b.String()
}

// grammarCheckLimit and complianceCheckLimit cap the text sent to the model.
const (
	grammarCheckLimit    = 6000
	complianceCheckLimit = 3000
)

func buildGrammarCheckPrompt(text string) string {
	if len(text) > grammarCheckLimit {
		text = text[:grammarCheckLimit]
	}
	var b strings.Builder
	b.WriteString("You are a professional editor for solar PV testing laboratory reports.\n")
	b.WriteString("Review the following text for spelling and grammar errors. Pay special attention to:\n")
	b.WriteString("- Technical terms related to solar PV (photovoltaic, irradiance, I-V curve, etc.)\n")
	b.WriteString("- Standard names (IEC 61215, UL 1703, etc.)\n")
	b.WriteString("- Units and measurements\n")
	b.WriteString("- Professional tone and clarity\n\n")
	fmt.Fprintf(&b, "Text to review:\n%s\n\n", text)
	b.WriteString(`Provide your response in JSON format with the following structure:
{
    "has_errors": true/false,
    "typos": [
        {"original": "...", "correction": "...", "position": "line/word", "reason": "..."}
    ],
    "grammar_issues": [
        {"issue": "...", "suggestion": "...", "position": "...", "severity": "low/medium/high"}
    ],
    "technical_term_issues": [
        {"term": "...", "issue": "...", "correct_form": "..."}
    ],
    "overall_assessment": "Brief assessment of the text quality"
}
`)
	return b.String()
}

func buildCompliancePrompt(reportContent, standard string) string {
	if len(reportContent) > complianceCheckLimit {
		reportContent = reportContent[:complianceCheckLimit]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert in solar PV testing standards, specifically %s.\n", standard)
	fmt.Fprintf(&b, "Review the following report content for compliance with %s requirements.\n", standard)
	b.WriteString("Check for:\n")
	b.WriteString("- Required sections and information\n")
	b.WriteString("- Proper terminology and units\n")
	b.WriteString("- Adherence to reporting format\n")
	b.WriteString("- Completeness of test data\n")
	b.WriteString("- Proper citations and references\n\n")
	fmt.Fprintf(&b, "Report content:\n%s\n\n", reportContent)
	b.WriteString(`Provide your response in JSON format:
{
    "compliant": true/false,
    "missing_sections": ["..."],
    "terminology_issues": [{"issue": "...", "recommendation": "..."}],
    "format_issues": ["..."],
    "completeness_score": 0-100,
    "recommendations": ["..."]
}
`)
	return b.String()
}
