package models

import "time"

type ReportType string

const (
	ReportTypeTestResult  ReportType = "test_result"
	ReportTypeTypeTest    ReportType = "type_test"
	ReportTypePerformance ReportType = "performance"
	ReportTypeCompliance  ReportType = "compliance"
	ReportTypeSummary     ReportType = "executive_summary"
	ReportTypeCustom      ReportType = "custom"
)

type ReportFormat string

const (
	FormatPDF   ReportFormat = "pdf"
	FormatWord  ReportFormat = "word"
	FormatExcel ReportFormat = "excel"
)

type TestStandard string

const (
	StandardIEC61215 TestStandard = "IEC 61215"
	StandardIEC61730 TestStandard = "IEC 61730"
	StandardUL1703   TestStandard = "UL 1703"
	StandardIEC62804 TestStandard = "IEC 62804"
	StandardIEC61853 TestStandard = "IEC 61853"
	StandardCustom   TestStandard = "custom"
)

func (s TestStandard) Valid() bool {
	switch s {
	case StandardIEC61215, StandardIEC61730, StandardUL1703,
		StandardIEC62804, StandardIEC61853, StandardCustom:
		return true
	}
	return false
}

const (
	ResultPass        = "PASS"
	ResultFail        = "FAIL"
	ResultConditional = "CONDITIONAL"
)

// TestResult is one laboratory test's structured outcome. The measurement
// and parameter maps are schema-less; consumers must tolerate missing keys.
type TestResult struct {
	TestID     string       `json:"test_id"`
	TestName   string       `json:"test_name"`
	TestMethod string       `json:"test_method"`
	Standard   TestStandard `json:"standard"`
	TestDate   time.Time    `json:"test_date"`
	Operator   string       `json:"operator"`
	Equipment  []string     `json:"equipment_used,omitempty"`

	SampleID     string `json:"sample_id"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`

	Parameters       map[string]any    `json:"parameters,omitempty"`
	Measurements     map[string]any    `json:"measurements,omitempty"`
	CalculatedValues map[string]any    `json:"calculated_values,omitempty"`
	PassFailCriteria map[string]string `json:"pass_fail_criteria,omitempty"`
	OverallResult    string            `json:"overall_result"`

	Graphs []string `json:"graphs,omitempty"`
	Images []string `json:"images,omitempty"`
	Notes  string   `json:"notes,omitempty"`
}

type ReportRequest struct {
	ReportType ReportType `json:"report_type"`
	TemplateID string     `json:"template_id,omitempty"`

	TestResults []TestResult `json:"test_results"`

	ReportTitle   string    `json:"report_title"`
	ClientName    string    `json:"client_name"`
	ClientAddress string    `json:"client_address,omitempty"`
	ProjectName   string    `json:"project_name,omitempty"`
	ReportDate    time.Time `json:"report_date,omitempty"`

	OutputFormats []ReportFormat `json:"output_formats"`

	EnableAIEnhancement   bool `json:"enable_ai_enhancement"`
	EnableSpellCheck      bool `json:"enable_spell_check"`
	EnableGrammarCheck    bool `json:"enable_grammar_check"`
	EnableComplianceCheck bool `json:"enable_compliance_check"`

	CustomFields map[string]any `json:"custom_fields,omitempty"`
}

type ReportResponse struct {
	Success  bool   `json:"success"`
	ReportID string `json:"report_id"`
	Message  string `json:"message"`

	// Format name -> generated file path / size in bytes. Partially
	// populated on failure: formats render independently.
	Files     map[string]string `json:"files"`
	FileSizes map[string]int64  `json:"file_sizes"`

	GenerationSeconds float64 `json:"generation_time_seconds"`
	AIEnhanced        bool    `json:"ai_enhanced"`
	QualityChecked    bool    `json:"quality_checked"`

	QualityCheck *QualityCheckResult `json:"quality_check,omitempty"`

	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type TypoFinding struct {
	Original   string `json:"original"`
	Correction string `json:"correction"`
	Reason     string `json:"reason,omitempty"`
}

type GrammarFinding struct {
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
	Severity   string `json:"severity"`
}

type ComplianceFinding struct {
	Section string `json:"section"`
	Issue   string `json:"issue"`
}

type QualityCheckResult struct {
	HasErrors        bool                `json:"has_errors"`
	TyposFound       []TypoFinding       `json:"typos_found"`
	GrammarIssues    []GrammarFinding    `json:"grammar_issues"`
	MissingData      []string            `json:"missing_data"`
	ComplianceIssues []ComplianceFinding `json:"compliance_issues"`
	Suggestions      []string            `json:"suggestions"`
	OverallScore     float64             `json:"overall_quality_score"`
}

type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Issues  []string `json:"issues"`
}

type ReportVersion struct {
	ID        int       `json:"-"`
	ReportID  string    `json:"report_id"`
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Changes   []string  `json:"changes"`
	FilePath  string    `json:"file_path"`
	CreatedBy string    `json:"created_by"`
}
