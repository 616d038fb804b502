package template

import "github.com/pvlab/backend/internal/models"

func builtinTemplates() []*Template {
	return []*Template{
		{
			ID:          "test_result_iec61215",
			Name:        "Test Result Report - IEC 61215",
			ReportType:  models.ReportTypeTestResult,
			Description: "Standard test result report following IEC 61215 format",
			Sections: []string{
				"cover_page", "executive_summary", "test_information",
				"sample_information", "test_results", "analysis",
				"conclusions", "appendix",
			},
			RequiredFields:     []string{"test_id", "sample_id", "test_date", "test_method", "results"},
			IncludeTOC:         true,
			IncludePageNumbers: true,
			Content:            iec61215Template,
		},
		{
			ID:          "performance_report",
			Name:        "Performance Report",
			ReportType:  models.ReportTypePerformance,
			Description: "Module performance evaluation report",
			Sections: []string{
				"cover_page", "summary", "iv_characteristics", "power_output",
				"efficiency", "temperature_coefficients", "recommendations",
			},
			RequiredFields: []string{"sample_id", "test_date", "iv_data", "power_data"},
			Content:        performanceTemplate,
		},
		{
			ID:          "compliance_report",
			Name:        "Compliance Report - NABL/ISO",
			ReportType:  models.ReportTypeCompliance,
			Description: "Compliance report for NABL/ISO requirements",
			Sections: []string{
				"cover_page", "scope", "standards", "test_methods",
				"results", "compliance_status", "signatures",
			},
			RequiredFields: []string{"test_id", "standards", "compliance_criteria"},
			Content:        complianceTemplate,
		},
	}
}

// Test views hand map-valued data (parameters, measurements) to the
// templates as pre-sorted {name, value} row lists.

const iec61215Template = `
# TEST RESULT REPORT

## Laboratory Information
**Laboratory Name:** {{lab_name}}
**NABL Certificate No:** {{lab_nabl_cert}}
**Address:** {{lab_address}}
**Phone:** {{lab_phone}}
**Email:** {{lab_email}}

---

## Report Information
**Report ID:** {{report_id}}
**Report Date:** {{report_date}}
**Report Version:** {{report_version}}

---

## Client Information
**Client Name:** {{client_name}}
{{#client_address}}
**Client Address:** {{client_address}}
{{/client_address}}
{{#project_name}}
**Project Name:** {{project_name}}
{{/project_name}}

---

## Executive Summary
{{executive_summary}}

---

## Test Information

{{#test_results}}
### {{test_name}}

**Test ID:** {{test_id}}
**Test Method:** {{test_method}}
**Standard:** {{standard}}
**Test Date:** {{test_date}}
**Operator:** {{operator}}

#### Sample Information
- **Sample ID:** {{sample_id}}
- **Manufacturer:** {{manufacturer}}
- **Model:** {{model}}
- **Serial Number:** {{serial_number}}

#### Test Parameters
{{#parameters}}
- **{{name}}:** {{value}}
{{/parameters}}

#### Measurements
{{#measurements}}
- **{{name}}:** {{value}}
{{/measurements}}

#### Results
{{#calculated_values}}
- **{{name}}:** {{value}}
{{/calculated_values}}

#### Pass/Fail Criteria
{{#pass_fail_criteria}}
- **{{name}}:** {{value}}
{{/pass_fail_criteria}}

**Overall Result:** **{{overall_result}}**

{{#interpretation}}
#### Interpretation
{{interpretation}}
{{/interpretation}}

{{#notes}}
#### Notes
{{notes}}
{{/notes}}

---

{{/test_results}}

## Conclusions
{{conclusions}}

---

## Approvals

**Tested by:** _________________ Date: _____________

**Reviewed by:** _________________ Date: _____________

**Approved by:** _________________ Date: _____________

---

*This report shall not be reproduced except in full without written approval of the laboratory.*
*End of Report*
`

const performanceTemplate = `
# SOLAR PV MODULE PERFORMANCE REPORT

## Laboratory Information
{{lab_name}} | {{lab_nabl_cert}}

---

## Module Information
**Sample ID:** {{sample_id}}
**Manufacturer:** {{manufacturer}}
**Model:** {{model}}
**Test Date:** {{test_date}}

---

## Executive Summary
{{executive_summary}}

---

## I-V Characteristics

### Key Parameters
- **Open Circuit Voltage (Voc):** {{voc}} V
- **Short Circuit Current (Isc):** {{isc}} A
- **Maximum Power (Pmax):** {{pmax}} W
- **Voltage at Pmax (Vmp):** {{vmp}} V
- **Current at Pmax (Imp):** {{imp}} A
- **Fill Factor (FF):** {{fill_factor}}

### I-V Curve Analysis
{{iv_analysis}}

---

## Power Output Analysis
{{power_analysis}}

---

## Efficiency
**Module Efficiency:** {{efficiency}}%

{{efficiency_analysis}}

---

## Temperature Coefficients
{{#temp_coefficients}}
- **Alpha (Isc):** {{alpha}} %/degC
- **Beta (Voc):** {{beta}} %/degC
- **Gamma (Pmax):** {{gamma}} %/degC
{{/temp_coefficients}}

---

## Recommendations
{{recommendations}}

---

*End of Performance Report*
`

const complianceTemplate = `
# COMPLIANCE REPORT

## Laboratory Information
{{lab_name}}
NABL Accredited - {{lab_nabl_cert}}

---

## Report Details
**Report ID:** {{report_id}}
**Date:** {{report_date}}

---

## Client Information
**Client:** {{client_name}}

---

## Scope of Testing
{{scope}}

---

## Standards and Test Methods
{{#standards}}
- {{.}}
{{/standards}}

---

## Test Results Summary

{{#test_results}}
### {{test_name}}
- **Standard:** {{standard}}
- **Result:** {{overall_result}}
- **Status:** {{#compliant}}COMPLIANT{{/compliant}}{{^compliant}}NON-COMPLIANT{{/compliant}}
{{/test_results}}

---

## Overall Compliance Status
{{compliance_status}}

---

## Signatures

**Lab Manager:** _________________

**Technical Manager:** _________________

**Date:** {{current_date}}

---

*This compliance report is issued in accordance with NABL requirements.*
`
