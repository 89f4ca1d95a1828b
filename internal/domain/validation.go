package domain

import "time"

// Severity ranks a validation finding.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// FindingCategory groups findings by the rule family that produced them.
type FindingCategory string

const (
	CategoryProductData   FindingCategory = "PRODUCT_DATA"
	CategoryNumericFormat FindingCategory = "NUMERIC_FORMAT"
	CategorySupplierData  FindingCategory = "SUPPLIER_DATA"
	CategoryOutlier       FindingCategory = "OUTLIER"
	CategoryCompleteness  FindingCategory = "COMPLETENESS"
)

// ValidationStatus is the overall verdict of a validation run.
type ValidationStatus string

const (
	ValidationPassed   ValidationStatus = "passed"
	ValidationWarnings ValidationStatus = "warnings"
	ValidationFailed   ValidationStatus = "failed"
)

// Finding is one issue raised by a validation rule.
type Finding struct {
	Severity Severity
	Category FindingCategory
	Field    string
	Message  string

	// SourceID references the record, product or supplier that triggered
	// the finding, when one exists.
	SourceID string

	// Suggestion is an optional remediation hint for the operator.
	Suggestion string
}

// ValidationResult is the outcome of one validation run. Results are
// append-only history: every run creates a new record and no record is ever
// mutated afterwards.
type ValidationResult struct {
	ID             string
	OrganisationID string
	PeriodID       string
	CalculationID  string

	Findings []Finding

	Status       ValidationStatus
	ErrorCount   int
	WarningCount int
	InfoCount    int

	CreatedAt time.Time
}

// DeriveStatus recounts the findings and sets the verdict: failed when any
// ERROR is present, warnings when any WARNING, passed otherwise.
func (r *ValidationResult) DeriveStatus() {
	r.ErrorCount, r.WarningCount, r.InfoCount = 0, 0, 0
	for _, f := range r.Findings {
		switch f.Severity {
		case SeverityError:
			r.ErrorCount++
		case SeverityWarning:
			r.WarningCount++
		case SeverityInfo:
			r.InfoCount++
		}
	}
	switch {
	case r.ErrorCount > 0:
		r.Status = ValidationFailed
	case r.WarningCount > 0:
		r.Status = ValidationWarnings
	default:
		r.Status = ValidationPassed
	}
}
