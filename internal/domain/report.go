package domain

import "time"

// ReportType identifies the wire format of a generated report.
type ReportType string

// ReportComplianceXML is the CBAM regulatory XML submission format.
const ReportComplianceXML ReportType = "compliance_xml"

// Report is a generated regulatory document plus the verdict of the
// generator's self-check over its own output. Reports are immutable after
// creation; only SubmittedAt is set later by the submission workflow.
type Report struct {
	ID             string
	OrganisationID string
	PeriodID       string
	CalculationID  string

	Type    ReportType
	Content []byte

	// Valid is the structural/numeric self-check verdict. An invalid
	// report is still persisted for operator inspection but must not be
	// submitted.
	Valid         bool
	CheckFindings []Finding

	CreatedAt   time.Time
	SubmittedAt *time.Time
}
