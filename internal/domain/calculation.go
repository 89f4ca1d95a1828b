package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// CalculationStatus is the lifecycle state of a Calculation.
type CalculationStatus string

const (
	CalculationDraft      CalculationStatus = "DRAFT"
	CalculationCalculated CalculationStatus = "CALCULATED"
	CalculationValidated  CalculationStatus = "VALIDATED"
	CalculationFinalized  CalculationStatus = "FINALIZED"
)

// ScopeDetail itemizes one source's contribution to a scope total. One row is
// emitted per input record (or per electricity source within a record) so the
// resulting emissions stay traceable to the record that produced them.
type ScopeDetail struct {
	SourceID   string
	SourceName string
	Quantity   float64
	Unit       string
	Factor     float64
	Emissions  float64

	// FactorSource records where the factor came from (see factors
	// package provenance values).
	FactorSource string
}

// ProductCalculation is the share of a Calculation allocated to one product.
type ProductCalculation struct {
	ProductID   string
	ProductName string
	CNCode      string

	ProductionQuantity float64
	ProductionUnit     string

	Scope1         float64
	Scope2         float64
	Scope3Direct   float64
	Scope3Indirect float64
	Scope3Total    float64
	TotalEmissions float64

	Scope1Details []ScopeDetail
	Scope2Details []ScopeDetail
	Scope3Details []ScopeDetail

	// Specific embedded emissions, tCO2e per tonne of product. All three
	// are zero when ProductionQuantity is zero.
	SEETotal    float64
	SEEDirect   float64
	SEEIndirect float64
}

// Calculation is the central output entity: per-scope emission totals for one
// organisation and reporting period, allocated across products.
type Calculation struct {
	ID             string
	OrganisationID string
	PeriodID       string
	FacilityID     string

	Scope1         float64
	Scope2         float64
	Scope3Direct   float64
	Scope3Indirect float64
	Scope3Total    float64
	TotalEmissions float64

	TotalProduction float64

	Products []ProductCalculation

	Status  CalculationStatus
	Version int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReportingPeriod identifies a quarterly disclosure window.
type ReportingPeriod struct {
	ID      string
	Year    int
	Quarter int // 1..4
}

// ParsePeriodID parses the conventional "YYYY-Qn" period identifier.
func ParsePeriodID(id string) (ReportingPeriod, error) {
	m := periodIDPattern.FindStringSubmatch(id)
	if m == nil {
		return ReportingPeriod{}, fmt.Errorf("period id %q is not of the form YYYY-Qn", id)
	}
	year, _ := strconv.Atoi(m[1])
	quarter, _ := strconv.Atoi(m[2])
	return ReportingPeriod{ID: id, Year: year, Quarter: quarter}, nil
}

var periodIDPattern = regexp.MustCompile(`^(\d{4})-Q([1-4])$`)

// StartDate returns the first day of the period.
func (p ReportingPeriod) StartDate() time.Time {
	return time.Date(p.Year, time.Month((p.Quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
}

// EndDate returns the last day of the period.
func (p ReportingPeriod) EndDate() time.Time {
	return p.StartDate().AddDate(0, 3, -1)
}
