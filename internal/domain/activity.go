// Package domain holds the entities shared by the calculation, validation and
// reporting engines: activity records, emission factors, supplier
// declarations, calculations and their derived artifacts.
package domain

import "time"

// ActivityKind tags the variant carried by an ActivityRecord.
type ActivityKind string

const (
	// ActivityElectricity is purchased or self-generated electricity use.
	ActivityElectricity ActivityKind = "electricity"

	// ActivityFuel is on-site fuel combustion.
	ActivityFuel ActivityKind = "fuel"

	// ActivityProduction is finished-goods output.
	ActivityProduction ActivityKind = "production"

	// ActivityPrecursor is purchased precursor material.
	ActivityPrecursor ActivityKind = "precursor"
)

// ElectricitySource classifies an electricity record for Scope 2 treatment.
type ElectricitySource string

const (
	ElectricityGrid      ElectricitySource = "grid"
	ElectricityCaptive   ElectricitySource = "captive"
	ElectricityRenewable ElectricitySource = "renewable"
)

// ActivityRecord is one month of measured activity for an organisation and
// reporting period. It is a tagged variant: Kind selects which of the
// kind-specific field groups is meaningful. Records are immutable facts; the
// engines only ever read them.
type ActivityRecord struct {
	ID             string
	OrganisationID string
	PeriodID       string
	FacilityID     string

	Kind  ActivityKind
	Year  int
	Month int // 1..12

	Quantity float64
	Unit     string

	// Fuel fields.
	FuelName string

	// Electricity fields. Zero quantities are simply absent sources.
	Source            ElectricitySource
	GridQuantity      float64
	CaptiveQuantity   float64
	RenewableQuantity float64

	// Production fields.
	ProductID   string
	ProductName string
	CNCode      string

	// Precursor fields.
	MaterialName string
	SupplierID   string

	// InlineFactor is an emission factor entered directly on the record,
	// in tCO2e per normalized unit. Nil when the record relies on lookup.
	InlineFactor *float64

	CreatedAt time.Time
}

// ProductKey returns the identity used to group production records into
// products, falling back to the product name when no reference exists.
func (r ActivityRecord) ProductKey() string {
	if r.ProductID != "" {
		return r.ProductID
	}
	return r.ProductName
}
