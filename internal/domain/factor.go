package domain

// FactorType classifies a reference emission factor.
type FactorType string

const (
	FactorFuel             FactorType = "fuel"
	FactorElectricity      FactorType = "electricity"
	FactorPrecursorDefault FactorType = "precursor_default"
)

// EmissionFactor is a named coefficient converting a physical quantity into
// tCO2e. Factors are scoped globally (OrganisationID == "") or to one
// organisation; organisation-scoped factors win over global ones.
type EmissionFactor struct {
	ID             string
	OrganisationID string
	Type           FactorType
	Name           string
	CountryCode    string
	Year           int

	// Value is tCO2e per normalized unit. Never negative.
	Value float64

	// IndirectValue is the indirect component for factors that carry a
	// direct/indirect split. Zero when the factor is a single coefficient.
	IndirectValue float64

	IsActive bool
}

// DeclarationStatus is the review state of a supplier declaration.
type DeclarationStatus string

const (
	DeclarationPending  DeclarationStatus = "PENDING"
	DeclarationVerified DeclarationStatus = "VERIFIED"
	DeclarationRejected DeclarationStatus = "REJECTED"
)

// SupplierDeclaration is a supplier-provided emission factor pair for one
// material or product in one reporting period. Only VERIFIED declarations
// participate in calculation; other statuses are informational.
type SupplierDeclaration struct {
	ID             string
	OrganisationID string
	PeriodID       string
	SupplierID     string
	SupplierName   string
	CountryCode    string
	ProductName    string

	DirectFactor   float64
	IndirectFactor float64

	Status DeclarationStatus
}

// Verified reports whether the declaration may be used for factor resolution.
func (d SupplierDeclaration) Verified() bool {
	return d.Status == DeclarationVerified
}
