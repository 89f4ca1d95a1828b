// Package store defines the persistence contracts the engines depend on and
// provides the sqlite implementation used by the CLI. The engines only need
// read access to activity and reference data plus upsert/append semantics for
// their outputs; everything else about persistence is the store's business.
package store

import (
	"context"

	"github.com/carbonfabric/cbam/internal/domain"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = constError("not found")

	// ErrFinalized indicates an attempt to replace a finalized calculation.
	ErrFinalized = constError("calculation is finalized")

	// ErrNotValidated indicates an attempt to finalize a calculation that
	// has not passed validation.
	ErrNotValidated = constError("calculation is not validated")
)

// ActivityFilter narrows an activity-record query. Zero fields match all.
type ActivityFilter struct {
	OrganisationID string
	PeriodID       string
	FacilityID     string
	Kind           domain.ActivityKind
}

// ActivityStore supplies the measured activity facts for a reporting period.
type ActivityStore interface {
	ListActivity(ctx context.Context, f ActivityFilter) ([]domain.ActivityRecord, error)
	PutActivity(ctx context.Context, rec domain.ActivityRecord) error
}

// ReferenceStore supplies emission-factor and CN-code reference data.
type ReferenceStore interface {
	// ListFactors returns factors of the given type visible to the
	// organisation: its own factors plus global ones. Inactive factors
	// are included; resolution filters on IsActive.
	ListFactors(ctx context.Context, organisationID string, t domain.FactorType) ([]domain.EmissionFactor, error)
	PutFactor(ctx context.Context, f domain.EmissionFactor) error

	// LookupCNCode returns the known CN-code entry, or ErrNotFound.
	LookupCNCode(ctx context.Context, code string) (CNCodeInfo, error)
	PutCNCode(ctx context.Context, info CNCodeInfo) error
}

// CNCodeInfo is the reference metadata for one Combined Nomenclature code.
type CNCodeInfo struct {
	Code           string
	Description    string
	CBAMApplicable bool
}

// DeclarationStore supplies supplier declarations for a period.
type DeclarationStore interface {
	ListDeclarations(ctx context.Context, organisationID, periodID string) ([]domain.SupplierDeclaration, error)
	PutDeclaration(ctx context.Context, d domain.SupplierDeclaration) error

	// ListSuppliers returns the suppliers known to the organisation.
	ListSuppliers(ctx context.Context, organisationID string) ([]Supplier, error)
	PutSupplier(ctx context.Context, s Supplier) error
}

// Supplier is the master-data view of a supplier the validation rules check.
type Supplier struct {
	ID             string
	OrganisationID string
	Name           string
	CountryCode    string
}

// CalculationStore persists calculation results.
type CalculationStore interface {
	// UpsertCalculation atomically replaces the non-finalized calculation
	// for (organisation, period), incrementing its version, or inserts a
	// fresh one at version 1. A finalized calculation is never touched;
	// if one holds the key the upsert returns ErrFinalized.
	UpsertCalculation(ctx context.Context, calc domain.Calculation) (domain.Calculation, error)

	GetCalculation(ctx context.Context, id string) (domain.Calculation, error)

	// SetCalculationStatus advances the lifecycle state of a calculation.
	SetCalculationStatus(ctx context.Context, id string, status domain.CalculationStatus) error

	// FinalizeCalculation locks a validated calculation against further
	// upserts. Only VALIDATED calculations can be finalized; finalizing an
	// already-FINALIZED calculation is a no-op, any other state returns
	// ErrNotValidated.
	FinalizeCalculation(ctx context.Context, id string) error
}

// ValidationStore appends validation history.
type ValidationStore interface {
	AppendValidation(ctx context.Context, res domain.ValidationResult) error
	ListValidations(ctx context.Context, organisationID, periodID string) ([]domain.ValidationResult, error)
}

// ReportStore persists generated reports.
type ReportStore interface {
	PutReport(ctx context.Context, rep domain.Report) error
	GetReport(ctx context.Context, id string) (domain.Report, error)
}

// PeriodStore resolves reporting periods.
type PeriodStore interface {
	GetPeriod(ctx context.Context, id string) (domain.ReportingPeriod, error)
	PutPeriod(ctx context.Context, p domain.ReportingPeriod) error
}

// Store is the full persistence surface the CLI wires into the engines.
type Store interface {
	ActivityStore
	ReferenceStore
	DeclarationStore
	CalculationStore
	ValidationStore
	ReportStore
	PeriodStore
}
