// Package factors resolves effective emission factors for activity records.
//
// Resolution walks a fixed priority chain: verified supplier declaration,
// inline factor on the record, indexed reference lookup, category default,
// zero. It never fails; an unresolvable factor yields zero with provenance
// Unresolved so downstream validation can flag it.
package factors

import (
	"context"
	"fmt"
	"strings"

	"github.com/carbonfabric/cbam/internal/domain"
	"github.com/carbonfabric/cbam/internal/logging"
	"github.com/carbonfabric/cbam/internal/store"
)

// Provenance tags where a resolved factor came from.
type Provenance string

const (
	// ProvenanceSupplier marks a verified supplier declaration.
	ProvenanceSupplier Provenance = "supplier_declaration"

	// ProvenanceInline marks a factor entered directly on the record.
	ProvenanceInline Provenance = "inline"

	// ProvenanceReference marks a reference-data lookup hit.
	ProvenanceReference Provenance = "reference"

	// ProvenanceDefault marks a category default that carries its own
	// direct/indirect split.
	ProvenanceDefault Provenance = "category_default"

	// ProvenanceDefaultEstimated marks a category default whose
	// direct/indirect split was estimated (80/20), not measured.
	ProvenanceDefaultEstimated Provenance = "category_default_estimated"

	// ProvenanceUnresolved marks a factor that could not be resolved.
	// The resolved pair is zero and validation raises a warning.
	ProvenanceUnresolved Provenance = "unresolved"
)

// Split applied when a category default carries a single combined value with
// no direct/indirect breakdown. Heuristic carried over from established
// reporting practice; flagged as estimated in provenance.
const (
	DefaultDirectShare   = 0.8
	DefaultIndirectShare = 0.2
)

// Resolution is an effective (direct, indirect) factor pair plus provenance.
type Resolution struct {
	Direct     float64
	Indirect   float64
	Provenance Provenance

	// FactorID identifies the reference factor or declaration that
	// supplied the pair, when one did.
	FactorID string
}

// Total returns the combined factor.
func (r Resolution) Total() float64 { return r.Direct + r.Indirect }

type indexedFactor struct {
	factor    domain.EmissionFactor
	lowerName string
	orgScoped bool
}

// Resolver answers factor lookups from an index built once per calculation
// run. It holds no mutable state after construction and is safe for
// concurrent reads.
type Resolver struct {
	declarations map[string]domain.SupplierDeclaration
	byType       map[domain.FactorType][]indexedFactor
}

// NewResolver builds the lookup index for one organisation and period:
// verified supplier declarations keyed by lowercased product name, and active
// reference factors per type with organisation-scoped entries ahead of global
// ones.
func NewResolver(ctx context.Context, ref store.ReferenceStore, decls store.DeclarationStore, organisationID, periodID string) (*Resolver, error) {
	log := logging.FromContext(ctx)

	r := &Resolver{
		declarations: make(map[string]domain.SupplierDeclaration),
		byType:       make(map[domain.FactorType][]indexedFactor),
	}

	declarations, err := decls.ListDeclarations(ctx, organisationID, periodID)
	if err != nil {
		return nil, fmt.Errorf("load supplier declarations: %w", err)
	}
	for _, d := range declarations {
		if !d.Verified() || d.ProductName == "" {
			continue
		}
		r.declarations[strings.ToLower(d.ProductName)] = d
	}

	for _, t := range []domain.FactorType{domain.FactorFuel, domain.FactorElectricity, domain.FactorPrecursorDefault} {
		factors, err := ref.ListFactors(ctx, organisationID, t)
		if err != nil {
			return nil, fmt.Errorf("load %s factors: %w", t, err)
		}
		indexed := make([]indexedFactor, 0, len(factors))
		// Organisation-scoped factors first so the first match wins.
		for _, scoped := range []bool{true, false} {
			for _, f := range factors {
				if !f.IsActive || (f.OrganisationID != "") != scoped {
					continue
				}
				indexed = append(indexed, indexedFactor{
					factor:    f,
					lowerName: strings.ToLower(f.Name),
					orgScoped: scoped,
				})
			}
		}
		r.byType[t] = indexed
	}

	log.Debug().
		Str("component", "factors").
		Str("organisation_id", organisationID).
		Str("period_id", periodID).
		Int("declarations", len(r.declarations)).
		Msg("factor index built")

	return r, nil
}

// Resolve returns the effective factor pair for a record of the given type.
// name is the lookup key (fuel name or material name); records with neither a
// name nor an inline factor resolve to zero.
func (r *Resolver) Resolve(rec domain.ActivityRecord, t domain.FactorType) Resolution {
	name := rec.FuelName
	if t == domain.FactorPrecursorDefault {
		name = rec.MaterialName
	}

	// 1. Verified supplier declaration for this material/product.
	if name != "" {
		if d, ok := r.declarations[strings.ToLower(name)]; ok {
			return Resolution{
				Direct:     d.DirectFactor,
				Indirect:   d.IndirectFactor,
				Provenance: ProvenanceSupplier,
				FactorID:   d.ID,
			}
		}
	}

	// 2. Inline factor on the record itself.
	if rec.InlineFactor != nil {
		return Resolution{Direct: *rec.InlineFactor, Provenance: ProvenanceInline}
	}

	// 3. Reference lookup within the factor type.
	if f, ok := r.lookup(t, name); ok {
		if f.IndirectValue > 0 {
			return Resolution{
				Direct:     f.Value,
				Indirect:   f.IndirectValue,
				Provenance: ProvenanceReference,
				FactorID:   f.ID,
			}
		}
		return Resolution{Direct: f.Value, Provenance: ProvenanceReference, FactorID: f.ID}
	}

	// 4. Category default. A default carrying its own direct/indirect
	// split is used as-is; the 80/20 estimate applies only to defaults
	// that hold a single combined value.
	if t == domain.FactorPrecursorDefault {
		if f, ok := r.categoryDefault(); ok {
			if f.IndirectValue > 0 {
				return Resolution{
					Direct:     f.Value,
					Indirect:   f.IndirectValue,
					Provenance: ProvenanceDefault,
					FactorID:   f.ID,
				}
			}
			return Resolution{
				Direct:     f.Value * DefaultDirectShare,
				Indirect:   f.Value * DefaultIndirectShare,
				Provenance: ProvenanceDefaultEstimated,
				FactorID:   f.ID,
			}
		}
	}

	// 5. Zero. The engine still produces a row; validation flags it.
	return Resolution{Provenance: ProvenanceUnresolved}
}

// lookup finds the first active factor whose name matches: exact
// (case-insensitive) first, then substring either way. Organisation-scoped
// entries are ordered ahead of global ones in the index.
func (r *Resolver) lookup(t domain.FactorType, name string) (domain.EmissionFactor, bool) {
	if name == "" {
		return domain.EmissionFactor{}, false
	}
	lower := strings.ToLower(name)

	for _, idx := range r.byType[t] {
		if idx.lowerName == lower {
			return idx.factor, true
		}
	}
	for _, idx := range r.byType[t] {
		if strings.Contains(idx.lowerName, lower) || strings.Contains(lower, idx.lowerName) {
			return idx.factor, true
		}
	}
	return domain.EmissionFactor{}, false
}

// categoryDefault returns the generic precursor default factor, preferring an
// entry literally named "default", else the first active one.
func (r *Resolver) categoryDefault() (domain.EmissionFactor, bool) {
	entries := r.byType[domain.FactorPrecursorDefault]
	for _, idx := range entries {
		if idx.lowerName == "default" {
			return idx.factor, true
		}
	}
	if len(entries) > 0 {
		return entries[0].factor, true
	}
	return domain.EmissionFactor{}, false
}
