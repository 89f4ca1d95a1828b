package factors

import (
	"strings"

	"github.com/carbonfabric/cbam/internal/domain"
)

// ResolveElectricity resolves the factor for one electricity source within a
// record. The chain is inline factor, then reference lookup by source name
// ("grid", "captive"), then Unresolved; the engine substitutes its fixed
// defaults for unresolved grid and captive sources. Renewable sources never
// reach resolution: their factor is forced to zero by the engine regardless
// of any factor supplied.
func (r *Resolver) ResolveElectricity(rec domain.ActivityRecord, source domain.ElectricitySource) Resolution {
	if rec.InlineFactor != nil {
		return Resolution{Direct: *rec.InlineFactor, Provenance: ProvenanceInline}
	}

	name := strings.ToLower(string(source))
	if f, ok := r.lookup(domain.FactorElectricity, name); ok {
		return Resolution{Direct: f.Value, Provenance: ProvenanceReference, FactorID: f.ID}
	}

	return Resolution{Provenance: ProvenanceUnresolved}
}
