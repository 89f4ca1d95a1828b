package engine

import (
	"sort"

	"github.com/carbonfabric/cbam/internal/domain"
)

// productGroup is the summed production for one product identity.
type productGroup struct {
	key      string
	id       string
	name     string
	cnCode   string
	unit     string
	quantity float64
}

// groupProduction folds production records into per-product quantity sums,
// keyed by product reference with a fallback to product name. Output ordering
// is deterministic (first appearance).
func groupProduction(records []domain.ActivityRecord) []productGroup {
	index := make(map[string]int)
	var groups []productGroup
	for _, rec := range records {
		key := rec.ProductKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, productGroup{
				key:    key,
				id:     rec.ProductID,
				name:   rec.ProductName,
				cnCode: rec.CNCode,
				unit:   rec.Unit,
			})
		}
		groups[i].quantity += rec.Quantity
	}
	return groups
}

// allocate distributes every scope total and every individual detail row
// across products by production share, then derives the three SEE figures per
// product. Scaling the detail rows too preserves traceability of which source
// contributed how much to each product, not just the aggregate.
//
// A zero total production cannot occur past the engine's fail-fast guard, but
// the division is guarded regardless: all shares resolve to zero.
func allocate(production []domain.ActivityRecord, s1, s2 scopeAccum, s3 scope3Accum) ([]domain.ProductCalculation, float64) {
	groups := groupProduction(production)

	var totalProduction float64
	for _, g := range groups {
		totalProduction += g.quantity
	}

	products := make([]domain.ProductCalculation, 0, len(groups))
	for _, g := range groups {
		var share float64
		if totalProduction > 0 {
			share = g.quantity / totalProduction
		}

		p := domain.ProductCalculation{
			ProductID:          g.id,
			ProductName:        g.name,
			CNCode:             g.cnCode,
			ProductionQuantity: g.quantity,
			ProductionUnit:     g.unit,
			Scope1:             s1.total * share,
			Scope2:             s2.total * share,
			Scope3Direct:       s3.direct * share,
			Scope3Indirect:     s3.indirect * share,
			Scope1Details:      scaleDetails(s1.details, share),
			Scope2Details:      scaleDetails(s2.details, share),
			Scope3Details:      scaleDetails(s3.details, share),
		}
		p.Scope3Total = p.Scope3Direct + p.Scope3Indirect
		p.TotalEmissions = p.Scope1 + p.Scope2 + p.Scope3Total

		if g.quantity > 0 {
			p.SEETotal = p.TotalEmissions / g.quantity
			p.SEEDirect = (p.Scope1 + p.Scope3Direct) / g.quantity
			p.SEEIndirect = (p.Scope2 + p.Scope3Indirect) / g.quantity
		}

		products = append(products, p)
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].ProductionQuantity > products[j].ProductionQuantity
	})

	return products, totalProduction
}

// scaleDetails returns a copy of details with quantity and emissions
// multiplied by share. The factor stays untouched; it describes the source,
// not the allocation.
func scaleDetails(details []domain.ScopeDetail, share float64) []domain.ScopeDetail {
	if len(details) == 0 {
		return nil
	}
	scaled := make([]domain.ScopeDetail, len(details))
	for i, d := range details {
		d.Quantity *= share
		d.Emissions *= share
		scaled[i] = d
	}
	return scaled
}
