package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/carbonfabric/cbam/internal/domain"
)

// Memory is an in-memory Store used by tests and ephemeral runs. All methods
// are safe for concurrent use.
type Memory struct {
	mu sync.RWMutex

	activity     []domain.ActivityRecord
	factors      []domain.EmissionFactor
	cnCodes      map[string]CNCodeInfo
	suppliers    map[string]Supplier
	declarations []domain.SupplierDeclaration
	calculations map[string]domain.Calculation
	validations  []domain.ValidationResult
	reports      map[string]domain.Report
	periods      map[string]domain.ReportingPeriod
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		cnCodes:      make(map[string]CNCodeInfo),
		suppliers:    make(map[string]Supplier),
		calculations: make(map[string]domain.Calculation),
		reports:      make(map[string]domain.Report),
		periods:      make(map[string]domain.ReportingPeriod),
	}
}

func (m *Memory) ListActivity(_ context.Context, f ActivityFilter) ([]domain.ActivityRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.ActivityRecord
	for _, r := range m.activity {
		if r.OrganisationID != f.OrganisationID || r.PeriodID != f.PeriodID {
			continue
		}
		if f.Kind != "" && r.Kind != f.Kind {
			continue
		}
		if f.FacilityID != "" && r.FacilityID != f.FacilityID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) PutActivity(_ context.Context, rec domain.ActivityRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.activity {
		if r.ID == rec.ID {
			m.activity[i] = rec
			return nil
		}
	}
	m.activity = append(m.activity, rec)
	return nil
}

func (m *Memory) ListFactors(_ context.Context, organisationID string, t domain.FactorType) ([]domain.EmissionFactor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.EmissionFactor
	for _, f := range m.factors {
		if f.Type != t {
			continue
		}
		if f.OrganisationID != "" && f.OrganisationID != organisationID {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func (m *Memory) PutFactor(_ context.Context, f domain.EmissionFactor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.factors {
		if existing.ID == f.ID {
			m.factors[i] = f
			return nil
		}
	}
	m.factors = append(m.factors, f)
	return nil
}

func (m *Memory) LookupCNCode(_ context.Context, code string) (CNCodeInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.cnCodes[code]
	if !ok {
		return CNCodeInfo{}, ErrNotFound
	}
	return info, nil
}

func (m *Memory) PutCNCode(_ context.Context, info CNCodeInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cnCodes[info.Code] = info
	return nil
}

func (m *Memory) ListDeclarations(_ context.Context, organisationID, periodID string) ([]domain.SupplierDeclaration, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.SupplierDeclaration
	for _, d := range m.declarations {
		if d.OrganisationID == organisationID && d.PeriodID == periodID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *Memory) PutDeclaration(_ context.Context, d domain.SupplierDeclaration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.declarations {
		if existing.ID == d.ID {
			m.declarations[i] = d
			return nil
		}
	}
	m.declarations = append(m.declarations, d)
	return nil
}

func (m *Memory) ListSuppliers(_ context.Context, organisationID string) ([]Supplier, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Supplier
	for _, s := range m.suppliers {
		if s.OrganisationID == organisationID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) PutSupplier(_ context.Context, s Supplier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suppliers[s.ID] = s
	return nil
}

func (m *Memory) UpsertCalculation(_ context.Context, calc domain.Calculation) (domain.Calculation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	var existing *domain.Calculation
	for id := range m.calculations {
		c := m.calculations[id]
		if c.OrganisationID == calc.OrganisationID && c.PeriodID == calc.PeriodID {
			if existing == nil || c.Version > existing.Version {
				existing = &c
			}
		}
	}
	if existing != nil {
		if existing.Status == domain.CalculationFinalized {
			return domain.Calculation{}, ErrFinalized
		}
		calc.ID = existing.ID
		calc.Version = existing.Version + 1
		calc.CreatedAt = existing.CreatedAt
	} else {
		if calc.ID == "" {
			calc.ID = domain.NewID()
		}
		calc.Version = 1
		calc.CreatedAt = now
	}
	calc.UpdatedAt = now
	m.calculations[calc.ID] = calc
	return calc, nil
}

func (m *Memory) GetCalculation(_ context.Context, id string) (domain.Calculation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.calculations[id]
	if !ok {
		return domain.Calculation{}, ErrNotFound
	}
	return c, nil
}

func (m *Memory) SetCalculationStatus(_ context.Context, id string, status domain.CalculationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.calculations[id]
	if !ok {
		return ErrNotFound
	}
	c.Status = status
	c.UpdatedAt = time.Now().UTC()
	m.calculations[id] = c
	return nil
}

func (m *Memory) FinalizeCalculation(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.calculations[id]
	if !ok {
		return ErrNotFound
	}
	switch c.Status {
	case domain.CalculationFinalized:
		return nil
	case domain.CalculationValidated:
		c.Status = domain.CalculationFinalized
		c.UpdatedAt = time.Now().UTC()
		m.calculations[id] = c
		return nil
	default:
		return ErrNotValidated
	}
}

func (m *Memory) AppendValidation(_ context.Context, res domain.ValidationResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.validations = append(m.validations, res)
	return nil
}

func (m *Memory) ListValidations(_ context.Context, organisationID, periodID string) ([]domain.ValidationResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.ValidationResult
	for _, r := range m.validations {
		if r.OrganisationID == organisationID && r.PeriodID == periodID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) PutReport(_ context.Context, rep domain.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[rep.ID] = rep
	return nil
}

func (m *Memory) GetReport(_ context.Context, id string) (domain.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rep, ok := m.reports[id]
	if !ok {
		return domain.Report{}, ErrNotFound
	}
	return rep, nil
}

func (m *Memory) GetPeriod(_ context.Context, id string) (domain.ReportingPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.periods[id]
	if !ok {
		return domain.ReportingPeriod{}, ErrNotFound
	}
	return p, nil
}

func (m *Memory) PutPeriod(_ context.Context, p domain.ReportingPeriod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.periods[p.ID] = p
	return nil
}

// FindCalculation returns the current calculation for an organisation and
// period, matching on the highest version.
func (m *Memory) FindCalculation(organisationID, periodID string) (domain.Calculation, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var best domain.Calculation
	found := false
	for _, c := range m.calculations {
		if c.OrganisationID == organisationID && strings.EqualFold(c.PeriodID, periodID) {
			if !found || c.Version > best.Version {
				best = c
				found = true
			}
		}
	}
	return best, found
}
