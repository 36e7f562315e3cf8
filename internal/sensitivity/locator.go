package sensitivity

import (
	"fmt"
	"strconv"
	"strings"

	"budget-impact/internal/model"
)

// LocatorKind says which part of Inputs a Locator addresses.
type LocatorKind int

const (
	// StrategyCost addresses one cost field of a named strategy.
	StrategyCost LocatorKind = iota
	// InitialBalance addresses the scalar starting balance.
	InitialBalance
	// SeriesElement addresses one period of a per-period sequence.
	SeriesElement
)

// CostField names a Strategy cost component.
type CostField string

const (
	StaffCost        CostField = "staff_cost"
	ProcedureCost    CostField = "procedure_cost"
	AdverseEventCost CostField = "adverse_event_cost"
)

// Series names a per-period sequence that can be perturbed element-wise.
type Series string

const (
	BudgetInflow    Series = "budget_inflow"
	OtherExpenses   Series = "other_expenses"
	CoverageCurrent Series = "coverage_current"
	CoverageNew     Series = "coverage_new"
)

var costFieldAliases = map[string]CostField{
	"staff_cost":           StaffCost,
	"procedure_cost":       ProcedureCost,
	"adverse_event_cost":   AdverseEventCost,
	"costo_ts":             StaffCost,
	"costo_procedimientos": ProcedureCost,
	"costo_eventos":        AdverseEventCost,
}

var seriesAliases = map[string]Series{
	"budget_inflow":        BudgetInflow,
	"other_expenses":       OtherExpenses,
	"coverage_current":     CoverageCurrent,
	"coverage_new":         CoverageNew,
	"presupuesto_anual":    BudgetInflow,
	"otros_gastos_anuales": OtherExpenses,
	"cobertura_actual":     CoverageCurrent,
	"cobertura_nuevo":      CoverageNew,
}

// Locator is a parsed parameter address.
//
// Grammar:
//
//	strategy:<name>:<field>   field = staff_cost | procedure_cost | adverse_event_cost
//	inputs:initial_balance
//	inputs:<series>:<index>   series = budget_inflow | other_expenses | coverage_current | coverage_new
//
// "estrategia", "saldo_inicial" and the other original field names are accepted as aliases.
type Locator struct {
	Raw  string
	Kind LocatorKind

	Strategy string
	Field    CostField

	Series Series
	Index  int
}

func (l Locator) String() string { return l.Raw }

// Key is the canonical spelling of the address, so aliases of the same
// field compare equal.
func (l Locator) Key() string {
	switch l.Kind {
	case StrategyCost:
		return "strategy:" + l.Strategy + ":" + string(l.Field)
	case InitialBalance:
		return "inputs:initial_balance"
	default:
		return "inputs:" + string(l.Series) + ":" + strconv.Itoa(l.Index)
	}
}

func unsupported(raw, format string, args ...any) error {
	return &model.UnsupportedParameterError{Locator: raw, Reason: fmt.Sprintf(format, args...)}
}

// ParseLocator checks syntax only; Check verifies the address against a case.
func ParseLocator(raw string) (Locator, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	switch parts[0] {
	case "strategy", "estrategia":
		if len(parts) != 3 || parts[1] == "" {
			return Locator{}, unsupported(raw, "want strategy:<name>:<field>")
		}
		f, ok := costFieldAliases[parts[2]]
		if !ok {
			return Locator{}, unsupported(raw, "unknown strategy field %q", parts[2])
		}
		return Locator{Raw: raw, Kind: StrategyCost, Strategy: parts[1], Field: f}, nil
	case "inputs":
		if len(parts) == 2 && (parts[1] == "initial_balance" || parts[1] == "saldo_inicial") {
			return Locator{Raw: raw, Kind: InitialBalance}, nil
		}
		if len(parts) < 2 {
			return Locator{}, unsupported(raw, "missing inputs field")
		}
		s, ok := seriesAliases[parts[1]]
		if !ok {
			return Locator{}, unsupported(raw, "unknown inputs field %q", parts[1])
		}
		if len(parts) != 3 {
			return Locator{}, unsupported(raw, "want inputs:%s:<index>", parts[1])
		}
		idx, err := strconv.Atoi(parts[2])
		if err != nil || idx < 0 {
			return Locator{}, unsupported(raw, "bad period index %q", parts[2])
		}
		return Locator{Raw: raw, Kind: SeriesElement, Series: s, Index: idx}, nil
	default:
		return Locator{}, unsupported(raw, "unknown prefix %q", parts[0])
	}
}

// Check reports whether the locator addresses an existing field of in.
func (l Locator) Check(in *model.Inputs) error {
	switch l.Kind {
	case StrategyCost:
		if _, ok := in.StrategyByName(l.Strategy); !ok {
			return unsupported(l.Raw, "unknown strategy %q", l.Strategy)
		}
	case SeriesElement:
		n := len(l.series(in))
		if l.Index >= n {
			return unsupported(l.Raw, "period index %d out of range [0,%d)", l.Index, n)
		}
	}
	return nil
}

// Apply overwrites the addressed field of in with v. Callers pass a clone.
func (l Locator) Apply(in *model.Inputs, v float64) error {
	if err := l.Check(in); err != nil {
		return err
	}
	switch l.Kind {
	case StrategyCost:
		s, _ := in.StrategyByName(l.Strategy)
		switch l.Field {
		case StaffCost:
			s.StaffCost = v
		case ProcedureCost:
			s.ProcedureCost = v
		case AdverseEventCost:
			s.AdverseEventCost = v
		}
	case InitialBalance:
		in.InitialBalance = v
	case SeriesElement:
		l.series(in)[l.Index] = v
	}
	return nil
}

func (l Locator) series(in *model.Inputs) []float64 {
	switch l.Series {
	case BudgetInflow:
		return in.BudgetInflow
	case OtherExpenses:
		return in.OtherExpenses
	case CoverageCurrent:
		return in.CoverageCurrent
	case CoverageNew:
		return in.CoverageNew
	}
	return nil
}
