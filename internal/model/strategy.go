package model

// Strategy is a treatment or comparator option with an additive per-patient-year
// cost structure.
// Units: all costs are currency per patient per year.
type Strategy struct {
	Name             string
	StaffCost        float64
	ProcedureCost    float64
	AdverseEventCost float64
	// CohortMultipliers scales the base cost for a named cohort. Cohorts
	// without an entry use 1.0.
	CohortMultipliers map[string]float64
}

// PerPatientCost is the sum of the three cost components.
func (s Strategy) PerPatientCost() float64 {
	return s.StaffCost + s.ProcedureCost + s.AdverseEventCost
}

func (s Strategy) PerPatientCostForCohort(cohort string) float64 {
	base := s.PerPatientCost()
	if m, ok := s.CohortMultipliers[cohort]; ok {
		return base * m
	}
	return base
}

// ScaleCosts multiplies every cost component by f.
func (s *Strategy) ScaleCosts(f float64) {
	s.StaffCost *= f
	s.ProcedureCost *= f
	s.AdverseEventCost *= f
}

func (s Strategy) clone() Strategy {
	out := s
	if s.CohortMultipliers != nil {
		out.CohortMultipliers = make(map[string]float64, len(s.CohortMultipliers))
		for k, v := range s.CohortMultipliers {
			out.CohortMultipliers[k] = v
		}
	}
	return out
}

// Cohort is a population subgroup. Weights across a case sum to 1.
type Cohort struct {
	Name   string
	Weight float64
}
