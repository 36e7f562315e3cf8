package model

import "fmt"

// ValidationError reports an Inputs invariant that does not hold.
// Period is 1-based; 0 means the error is not tied to a period.
type ValidationError struct {
	Field   string
	Period  int
	Message string
}

func (e *ValidationError) Error() string {
	if e.Period > 0 {
		return fmt.Sprintf("invalid %s in period %d: %s", e.Field, e.Period, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field string, period int, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Period: period, Message: fmt.Sprintf(format, args...)}
}

// UnsupportedParameterError is returned for a parameter locator that is
// malformed or addresses a field sensitivity analysis cannot perturb.
type UnsupportedParameterError struct {
	Locator string
	Reason  string
}

func (e *UnsupportedParameterError) Error() string {
	return fmt.Sprintf("unsupported field %q: %s", e.Locator, e.Reason)
}
