package analysis

import (
	"sort"

	"budget-impact/internal/sensitivity"
)

// TornadoOrder returns a copy of rows sorted descending by Delta, the
// largest driver first, as a tornado chart draws them.
func TornadoOrder(rows []sensitivity.DSARow) []sensitivity.DSARow {
	out := make([]sensitivity.DSARow, len(rows))
	copy(out, rows)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Delta > out[j].Delta
	})
	return out
}
