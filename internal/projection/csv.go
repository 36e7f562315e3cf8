package projection

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
)

// TableHeader is the stable column set of the projection table.
var TableHeader = []string{
	"period",
	"population",
	"coverage_current",
	"coverage_new",
	"cost_per_patient_current",
	"cost_per_patient_new",
	"aggregate_current",
	"aggregate_new",
	"impact",
	"balance",
}

func WriteTableCSV(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := EncodeTableCSV(f, rows); err != nil {
		return err
	}
	return f.Close()
}

func EncodeTableCSV(out io.Writer, rows []Row) error {
	w := csv.NewWriter(out)
	if err := w.Write(TableHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(r.Values()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Values renders the row in TableHeader order.
func (r Row) Values() []string {
	return []string{
		strconv.Itoa(r.Period),
		fmtFloat(r.Population),
		fmtFloat(r.CoverageCurrent),
		fmtFloat(r.CoverageNew),
		fmtFloat(r.CostPerPatientCurrent),
		fmtFloat(r.CostPerPatientNew),
		fmtFloat(r.AggregateCurrent),
		fmtFloat(r.AggregateNew),
		fmtFloat(r.Impact),
		fmtFloat(r.Balance),
	}
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
