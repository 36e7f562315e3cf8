package report

import (
	"fmt"
	"io"
	"os"

	"budget-impact/internal/projection"
	"budget-impact/internal/sensitivity"

	"github.com/xuri/excelize/v2"
)

const (
	SheetProjection = "Projection"
	SheetDSA        = "DSA"
	SheetPSA        = "PSA"
)

var (
	dsaHeader = []string{"parameter", "base", "impact_at_min", "impact_at_max", "delta"}
	psaHeader = []string{"trial", "total_impact", "final_balance"}
)

// WriteWorkbook writes an XLSX workbook with the projection table and, when
// given, the DSA rows and PSA trials on their own sheets.
func WriteWorkbook(w io.Writer, res *projection.Result, dsa []sensitivity.DSARow, trials []sensitivity.Trial) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetProjection); err != nil {
		return err
	}
	rows := make([][]any, len(res.Table))
	for i, r := range res.Table {
		rows[i] = []any{
			r.Period, r.Population, r.CoverageCurrent, r.CoverageNew,
			r.CostPerPatientCurrent, r.CostPerPatientNew,
			r.AggregateCurrent, r.AggregateNew, r.Impact, r.Balance,
		}
	}
	if err := writeSheet(f, SheetProjection, projection.TableHeader, rows); err != nil {
		return err
	}

	if len(dsa) > 0 {
		rows = make([][]any, len(dsa))
		for i, d := range dsa {
			rows[i] = []any{d.Parameter, d.Base, d.ImpactAtMin, d.ImpactAtMax, d.Delta}
		}
		if err := addSheet(f, SheetDSA, dsaHeader, rows); err != nil {
			return err
		}
	}

	if len(trials) > 0 {
		rows = make([][]any, len(trials))
		for i, tr := range trials {
			rows[i] = []any{tr.ID, tr.TotalImpact, tr.FinalBalance}
		}
		if err := addSheet(f, SheetPSA, psaHeader, rows); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	_, err := f.WriteTo(w)
	return err
}

// SaveWorkbook is WriteWorkbook into a file.
func SaveWorkbook(path string, res *projection.Result, dsa []sensitivity.DSARow, trials []sensitivity.Trial) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := WriteWorkbook(out, res, dsa, trials); err != nil {
		return err
	}
	return out.Close()
}

func addSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	return writeSheet(f, sheet, header, rows)
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]any) error {
	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("%s %s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
