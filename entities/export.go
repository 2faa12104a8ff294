package entities

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var exportHeader = []string{
	"company", "year", "source_doc",
	"revenue", "revenue_reasoning", "revenue_unit", "revenue_unit_reasoning",
	"risks", "risks_reasoning",
	"human_capital", "human_capital_reasoning",
}

// Export writes the aggregated table to path, as XLSX when the path
// ends in .xlsx and CSV otherwise.
func Export(rows []Row, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return exportXLSX(rows, path)
	}
	return exportCSV(rows, path)
}

func (r Row) cells() []string {
	return []string{
		r.Company,
		strconv.Itoa(r.Year),
		r.SourceDoc,
		floatCell(r.Revenue),
		stringCell(r.RevenueReasoning),
		stringCell(r.RevenueUnit),
		stringCell(r.RevenueUnitReasoning),
		stringCell(r.Risks),
		stringCell(r.RisksReasoning),
		intCell(r.HumanCapital),
		stringCell(r.HumanCapitalReasoning),
	}
}

func exportCSV(rows []Row, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row.cells()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func exportXLSX(rows []Row, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for col, name := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}

	for i, row := range rows {
		for col, value := range row.cells() {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}

func stringCell(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func intCell(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
