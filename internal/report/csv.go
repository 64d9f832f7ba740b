package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// WriteCSV writes the cut list as one CSV stream with a parts section, a
// board summary, a material summary and the overall totals. Sections are
// separated by an empty row.
func WriteCSV(w io.Writer, rep Report) error {
	cw := csv.NewWriter(w)
	// Section rows have different widths.
	cw.Write([]string{"PARTS LIST"})
	cw.Write([]string{"Part#", "Name", "Width(mm)", "Height(mm)", "Thickness(mm)", "Material", "Area(mm²)", "Board#", "X Position", "Y Position", "Rotated", "Grain Direction"})
	for _, p := range rep.Parts {
		cw.Write([]string{
			p.Number, p.Name, ftoa(p.Width), ftoa(p.Height), ftoa(p.Thickness), p.Material,
			ftoa(p.Area), strconv.Itoa(p.Board), ftoa(p.X), ftoa(p.Y), yesNo(p.Rotated), p.Grain,
		})
	}
	cw.Write(nil)

	cw.Write([]string{"BOARDS SUMMARY"})
	cw.Write([]string{"Board#", "Material", "Stock Size", "Parts Count", "Used Area(mm²)", "Waste Area(mm²)", "Waste %", "Efficiency %"})
	for _, b := range rep.Boards {
		cw.Write([]string{
			strconv.Itoa(b.Number), b.Material, b.StockSize(), strconv.Itoa(b.PartsCount),
			ftoa(b.UsedArea), ftoa(b.WasteArea), ftoa(b.WastePercent), ftoa(b.Efficiency),
		})
	}
	cw.Write(nil)

	cw.Write([]string{"MATERIALS SUMMARY"})
	cw.Write([]string{"Material", "Stock Size", "Boards", "Parts", "Unplaced", "Efficiency %", "Price/Sheet", "Cost"})
	for _, m := range rep.Materials {
		cw.Write([]string{
			m.Material, fmt.Sprintf("%gmm x %gmm", m.StockWidth, m.StockHeight),
			strconv.Itoa(m.Boards), strconv.Itoa(m.Parts), strconv.Itoa(m.Unplaced),
			ftoa(m.Efficiency), ftoa(m.PricePerSheet), ftoa(m.Cost),
		})
	}
	cw.Write(nil)

	if len(rep.Unplaced) > 0 {
		cw.Write([]string{"UNPLACED PARTS"})
		cw.Write([]string{"Name", "Material", "Count", "Reason"})
		for _, u := range rep.Unplaced {
			cw.Write([]string{u.Name, u.Material, strconv.Itoa(u.Count), string(u.Reason)})
		}
		cw.Write(nil)
	}

	s := rep.Summary
	cw.Write([]string{"OVERALL SUMMARY"})
	cw.Write([]string{"Total Parts", strconv.Itoa(s.TotalParts)})
	cw.Write([]string{"Total Boards", strconv.Itoa(s.TotalBoards)})
	cw.Write([]string{"Total Area (mm²)", ftoa(s.TotalArea)})
	cw.Write([]string{"Total Waste (mm²)", ftoa(s.TotalWaste)})
	cw.Write([]string{"Overall Waste %", ftoa(s.OverallWastePercent)})
	cw.Write([]string{"Overall Efficiency %", ftoa(s.OverallEfficiency)})
	cw.Write([]string{"Total Cost", ftoa(s.TotalCost)})
	cw.Write([]string{"Unplaced Parts", strconv.Itoa(s.UnplacedParts)})

	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the report to a CSV file at path.
func ExportCSV(path string, rep Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	if err := WriteCSV(f, rep); err != nil {
		f.Close()
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return f.Close()
}
