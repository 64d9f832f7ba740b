package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	sheetParts     = "Parts"
	sheetBoards    = "Boards"
	sheetMaterials = "Materials"
	sheetSummary   = "Summary"
)

// ExportXLSX writes the report as a workbook with one sheet per section.
func ExportXLSX(path string, rep Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetParts); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{sheetBoards, sheetMaterials, sheetSummary} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	parts := [][]interface{}{{"Part#", "Name", "Width(mm)", "Height(mm)", "Thickness(mm)", "Material", "Area(mm²)", "Board#", "X Position", "Y Position", "Rotated", "Grain Direction"}}
	for _, p := range rep.Parts {
		parts = append(parts, []interface{}{p.Number, p.Name, p.Width, p.Height, p.Thickness, p.Material, p.Area, p.Board, p.X, p.Y, yesNo(p.Rotated), p.Grain})
	}

	boards := [][]interface{}{{"Board#", "Material", "Stock Size", "Parts Count", "Used Area(mm²)", "Waste Area(mm²)", "Waste %", "Efficiency %"}}
	for _, b := range rep.Boards {
		boards = append(boards, []interface{}{b.Number, b.Material, b.StockSize(), b.PartsCount, b.UsedArea, b.WasteArea, b.WastePercent, b.Efficiency})
	}

	materials := [][]interface{}{{"Material", "Stock Width", "Stock Height", "Boards", "Parts", "Unplaced", "Efficiency %", "Price/Sheet", "Cost", "Default Stock"}}
	for _, m := range rep.Materials {
		materials = append(materials, []interface{}{m.Material, m.StockWidth, m.StockHeight, m.Boards, m.Parts, m.Unplaced, m.Efficiency, m.PricePerSheet, m.Cost, yesNo(m.Defaulted)})
	}

	s := rep.Summary
	summary := [][]interface{}{
		{"Metric", "Value"},
		{"Total Parts", s.TotalParts},
		{"Total Boards", s.TotalBoards},
		{"Total Area (mm²)", s.TotalArea},
		{"Total Waste (mm²)", s.TotalWaste},
		{"Overall Waste %", s.OverallWastePercent},
		{"Overall Efficiency %", s.OverallEfficiency},
		{"Total Cost", s.TotalCost},
		{"Unplaced Parts", s.UnplacedParts},
	}

	for _, sheet := range []struct {
		name string
		rows [][]interface{}
	}{
		{sheetParts, parts},
		{sheetBoards, boards},
		{sheetMaterials, materials},
		{sheetSummary, summary},
	} {
		if err := writeRows(f, sheet.name, sheet.rows, header); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// writeRows fills a sheet from A1 and styles the first row as a header.
func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := row
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(len(rows[0]), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, headerStyle)
}
