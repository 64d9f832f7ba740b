package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/piwi3910/AutoNestCut/internal/model"
)

var materialHeader = []string{"name", "width", "height", "price", "supplier", "notes"}

// ImportMaterialsCSV reads a material catalog. The header is required and
// matched case-insensitively; the name column may also be called
// "material". Missing sizes default to the standard sheet and a missing
// price to 0. Rows without a name are skipped with a warning.
func ImportMaterialsCSV(r io.Reader) ([]model.StockMaterial, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot read materials CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("materials CSV is empty")
	}

	cols := make(map[string]int)
	for i, h := range records[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "material" {
			key = "name"
		}
		if _, seen := cols[key]; !seen {
			cols[key] = i
		}
	}
	if _, ok := cols["name"]; !ok {
		return nil, nil, fmt.Errorf("materials CSV has no name column")
	}
	cell := func(row []string, key string) string {
		idx, ok := cols[key]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	number := func(row []string, key string, def float64) (float64, error) {
		s := cell(row, key)
		if s == "" {
			return def, nil
		}
		return strconv.ParseFloat(s, 64)
	}

	var materials []model.StockMaterial
	var warnings []string
	for i, row := range records[1:] {
		line := i + 2
		name := cell(row, "name")
		if name == "" {
			if !isEmptyRow(row) {
				warnings = append(warnings, fmt.Sprintf("Line %d: Missing material name, skipped", line))
			}
			continue
		}
		m := model.StockMaterial{Name: name, Supplier: cell(row, "supplier"), Notes: cell(row, "notes")}
		if m.Width, err = number(row, "width", model.DefaultStockWidth); err != nil {
			return nil, warnings, fmt.Errorf("line %d: invalid width: %w", line, err)
		}
		if m.Height, err = number(row, "height", model.DefaultStockHeight); err != nil {
			return nil, warnings, fmt.Errorf("line %d: invalid height: %w", line, err)
		}
		if m.Price, err = number(row, "price", 0); err != nil {
			return nil, warnings, fmt.Errorf("line %d: invalid price: %w", line, err)
		}
		if err := m.Validate(); err != nil {
			return nil, warnings, fmt.Errorf("line %d: %w", line, err)
		}
		materials = append(materials, m)
	}
	return materials, warnings, nil
}

// ExportMaterialsCSV writes a material catalog readable by ImportMaterialsCSV.
func ExportMaterialsCSV(w io.Writer, materials []model.StockMaterial) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(materialHeader); err != nil {
		return err
	}
	for _, m := range materials {
		row := []string{
			m.Name,
			strconv.FormatFloat(m.Width, 'f', -1, 64),
			strconv.FormatFloat(m.Height, 'f', -1, 64),
			strconv.FormatFloat(m.Price, 'f', -1, 64),
			m.Supplier,
			m.Notes,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
