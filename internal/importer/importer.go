// Package importer reads part lists from CSV, Excel and DXF files and
// material catalogs from CSV. It supports automatic delimiter detection,
// flexible column mapping and case-insensitive header recognition.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/AutoNestCut/internal/model"
)

// ImportResult holds the results of an import operation. Parts holds one
// entry per distinct part type in first-seen order.
type ImportResult struct {
	Parts    []model.PartQuantity
	Errors   []string
	Warnings []string
}

// ByMaterial groups the imported part types for the nester.
func (r ImportResult) ByMaterial() model.PartsByMaterial {
	pm := make(model.PartsByMaterial)
	for _, pq := range r.Parts {
		pm[pq.Template.Material] = append(pm[pq.Template.Material], pq)
	}
	return pm
}

// TotalQuantity returns the number of part instances imported.
func (r ImportResult) TotalQuantity() int {
	n := 0
	for _, pq := range r.Parts {
		n += pq.Quantity
	}
	return n
}

// add merges a part type into the result. Types with the same name,
// dimensions, material and grain are one type.
func (r *ImportResult) add(t model.PartTemplate, qty int) {
	for i := range r.Parts {
		e := r.Parts[i].Template
		if e.Name == t.Name && e.Width == t.Width && e.Height == t.Height &&
			e.Thickness == t.Thickness && e.Material == t.Material && e.Grain == t.Grain {
			r.Parts[i].Quantity += qty
			return
		}
	}
	r.Parts = append(r.Parts, model.PartQuantity{Template: t, Quantity: qty})
}

// Options controls how imported rows become part types.
type Options struct {
	// KnownMaterials are catalog names matched inside part names.
	KnownMaterials []string
	// DefaultMaterial is used when nothing else names a material.
	DefaultMaterial string
	// BoundingBox treats width, height and thickness as unordered bounding
	// extents and normalizes them with NormalizeDimensions.
	BoundingBox bool
}

func (o Options) materialResolvers() []MaterialResolver {
	return DefaultMaterialResolvers(o.KnownMaterials, o.DefaultMaterial)
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Name      int
	Width     int
	Height    int
	Quantity  int
	Grain     int
	Material  int
	Thickness int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"name":      {"name", "label", "part", "part name", "description", "desc", "piece", "item", "component"},
	"width":     {"width", "w", "x"},
	"height":    {"height", "h", "length", "len", "y"},
	"quantity":  {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
	"grain":     {"grain", "grain direction", "grain_direction", "direction", "grain dir", "orientation"},
	"material":  {"material", "mat", "stock", "board"},
	"thickness": {"thickness", "thick", "t", "depth", "d", "z"},
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		// Prefer delimiters with higher consistency and more columns
		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Matching is case-insensitive against known aliases for each role; the
// first column claiming a role wins. Without a recognizable header it
// returns the positional mapping Name, Width, Height, Quantity, Grain,
// Material, Thickness and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Name: -1, Width: -1, Height: -1, Quantity: -1, Grain: -1, Material: -1, Thickness: -1}
	roles := map[string]*int{
		"name":      &mapping.Name,
		"width":     &mapping.Width,
		"height":    &mapping.Height,
		"quantity":  &mapping.Quantity,
		"grain":     &mapping.Grain,
		"material":  &mapping.Material,
		"thickness": &mapping.Thickness,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias {
					isHeader = true
					if idx := roles[role]; *idx == -1 {
						*idx = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Name: 0, Width: 1, Height: 2, Quantity: 3, Grain: 4, Material: 5, Thickness: 6}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseDimension(row []string, idx int, what, rowLabel string) (float64, string) {
	s := getCell(row, idx)
	if s == "" {
		return 0, fmt.Sprintf("%s: Missing %s value", rowLabel, what)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, what, s)
	}
	return v, ""
}

// parseRow extracts a part type and quantity from a row using the given
// column mapping. Returns the template, quantity, any error message and any
// warning message.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, partCount int, opts Options) (model.PartTemplate, int, string, string) {
	name := getCell(row, mapping.Name)
	if name == "" {
		name = fmt.Sprintf("Part %d", partCount+1)
	}

	width, errMsg := parseDimension(row, mapping.Width, "width", rowLabel)
	if errMsg != "" {
		return model.PartTemplate{}, 0, errMsg, ""
	}
	height, errMsg := parseDimension(row, mapping.Height, "height", rowLabel)
	if errMsg != "" {
		return model.PartTemplate{}, 0, errMsg, ""
	}

	var thickness float64
	if getCell(row, mapping.Thickness) != "" {
		thickness, errMsg = parseDimension(row, mapping.Thickness, "thickness", rowLabel)
		if errMsg != "" {
			return model.PartTemplate{}, 0, errMsg, ""
		}
	}

	qty := 1
	if qtyStr := getCell(row, mapping.Quantity); qtyStr != "" {
		var err error
		qty, err = strconv.Atoi(qtyStr)
		if err != nil {
			return model.PartTemplate{}, 0, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), ""
		}
	}

	if width <= 0 || height <= 0 || thickness < 0 || qty <= 0 {
		return model.PartTemplate{}, 0, fmt.Sprintf("%s: Width, height, and quantity must be positive", rowLabel), ""
	}

	if opts.BoundingBox {
		thickness, width, height = NormalizeDimensions(width, height, thickness)
	}

	meta := PartMeta{Name: name, Material: getCell(row, mapping.Material), Grain: getCell(row, mapping.Grain)}
	material := ResolveMaterial(meta, opts.materialResolvers()...)

	var warning string
	grain := ResolveGrain(meta, ExplicitGrain)
	if _, ok := model.ParseGrain(meta.Grain); !ok {
		warning = fmt.Sprintf("%s: Unknown grain direction '%s', defaulting to any", rowLabel, meta.Grain)
	}

	return model.NewPartTemplate(name, width, height, thickness, material, grain), qty, "", warning
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports parts from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func ImportCSV(path string, opts Options) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := readCSV(bytes.NewReader(data), delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", warnings, opts)
}

// ImportCSVFromReader imports parts from a CSV reader with a specific delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune, opts Options) ImportResult {
	result := ImportResult{}

	records, err := readCSV(reader, delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil, opts)
}

func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	csvReader := csv.NewReader(r)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1
	return csvReader.ReadAll()
}

// ImportExcel imports parts from an Excel (.xlsx) file.
// Reads the first sheet and auto-detects column mapping from headers.
func ImportExcel(path string, opts Options) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil, opts)
}

// importFromRows is the shared import logic for both CSV and Excel data.
// It detects headers, maps columns, and parses each row into part types.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string, opts Options) ImportResult {
	result := ImportResult{
		Warnings: initialWarnings,
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		// Non-numeric width in the first row: an unrecognized header.
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		tmpl, qty, errMsg, warning := parseRow(row, mapping, rowLabel, len(result.Parts), opts)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}

		result.add(tmpl, qty)
	}

	return result
}
