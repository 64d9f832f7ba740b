// Package report summarizes a nesting result into per-part, per-board and
// per-material figures and writes them out as CSV, XLSX or HTML. Everything
// here reads the result; nothing modifies it.
package report

import (
	"fmt"
	"math"
	"sort"

	"github.com/piwi3910/AutoNestCut/internal/model"
)

// PartRow describes one placed part instance.
type PartRow struct {
	Number    string  `json:"part_number"`
	Name      string  `json:"name"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Thickness float64 `json:"thickness"`
	Material  string  `json:"material"`
	Area      float64 `json:"area"`
	Board     int     `json:"board_number"`
	X         float64 `json:"position_x"`
	Y         float64 `json:"position_y"`
	Rotated   bool    `json:"rotated"`
	Grain     string  `json:"grain_direction"`
}

// BoardRow summarizes one stock board.
type BoardRow struct {
	Number       int     `json:"board_number"`
	Material     string  `json:"material"`
	StockWidth   float64 `json:"stock_width"`
	StockHeight  float64 `json:"stock_height"`
	PartsCount   int     `json:"parts_count"`
	UsedArea     float64 `json:"used_area"`
	WasteArea    float64 `json:"waste_area"`
	WastePercent float64 `json:"waste_percentage"`
	Efficiency   float64 `json:"efficiency"`
}

// StockSize formats the board dimensions the way the cut list prints them.
func (b BoardRow) StockSize() string {
	return fmt.Sprintf("%gmm x %gmm", b.StockWidth, b.StockHeight)
}

// MaterialRow summarizes all boards of one material.
type MaterialRow struct {
	Material      string                  `json:"material"`
	StockWidth    float64                 `json:"stock_width"`
	StockHeight   float64                 `json:"stock_height"`
	PricePerSheet float64                 `json:"price_per_sheet"`
	Defaulted     bool                    `json:"defaulted"`
	Boards        int                     `json:"boards"`
	Parts         int                     `json:"parts"`
	Unplaced      int                     `json:"unplaced"`
	UsedArea      float64                 `json:"used_area"`
	TotalArea     float64                 `json:"total_area"`
	Efficiency    float64                 `json:"efficiency"`
	Cost          float64                 `json:"cost"`
	Estimate      *model.PurchaseEstimate `json:"estimate,omitempty"`
}

// Summary holds the overall totals.
type Summary struct {
	TotalParts          int     `json:"total_parts"`
	TotalBoards         int     `json:"total_boards"`
	TotalArea           float64 `json:"total_area"`
	TotalWaste          float64 `json:"total_waste"`
	OverallWastePercent float64 `json:"overall_waste_percentage"`
	OverallEfficiency   float64 `json:"overall_efficiency"`
	TotalCost           float64 `json:"total_cost"`
	UnplacedParts       int     `json:"unplaced_parts"`
}

// Report is the aggregated view of a nesting result.
type Report struct {
	Parts     []PartRow            `json:"parts"`
	Boards    []BoardRow           `json:"boards"`
	Materials []MaterialRow        `json:"materials"`
	Summary   Summary              `json:"summary"`
	Unplaced  []model.UnplacedPart `json:"unplaced"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Generate builds the report. Parts without a display ID are numbered in
// board then placement order.
func Generate(result model.NestResult) Report {
	rep := Report{
		Parts:    []PartRow{},
		Boards:   []BoardRow{},
		Unplaced: append([]model.UnplacedPart{}, result.Unplaced...),
	}
	materials := make(map[string]*MaterialRow)
	row := func(material string) *MaterialRow {
		if mr, ok := materials[material]; ok {
			return mr
		}
		mr := &MaterialRow{Material: material}
		if st, ok := result.Stock[material]; ok {
			mr.StockWidth = st.Width
			mr.StockHeight = st.Height
			mr.PricePerSheet = st.Price
			mr.Defaulted = st.Defaulted
		}
		materials[material] = mr
		return mr
	}

	var totalArea, totalWaste float64
	for i, b := range result.Boards {
		boardNum := i + 1
		rep.Boards = append(rep.Boards, BoardRow{
			Number:       boardNum,
			Material:     b.Material,
			StockWidth:   b.StockWidth,
			StockHeight:  b.StockHeight,
			PartsCount:   len(b.Parts),
			UsedArea:     round2(b.UsedArea()),
			WasteArea:    round2(b.WasteArea()),
			WastePercent: round2(b.WastePercentage()),
			Efficiency:   round2(b.Efficiency()),
		})
		totalArea += b.TotalArea()
		totalWaste += b.WasteArea()

		mr := row(b.Material)
		mr.Boards++
		mr.Parts += len(b.Parts)
		mr.UsedArea += b.UsedArea()
		mr.TotalArea += b.TotalArea()
		if mr.StockWidth == 0 && mr.StockHeight == 0 {
			mr.StockWidth, mr.StockHeight = b.StockWidth, b.StockHeight
		}

		for _, p := range b.Parts {
			number := p.InstanceID
			if number == "" {
				number = fmt.Sprintf("P%d", len(rep.Parts)+1)
			}
			rep.Parts = append(rep.Parts, PartRow{
				Number:    number,
				Name:      p.Name,
				Width:     round2(p.Width),
				Height:    round2(p.Height),
				Thickness: round2(p.Thickness),
				Material:  p.Material,
				Area:      round2(p.Area()),
				Board:     boardNum,
				X:         round2(p.X),
				Y:         round2(p.Y),
				Rotated:   p.Rotated,
				Grain:     p.Grain.String(),
			})
		}
	}

	for _, u := range result.Unplaced {
		row(u.Material).Unplaced += u.Count
	}

	names := make([]string, 0, len(materials))
	for name := range materials {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		mr := materials[name]
		mr.Cost = round2(float64(mr.Boards) * mr.PricePerSheet)
		if mr.TotalArea > 0 {
			mr.Efficiency = round2(mr.UsedArea / mr.TotalArea * 100)
		}
		mr.UsedArea = round2(mr.UsedArea)
		mr.TotalArea = round2(mr.TotalArea)
		rep.Materials = append(rep.Materials, *mr)
		rep.Summary.TotalCost += mr.Cost
	}

	rep.Summary.TotalParts = len(rep.Parts)
	rep.Summary.TotalBoards = len(result.Boards)
	rep.Summary.TotalArea = round2(totalArea)
	rep.Summary.TotalWaste = round2(totalWaste)
	if totalArea > 0 {
		rep.Summary.OverallWastePercent = round2(totalWaste / totalArea * 100)
	}
	rep.Summary.OverallEfficiency = round2(100 - rep.Summary.OverallWastePercent)
	rep.Summary.TotalCost = round2(rep.Summary.TotalCost)
	rep.Summary.UnplacedParts = result.UnplacedCount("")
	return rep
}

// WithEstimates returns a copy of r whose material rows carry an area-based
// purchase estimate for the requested parts.
func (r Report) WithEstimates(parts model.PartsByMaterial, kerf, wastePercent float64) Report {
	out := r
	out.Materials = make([]MaterialRow, len(r.Materials))
	for i, mr := range r.Materials {
		stock := model.StockMaterial{Name: mr.Material, Width: mr.StockWidth, Height: mr.StockHeight, Price: mr.PricePerSheet}
		est := model.CalculatePurchaseEstimate(parts[mr.Material], stock, kerf, wastePercent)
		mr.Estimate = &est
		out.Materials[i] = mr
	}
	return out
}
