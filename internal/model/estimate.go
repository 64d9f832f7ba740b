package model

import "math"

// PurchaseEstimate holds an area-based sheet purchasing calculation for one material.
type PurchaseEstimate struct {
	TotalPartArea     float64 `json:"total_part_area"`     // Total area of all parts incl. kerf (sq mm)
	TotalBoardFeet    float64 `json:"total_board_feet"`    // Total area in board feet (1 bf = 144 sq in = 92903.04 sq mm)
	SheetArea         float64 `json:"sheet_area"`          // Area of one sheet (sq mm)
	SheetsNeededExact float64 `json:"sheets_needed_exact"` // Exact fractional number of sheets
	SheetsNeededMin   int     `json:"sheets_needed_min"`   // Minimum sheets (ceiling of exact)
	SheetsWithWaste   int     `json:"sheets_with_waste"`   // Recommended sheets including waste factor
	WastePercent      float64 `json:"waste_percent"`       // Waste factor applied (e.g., 15 for 15%)
	EstimatedCost     float64 `json:"estimated_cost"`
	PricePerSheet     float64 `json:"price_per_sheet"`
	KerfWidth         float64 `json:"kerf_width"`
}

// sqmmPerBoardFoot is the number of square millimeters in one board foot.
const sqmmPerBoardFoot = 92903.04

// CalculatePurchaseEstimate estimates how many sheets of stock a cut list needs
// from area alone. It ignores layout, so it is a lower bound on what the
// nester will produce.
func CalculatePurchaseEstimate(parts []PartQuantity, stock StockMaterial, kerfWidth, wastePercent float64) PurchaseEstimate {
	var totalPartArea float64
	for _, pq := range parts {
		if pq.Quantity <= 0 {
			continue
		}
		partW := pq.Template.Width + kerfWidth
		partH := pq.Template.Height + kerfWidth
		totalPartArea += partW * partH * float64(pq.Quantity)
	}

	sheetArea := stock.Width * stock.Height
	if sheetArea <= 0 {
		return PurchaseEstimate{
			TotalPartArea:  totalPartArea,
			TotalBoardFeet: totalPartArea / sqmmPerBoardFoot,
			WastePercent:   wastePercent,
			KerfWidth:      kerfWidth,
		}
	}

	exactSheets := totalPartArea / sheetArea
	minSheets := int(math.Ceil(exactSheets))

	wasteFactor := 1.0 + (wastePercent / 100.0)
	sheetsWithWaste := int(math.Ceil(exactSheets * wasteFactor))
	if sheetsWithWaste < minSheets {
		sheetsWithWaste = minSheets
	}

	return PurchaseEstimate{
		TotalPartArea:     totalPartArea,
		TotalBoardFeet:    totalPartArea / sqmmPerBoardFoot,
		SheetArea:         sheetArea,
		SheetsNeededExact: exactSheets,
		SheetsNeededMin:   minSheets,
		SheetsWithWaste:   sheetsWithWaste,
		WastePercent:      wastePercent,
		EstimatedCost:     float64(sheetsWithWaste) * stock.Price,
		PricePerSheet:     stock.Price,
		KerfWidth:         kerfWidth,
	}
}
