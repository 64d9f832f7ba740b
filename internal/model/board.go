package model

// GridStep is the scan increment in mm used by FindBestPosition. Changing it
// changes every layout the engine produces.
const GridStep = 10.0

// Board is one physical stock sheet and the parts placed on it, in
// placement order.
type Board struct {
	Material    string  `json:"material"`
	StockWidth  float64 `json:"stock_width"`  // mm
	StockHeight float64 `json:"stock_height"` // mm
	Parts       []*Part `json:"parts"`
}

func NewBoard(material string, w, h float64) *Board {
	return &Board{
		Material:    material,
		StockWidth:  w,
		StockHeight: h,
		Parts:       []*Part{},
	}
}

// AddPart positions the part at (x, y) and appends it. No fit checking is
// done; callers validate with CanFitPart or FindBestPosition first.
func (b *Board) AddPart(p *Part, x, y float64) {
	p.X = x
	p.Y = y
	b.Parts = append(b.Parts, p)
}

// CanFitPart reports whether p, with kerf clearance, can sit at (x, y)
// without leaving the sheet or crossing any placed part. Boxes may touch.
func (b *Board) CanFitPart(p *Part, x, y, kerf float64) bool {
	right := x + p.Width + kerf
	bottom := y + p.Height + kerf
	if right > b.StockWidth || bottom > b.StockHeight {
		return false
	}

	for _, existing := range b.Parts {
		existingRight := existing.X + existing.Width + kerf
		existingBottom := existing.Y + existing.Height + kerf
		if !(x >= existingRight || right <= existing.X ||
			y >= existingBottom || bottom <= existing.Y) {
			return false
		}
	}
	return true
}

// FindBestPosition scans the sheet top-to-bottom, left-to-right on a
// GridStep grid and returns the first position where p fits in its current
// orientation. ok is false when no position exists.
func (b *Board) FindBestPosition(p *Part, kerf float64) (x, y float64, ok bool) {
	if p.Width+kerf > b.StockWidth || p.Height+kerf > b.StockHeight {
		return 0, 0, false
	}

	maxY := b.StockHeight - p.Height - kerf
	maxX := b.StockWidth - p.Width - kerf
	// Integer step counters keep the grid exact for long scans.
	for row := 0; float64(row)*GridStep <= maxY; row++ {
		cy := float64(row) * GridStep
		for col := 0; float64(col)*GridStep <= maxX; col++ {
			cx := float64(col) * GridStep
			if b.CanFitPart(p, cx, cy, kerf) {
				return cx, cy, true
			}
		}
	}
	return 0, 0, false
}

// UsedArea returns the total area of placed parts.
func (b *Board) UsedArea() float64 {
	var total float64
	for _, p := range b.Parts {
		total += p.Area()
	}
	return total
}

// TotalArea returns the stock sheet area.
func (b *Board) TotalArea() float64 {
	return b.StockWidth * b.StockHeight
}

func (b *Board) WasteArea() float64 {
	return b.TotalArea() - b.UsedArea()
}

// WastePercentage returns waste as a percentage of the sheet, 0 for an empty sheet size.
func (b *Board) WastePercentage() float64 {
	ta := b.TotalArea()
	if ta == 0 {
		return 0
	}
	return b.WasteArea() / ta * 100.0
}

// Efficiency returns the usage percentage.
func (b *Board) Efficiency() float64 {
	return 100.0 - b.WastePercentage()
}
