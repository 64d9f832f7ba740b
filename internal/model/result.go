package model

// UnplacedReason explains why parts were left out of the layout.
type UnplacedReason string

const (
	ReasonTooLarge     UnplacedReason = "too_large"     // Does not fit an empty board in any allowed orientation
	ReasonInvalidPart  UnplacedReason = "invalid_part"  // Non-positive dimensions or negative quantity
	ReasonInvalidStock UnplacedReason = "invalid_stock" // Material stock has no usable area
)

// UnplacedPart reports copies of one part type that could not be nested.
type UnplacedPart struct {
	Material   string         `json:"material"`
	TemplateID string         `json:"template_id"`
	Name       string         `json:"name"`
	Count      int            `json:"count"`
	Reason     UnplacedReason `json:"reason"`
}

// ResolvedStock is the stock actually used for a material. Defaulted is set
// when the material had no configured stock and the default sheet was used.
type ResolvedStock struct {
	StockMaterial
	Defaulted bool `json:"defaulted"`
}

// NestResult holds the full solution. Consumers treat it as read-only.
type NestResult struct {
	Boards   []*Board                 `json:"boards"`
	Unplaced []UnplacedPart           `json:"unplaced"`
	Stock    map[string]ResolvedStock `json:"stock"`
}

// PlacedCount returns how many part instances of material were placed.
// An empty material name counts every material.
func (r NestResult) PlacedCount(material string) int {
	n := 0
	for _, b := range r.Boards {
		if material == "" || b.Material == material {
			n += len(b.Parts)
		}
	}
	return n
}

// UnplacedCount returns how many part instances of material were not placed.
// An empty material name counts every material.
func (r NestResult) UnplacedCount(material string) int {
	n := 0
	for _, u := range r.Unplaced {
		if material == "" || u.Material == material {
			n += u.Count
		}
	}
	return n
}

// BoardsFor returns the boards of one material in output order.
func (r NestResult) BoardsFor(material string) []*Board {
	var boards []*Board
	for _, b := range r.Boards {
		if b.Material == material {
			boards = append(boards, b)
		}
	}
	return boards
}

// TotalEfficiency returns overall material usage percentage.
func (r NestResult) TotalEfficiency() float64 {
	var usedArea, totalArea float64
	for _, b := range r.Boards {
		usedArea += b.UsedArea()
		totalArea += b.TotalArea()
	}
	if totalArea == 0 {
		return 0
	}
	return (usedArea / totalArea) * 100.0
}
