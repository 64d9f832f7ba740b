package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Grain represents the grain direction constraint for a part.
type Grain int

const (
	GrainAny        Grain = iota // No grain constraint, can rotate freely
	GrainHorizontal              // Grain runs along the width
	GrainVertical                // Grain runs along the height
	GrainFixed                   // Orientation locked as modelled
)

func (g Grain) String() string {
	switch g {
	case GrainHorizontal:
		return "horizontal"
	case GrainVertical:
		return "vertical"
	case GrainFixed:
		return "fixed"
	default:
		return "any"
	}
}

// ParseGrain converts a grain direction string to a Grain value.
// Empty input means GrainAny. The boolean reports whether the string was recognized.
func ParseGrain(s string) (Grain, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "none", "n", "-":
		return GrainAny, true
	case "horizontal", "h":
		return GrainHorizontal, true
	case "vertical", "v":
		return GrainVertical, true
	case "fixed", "f":
		return GrainFixed, true
	default:
		return GrainAny, false
	}
}

func (g Grain) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

func (g *Grain) UnmarshalText(text []byte) error {
	parsed, ok := ParseGrain(string(text))
	if !ok {
		return fmt.Errorf("unknown grain direction %q", string(text))
	}
	*g = parsed
	return nil
}

// PartTemplate describes one part type. Templates are never mutated by nesting.
type PartTemplate struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Width     float64 `json:"width"`     // mm
	Height    float64 `json:"height"`    // mm
	Thickness float64 `json:"thickness"` // mm, smallest bounding dimension; 0 when unknown
	Material  string  `json:"material"`
	Grain     Grain   `json:"grain"`
}

// partNamespace is the UUID namespace for part template IDs.
var partNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("autonestcut/part"))

// NewPartTemplate builds a template whose ID is derived from its fields, so
// the same part read twice gets the same ID.
func NewPartTemplate(name string, w, h, thickness float64, material string, grain Grain) PartTemplate {
	key := fmt.Sprintf("%s|%g|%g|%g|%s|%s", name, w, h, thickness, material, grain)
	return PartTemplate{
		ID:        uuid.NewSHA1(partNamespace, []byte(key)).String()[:8],
		Name:      name,
		Width:     w,
		Height:    h,
		Thickness: thickness,
		Material:  material,
		Grain:     grain,
	}
}

// Area returns width x height in mm².
func (t PartTemplate) Area() float64 {
	return t.Width * t.Height
}

// CanRotate reports whether the grain constraint allows a 90° turn.
// Horizontal and vertical grain lock the part just like fixed grain does.
func (t PartTemplate) CanRotate() bool {
	return t.Grain == GrainAny
}

// FitsIn reports whether the part fits a board of the given size with kerf
// clearance, in its current orientation or, when allowed, rotated.
func (t PartTemplate) FitsIn(boardWidth, boardHeight, kerf float64) bool {
	w := t.Width + kerf
	h := t.Height + kerf
	if w <= boardWidth && h <= boardHeight {
		return true
	}
	return t.CanRotate() && h <= boardWidth && w <= boardHeight
}

// Valid reports whether width and height are positive. Thickness may be 0,
// meaning the source did not state it; only a negative thickness is invalid.
func (t PartTemplate) Valid() bool {
	return t.Width > 0 && t.Height > 0 && t.Thickness >= 0
}

// NewInstance returns a fresh placeable copy of the template.
func (t PartTemplate) NewInstance() *Part {
	return &Part{PartTemplate: t}
}

// PartQuantity pairs a part template with the number of copies required.
type PartQuantity struct {
	Template PartTemplate `json:"template"`
	Quantity int          `json:"quantity"`
}

// PartsByMaterial groups required part types by material name.
type PartsByMaterial map[string][]PartQuantity

// Add appends a part type to its material group.
func (pm PartsByMaterial) Add(t PartTemplate, qty int) {
	pm[t.Material] = append(pm[t.Material], PartQuantity{Template: t, Quantity: qty})
}

// Part is a single placeable instance of a PartTemplate. Width and Height
// reflect the current orientation.
type Part struct {
	PartTemplate
	X          float64 `json:"x"`       // Position from left edge (mm)
	Y          float64 `json:"y"`       // Position from top edge (mm)
	Rotated    bool    `json:"rotated"` // Whether width and height were swapped
	InstanceID string  `json:"instance_id,omitempty"`
}

// Rotate swaps width and height and flips the rotated flag.
// Returns false without changing anything when the grain forbids rotation.
func (p *Part) Rotate() bool {
	if !p.CanRotate() {
		return false
	}
	p.Width, p.Height = p.Height, p.Width
	p.Rotated = !p.Rotated
	return true
}
