package model

import (
	"errors"
	"fmt"
	"sort"
)

// Default stock sheet used for materials that have no catalog entry.
const (
	DefaultStockWidth  = 2440.0
	DefaultStockHeight = 1220.0
	DefaultKerfWidth   = 3.0
)

var (
	ErrInvalidKerf  = errors.New("kerf width must be positive")
	ErrInvalidStock = errors.New("stock dimensions must be positive")
	ErrInvalidPart  = errors.New("part dimensions must be positive")
)

// StockMaterial describes the stock sheet bought for one material.
type StockMaterial struct {
	Name     string  `json:"name"`
	Width    float64 `json:"width"`  // mm
	Height   float64 `json:"height"` // mm
	Price    float64 `json:"price"`  // per sheet
	Supplier string  `json:"supplier,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

// Validate checks that the sheet has a usable area and a non-negative price.
func (s StockMaterial) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("material %q: %w", s.Name, ErrInvalidStock)
	}
	if s.Price < 0 {
		return fmt.Errorf("material %q: price must not be negative", s.Name)
	}
	return nil
}

// DefaultStock returns the synthesized stock record for an unknown material.
func DefaultStock(material string) StockMaterial {
	return StockMaterial{
		Name:   material,
		Width:  DefaultStockWidth,
		Height: DefaultStockHeight,
		Price:  0,
	}
}

// Settings holds the nesting configuration. It is owned by the caller and
// passed in explicitly; the engine never mutates it.
type Settings struct {
	KerfWidth      float64                  `json:"kerf_width"`     // Saw blade width in mm
	AllowRotation  bool                     `json:"allow_rotation"` // Global permission; grain can still forbid
	StockMaterials map[string]StockMaterial `json:"stock_materials"`
}

func DefaultSettings() Settings {
	stocks := make(map[string]StockMaterial)
	for _, m := range DefaultMaterials() {
		stocks[m.Name] = m
	}
	return Settings{
		KerfWidth:      DefaultKerfWidth,
		AllowRotation:  true,
		StockMaterials: stocks,
	}
}

// Validate reports settings that make nesting meaningless. Per-material
// stock problems are not checked here; the engine rejects those per material.
func (s Settings) Validate() error {
	if s.KerfWidth <= 0 {
		return fmt.Errorf("kerf %.2f: %w", s.KerfWidth, ErrInvalidKerf)
	}
	return nil
}

// StockFor returns the stock configured for material. When none is
// configured it returns DefaultStock and defaulted=true.
func (s Settings) StockFor(material string) (stock StockMaterial, defaulted bool) {
	if st, ok := s.StockMaterials[material]; ok {
		if st.Name == "" {
			st.Name = material
		}
		return st, false
	}
	return DefaultStock(material), true
}

// MaterialNames returns the configured material names in sorted order.
func (s Settings) MaterialNames() []string {
	names := make([]string, 0, len(s.StockMaterials))
	for name := range s.StockMaterials {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithMaterials returns a copy of s whose catalog also contains materials.
// Entries in materials override existing ones of the same name.
func (s Settings) WithMaterials(materials []StockMaterial) Settings {
	out := s
	out.StockMaterials = make(map[string]StockMaterial, len(s.StockMaterials)+len(materials))
	for k, v := range s.StockMaterials {
		out.StockMaterials[k] = v
	}
	for _, m := range materials {
		out.StockMaterials[m.Name] = m
	}
	return out
}
