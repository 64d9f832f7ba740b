package importer

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yofu/dxf"
)

func writeRectDXF(t *testing.T, rects [][4]float64) string {
	t.Helper()
	d := dxf.NewDrawing()
	for _, r := range rects {
		x, y, w, h := r[0], r[1], r[2], r[3]
		corners := [][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
		for i := range corners {
			a, b := corners[i], corners[(i+1)%4]
			if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
				t.Fatalf("failed to add line: %v", err)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "parts.dxf")
	if err := d.SaveAs(path); err != nil {
		t.Fatalf("failed to save DXF: %v", err)
	}
	return path
}

func TestImportDXF_Rectangles(t *testing.T) {
	path := writeRectDXF(t, [][4]float64{
		{0, 0, 100, 50},
		{500, 0, 300, 200},
		{0, 1000, 100, 50},
	})

	result := ImportDXF(path, "MDF_16mm", 16)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Parts) != 2 {
		t.Fatalf("expected 2 part types, got %d", len(result.Parts))
	}

	small := result.Parts[0]
	if small.Template.Name != "DXF 100x50" || small.Quantity != 2 {
		t.Errorf("expected merged 100x50 part with quantity 2, got %+v", small)
	}
	big := result.Parts[1]
	if big.Template.Width != 300 || big.Template.Height != 200 || big.Quantity != 1 {
		t.Errorf("unexpected second part: %+v", big)
	}
	if small.Template.Material != "MDF_16mm" || small.Template.Thickness != 16 {
		t.Errorf("material and thickness not applied: %+v", small.Template)
	}
}

func TestImportDXF_DefaultMaterial(t *testing.T) {
	path := writeRectDXF(t, [][4]float64{{0, 0, 100, 50}})

	result := ImportDXF(path, "", 18)

	if len(result.Parts) != 1 || result.Parts[0].Template.Material != "Plywood_19mm" {
		t.Errorf("expected default material, got %+v", result.Parts)
	}
}

func TestImportDXF_NoClosedShapes(t *testing.T) {
	d := dxf.NewDrawing()
	if _, err := d.Line(0, 0, 0, 100, 0, 0); err != nil {
		t.Fatalf("failed to add line: %v", err)
	}
	path := filepath.Join(t.TempDir(), "open.dxf")
	if err := d.SaveAs(path); err != nil {
		t.Fatalf("failed to save DXF: %v", err)
	}

	result := ImportDXF(path, "", 18)

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "No closed shapes") {
		t.Errorf("expected no closed shapes error, got %v", result.Errors)
	}
}

func TestImportDXF_FileNotFound(t *testing.T) {
	result := ImportDXF("/nonexistent/file.dxf", "", 18)

	if len(result.Errors) == 0 {
		t.Error("expected error for nonexistent file")
	}
}

func TestImportDXF_CircleAndArcs(t *testing.T) {
	d := dxf.NewDrawing()
	if _, err := d.Circle(50, 50, 0, 40); err != nil {
		t.Fatalf("failed to add circle: %v", err)
	}
	// A slot: two half circles of radius 10 joined by straight sides.
	if _, err := d.Line(200, 0, 0, 260, 0, 0); err != nil {
		t.Fatalf("failed to add line: %v", err)
	}
	if _, err := d.Arc(260, 10, 0, 10, 270, 90); err != nil {
		t.Fatalf("failed to add arc: %v", err)
	}
	if _, err := d.Line(260, 20, 0, 200, 20, 0); err != nil {
		t.Fatalf("failed to add line: %v", err)
	}
	if _, err := d.Arc(200, 10, 0, 10, 90, 270); err != nil {
		t.Fatalf("failed to add arc: %v", err)
	}
	path := filepath.Join(t.TempDir(), "round.dxf")
	if err := d.SaveAs(path); err != nil {
		t.Fatalf("failed to save DXF: %v", err)
	}

	result := ImportDXF(path, "", 18)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Parts) != 2 {
		t.Fatalf("expected 2 part types, got %+v", result.Parts)
	}
	if got := result.Parts[0].Template.Name; got != "DXF 80x80" {
		t.Errorf("expected circle as DXF 80x80, got %q", got)
	}
	if got := result.Parts[1].Template.Name; got != "DXF 80x20" {
		t.Errorf("expected slot as DXF 80x20, got %q", got)
	}
}

func TestImportDXF_OpenChainWarns(t *testing.T) {
	d := dxf.NewDrawing()
	if _, err := d.Circle(0, 0, 0, 10); err != nil {
		t.Fatalf("failed to add circle: %v", err)
	}
	if _, err := d.Line(100, 0, 0, 200, 0, 0); err != nil {
		t.Fatalf("failed to add line: %v", err)
	}
	path := filepath.Join(t.TempDir(), "mixed.dxf")
	if err := d.SaveAs(path); err != nil {
		t.Fatalf("failed to save DXF: %v", err)
	}

	result := ImportDXF(path, "", 18)

	if len(result.Parts) != 1 {
		t.Fatalf("expected only the circle, got %+v", result.Parts)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "open") {
		t.Errorf("expected open chain warning, got %v", result.Warnings)
	}
}

func TestArcExtent(t *testing.T) {
	tests := []struct {
		name         string
		start, sweep float64
		want         extent
	}{
		{"quarter in first quadrant", 0, math.Pi / 2, extent{0, 0, 10, 10}},
		{"half through the top", 0, math.Pi, extent{-10, 0, 10, 10}},
		{"crossing zero", -math.Pi / 4, math.Pi / 2, extent{10 * math.Cos(math.Pi/4), -10 * math.Sin(math.Pi/4), 10, 10 * math.Sin(math.Pi/4)}},
		{"full turn", 0, 2 * math.Pi, extent{-10, -10, 10, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := arcExtent(0, 0, 10, tt.start, tt.sweep)
			if !extentNear(got, tt.want) {
				t.Errorf("arcExtent = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBulgeExtent(t *testing.T) {
	// Bulge 1 is a half circle; counter-clockwise from left to right dips below the chord.
	got := bulgeExtent(0, 0, 20, 0, 1)
	if !extentNear(got, extent{0, -10, 20, 0}) {
		t.Errorf("ccw half circle = %+v", got)
	}
	got = bulgeExtent(0, 0, 20, 0, -1)
	if !extentNear(got, extent{0, 0, 20, 10}) {
		t.Errorf("cw half circle = %+v", got)
	}
	got = bulgeExtent(0, 0, 20, 0, 0)
	if !extentNear(got, extent{0, 0, 20, 0}) {
		t.Errorf("straight edge = %+v", got)
	}
}

func TestClosedLoops(t *testing.T) {
	square := []edge{
		{ax: 0, ay: 0, bx: 10, by: 0},
		{ax: 0, ay: 10, bx: 0, by: 0},
		{ax: 10, ay: 10, bx: 10, by: 0.005},
		{ax: 10, ay: 10, bx: 0, by: 10},
		{ax: 50, ay: 0, bx: 60, by: 0},
	}
	for i := range square {
		e := &square[i]
		e.bounds = emptyExtent()
		e.bounds.include(e.ax, e.ay)
		e.bounds.include(e.bx, e.by)
	}

	loops, open := closedLoops(square)

	if len(loops) != 1 || open != 1 {
		t.Fatalf("expected 1 loop and 1 open chain, got %v and %d", loops, open)
	}
	if w, h := loops[0].size(); w != 10 || h != 10 {
		t.Errorf("expected 10x10 loop, got %vx%v", w, h)
	}
}

func extentNear(a, b extent) bool {
	const eps = 1e-9
	return math.Abs(a.minX-b.minX) < eps && math.Abs(a.minY-b.minY) < eps &&
		math.Abs(a.maxX-b.maxX) < eps && math.Abs(a.maxY-b.maxY) < eps
}
