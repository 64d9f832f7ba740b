package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/AutoNestCut/internal/model"
)

// DXF layer names.
const (
	LayerBoards = "BOARDS"
	LayerParts  = "PARTS"
	LayerLabels = "LABELS"
)

// BoardSpacing is the horizontal gap in mm between boards in a DXF layout.
const BoardSpacing = 100.0

// ExportDXF writes every board side by side, left to right, as a DXF
// drawing. Board outlines, part rectangles and part labels go on separate
// layers. DXF Y grows upwards, so layout Y (from the top edge) is flipped.
func ExportDXF(path string, result model.NestResult) error {
	if len(result.Boards) == 0 {
		return fmt.Errorf("no boards to export")
	}

	d := dxf.NewDrawing()
	for _, l := range []struct {
		name string
		col  color.ColorNumber
	}{
		{LayerBoards, color.White},
		{LayerParts, color.Cyan},
		{LayerLabels, color.Yellow},
	} {
		if _, err := d.AddLayer(l.name, l.col, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", l.name, err)
		}
	}

	offsetX := 0.0
	for i, board := range result.Boards {
		if err := d.ChangeLayer(LayerBoards); err != nil {
			return err
		}
		if err := drawRect(d, offsetX, 0, board.StockWidth, board.StockHeight); err != nil {
			return fmt.Errorf("board %d: %w", i+1, err)
		}
		if _, err := d.Text(fmt.Sprintf("Board %d: %s", i+1, board.Material), offsetX, board.StockHeight+20, 0, 30); err != nil {
			return fmt.Errorf("board %d: %w", i+1, err)
		}

		for _, p := range board.Parts {
			x := offsetX + p.X
			y := board.StockHeight - p.Y - p.Height
			if err := d.ChangeLayer(LayerParts); err != nil {
				return err
			}
			if err := drawRect(d, x, y, p.Width, p.Height); err != nil {
				return fmt.Errorf("part %s: %w", partLabel(p), err)
			}
			if err := d.ChangeLayer(LayerLabels); err != nil {
				return err
			}
			height := textHeight(p.Width, p.Height)
			if _, err := d.Text(partLabel(p), x+5, y+p.Height/2, 0, height); err != nil {
				return fmt.Errorf("part %s: %w", partLabel(p), err)
			}
		}

		offsetX += board.StockWidth + BoardSpacing
	}

	return d.SaveAs(path)
}

// drawRect draws an axis-aligned rectangle from four LINE entities.
func drawRect(d *drawing.Drawing, x, y, w, h float64) error {
	corners := [][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	for i := range corners {
		a := corners[i]
		b := corners[(i+1)%len(corners)]
		if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
			return err
		}
	}
	return nil
}

// textHeight scales label text to the part, between 5 and 40 mm.
func textHeight(w, h float64) float64 {
	th := min(w, h) / 6
	return max(5, min(th, 40))
}
