package importer

import (
	"fmt"
	"math"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/AutoNestCut/internal/model"
)

// joinTolerance is how far apart in mm two LINE/ARC endpoints may be and
// still count as joined.
const joinTolerance = 0.01

// extent is an axis-aligned bounding box in drawing coordinates.
type extent struct {
	minX, minY, maxX, maxY float64
}

func emptyExtent() extent {
	return extent{minX: math.Inf(1), minY: math.Inf(1), maxX: math.Inf(-1), maxY: math.Inf(-1)}
}

func (e *extent) include(x, y float64) {
	e.minX, e.minY = min(e.minX, x), min(e.minY, y)
	e.maxX, e.maxY = max(e.maxX, x), max(e.maxY, y)
}

func (e *extent) merge(o extent) {
	e.include(o.minX, o.minY)
	e.include(o.maxX, o.maxY)
}

func (e extent) size() (w, h float64) {
	return e.maxX - e.minX, e.maxY - e.minY
}

// arcExtent bounds the counter-clockwise arc of radius r around (cx, cy)
// that starts at angle start and turns through sweep radians. Besides the
// two end points, the arc reaches the circle's extreme at every multiple
// of 90° it passes.
func arcExtent(cx, cy, r, start, sweep float64) extent {
	e := emptyExtent()
	e.include(cx+r*math.Cos(start), cy+r*math.Sin(start))
	e.include(cx+r*math.Cos(start+sweep), cy+r*math.Sin(start+sweep))
	const quarter = math.Pi / 2
	for k := math.Ceil(start / quarter); k*quarter <= start+sweep; k++ {
		a := k * quarter
		e.include(cx+r*math.Cos(a), cy+r*math.Sin(a))
	}
	return e
}

// bulgeExtent bounds the polyline edge from (x1, y1) to (x2, y2). A non-zero
// bulge makes the edge an arc with included angle 4·atan(bulge), positive
// meaning counter-clockwise.
func bulgeExtent(x1, y1, x2, y2, bulge float64) extent {
	e := emptyExtent()
	e.include(x1, y1)
	e.include(x2, y2)
	dx, dy := x2-x1, y2-y1
	chord := math.Hypot(dx, dy)
	if math.Abs(bulge) < 1e-9 || chord < 1e-9 {
		return e
	}

	theta := 4 * math.Atan(bulge)
	r := chord / (2 * math.Abs(math.Sin(theta/2)))
	k := 0.5 / math.Tan(theta/2)
	cx := (x1+x2)/2 - dy*k
	cy := (y1+y2)/2 + dx*k

	if theta > 0 {
		return arcExtent(cx, cy, r, math.Atan2(y1-cy, x1-cx), theta)
	}
	return arcExtent(cx, cy, r, math.Atan2(y2-cy, x2-cx), -theta)
}

func lwPolylineExtent(lw *entity.LwPolyline) extent {
	e := emptyExtent()
	n := len(lw.Vertices)
	for i, v := range lw.Vertices {
		next := lw.Vertices[(i+1)%n]
		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		e.merge(bulgeExtent(v[0], v[1], next[0], next[1], bulge))
	}
	return e
}

// edge is a LINE or ARC that may be one side of a closed shape.
type edge struct {
	ax, ay, bx, by float64
	bounds         extent
}

func lineEdge(l *entity.Line) edge {
	b := emptyExtent()
	b.include(l.Start[0], l.Start[1])
	b.include(l.End[0], l.End[1])
	return edge{ax: l.Start[0], ay: l.Start[1], bx: l.End[0], by: l.End[1], bounds: b}
}

func arcEdge(a *entity.Arc) edge {
	cx, cy, r := a.Circle.Center[0], a.Circle.Center[1], a.Circle.Radius
	start := a.Angle[0] * math.Pi / 180
	sweep := a.Angle[1]*math.Pi/180 - start
	for sweep <= 0 {
		sweep += 2 * math.Pi
	}
	return edge{
		ax:     cx + r*math.Cos(start),
		ay:     cy + r*math.Sin(start),
		bx:     cx + r*math.Cos(start+sweep),
		by:     cy + r*math.Sin(start+sweep),
		bounds: arcExtent(cx, cy, r, start, sweep),
	}
}

// closedLoops groups edges that share endpoints. A group whose joints all
// meet an even number of edge ends is closed and yields its combined
// extent; any other group is open. Groups come back in order of their
// first edge.
func closedLoops(edges []edge) (loops []extent, open int) {
	var joints [][2]float64
	jointOf := func(x, y float64) int {
		for i, j := range joints {
			if math.Hypot(j[0]-x, j[1]-y) <= joinTolerance {
				return i
			}
		}
		joints = append(joints, [2]float64{x, y})
		return len(joints) - 1
	}

	ends := make([][2]int, len(edges))
	for i, e := range edges {
		ends[i] = [2]int{jointOf(e.ax, e.ay), jointOf(e.bx, e.by)}
	}

	parent := make([]int, len(joints))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}
	degree := make([]int, len(joints))
	for _, je := range ends {
		degree[je[0]]++
		degree[je[1]]++
		parent[find(je[0])] = find(je[1])
	}

	groupIdx := make(map[int]int)
	var bounds []extent
	var closed []bool
	for i, e := range edges {
		root := find(ends[i][0])
		g, ok := groupIdx[root]
		if !ok {
			g = len(bounds)
			groupIdx[root] = g
			bounds = append(bounds, emptyExtent())
			closed = append(closed, true)
		}
		bounds[g].merge(e.bounds)
	}
	for j, d := range degree {
		if d%2 != 0 {
			closed[groupIdx[find(j)]] = false
		}
	}

	for g, b := range bounds {
		if closed[g] {
			loops = append(loops, b)
		} else {
			open++
		}
	}
	return loops, open
}

// ImportDXF imports parts from a DXF file. Each closed shape (LWPOLYLINE,
// CIRCLE, or loop of connected LINEs/ARCs) becomes a rectangular part type
// sized by its bounding box. The drawing carries no material or thickness,
// so both come from the caller; identical shapes are merged.
func ImportDXF(path, material string, thickness float64) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var shapes []extent
	var edges []edge
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			if len(e.Vertices) < 3 {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
				continue
			}
			shapes = append(shapes, lwPolylineExtent(e))
		case *entity.Circle:
			r := e.Radius
			shapes = append(shapes, extent{e.Center[0] - r, e.Center[1] - r, e.Center[0] + r, e.Center[1] + r})
		case *entity.Arc:
			edges = append(edges, arcEdge(e))
		case *entity.Line:
			edges = append(edges, lineEdge(e))
		}
	}

	loops, open := closedLoops(edges)
	shapes = append(shapes, loops...)
	if open > 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped %d open LINE/ARC chains", open))
	}
	if len(shapes) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	if material == "" {
		material = model.DefaultMaterialName
	}
	for _, s := range shapes {
		width, height := s.size()
		if width < joinTolerance || height < joinTolerance {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f mm)", width, height))
			continue
		}
		width = math.Round(width*100) / 100
		height = math.Round(height*100) / 100
		name := fmt.Sprintf("DXF %gx%g", width, height)
		result.add(model.NewPartTemplate(name, width, height, thickness, material, model.GrainAny), 1)
	}

	return result
}
