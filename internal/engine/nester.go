package engine

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/piwi3910/AutoNestCut/internal/model"
)

// Nester packs part instances onto stock boards with a greedy
// largest-first, bottom-left grid scan.
type Nester struct {
	Settings model.Settings
	logger   *zap.Logger
}

// New returns a Nester for the given settings. A nil logger disables logging.
func New(settings model.Settings, logger *zap.Logger) *Nester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Nester{Settings: settings, logger: logger}
}

// instance ties a placeable part back to the input entry it was expanded from.
type instance struct {
	part  *model.Part
	entry int
}

// Nest packs every material group onto its own boards. Materials are
// processed in sorted name order and never share boards. Parts that cannot
// be placed are reported in the result; only invalid settings return an error.
func (n *Nester) Nest(parts model.PartsByMaterial) (model.NestResult, error) {
	if err := n.Settings.Validate(); err != nil {
		return model.NestResult{}, fmt.Errorf("invalid settings: %w", err)
	}

	result := model.NestResult{
		Boards:   []*model.Board{},
		Unplaced: []model.UnplacedPart{},
		Stock:    make(map[string]model.ResolvedStock),
	}

	materials := make([]string, 0, len(parts))
	for m := range parts {
		materials = append(materials, m)
	}
	sort.Strings(materials)

	for _, material := range materials {
		entries := parts[material]
		if len(entries) == 0 {
			continue
		}

		stock, defaulted := n.Settings.StockFor(material)
		result.Stock[material] = model.ResolvedStock{StockMaterial: stock, Defaulted: defaulted}
		if defaulted {
			n.logger.Debug("using default sheet size for material",
				zap.String("op", "engine.Nest"),
				zap.String("material", material),
				zap.Float64("width", stock.Width),
				zap.Float64("height", stock.Height),
			)
		}

		if err := stock.Validate(); err != nil {
			n.logger.Warn("rejecting material with unusable stock",
				zap.String("op", "engine.Nest"),
				zap.String("material", material),
				zap.Error(err),
			)
			for _, e := range entries {
				if e.Quantity > 0 {
					result.Unplaced = append(result.Unplaced, unplacedFor(material, e.Template, e.Quantity, model.ReasonInvalidStock))
				}
			}
			continue
		}

		instances, rejected := n.expand(material, entries)
		result.Unplaced = append(result.Unplaced, rejected...)

		boards, leftover := n.nestMaterial(material, stock, instances)
		result.Boards = append(result.Boards, boards...)
		result.Unplaced = append(result.Unplaced, groupUnplaced(material, entries, leftover)...)

		n.logger.Info("nested material",
			zap.String("op", "engine.Nest"),
			zap.String("material", material),
			zap.Int("boards", len(boards)),
			zap.Int("parts", len(instances)-len(leftover)),
		)
	}

	return result, nil
}

// expand turns (template, quantity) entries into fresh instances sorted by
// area, largest first. The sort is stable so equal areas keep input order.
// Templates with unusable dimensions are returned as rejected.
func (n *Nester) expand(material string, entries []model.PartQuantity) ([]instance, []model.UnplacedPart) {
	var instances []instance
	var rejected []model.UnplacedPart

	for i, e := range entries {
		if e.Quantity <= 0 {
			if e.Quantity < 0 {
				n.logger.Warn("ignoring part with negative quantity",
					zap.String("op", "engine.expand"),
					zap.String("material", material),
					zap.String("part", e.Template.Name),
					zap.Int("quantity", e.Quantity),
				)
			}
			continue
		}
		if !e.Template.Valid() {
			n.logger.Warn("rejecting part with invalid dimensions",
				zap.String("op", "engine.expand"),
				zap.String("material", material),
				zap.String("part", e.Template.Name),
				zap.Float64("width", e.Template.Width),
				zap.Float64("height", e.Template.Height),
			)
			rejected = append(rejected, unplacedFor(material, e.Template, e.Quantity, model.ReasonInvalidPart))
			continue
		}
		for q := 0; q < e.Quantity; q++ {
			instances = append(instances, instance{part: e.Template.NewInstance(), entry: i})
		}
	}

	sort.SliceStable(instances, func(i, j int) bool {
		return instances[i].part.Area() > instances[j].part.Area()
	})
	return instances, rejected
}

// nestMaterial opens boards one at a time and makes a single pass over the
// remaining instances per board. It stops when a fresh board takes nothing,
// returning the instances that could not be placed.
func (n *Nester) nestMaterial(material string, stock model.StockMaterial, instances []instance) ([]*model.Board, []instance) {
	var boards []*model.Board
	remaining := instances

	for len(remaining) > 0 {
		board := model.NewBoard(material, stock.Width, stock.Height)
		var notPlaced []instance

		for _, inst := range remaining {
			if !n.tryPlace(inst.part, board) {
				notPlaced = append(notPlaced, inst)
			}
		}

		if len(board.Parts) == 0 {
			n.logger.Warn("could not place parts on a new board",
				zap.String("op", "engine.nestMaterial"),
				zap.String("material", material),
				zap.Int("count", len(notPlaced)),
			)
			return boards, notPlaced
		}

		boards = append(boards, board)
		remaining = notPlaced
	}
	return boards, nil
}

// tryPlace places p on board in its current orientation or, when allowed,
// rotated. A failed rotated attempt is always undone so p is unchanged.
func (n *Nester) tryPlace(p *model.Part, board *model.Board) bool {
	kerf := n.Settings.KerfWidth

	if x, y, ok := board.FindBestPosition(p, kerf); ok {
		board.AddPart(p, x, y)
		return true
	}

	if !n.Settings.AllowRotation || !p.Rotate() {
		return false
	}
	if x, y, ok := board.FindBestPosition(p, kerf); ok {
		board.AddPart(p, x, y)
		return true
	}
	p.Rotate()
	return false
}

// groupUnplaced folds leftover instances into one report line per input
// entry, in input order.
func groupUnplaced(material string, entries []model.PartQuantity, leftover []instance) []model.UnplacedPart {
	if len(leftover) == 0 {
		return nil
	}
	counts := make(map[int]int)
	for _, inst := range leftover {
		counts[inst.entry]++
	}
	var out []model.UnplacedPart
	for i, e := range entries {
		if c := counts[i]; c > 0 {
			out = append(out, unplacedFor(material, e.Template, c, model.ReasonTooLarge))
		}
	}
	return out
}

func unplacedFor(material string, t model.PartTemplate, count int, reason model.UnplacedReason) model.UnplacedPart {
	return model.UnplacedPart{
		Material:   material,
		TemplateID: t.ID,
		Name:       t.Name,
		Count:      count,
		Reason:     reason,
	}
}
