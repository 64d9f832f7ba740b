package engine

import (
	"fmt"

	"github.com/piwi3910/AutoNestCut/internal/model"
)

// AssignDisplayIDs numbers every placed part P1..Pn in board order, then
// placement order, and returns n. It is a separate pass over a finished
// layout; Nest never calls it.
func AssignDisplayIDs(boards []*model.Board) int {
	n := 0
	for _, b := range boards {
		for _, p := range b.Parts {
			n++
			p.InstanceID = fmt.Sprintf("P%d", n)
		}
	}
	return n
}
