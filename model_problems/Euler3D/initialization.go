package Euler3D

import (
	"fmt"
	"strings"

	"github.com/notargets/gofvm/grid"
)

type InitType uint

const (
	REGIONS InitType = iota
	SHOCKTUBE
)

var (
	InitNames = map[string]InitType{
		"regions":   REGIONS,
		"uniform":   REGIONS,
		"shocktube": SHOCKTUBE,
	}
	InitPrintNames = []string{"Regions", "Shock Tube"}
)

func (it InitType) Print() (txt string) {
	txt = InitPrintNames[it]
	return
}

func NewInitType(label string) (it InitType) {
	var (
		ok  bool
		err error
	)
	if len(label) == 0 {
		err = fmt.Errorf("empty init type, must be one of %v", InitNames)
		panic(err)
	}
	label = strings.ToLower(label)
	if it, ok = InitNames[label]; !ok {
		err = fmt.Errorf("unable to use init type named %s", label)
		panic(err)
	}
	return
}

// Region assigns State to the cells whose centroid lies in Box
type Region struct {
	Box   Box
	State grid.PrimitiveState
}

/*
InitializeRegions sets the state of every owned cell. The first region is the background and
applies everywhere, every later region overrides the cells it contains, the last match wins.
*/
func (c *Solver) InitializeRegions(regions []Region) error {
	if len(regions) == 0 {
		return fmt.Errorf("no initial condition regions")
	}
	for i, r := range regions {
		if !(r.State.Rho > 0 && r.State.P > 0) {
			return fmt.Errorf("initial region %d needs a positive density and pressure", i)
		}
	}
	for k := range c.Grid.Cells {
		cell := &c.Grid.Cells[k]
		cell.State = regions[0].State
		for _, r := range regions[1:] {
			if WithinBox(cell.Centroid, r.Box) {
				cell.State = r.State
			}
		}
	}
	c.Time, c.StepNumber = 0, 0
	return nil
}

// SodStates are the left and right states of Sod's shock tube
func SodStates() (left, right grid.PrimitiveState) {
	left = grid.PrimitiveState{Rho: 1, P: 1}
	right = grid.PrimitiveState{Rho: 0.125, P: 0.1}
	return
}

// InitializeShockTube puts Sod's left state below x0 along the x axis and the right state above it
func (c *Solver) InitializeShockTube(x0 float64) {
	left, right := SodStates()
	for k := range c.Grid.Cells {
		cell := &c.Grid.Cells[k]
		if cell.Centroid[0] < x0 {
			cell.State = left
		} else {
			cell.State = right
		}
	}
	c.Time, c.StepNumber = 0, 0
}

// Snapshot returns the state of every owned cell keyed by global id
func (c *Solver) Snapshot() (states map[uint32]grid.PrimitiveState) {
	states = make(map[uint32]grid.PrimitiveState, len(c.Grid.Cells))
	for _, cell := range c.Grid.Cells {
		states[cell.GlobalID] = cell.State
	}
	return
}

/*
Restore sets every owned cell from states, keyed by global id, and resumes at the given time and step.
States of cells owned by other partitions are ignored, a missing owned cell or a cell beyond the
grid, as left by a run on a larger grid, is an error.
*/
func (c *Solver) Restore(states map[uint32]grid.PrimitiveState, time float64, step int) error {
	nCells := c.Grid.Index.GlobalCellCount()
	for id := range states {
		if int(id) >= nCells {
			return fmt.Errorf("restart data has cell %d, the grid has %d cells", id, nCells)
		}
	}
	for k := range c.Grid.Cells {
		cell := &c.Grid.Cells[k]
		s, ok := states[cell.GlobalID]
		if !ok {
			return fmt.Errorf("restart data has no state for cell %d", cell.GlobalID)
		}
		cell.State = s
		cell.Flux = [grid.NumVars]float64{}
	}
	c.Time, c.StepNumber = time, step
	return nil
}
