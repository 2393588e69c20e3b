package Euler3D

import (
	"fmt"

	"github.com/notargets/gofvm/grid"
	"github.com/notargets/gofvm/utils"
)

/*
Advance applies the accumulated fluxes with an explicit Euler step, U -= dt/volume * flux on every
owned cell, clears the accumulators and returns the new simulation time.
*/
func (c *Solver) Advance(dt float64) (newTime float64) {
	for k := range c.Grid.Cells {
		var (
			cell = &c.Grid.Cells[k]
			U    = c.Gas.Conservative(cell.State)
			dtV  = dt / cell.Volume
		)
		for n := range U {
			U[n] -= dtV * cell.Flux[n]
		}
		cell.State = c.Gas.Primitive(U)
		cell.Flux = [grid.NumVars]float64{}
	}
	c.Time += dt
	c.StepNumber++
	return c.Time
}

// CheckState reports the first owned cell with a non finite or non physical state
func (c *Solver) CheckState() error {
	for k := range c.Grid.Cells {
		cell := &c.Grid.Cells[k]
		q := cell.State.Vars()
		if n := utils.FirstNonFinite(q[:]...); n >= 0 {
			return fmt.Errorf("cell %d at %v has non finite variable %d: %v",
				cell.GlobalID, cell.Centroid, n, q)
		}
		if !(cell.State.Rho > 0 && cell.State.P > 0) {
			return fmt.Errorf("cell %d at %v has non positive density or pressure: %v",
				cell.GlobalID, cell.Centroid, q)
		}
	}
	return nil
}
