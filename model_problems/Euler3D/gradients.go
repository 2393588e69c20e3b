package Euler3D

import (
	"github.com/notargets/gofvm/grid"
)

/*
CalculateGradients evaluates the least squares gradient of every primitive variable on every owned cell.
Stencil members are read from owned cells, ghost cells (which must be synchronized first) and, for
boundary faces, the exterior state the boundary condition assigns to the cell's own state. A scheme
that limits slopes then sets the slope scales from the same neighbor states.
*/
func (c *Solver) CalculateGradients() {
	var (
		g = c.Grid
	)
	for k := range g.Cells {
		var (
			cell = &g.Cells[k]
			gm   = &g.GradMaps[k]
			q0   = cell.State.Vars()
			grad grid.Gradient
			qj   [grid.NumVars]float64
		)
		for j, m := range gm.Members {
			if m.Kind == grid.RefBoundary {
				qj = c.BCs.State(m.Index, cell.State).Vars()
			} else {
				qj = g.State(m).Vars()
			}
			w := gm.Weights[j]
			for n := range qj {
				grad[n] = grad[n].Add(w.Scale(qj[n] - q0[n]))
			}
		}
		cell.Grad = grad
	}
	if sl, ok := c.Scheme.(SlopeLimiter); ok {
		sl.LimitSlopes(c)
	}
}
