package Euler3D

import (
	"fmt"
	"math"
	"strings"

	"github.com/notargets/gofvm/grid"
	"github.com/notargets/gofvm/types"
)

type SchemeOrder uint8

const (
	FIRST_ORDER SchemeOrder = iota
	SECOND_ORDER
)

var (
	OrderNames = map[string]SchemeOrder{
		"first":   FIRST_ORDER,
		"fou":     FIRST_ORDER,
		"1":       FIRST_ORDER,
		"second":  SECOND_ORDER,
		"muscl":   SECOND_ORDER,
		"hancock": SECOND_ORDER,
		"2":       SECOND_ORDER,
	}
	OrderPrintNames = []string{"First order upwind", "MUSCL Hancock"}
)

func (so SchemeOrder) Print() (txt string) {
	txt = OrderPrintNames[so]
	return
}

func NewSchemeOrder(label string) (so SchemeOrder) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(strings.TrimSpace(label))
	if so, ok = OrderNames[label]; !ok {
		err = fmt.Errorf("unable to use scheme order %s", label)
		panic(err)
	}
	return
}

// Scheme accumulates the convective flux of every face into the owned cells adjacent to it
type Scheme interface {
	NeedsGradients() bool
	AccumulateFluxes(c *Solver, dt float64)
}

// SlopeLimiter is implemented by schemes that limit the cell gradients before they are synchronized
type SlopeLimiter interface {
	LimitSlopes(c *Solver)
}

func NewScheme(order SchemeOrder, limiter LimiterType, g *grid.Grid) Scheme {
	if order == FIRST_ORDER {
		return FirstOrderUpwind{}
	}
	return &MUSCLHancock{
		Limiter: limiter,
		half:    make([]grid.PrimitiveState, len(g.Cells)+len(g.Ghosts)),
	}
}

/*
accumulate adds the face flux F (per unit area, along the face normal) into the adjacent owned cells:
+F*area into the Left cell, -F*area into the Right cell. Ghost and boundary sides are skipped, the
owner of a ghost computes the identical flux for its own cell.
*/
func (c *Solver) accumulate(face *grid.Face, F [grid.NumVars]float64) {
	if face.Left.Kind == grid.RefCell {
		cell := &c.Grid.Cells[face.Left.Index]
		for n := range F {
			cell.Flux[n] += F[n] * face.Area
		}
	}
	if face.Right.Kind == grid.RefCell {
		cell := &c.Grid.Cells[face.Right.Index]
		for n := range F {
			cell.Flux[n] -= F[n] * face.Area
		}
	}
}

// FirstOrderUpwind uses the cell states on each side of the face
type FirstOrderUpwind struct{}

func (FirstOrderUpwind) NeedsGradients() bool { return false }

func (FirstOrderUpwind) AccumulateFluxes(c *Solver, dt float64) {
	var (
		g = c.Grid
	)
	for f := range g.Faces {
		var (
			face = &g.Faces[f]
			sL   = *g.State(face.Left)
			sR   grid.PrimitiveState
		)
		if face.IsBoundary() {
			sR = c.BCs.State(f, sL)
		} else {
			sR = *g.State(face.Right)
		}
		c.accumulate(face, c.Gas.NumericalFlux(c.Flux, sL, sR, face.Normal))
	}
}

/*
MUSCLHancock is the predictor corrector scheme: the predictor advances every cell state (owned and ghost)
by half a step with the primitive variable equations linearized around the cell gradient, the corrector
reconstructs limited face states from the half step states and evaluates the numerical flux between them.
*/
type MUSCLHancock struct {
	Limiter LimiterType
	half    []grid.PrimitiveState // Owned cells first, then ghosts
}

func (mh *MUSCLHancock) NeedsGradients() bool { return true }

func (mh *MUSCLHancock) halfState(g *grid.Grid, r grid.Ref) grid.PrimitiveState {
	if r.Kind == grid.RefGhost {
		return mh.half[len(g.Cells)+r.Index]
	}
	return mh.half[r.Index]
}

/*
LimitSlopes sets the slope scale of every owned cell: per variable, the largest factor in [0,1] for which
the scaled gradient increment to each face of the cell passes the limiter unchanged. Both the predictor
and the face reconstruction use the scaled gradient, so the half step state is built from limited slopes.
*/
func (mh *MUSCLHancock) LimitSlopes(c *Solver) {
	var (
		g = c.Grid
	)
	for k := range g.Cells {
		for n := range g.Cells[k].SlopeScale {
			g.Cells[k].SlopeScale[n] = 1
		}
	}
	for f := range g.Faces {
		var (
			face = &g.Faces[f]
			qL   = g.State(face.Left).Vars()
			qR   [grid.NumVars]float64
		)
		if face.IsBoundary() {
			qR = c.BCs.State(f, *g.State(face.Left)).Vars()
		} else {
			qR = g.State(face.Right).Vars()
		}
		if face.Left.Kind == grid.RefCell {
			mh.limitSlope(&g.Cells[face.Left.Index], qL, qR, face.Offset)
		}
		if face.Right.Kind == grid.RefCell {
			mh.limitSlope(&g.Cells[face.Right.Index], qR, qL, face.Offset.Sub(face.Delta))
		}
	}
}

func (mh *MUSCLHancock) limitSlope(cell *grid.Cell, q, qOther [grid.NumVars]float64, r types.Vec3) {
	for n := range cell.SlopeScale {
		a := cell.Grad[n].Dot(r)
		if a == 0 {
			continue
		}
		ratio := mh.Limiter.Limit(a, 0.5*(qOther[n]-q[n])) / a
		cell.SlopeScale[n] = math.Max(0, math.Min(cell.SlopeScale[n], ratio))
	}
}

// ScaledGradient applies the per variable slope scale to a gradient
func ScaledGradient(gr *grid.Gradient, scale *[grid.NumVars]float64) (sg grid.Gradient) {
	for n := range sg {
		sg[n] = gr[n].Scale(scale[n])
	}
	return
}

func (mh *MUSCLHancock) AccumulateFluxes(c *Solver, dt float64) {
	var (
		g = c.Grid
	)
	for k := range g.Cells {
		cell := &g.Cells[k]
		sg := ScaledGradient(&cell.Grad, &cell.SlopeScale)
		mh.half[k] = c.Gas.Predict(cell.State, &sg, 0.5*dt)
	}
	for k := range g.Ghosts {
		gh := &g.Ghosts[k]
		sg := ScaledGradient(&gh.Grad, &gh.SlopeScale)
		mh.half[len(g.Cells)+k] = c.Gas.Predict(gh.State, &sg, 0.5*dt)
	}
	for f := range g.Faces {
		var (
			face   = &g.Faces[f]
			qL     = g.State(face.Left).Vars()
			gradL  = ScaledGradient(g.Grad(face.Left), g.SlopeScale(face.Left))
			hL     = mh.halfState(g, face.Left)
			sL, sR grid.PrimitiveState
		)
		if face.IsBoundary() {
			// The exterior state mirrors the cell across the face, its centroid lies at twice the face offset
			qB := c.BCs.State(f, *g.State(face.Left)).Vars()
			sL = mh.reconstruct(hL, qL, qB, &gradL, face.Offset)
			sR = c.BCs.State(f, sL)
		} else {
			var (
				qR    = g.State(face.Right).Vars()
				gradR = ScaledGradient(g.Grad(face.Right), g.SlopeScale(face.Right))
				hR    = mh.halfState(g, face.Right)
			)
			sL = mh.reconstruct(hL, qL, qR, &gradL, face.Offset)
			sR = mh.reconstruct(hR, qR, qL, &gradR, face.Offset.Sub(face.Delta))
		}
		c.accumulate(face, c.Gas.NumericalFlux(c.Flux, sL, sR, face.Normal))
	}
}

/*
reconstruct extrapolates the half step state h of a cell to a face at offset r from its centroid, using the
slope scaled gradient. The increment is still passed through the limiter against half the jump to the cell
across the face, q and qOther are the time level n values of the two cells. A non physical result falls
back to h.
*/
func (mh *MUSCLHancock) reconstruct(h grid.PrimitiveState, q, qOther [grid.NumVars]float64,
	grad *grid.Gradient, r types.Vec3) grid.PrimitiveState {
	var (
		qh = h.Vars()
		qf [grid.NumVars]float64
	)
	for n := range qf {
		qf[n] = qh[n] + mh.Limiter.Limit(grad[n].Dot(r), 0.5*(qOther[n]-q[n]))
	}
	s := grid.NewPrimitiveState(qf)
	if !(s.Rho > 0 && s.P > 0) {
		return h
	}
	return s
}

/*
Predict advances a primitive state by dt with the quasi linear primitive form of the Euler equations,
using gr as the local gradient. A non physical result falls back to s.
*/
func (gs Gas) Predict(s grid.PrimitiveState, gr *grid.Gradient, dt float64) (h grid.PrimitiveState) {
	var (
		divV  = gr[1][0] + gr[2][1] + gr[3][2]
		oorho = 1. / s.Rho
	)
	h.Rho = s.Rho - dt*(s.V.Dot(gr[0])+s.Rho*divV)
	for i := 0; i < 3; i++ {
		h.V[i] = s.V[i] - dt*(s.V.Dot(gr[1+i])+oorho*gr[4][i])
	}
	h.P = s.P - dt*(s.V.Dot(gr[4])+gs.Gamma*s.P*divV)
	if !(h.Rho > 0 && h.P > 0) {
		return s
	}
	return
}
