package Euler3D

import (
	"github.com/notargets/gofvm/grid"
	"github.com/notargets/gofvm/types"
)

/*
AccumulateViscousFluxes adds the Navier Stokes stress and heat conduction terms of every face.
It reads cell and ghost gradients, so it runs only after the gradient sync of the step.
*/
func (c *Solver) AccumulateViscousFluxes() {
	var (
		g = c.Grid
	)
	for f := range g.Faces {
		var (
			face  = &g.Faces[f]
			sL    = *g.State(face.Left)
			gradL = g.Grad(face.Left)
			gradF grid.Gradient
			qL    = sL.Vars()
			qR    [grid.NumVars]float64
			qF    [grid.NumVars]float64
		)
		if face.IsBoundary() {
			// The exterior state mirrors the cell at twice the face offset
			qR = c.BCs.State(f, sL).Vars()
			gradF = faceGradient(gradL, gradL, qL, qR, face.Delta.Scale(2))
		} else {
			qR = g.State(face.Right).Vars()
			gradF = faceGradient(gradL, g.Grad(face.Right), qL, qR, face.Delta)
		}
		for n := range qF {
			qF[n] = 0.5 * (qL[n] + qR[n])
		}
		Fv := c.Gas.ViscousFlux(c.Viscosity, c.Prandtl, grid.NewPrimitiveState(qF), &gradF, face.Normal)
		for n := range Fv {
			Fv[n] = -Fv[n]
		}
		c.accumulate(face, Fv)
	}
}

/*
faceGradient averages the gradients of the two cells and replaces the component along the line of
centroids with the direct difference quotient, which couples the two cells across the face.
*/
func faceGradient(gL, gR *grid.Gradient, qL, qR [grid.NumVars]float64, delta types.Vec3) (gf grid.Gradient) {
	var (
		dist = delta.Norm()
		e    = delta.Scale(1. / dist)
	)
	for n := range gf {
		avg := gL[n].Add(gR[n]).Scale(0.5)
		gf[n] = avg.Add(e.Scale((qR[n]-qL[n])/dist - avg.Dot(e)))
	}
	return
}

/*
ViscousFlux is the viscous flux along n for a Newtonian fluid with Stokes' hypothesis.
Temperature is p/rho, so the conductivity is mu*cp/Pr with cp = gamma/(gamma-1).
*/
func (gs Gas) ViscousFlux(mu, Pr float64, s grid.PrimitiveState, gr *grid.Gradient, n types.Vec3) (Fv [grid.NumVars]float64) {
	var (
		divV  = gr[1][0] + gr[2][1] + gr[3][2]
		oorho = 1. / s.Rho
		T     = s.P * oorho
		k     = mu * gs.Gamma / (gs.Gamma - 1) / Pr
		tauN  types.Vec3
		gradT types.Vec3
	)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			tau := mu * (gr[1+i][j] + gr[1+j][i])
			if i == j {
				tau -= 2. / 3. * mu * divV
			}
			tauN[i] += tau * n[j]
		}
		gradT[i] = (gr[4][i] - T*gr[0][i]) * oorho
	}
	Fv[1], Fv[2], Fv[3] = tauN[0], tauN[1], tauN[2]
	Fv[4] = tauN.Dot(s.V) + k*gradT.Dot(n)
	return
}
