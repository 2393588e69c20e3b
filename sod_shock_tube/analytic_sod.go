// Package sod_shock_tube is the exact solution of Sod's shock tube, used to validate the solver
package sod_shock_tube

import (
	"math"
)

// SodTube describes the Sod problem with the diaphragm at X0 and the states on both sides at rest
type SodTube struct {
	X0         float64
	RhoL, PL   float64
	RhoR, PR   float64
	Gamma      float64
	pPost      float64
	vPost      float64
	rhoPost    float64
	vShock     float64
	rhoMiddle  float64
	cL, mu, c2 float64
}

// NewSodTube is the classic configuration: rho 1, p 1 on the left, rho 0.125, p 0.1 on the right, gamma 1.4
func NewSodTube(x0 float64) (st *SodTube) {
	st = &SodTube{
		X0:   x0,
		RhoL: 1, PL: 1,
		RhoR: 0.125, PR: 0.1,
		Gamma: 1.4,
	}
	var (
		gamma = st.Gamma
		mu2   float64
	)
	st.mu = math.Sqrt((gamma - 1) / (gamma + 1))
	mu2 = st.mu * st.mu
	st.cL = math.Sqrt(gamma * st.PL / st.RhoL)
	st.pPost = fzero(st.sodFunc, math.Pi)
	st.vPost = 2 * (math.Sqrt(gamma) / (gamma - 1)) * (1 - math.Pow(st.pPost, (gamma-1)/(2*gamma)))
	st.rhoPost = st.RhoR * (((st.pPost / st.PR) + mu2) / (1 + mu2*(st.pPost/st.PR)))
	st.vShock = st.vPost * (st.rhoPost / st.RhoR) / ((st.rhoPost / st.RhoR) - 1.)
	st.rhoMiddle = st.RhoL * math.Pow(st.pPost/st.PL, 1./gamma)
	st.c2 = st.cL - 0.5*(gamma-1.)*st.vPost
	return
}

// Positions returns the rarefaction head and tail, the contact and the shock at time t
func (st *SodTube) Positions(t float64) (x1, x2, x3, x4 float64) {
	x1 = st.X0 - st.cL*t
	x2 = st.X0 + t*(st.vPost-st.c2)
	x3 = st.X0 + st.vPost*t
	x4 = st.X0 + st.vShock*t
	return
}

// State samples density, velocity and pressure at x and time t > 0
func (st *SodTube) State(x, t float64) (rho, u, p float64) {
	var (
		gamma          = st.Gamma
		mu2            = st.mu * st.mu
		x1, x2, x3, x4 = st.Positions(t)
	)
	switch {
	case x < x1:
		rho, u, p = st.RhoL, 0, st.PL
	case x <= x2:
		c := mu2*((st.X0-x)/t) + (1.-mu2)*st.cL
		rho = st.RhoL * math.Pow(c/st.cL, 2/(gamma-1))
		p = st.PL * math.Pow(rho/st.RhoL, gamma)
		u = (1. - mu2) * ((-(st.X0 - x) / t) + st.cL)
	case x <= x3:
		rho, u, p = st.rhoMiddle, st.vPost, st.pPost
	case x <= x4:
		rho, u, p = st.rhoPost, st.vPost, st.pPost
	default:
		rho, u, p = st.RhoR, 0, st.PR
	}
	return
}

func fzero(f func(P float64) (y float64), start float64) float64 {
	var (
		tol = 0.0000001
		res float64
	)
	start_old := start / 2
	res = f(start_old)
	for math.Abs(res) > tol {
		resNew := f(start)
		deriv := (start - start_old) / (resNew - res)
		start_new := math.Abs(start - 0.01*f(start)/deriv)
		start_old = start
		start = start_new
		res = resNew
	}
	return start
}

// sodFunc is zero at the post shock pressure
func (st *SodTube) sodFunc(P float64) (y float64) {
	var (
		gamma = st.Gamma
		mu2   = st.mu * st.mu
	)
	y = (P-st.PR)*math.Sqrt((1-mu2)/(st.RhoR*(P+mu2*st.PR))) -
		2*(math.Sqrt(gamma)/(gamma-1))*(1-math.Pow(P, (gamma-1)/(2*gamma)))
	return
}
