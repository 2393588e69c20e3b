package Euler3D

import (
	"fmt"
	"math"
	"strings"

	"github.com/notargets/gofvm/grid"
	"github.com/notargets/gofvm/types"
)

type FluxType uint

const (
	FLUX_LaxFriedrichs FluxType = iota
	FLUX_Roe
)

var (
	FluxNames = map[string]FluxType{
		"lax":     FLUX_LaxFriedrichs,
		"rusanov": FLUX_LaxFriedrichs,
		"roe":     FLUX_Roe,
	}
	FluxPrintNames = []string{"Lax Friedrichs", "Roe"}
)

func (ft FluxType) Print() (txt string) {
	txt = FluxPrintNames[ft]
	return
}

func NewFluxType(label string) (ft FluxType) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(label)
	if ft, ok = FluxNames[label]; !ok {
		err = fmt.Errorf("unable to use flux named %s", label)
		panic(err)
	}
	return
}

// NumericalFlux returns the flux per unit area through a face with unit normal n pointing from L into R
func (gs Gas) NumericalFlux(ft FluxType, L, R grid.PrimitiveState, n types.Vec3) [grid.NumVars]float64 {
	switch ft {
	case FLUX_Roe:
		return gs.RoeFlux(L, R, n)
	default:
		return gs.LaxFlux(L, R, n)
	}
}

// NormalFlux is the physical Euler flux projected on n
func (gs Gas) NormalFlux(s grid.PrimitiveState, n types.Vec3) (F [grid.NumVars]float64) {
	var (
		vn = s.V.Dot(n)
		mf = s.Rho * vn
		E  = s.P/(gs.Gamma-1) + 0.5*s.Rho*s.V.Dot(s.V)
	)
	F = [grid.NumVars]float64{
		mf,
		mf*s.V[0] + s.P*n[0],
		mf*s.V[1] + s.P*n[1],
		mf*s.V[2] + s.P*n[2],
		vn * (E + s.P),
	}
	return
}

// LaxFlux is the local Lax Friedrichs (Rusanov) flux
func (gs Gas) LaxFlux(L, R grid.PrimitiveState, n types.Vec3) (F [grid.NumVars]float64) {
	var (
		FL, FR = gs.NormalFlux(L, n), gs.NormalFlux(R, n)
		UL, UR = gs.Conservative(L), gs.Conservative(R)
		smax   = math.Max(math.Abs(L.V.Dot(n))+gs.SoundSpeed(L), math.Abs(R.V.Dot(n))+gs.SoundSpeed(R))
	)
	for i := range F {
		F[i] = 0.5*(FL[i]+FR[i]) - 0.5*smax*(UR[i]-UL[i])
	}
	return
}

/*
RoeFlux is Roe's approximate Riemann solver with Harten's entropy fix on the acoustic waves.
The dissipation is assembled from the two acoustic waves, the entropy wave and the shear waves
of the Roe averaged state, written for an arbitrary normal.
*/
func (gs Gas) RoeFlux(L, R grid.PrimitiveState, n types.Vec3) (F [grid.NumVars]float64) {
	var (
		GM1        = gs.Gamma - 1
		FL, FR     = gs.NormalFlux(L, n), gs.NormalFlux(R, n)
		sqL, sqR   = math.Sqrt(L.Rho), math.Sqrt(R.Rho)
		ooSum      = 1. / (sqL + sqR)
		rho        = sqL * sqR
		HL, HR     = gs.TotalEnthalpy(L), gs.TotalEnthalpy(R)
		H          = (sqL*HL + sqR*HR) * ooSum
		u          types.Vec3
		dRho, dP   = R.Rho - L.Rho, R.P - L.P
		dV         = R.V.Sub(L.V)
		vnL, vnR   = L.V.Dot(n), R.V.Dot(n)
		dVn        = vnR - vnL
		a, a2, vn  float64
		l1, l2, l5 float64
	)
	for i := 0; i < 3; i++ {
		u[i] = (sqL*L.V[i] + sqR*R.V[i]) * ooSum
	}
	vn = u.Dot(n)
	a2 = GM1 * (H - 0.5*u.Dot(u))
	if a2 <= 0 {
		// Roe average lost hyperbolicity, fall back to the more dissipative flux
		return gs.LaxFlux(L, R, n)
	}
	a = math.Sqrt(a2)
	l1, l2, l5 = harten(vn-a, 0.1*a), math.Abs(vn), harten(vn+a, 0.1*a)
	var (
		alpha1 = (dP - rho*a*dVn) / (2 * a2)
		alpha2 = dRho - dP/a2
		alpha5 = (dP + rho*a*dVn) / (2 * a2)
		shear  = dV.Sub(n.Scale(dVn)) // Tangential velocity jump
		D      [grid.NumVars]float64
	)
	// Acoustic waves
	D[0] = l1*alpha1 + l5*alpha5 + l2*alpha2
	for i := 0; i < 3; i++ {
		D[1+i] = l1*alpha1*(u[i]-a*n[i]) + l5*alpha5*(u[i]+a*n[i]) +
			l2*(alpha2*u[i]+rho*shear[i])
	}
	D[4] = l1*alpha1*(H-a*vn) + l5*alpha5*(H+a*vn) +
		l2*(alpha2*0.5*u.Dot(u)+rho*(u.Dot(dV)-vn*dVn))
	for i := range F {
		F[i] = 0.5*(FL[i]+FR[i]) - 0.5*D[i]
	}
	return
}

// harten smooths |lambda| below delta
func harten(lambda, delta float64) float64 {
	al := math.Abs(lambda)
	if al < delta {
		return (lambda*lambda + delta*delta) / (2 * delta)
	}
	return al
}
