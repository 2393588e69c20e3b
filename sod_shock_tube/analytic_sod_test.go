package sod_shock_tube

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSOD(t *testing.T) {
	{ // Wave positions and plateau values at t = 0.1
		st := NewSodTube(0.5)
		x1, x2, x3, x4 := st.Positions(0.1)
		assert.True(t, isNear([]float64{0.381678, 0.492873, 0.592745, 0.675216}, []float64{x1, x2, x3, x4}, 0.0001))
		var (
			tol      = 0.0001
			X        = []float64{0, x1 - tol, x1 + tol, x2 - tol, x2 + tol, x3 - tol, x3 + tol, x4 - tol, x4 + tol, 1}
			rhoCheck = []float64{1, 1, 0.999296, 0.426676, 0.426319, 0.426319, 0.265574, 0.265574, 0.125, 0.125}
			Rho      = make([]float64, len(X))
		)
		for i, x := range X {
			Rho[i], _, _ = st.State(x, 0.1)
		}
		assert.True(t, isNear(rhoCheck, Rho, 0.001))
		_, _, _, x4 = st.Positions(0.2)
		assert.True(t, math.Abs(x4-0.8504) < 0.0001)
	}
	{ // Star region of the exact Riemann solution
		st := NewSodTube(0.5)
		assert.InDelta(t, 0.303130, st.pPost, 1e-5)
		assert.InDelta(t, 0.927453, st.vPost, 1e-5)
		assert.InDelta(t, 1.752156, st.vShock, 1e-5)
		assert.InDelta(t, 0., st.sodFunc(st.pPost), 1e-6)
		// Rankine-Hugoniot mass balance across the shock
		assert.InDelta(t, st.RhoR*st.vShock, st.rhoPost*(st.vShock-st.vPost), 1e-6)
	}
	{ // Pointwise sampling
		st := NewSodTube(0.5)
		rho, u, p := st.State(0.1, 0.2)
		assert.Equal(t, [3]float64{1, 0, 1}, [3]float64{rho, u, p})
		rho, u, p = st.State(0.95, 0.2)
		assert.Equal(t, [3]float64{0.125, 0, 0.1}, [3]float64{rho, u, p})
		// Velocity and pressure are continuous across the contact
		_, x2, x3, x4 := st.Positions(0.2)
		rhoA, uA, pA := st.State(0.5*(x2+x3), 0.2)
		rhoB, uB, pB := st.State(0.5*(x3+x4), 0.2)
		assert.InDelta(t, uA, uB, 1e-12)
		assert.InDelta(t, pA, pB, 1e-12)
		assert.InDelta(t, 0.4263, rhoA, 1e-3)
		assert.InDelta(t, 0.2656, rhoB, 1e-3)
		assert.InDelta(t, 0.9275, uA, 1e-3)
		assert.InDelta(t, 0.3031, pA, 1e-3)
		// The rarefaction fan is monotone
		x1, x2, _, _ := st.Positions(0.2)
		prev := math.Inf(1)
		for i := 0; i <= 10; i++ {
			r, _, _ := st.State(x1+float64(i)*(x2-x1)/10, 0.2)
			assert.True(t, r <= prev)
			prev = r
		}
	}
}

func isNear(a, b []float64, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i, val := range a {
		if math.Abs(b[i]-val) > tol {
			return false
		}
	}
	return true
}
