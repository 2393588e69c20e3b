package Euler3D

import (
	"fmt"
	"math"
	"strings"

	"github.com/notargets/gofvm/checkpoint"
	"github.com/notargets/gofvm/grid"
)

type FlowFunction uint8

func (pm FlowFunction) String() string {
	names := []string{
		"Density",
		"XMomentum",
		"YMomentum",
		"ZMomentum",
		"Energy",
		"Mach",
		"Static Pressure",
		"Dynamic Pressure",
		"Sound Speed",
		"Velocity",
		"Enthalpy",
		"Temperature",
		"Entropy",
	}
	return names[int(pm)]
}

const (
	Density FlowFunction = iota
	XMomentum
	YMomentum
	ZMomentum
	Energy
	Mach            // 5
	StaticPressure  // 6
	DynamicPressure // 7
	SoundSpeed      // 8
	Velocity        // 9
	Enthalpy        // 10
	Temperature     // 11
	Entropy         // 12
)

// Gas is a calorically perfect gas in non-dimensional form, temperature is p/rho
type Gas struct {
	Gamma float64
}

func NewGas(gamma float64) (gs Gas, err error) {
	if !(gamma > 1) {
		return gs, fmt.Errorf("ratio of specific heats must exceed 1, have %g", gamma)
	}
	return Gas{Gamma: gamma}, nil
}

// Conservative returns rho, rho*u, rho*v, rho*w and the total energy per unit volume
func (gs Gas) Conservative(s grid.PrimitiveState) (U [grid.NumVars]float64) {
	var (
		ke = 0.5 * s.Rho * s.V.Dot(s.V)
	)
	U = [grid.NumVars]float64{
		s.Rho,
		s.Rho * s.V[0], s.Rho * s.V[1], s.Rho * s.V[2],
		s.P/(gs.Gamma-1) + ke,
	}
	return
}

func (gs Gas) Primitive(U [grid.NumVars]float64) (s grid.PrimitiveState) {
	var (
		oorho = 1. / U[0]
	)
	s.Rho = U[0]
	for i := 0; i < 3; i++ {
		s.V[i] = U[1+i] * oorho
	}
	s.P = (gs.Gamma - 1) * (U[4] - 0.5*s.Rho*s.V.Dot(s.V))
	return
}

func (gs Gas) SoundSpeed(s grid.PrimitiveState) float64 {
	return math.Sqrt(math.Abs(gs.Gamma * s.P / s.Rho))
}

// TotalEnthalpy is (E + p)/rho
func (gs Gas) TotalEnthalpy(s grid.PrimitiveState) float64 {
	return gs.Gamma/(gs.Gamma-1)*s.P/s.Rho + 0.5*s.V.Dot(s.V)
}

func (gs Gas) GetFlowFunction(s grid.PrimitiveState, pf FlowFunction) (f float64) {
	switch pf {
	case Density:
		f = s.Rho
	case XMomentum, YMomentum, ZMomentum:
		f = s.Rho * s.V[int(pf-XMomentum)]
	case Energy:
		f = gs.Conservative(s)[4]
	case Mach:
		f = s.V.Norm() / gs.SoundSpeed(s)
	case StaticPressure:
		f = s.P
	case DynamicPressure:
		f = 0.5 * s.Rho * s.V.Dot(s.V)
	case SoundSpeed:
		f = gs.SoundSpeed(s)
	case Velocity:
		f = s.V.Norm()
	case Enthalpy:
		f = gs.TotalEnthalpy(s)
	case Temperature:
		f = s.P / s.Rho
	case Entropy:
		f = s.P / math.Pow(s.Rho, gs.Gamma)
	default:
		panic(fmt.Errorf("unknown flow function %d", pf))
	}
	return
}

// Columns turns flow functions into derived checkpoint columns named after the function
func (gs Gas) Columns(fns ...FlowFunction) (cols []checkpoint.Column) {
	for _, pf := range fns {
		pf := pf
		cols = append(cols, checkpoint.Column{
			Name:  strings.ReplaceAll(pf.String(), " ", ""),
			Value: func(s grid.PrimitiveState) float64 { return gs.GetFlowFunction(s, pf) },
		})
	}
	return
}
