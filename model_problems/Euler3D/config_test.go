package Euler3D

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofvm/InputParameters"
	"github.com/notargets/gofvm/grid"
	"github.com/notargets/gofvm/types"
	"github.com/notargets/gofvm/utils"
)

func parseCase(t *testing.T, input string) (*Case, error) {
	var ip InputParameters.InputParameters3D
	require.NoError(t, ip.Parse([]byte(input)))
	return NewCase(&ip)
}

func TestNewCase(t *testing.T) {
	{ // A viscous channel, run for a few steps on three partitions
		cs, err := parseCase(t, `
Equations: NS
Viscosity: {Type: constant, Value: 0.01}
TimeMarching: {Type: CFL, CFL: 0.5, NumberOfSteps: 4}
NumericalOptions: {Order: second, Limiter: superbee, FluxType: lax}
Grid: {Cells: [9, 4, 3], Max: [3, 1, 1], Periodic: [false, false, true]}
InitialConditions:
  - {rho: 1, v: [0.2, 0, 0], p: 1}
BCs:
  in: {Type: inlet, Min: [0, 0, 0], Max: [0, 1, 1], rho: 1, v: [0.2, 0, 0], p: 1}
  out: {Type: outlet, Min: [3, 0, 0], Max: [3, 1, 1]}
  walls: {Type: wall, Min: [0, 0, 0], Max: [3, 0, 1]}
`)
		require.NoError(t, err)
		assert.Equal(t, NAVIER_STOKES, cs.Config.Equations)
		assert.Equal(t, LIMITER_Superbee, cs.Config.Limiter)
		assert.Equal(t, FLUX_LaxFriedrichs, cs.Config.Flux)
		assert.Equal(t, types.BC_Slip, cs.Config.DefaultBC)
		require.Equal(t, 3, len(cs.BCs))
		assert.Equal(t, "in", cs.BCs[0].Name)
		assert.Equal(t, types.BC_In, cs.BCs[0].Type)
		assert.Equal(t, types.BC_Wall, cs.BCs[2].Type)
		grids, err := grid.NewBoxMesh(cs.Box, 3)
		require.NoError(t, err)
		solvers := make([]*Solver, 3)
		require.NoError(t, RunPartitioned(context.Background(), grids, func(comm *utils.Comm, g *grid.Grid) (err error) {
			c, err := NewSolver(cs.Config, comm, g, cs.BCs)
			if err != nil {
				return
			}
			solvers[comm.Rank()] = c
			if err = cs.Initialize(c); err != nil {
				return
			}
			return c.Run(cs.Steps, nil)
		}))
		for _, c := range solvers {
			assert.Equal(t, 4, c.StepNumber)
			assert.NoError(t, c.CheckState())
		}
	}
	{ // Shock tube with the diaphragm at the middle by default
		cs, err := parseCase(t, "Grid: {Cells: [10, 1, 1], Min: [-1, 0, 0], Max: [1, 0.1, 0.1]}\nInitType: shocktube\n")
		require.NoError(t, err)
		assert.Equal(t, SHOCKTUBE, cs.InitType)
		assert.Equal(t, 0., cs.ShockTubeX0)
	}
	{ // Unknown names become errors
		for _, input := range []string{
			"Grid: {Cells: [3, 3, 3], Max: [1, 1, 1]}\nInitialConditions: [{rho: 1, p: 1}]\nNumericalOptions: {FluxType: hllc}",
			"Grid: {Cells: [3, 3, 3], Max: [1, 1, 1]}\nInitialConditions: [{rho: 1, p: 1}]\nNumericalOptions: {Limiter: vanleer}",
			"Grid: {Cells: [3, 3, 3], Max: [1, 1, 1]}\nInitialConditions: [{rho: 1, p: 1}]\nEquations: stokes",
			"Grid: {Cells: [3, 3, 3], Max: [1, 1, 1]}\nInitialConditions: [{rho: 1, p: 1}]\nBCs: {x: {Type: farfield}}",
			"Grid: {Cells: [3, 3, 3], Max: [1, 1, 1]}\nInitialConditions: [{rho: 1, p: 1}]\nDefaultBC: inlet",
			"Grid: {Cells: [3, 3, 3], Max: [1, 1, 1]}\nInitialConditions: [{rho: 1, p: 1}]\nTimeMarching: {Type: fixed}",
			"Grid: {Cells: [3, 3, 3], Max: [1, 1, 1]}",
			"Grid: {Cells: [2, 3, 3], Max: [1, 1, 1], Periodic: [true, false, false]}\nInitialConditions: [{rho: 1, p: 1}]",
		} {
			_, err := parseCase(t, input)
			assert.Error(t, err, input)
		}
	}
}
