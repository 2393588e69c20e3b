package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var channelInput = []byte(`
Title: "Channel with an inlet"
Gamma: 1.4
Equations: NS
Viscosity:
  Type: constant
  Value: 0.001
TimeMarching:
  Type: CFL
  CFL: 0.6
  NumberOfSteps: 200
  OutFreq: 50
NumericalOptions:
  Order: second
  Limiter: superbee
  FluxType: lax
Grid:
  Cells: [40, 10, 4]
  Min: [0, 0, 0]
  Max: [4, 1, 0.4]
  Periodic: [false, false, true]
InitialConditions:
  - {rho: 1, v: [0, 0, 0], p: 1}
  - {Min: [0, 0, 0], Max: [1, 1, 0.4], rho: 2, v: [0.5, 0, 0], p: 2}
BCs:
  outlet: {Type: outlet, Min: [4, 0, 0], Max: [4, 1, 0.4]}
  inlet: {Type: inlet, Min: [0, 0, 0], Max: [0, 1, 0.4], rho: 2, v: [0.5, 0, 0], p: 2}
  walls: {Type: wall, Min: [-1, 0, -1], Max: [5, 0, 1]}
`)

func TestInputParameters(t *testing.T) {
	{ // A complete input
		var ip InputParameters3D
		require.NoError(t, ip.Parse(channelInput))
		assert.Equal(t, "Channel with an inlet", ip.Title)
		assert.Equal(t, "NS", ip.Equations)
		assert.Equal(t, 0.001, ip.Viscosity.Value)
		assert.Equal(t, 0.72, ip.Viscosity.Prandtl)
		assert.Equal(t, 0.6, ip.TimeMarching.CFL)
		assert.Equal(t, 200, ip.TimeMarching.NumberOfSteps)
		assert.Equal(t, 50, ip.TimeMarching.OutFreq)
		assert.Equal(t, "superbee", ip.NumericalOptions.Limiter)
		assert.Equal(t, [3]int{40, 10, 4}, ip.Grid.Cells)
		assert.Equal(t, [3]bool{false, false, true}, ip.Grid.Periodic)
		require.Equal(t, 2, len(ip.InitialConditions))
		assert.Equal(t, 2., ip.InitialConditions[1].Rho)
		assert.Equal(t, [3]float64{0.5, 0, 0}, ip.InitialConditions[1].V)
		assert.Equal(t, [3]float64{1, 1, 0.4}, ip.InitialConditions[1].Max)
		assert.Equal(t, []string{"inlet", "outlet", "walls"}, ip.BCNames())
		assert.Equal(t, "inlet", ip.BCs["inlet"].Type)
		assert.Equal(t, 2., ip.BCs["inlet"].P)
		assert.Equal(t, "regions", ip.InitType)
		assert.Equal(t, "slip", ip.DefaultBC)
		assert.Nil(t, ip.ShockTubeX0)
		ip.Print()
	}
	{ // Defaults
		var ip InputParameters3D
		require.NoError(t, ip.Parse([]byte("Grid: {Cells: [10, 1, 1], Max: [1, 0.1, 0.1]}\nInitType: shocktube\nShockTubeX0: 0.3\n")))
		assert.Equal(t, 1.4, ip.Gamma)
		assert.Equal(t, "Euler", ip.Equations)
		assert.Equal(t, "CFL", ip.TimeMarching.Type)
		assert.Equal(t, 0.5, ip.TimeMarching.CFL)
		assert.Equal(t, "second", ip.NumericalOptions.Order)
		assert.Equal(t, "roe", ip.NumericalOptions.FluxType)
		require.NotNil(t, ip.ShockTubeX0)
		assert.Equal(t, 0.3, *ip.ShockTubeX0)
	}
	{ // Grid cell counts in flow and block style
		var ip InputParameters3D
		require.NoError(t, ip.Parse([]byte("Grid: {Cells: [7, 2, 3], Min: [0, 0, 0], Max: [1, 1, 1]}\nInitType: shocktube\n")))
		assert.Equal(t, [3]int{7, 2, 3}, ip.Grid.Cells)
		ip = InputParameters3D{}
		require.NoError(t, ip.Parse([]byte("Grid:\n  Cells: [5, 4, 1]\n  Max: [1, 1, 1]\nInitType: shocktube\n")))
		assert.Equal(t, [3]int{5, 4, 1}, ip.Grid.Cells)
	}
	{ // Structural errors
		var ip InputParameters3D
		assert.Error(t, ip.Parse([]byte("Grid: {Cells: [0, 1, 1], Max: [1, 1, 1]}")))
		ip = InputParameters3D{}
		assert.Error(t, ip.Parse([]byte("Grid: {Cells: [2, 2, 2], Min: [1, 0, 0], Max: [1, 1, 1]}")))
		ip = InputParameters3D{}
		assert.Error(t, ip.Parse([]byte("Grid: {Cells: [2, 2, 2], Max: [1, 1, 1]}\nInitialConditions: [{rho: -1, p: 1}]")))
		ip = InputParameters3D{}
		assert.Error(t, ip.Parse([]byte("Grid: {Cells: [2, 2, 2], Max: [1, 1, 1]}\nBCs: {x: {rho: 1}}")))
		ip = InputParameters3D{}
		assert.Error(t, ip.Parse([]byte("Grid: [")))
	}
}
