package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gofvm/InputParameters"
	"github.com/notargets/gofvm/checkpoint"
)

func shockTubeInput(t *testing.T, steps int) *InputParameters.InputParameters3D {
	fileInput := []byte(`
Title: "Short shock tube"
Equations: Euler
TimeMarching: {Type: CFL, CFL: 0.5, OutFreq: 5}
NumericalOptions: {Order: second, Limiter: minmod, FluxType: roe}
Grid: {Cells: [20, 1, 1], Min: [0, 0, 0], Max: [1, 0.05, 0.05]}
InitType: shocktube
`)
	var ip InputParameters.InputParameters3D
	require.NoError(t, ip.Parse(fileInput))
	ip.TimeMarching.NumberOfSteps = steps
	return &ip
}

func TestRun3D(t *testing.T) {
	var (
		ctx      = context.Background()
		restarts = t.TempDir()
		straight = t.TempDir()
	)
	{ // Ten steps, then five more from the restart files of step 10
		m3d := &Model3D{Partitions: 2, RestartStep: -1, OutputDir: restarts}
		require.NoError(t, Run3D(ctx, m3d, shockTubeInput(t, 10)))
		for _, name := range []string{"out5.0.dat", "out5.1.dat", "out10.0.dat", "out10.1.dat"} {
			_, err := os.Stat(filepath.Join(restarts, name))
			assert.NoError(t, err, name)
		}
		data, err := os.ReadFile(filepath.Join(restarts, "out10.1.dat"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "# globalId x y z rho u v w p Mach Temperature Entropy\n")
		m3d.RestartStep = 10
		require.NoError(t, Run3D(ctx, m3d, shockTubeInput(t, 5)))
	}
	{ // Fifteen steps in one go on a different partition count
		m3d := &Model3D{Partitions: 3, RestartStep: -1, OutputDir: straight}
		require.NoError(t, Run3D(ctx, m3d, shockTubeInput(t, 15)))
	}
	resumed, h1, err := checkpoint.Read(restarts, 15)
	require.NoError(t, err)
	direct, h2, err := checkpoint.Read(straight, 15)
	require.NoError(t, err)
	assert.Equal(t, 15, h1.Step)
	assert.Equal(t, 15, h2.Step)
	assert.InDelta(t, h2.Time, h1.Time, 1e-10)
	require.Equal(t, 20, len(resumed))
	require.Equal(t, len(direct), len(resumed))
	for id, s := range direct {
		r, ok := resumed[id]
		require.True(t, ok, "cell %d", id)
		assert.InDelta(t, s.Rho, r.Rho, 1e-10)
		assert.InDelta(t, s.P, r.P, 1e-10)
		assert.InDelta(t, s.V[0], r.V[0], 1e-10)
	}
	{ // A restart step that was never written
		m3d := &Model3D{Partitions: 2, RestartStep: 7, OutputDir: restarts}
		assert.Error(t, Run3D(ctx, m3d, shockTubeInput(t, 5)))
	}
	{ // Unknown profile kind
		m3d := &Model3D{Partitions: 1, RestartStep: -1, OutputDir: t.TempDir(), Profile: "gpu"}
		assert.Error(t, Run3D(ctx, m3d, shockTubeInput(t, 1)))
	}
}

func TestProcessInput(t *testing.T) {
	{ // The example printed for a missing input file is itself a valid input
		var ip InputParameters.InputParameters3D
		require.NoError(t, ip.Parse([]byte(exampleFile)))
		assert.Equal(t, [3]int{200, 1, 1}, ip.Grid.Cells)
		assert.Equal(t, 200, ip.TimeMarching.NumberOfSteps)
		assert.Equal(t, "shocktube", ip.InitType)
	}
	_, err := processInput(&Model3D{Partitions: 1})
	assert.Error(t, err)
	_, err = processInput(&Model3D{ICFile: "missing.yaml", Partitions: 1})
	assert.Error(t, err)
	name := filepath.Join(t.TempDir(), "case.yaml")
	require.NoError(t, os.WriteFile(name, []byte("Grid: {Cells: [4, 1, 1], Min: [0, 0, 0], Max: [1, 1, 1]}\nInitType: shocktube\n"), 0644))
	_, err = processInput(&Model3D{ICFile: name, Partitions: 0})
	assert.Error(t, err)
	ip, err := processInput(&Model3D{ICFile: name, Partitions: 2})
	require.NoError(t, err)
	assert.Equal(t, [3]int{4, 1, 1}, ip.Grid.Cells)
}
