package exchange

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/notargets/gofvm/grid"
	"github.com/notargets/gofvm/telemetry"
	"github.com/notargets/gofvm/types"
	"github.com/notargets/gofvm/utils"
)

func runGrids(grids []*grid.Grid, fn func(comm *utils.Comm, g *grid.Grid) error) error {
	eg, ctx := errgroup.WithContext(context.Background())
	w := utils.NewWorld(ctx, len(grids))
	for rank, g := range grids {
		rank, g := rank, g
		eg.Go(func() error { return fn(w.Comm(rank), g) })
	}
	return eg.Wait()
}

func stateOf(id uint32, round int) grid.PrimitiveState {
	x := float64(id) + 1000*float64(round)
	return grid.PrimitiveState{Rho: 1 + x, V: types.Vec3{2 * x, 3 * x, 4 * x}, P: 5 + x}
}

func scaleOf(id uint32, round int) (sc [grid.NumVars]float64) {
	for n := range sc {
		sc[n] = float64((int(id)+n+round)%4) / 3
	}
	return
}

func gradOf(id uint32) (gr grid.Gradient) {
	for n := range gr {
		for d := 0; d < 3; d++ {
			gr[n][d] = float64(id) + 0.1*float64(n) + 0.01*float64(d)
		}
	}
	return
}

func TestExchangeMap(t *testing.T) {
	bs := grid.BoxSpec{N: [3]int{6, 3, 3}, Max: types.Vec3{1, 1, 1}, Periodic: [3]bool{true, false, false}}
	grids, err := grid.NewBoxMesh(bs, 3)
	require.NoError(t, err)
	maps := make([]*ExchangeMap, len(grids))
	require.NoError(t, runGrids(grids, func(comm *utils.Comm, g *grid.Grid) (err error) {
		maps[comm.Rank()], err = NewExchangeMap(comm, g)
		return
	}))
	for rank, em := range maps {
		g := grids[rank]
		// Every partition neighbors both others on a periodic ring of three slabs
		require.Equal(t, 2, len(em.Remotes))
		assert.True(t, em.Remotes[0].PartitionID < em.Remotes[1].PartitionID)
		stats := em.GetStats()
		assert.Equal(t, len(g.Ghosts), stats["receives"])
		for _, rb := range em.Remotes {
			// What this partition sends to a remote is exactly what the remote expects from it
			var peer *RemoteBufferData
			for _, prb := range maps[rb.PartitionID].Remotes {
				if prb.PartitionID == rank {
					peer = prb
				}
			}
			require.NotNil(t, peer)
			assert.Equal(t, rb.SendIDs, peer.RecvIDs)
			assert.Equal(t, rb.RecvIDs, peer.SendIDs)
			// One x-slab of 3x3 cells crosses each partition boundary
			assert.Equal(t, 9, len(rb.SendIDs))
		}
	}
	{ // A ghost attributed to the wrong owner breaks the schedule on the partition asked for it
		grids, err := grid.NewBoxMesh(bs, 3)
		require.NoError(t, err)
		g := grids[0]
		owner := g.Ghosts[0].Partition
		g.Ghosts[0].Partition = 3 - owner // The other remote, ranks 1 and 2
		err = runGrids(grids, func(comm *utils.Comm, g *grid.Grid) (err error) {
			_, err = NewExchangeMap(comm, g)
			return
		})
		assert.Error(t, err)
	}
	{ // A grid split for a different world size
		grids, err := grid.NewBoxMesh(bs, 2)
		require.NoError(t, err)
		err = runGrids(grids[:1], func(comm *utils.Comm, g *grid.Grid) (err error) {
			_, err = NewExchangeMap(comm, g)
			return
		})
		assert.Error(t, err)
	}
}

func TestSynchronizer(t *testing.T) {
	for _, NP := range []int{1, 2, 4} {
		bs := grid.BoxSpec{N: [3]int{8, 3, 4}, Max: types.Vec3{2, 1, 1}, Periodic: [3]bool{true, true, false}}
		grids, err := grid.NewBoxMesh(bs, NP)
		require.NoError(t, err)
		m := telemetry.NewMetrics("sync-test")
		require.NoError(t, runGrids(grids, func(comm *utils.Comm, g *grid.Grid) error {
			em, err := NewExchangeMap(comm, g)
			if err != nil {
				return err
			}
			gs := NewSynchronizer(comm, g, em, m)
			// Several rounds, so the double buffered transport is exercised
			for round := 0; round < 3; round++ {
				for k := range g.Cells {
					g.Cells[k].State = stateOf(g.Cells[k].GlobalID, round)
					g.Cells[k].Grad = gradOf(g.Cells[k].GlobalID + uint32(round))
					g.Cells[k].SlopeScale = scaleOf(g.Cells[k].GlobalID, round)
				}
				if err = gs.SyncState(); err != nil {
					return err
				}
				if err = gs.SyncGradients(); err != nil {
					return err
				}
				for _, gh := range g.Ghosts {
					if !assert.Equal(t, stateOf(gh.GlobalID, round), gh.State) ||
						!assert.Equal(t, gradOf(gh.GlobalID+uint32(round)), gh.Grad) ||
						!assert.Equal(t, scaleOf(gh.GlobalID, round), gh.SlopeScale) {
						return nil
					}
				}
			}
			return nil
		}))
		if NP == 1 {
			for _, g := range grids {
				assert.Equal(t, 0, len(g.Ghosts))
			}
		}
	}
}

func TestCodec(t *testing.T) {
	var (
		buf = make([]float64, GradientRecordLen)
		s   = grid.PrimitiveState{Rho: 1.5, V: types.Vec3{-1, 2, 3}, P: 0.7}
		gr  = gradOf(77)
		sc  = scaleOf(77, 1)
		out grid.Gradient
		osc [grid.NumVars]float64
	)
	PackState(buf, 4000000000, s)
	id, s2 := UnpackState(buf)
	assert.Equal(t, uint32(4000000000), id)
	assert.Equal(t, s, s2)
	PackGradient(buf, 12, &gr, &sc)
	assert.Equal(t, uint32(12), UnpackGradient(buf, &out, &osc))
	assert.Equal(t, gr, out)
	assert.Equal(t, sc, osc)
}
