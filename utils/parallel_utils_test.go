package utils

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionMap(t *testing.T) {
	getHisto := func(K, Np int) (histo map[int]int) {
		pm := NewPartitionMap(Np, K)
		histo = make(map[int]int)
		for np := 0; np < pm.ParallelDegree; np++ {
			kMin, kMax := pm.GetBucketRange(np)
			histo[kMax-kMin]++
		}
		return
	}
	getTotal := func(histo map[int]int) (total int) {
		for key, count := range histo {
			total += key * count
		}
		return
	}
	{ // Bucket sizes
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		for n := 64; n < 2000; n++ {
			histo := getHisto(n, 32)
			assert.LessOrEqual(t, len(histo), 2)
			if len(histo) == 2 {
				var keys []float64
				for key := range histo {
					keys = append(keys, float64(key))
				}
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1]))
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
	{ // Buckets are contiguous and the larger ones come first
		pm := NewPartitionMap(4, 10)
		assert.Equal(t, [][2]int{{0, 3}, {3, 6}, {6, 8}, {8, 10}}, pm.Partitions)
	}
	{ // Bucket lookup
		for _, NP := range []int{1, 5, 12} {
			for maxIndex := 1; maxIndex < 300; maxIndex++ {
				pm := NewPartitionMap(NP, maxIndex)
				for k := 0; k < maxIndex; k++ {
					bn, kMin, kMax := pm.GetBucket(k)
					require.True(t, bn >= 0 && bn < NP)
					assert.True(t, k >= kMin && k < kMax)
				}
				bn, _, _ := pm.GetBucket(maxIndex)
				assert.Equal(t, -1, bn)
				bn, _, _ = pm.GetBucket(-1)
				assert.Equal(t, -1, bn)
			}
		}
	}
}

// runRanks drives fn on every rank of a fresh world and collects the per-rank errors
func runRanks(NP int, fn func(c *Comm) error) (errs []error) {
	var (
		ctx, cancel = context.WithCancel(context.Background())
		w           = NewWorld(ctx, NP)
		wg          sync.WaitGroup
	)
	defer cancel()
	errs = make([]error, NP)
	for r := 0; r < NP; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			if errs[r] = fn(w.Comm(r)); errs[r] != nil {
				cancel()
			}
		}(r)
	}
	wg.Wait()
	return
}

func TestCommunicator(t *testing.T) {
	{ // Pairwise exchange with every other rank, ascending peer order on all ranks
		NP := 4
		got := make([][][]float64, NP)
		errs := runRanks(NP, func(c *Comm) error {
			got[c.Rank()] = make([][]float64, NP)
			for round := 0; round < 3; round++ {
				for p := 0; p < c.Size(); p++ {
					if p == c.Rank() {
						continue
					}
					send := []float64{float64(c.Rank()), float64(p), float64(round)}
					recv := make([]float64, 3)
					if err := c.Sendrecv(p, send, recv); err != nil {
						return err
					}
					got[c.Rank()][p] = recv
				}
			}
			return nil
		})
		for r := 0; r < NP; r++ {
			require.NoError(t, errs[r])
			for p := 0; p < NP; p++ {
				if p == r {
					continue
				}
				assert.Equal(t, []float64{float64(p), float64(r), 2}, got[r][p])
			}
		}
	}
	{ // Minimum reduction is the same on every rank and independent of rank order
		NP := 5
		vals := []float64{3.5, 0.25, 7, 0.5, 1}
		mins := make([]float64, NP)
		errs := runRanks(NP, func(c *Comm) (err error) {
			mins[c.Rank()], err = c.AllreduceMin(vals[c.Rank()])
			if err != nil {
				return
			}
			// A second round with the values reversed
			var m2 float64
			if m2, err = c.AllreduceMin(vals[NP-1-c.Rank()]); err == nil && m2 != mins[c.Rank()] {
				err = errors.New("reduction depends on rank order")
			}
			return
		})
		for r := 0; r < NP; r++ {
			require.NoError(t, errs[r])
			assert.Equal(t, 0.25, mins[r])
		}
	}
	{ // All to all delivers each list to its target, labelled by source
		NP := 3
		recvd := make([][][]uint32, NP)
		errs := runRanks(NP, func(c *Comm) (err error) {
			lists := make([][]uint32, NP)
			for p := 0; p < NP; p++ {
				if p != c.Rank() {
					lists[p] = []uint32{uint32(10*c.Rank() + p), uint32(100 + c.Rank())}
				}
			}
			recvd[c.Rank()], err = c.Alltoall(lists)
			return
		})
		for r := 0; r < NP; r++ {
			require.NoError(t, errs[r])
			for p := 0; p < NP; p++ {
				if p == r {
					assert.Empty(t, recvd[r][p])
					continue
				}
				assert.Equal(t, []uint32{uint32(10*p + r), uint32(100 + p)}, recvd[r][p])
			}
		}
	}
	{ // Mismatched schedules are fatal for the receiving rank and abort its partner
		errs := runRanks(2, func(c *Comm) error {
			send := make([]float64, 2+c.Rank())
			recv := make([]float64, 2)
			return c.Sendrecv(1-c.Rank(), send, recv)
		})
		assert.True(t, errors.Is(errs[0], ErrScheduleMismatch))
	}
	{ // A failed rank releases peers blocked in a collective
		errs := runRanks(3, func(c *Comm) error {
			if c.Rank() == 2 {
				return errors.New("rank failed")
			}
			_, err := c.AllreduceMin(1)
			return err
		})
		assert.ErrorIs(t, errs[0], ErrAborted)
		assert.ErrorIs(t, errs[1], ErrAborted)
	}
}
