package Euler3D

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/notargets/gofvm/grid"
	"github.com/notargets/gofvm/utils"
)

// PartitionFunc runs the whole life of one partition
type PartitionFunc func(comm *utils.Comm, g *grid.Grid) error

/*
RunPartitioned drives every partition on its own goroutine connected through one World.
The first partition to fail cancels the World, blocked exchanges on the other partitions then
return utils.ErrAborted, and the first error is returned.
*/
func RunPartitioned(ctx context.Context, grids []*grid.Grid, fn PartitionFunc) error {
	eg, ctx := errgroup.WithContext(ctx)
	w := utils.NewWorld(ctx, len(grids))
	for rank, g := range grids {
		rank, g := rank, g
		eg.Go(func() error {
			return fn(w.Comm(rank), g)
		})
	}
	return eg.Wait()
}
