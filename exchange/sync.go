package exchange

import (
	"fmt"
	"strconv"

	"github.com/notargets/gofvm/grid"
	"github.com/notargets/gofvm/telemetry"
	"github.com/notargets/gofvm/utils"
)

/*
Record layouts on the wire: the global id as the leading value, then the fields in grid.PrimitiveState.Vars
order. A gradient record carries the three components of every variable followed by the slope scales.
*/
const (
	StateRecordLen    = 1 + grid.NumVars
	GradientRecordLen = 1 + 4*grid.NumVars
)

/*
Synchronizer refreshes ghost cells from their owners. Each call is one round of pairwise exchanges
with every remote partition in ascending partition order; it returns only after every ghost has
been overwritten with the owner's current values.
*/
type Synchronizer struct {
	Map     *ExchangeMap
	comm    *utils.Comm
	g       *grid.Grid
	metrics *telemetry.Metrics
	rank    string
}

func NewSynchronizer(comm *utils.Comm, g *grid.Grid, em *ExchangeMap, m *telemetry.Metrics) (gs *Synchronizer) {
	gs = &Synchronizer{
		Map:     em,
		comm:    comm,
		g:       g,
		metrics: m,
		rank:    strconv.Itoa(comm.Rank()),
	}
	// Arenas are sized for the larger gradient records and resliced per round
	for _, rb := range em.Remotes {
		rb.SendBuffer = make([]float64, len(rb.SendIDs)*GradientRecordLen)
		rb.RecvBuffer = make([]float64, len(rb.RecvIDs)*GradientRecordLen)
	}
	return
}

// SyncState copies the primitive state of every scheduled owned cell into the matching remote ghosts
func (gs *Synchronizer) SyncState() error {
	return gs.sync("state", StateRecordLen,
		func(buf []float64, c *grid.Cell) { PackState(buf, c.GlobalID, c.State) },
		func(buf []float64, gh *grid.GhostCell) (id uint32) {
			id, gh.State = UnpackState(buf)
			return
		})
}

// SyncGradients copies the cell gradients and slope scales, required before any reconstruction that reads ghost gradients
func (gs *Synchronizer) SyncGradients() error {
	return gs.sync("gradient", GradientRecordLen,
		func(buf []float64, c *grid.Cell) { PackGradient(buf, c.GlobalID, &c.Grad, &c.SlopeScale) },
		func(buf []float64, gh *grid.GhostCell) (id uint32) {
			return UnpackGradient(buf, &gh.Grad, &gh.SlopeScale)
		})
}

func (gs *Synchronizer) sync(kind string, recLen int,
	pack func(buf []float64, c *grid.Cell),
	unpack func(buf []float64, gh *grid.GhostCell) uint32) (err error) {
	var (
		g      = gs.g
		values int
	)
	for _, rb := range gs.Map.Remotes {
		var (
			send = rb.SendBuffer[:len(rb.SendIDs)*recLen]
			recv = rb.RecvBuffer[:len(rb.RecvIDs)*recLen]
		)
		for i, slot := range rb.sendSlots {
			pack(send[i*recLen:(i+1)*recLen], &g.Cells[slot])
		}
		if err = gs.comm.Sendrecv(rb.PartitionID, send, recv); err != nil {
			return fmt.Errorf("%s exchange between partitions %d and %d: %w", kind, g.Rank, rb.PartitionID, err)
		}
		for i := range rb.RecvIDs {
			rec := recv[i*recLen : (i+1)*recLen]
			ref := g.Index.Lookup(idOf(rec))
			if ref.Kind != grid.RefGhost || g.Ghosts[ref.Index].Partition != rb.PartitionID {
				return fmt.Errorf("partition %d received cell %v from partition %d, which is not one of its ghosts there",
					g.Rank, rec[0], rb.PartitionID)
			}
			unpack(rec, &g.Ghosts[ref.Index])
		}
		values += len(send) + len(recv)
	}
	gs.metrics.ObserveExchange(gs.rank, kind, values)
	return
}

func idOf(rec []float64) uint32 { return uint32(rec[0]) }

func PackState(buf []float64, id uint32, s grid.PrimitiveState) {
	q := s.Vars()
	buf[0] = float64(id)
	copy(buf[1:], q[:])
}

func UnpackState(buf []float64) (id uint32, s grid.PrimitiveState) {
	var q [grid.NumVars]float64
	copy(q[:], buf[1:StateRecordLen])
	return idOf(buf), grid.NewPrimitiveState(q)
}

func PackGradient(buf []float64, id uint32, gr *grid.Gradient, scale *[grid.NumVars]float64) {
	buf[0] = float64(id)
	for n := 0; n < grid.NumVars; n++ {
		copy(buf[1+3*n:4+3*n], gr[n][:])
	}
	copy(buf[1+3*grid.NumVars:GradientRecordLen], scale[:])
}

func UnpackGradient(buf []float64, gr *grid.Gradient, scale *[grid.NumVars]float64) (id uint32) {
	for n := 0; n < grid.NumVars; n++ {
		copy(gr[n][:], buf[1+3*n:4+3*n])
	}
	copy(scale[:], buf[1+3*grid.NumVars:GradientRecordLen])
	return idOf(buf)
}
