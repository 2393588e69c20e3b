// Package exchange builds the per-partition ghost exchange schedule and runs ghost synchronization over it
package exchange

import (
	"fmt"
	"sort"

	"github.com/notargets/gofvm/grid"
	"github.com/notargets/gofvm/utils"
)

// RemoteBufferData holds the schedule and the packing arenas for one remote partition
type RemoteBufferData struct {
	PartitionID int
	SendIDs     []uint32 // Global ids of owned cells this partition sends, in the order the remote requested them
	RecvIDs     []uint32 // Global ids of ghost cells received from the remote, ascending
	sendSlots   []int    // Owned cell index of each SendIDs entry
	recvSlots   []int    // Ghost index of each RecvIDs entry
	SendBuffer  []float64
	RecvBuffer  []float64
}

/*
ExchangeMap is the ghost exchange schedule of one partition: for every remote partition sharing
at least one face, which owned cells to send and which ghosts to expect. Remotes are ordered by
ascending partition id, which every partition also uses to order its pairwise exchanges.
*/
type ExchangeMap struct {
	Rank    int
	Remotes []*RemoteBufferData
}

/*
NewExchangeMap builds the schedule collectively: each partition posts the ghost ids it needs to
their owners and receives, from every partition, the ids it must send. It is a collective
operation and must be called once on every rank of the world.
*/
func NewExchangeMap(comm *utils.Comm, g *grid.Grid) (em *ExchangeMap, err error) {
	var (
		NP       = comm.Size()
		requests = make([][]uint32, NP)
	)
	if NP != g.NumPartitions {
		return nil, fmt.Errorf("grid is split into %d partitions, the world has %d ranks", g.NumPartitions, NP)
	}
	for _, gh := range g.Ghosts {
		if gh.Partition < 0 || gh.Partition >= NP {
			return nil, fmt.Errorf("partition %d ghost %d has owner %d outside the world", g.Rank, gh.GlobalID, gh.Partition)
		}
		requests[gh.Partition] = append(requests[gh.Partition], gh.GlobalID)
	}
	for p := range requests {
		sort.Slice(requests[p], func(i, j int) bool { return requests[p][i] < requests[p][j] })
	}
	sendLists, err := comm.Alltoall(requests)
	if err != nil {
		return nil, err
	}
	em = &ExchangeMap{Rank: comm.Rank()}
	for p := 0; p < NP; p++ {
		if p == comm.Rank() || (len(requests[p]) == 0 && len(sendLists[p]) == 0) {
			continue
		}
		rb := &RemoteBufferData{
			PartitionID: p,
			SendIDs:     sendLists[p],
			RecvIDs:     requests[p],
			sendSlots:   make([]int, len(sendLists[p])),
			recvSlots:   make([]int, len(requests[p])),
		}
		for i, id := range rb.SendIDs {
			ref := g.Index.Lookup(id)
			if ref.Kind != grid.RefCell {
				return nil, fmt.Errorf("partition %d asked partition %d for cell %d, which it does not own (%s)",
					p, g.Rank, id, ref)
			}
			rb.sendSlots[i] = ref.Index
		}
		for i, id := range rb.RecvIDs {
			ref := g.Index.Lookup(id)
			if ref.Kind != grid.RefGhost {
				return nil, fmt.Errorf("partition %d expects ghost %d from partition %d, index resolves to %s",
					g.Rank, id, p, ref)
			}
			rb.recvSlots[i] = ref.Index
		}
		em.Remotes = append(em.Remotes, rb)
	}
	if err = em.Validate(g); err != nil {
		return nil, err
	}
	return
}

/*
Validate checks that the schedule covers every ghost exactly once and that every received ghost
is owned by the partition it is received from.
*/
func (em *ExchangeMap) Validate(g *grid.Grid) error {
	covered := make([]bool, len(g.Ghosts))
	for _, rb := range em.Remotes {
		for i, slot := range rb.recvSlots {
			if covered[slot] {
				return fmt.Errorf("partition %d ghost %d is received twice", g.Rank, rb.RecvIDs[i])
			}
			covered[slot] = true
			if owner := g.Ghosts[slot].Partition; owner != rb.PartitionID {
				return fmt.Errorf("partition %d ghost %d is owned by %d but scheduled from %d",
					g.Rank, rb.RecvIDs[i], owner, rb.PartitionID)
			}
		}
	}
	for slot, ok := range covered {
		if !ok {
			return fmt.Errorf("partition %d ghost %d is never received", g.Rank, g.Ghosts[slot].GlobalID)
		}
	}
	return nil
}

// GetStats summarizes the schedule: remote partitions, cells sent and ghosts received
func (em *ExchangeMap) GetStats() (stats map[string]int) {
	stats = map[string]int{"remotes": len(em.Remotes)}
	for _, rb := range em.Remotes {
		stats["sends"] += len(rb.SendIDs)
		stats["receives"] += len(rb.RecvIDs)
	}
	return
}
