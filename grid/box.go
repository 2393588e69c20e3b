package grid

import (
	"fmt"
	"math"
	"sort"

	"github.com/notargets/gofvm/types"
	"github.com/notargets/gofvm/utils"
)

// BoxSpec describes a structured hexahedral mesh of a rectangular box
type BoxSpec struct {
	N        [3]int
	Min, Max types.Vec3
	Periodic [3]bool
}

func (bs BoxSpec) Validate() error {
	for d := 0; d < 3; d++ {
		if bs.N[d] < 1 {
			return fmt.Errorf("box dimension %d has %d cells", d, bs.N[d])
		}
		if !(bs.Max[d] > bs.Min[d]) {
			return fmt.Errorf("box dimension %d has an empty extent [%g,%g]", d, bs.Min[d], bs.Max[d])
		}
		// Two periodic cells would share two distinct faces with the same key
		if bs.Periodic[d] && bs.N[d] < 3 {
			return fmt.Errorf("periodic box dimension %d needs at least 3 cells, have %d", d, bs.N[d])
		}
	}
	if uint64(bs.N[0])*uint64(bs.N[1])*uint64(bs.N[2]) >= math.MaxUint32 {
		return fmt.Errorf("box with %v cells exceeds the global id range", bs.N)
	}
	return nil
}

func (bs BoxSpec) CellCount() int { return bs.N[0] * bs.N[1] * bs.N[2] }

func (bs BoxSpec) spacing() (h types.Vec3) {
	for d := 0; d < 3; d++ {
		h[d] = (bs.Max[d] - bs.Min[d]) / float64(bs.N[d])
	}
	return
}

// GlobalID numbers cells x-major, so that contiguous id ranges form slabs normal to x
func (bs BoxSpec) GlobalID(ijk [3]int) uint32 {
	return uint32((ijk[0]*bs.N[1]+ijk[1])*bs.N[2] + ijk[2])
}

func (bs BoxSpec) IJK(id uint32) (ijk [3]int) {
	n := int(id)
	ijk[2] = n % bs.N[2]
	n /= bs.N[2]
	ijk[1] = n % bs.N[1]
	ijk[0] = n / bs.N[1]
	return
}

func (bs BoxSpec) Centroid(ijk [3]int) (x types.Vec3) {
	h := bs.spacing()
	for d := 0; d < 3; d++ {
		x[d] = bs.Min[d] + (float64(ijk[d])+0.5)*h[d]
	}
	return
}

// neighbor returns the id across the given side, ok is false when the side lies on a non periodic boundary
func (bs BoxSpec) neighbor(ijk [3]int, side Side) (id uint32, ok bool) {
	var (
		d   = int(side) / 2
		dir = 2*(int(side)%2) - 1
	)
	ijk[d] += dir
	if ijk[d] < 0 || ijk[d] >= bs.N[d] {
		if !bs.Periodic[d] {
			return 0, false
		}
		ijk[d] = (ijk[d] + bs.N[d]) % bs.N[d]
	}
	return bs.GlobalID(ijk), true
}

func sideNormal(side Side) (n types.Vec3) {
	n[int(side)/2] = float64(2*(int(side)%2) - 1)
	return
}

/*
NewBoxMesh builds the partitioned geometry of a box: the cells are split into NP contiguous
global id ranges using a PartitionMap, and each returned Grid holds its owned cells, the ghost
cells of the neighboring partitions, its faces and its gradient maps.
*/
func NewBoxMesh(bs BoxSpec, NP int) (grids []*Grid, err error) {
	if err = bs.Validate(); err != nil {
		return
	}
	if NP < 1 || NP > bs.CellCount() {
		return nil, fmt.Errorf("cannot split %d cells into %d partitions", bs.CellCount(), NP)
	}
	pm := utils.NewPartitionMap(NP, bs.CellCount())
	grids = make([]*Grid, NP)
	for np := 0; np < NP; np++ {
		if grids[np], err = newBoxPartition(bs, pm, np); err != nil {
			return nil, err
		}
	}
	return
}

func newBoxPartition(bs BoxSpec, pm *utils.PartitionMap, np int) (g *Grid, err error) {
	var (
		h              = bs.spacing()
		kMin, kMax     = pm.GetBucketRange(np)
		cells          = make([]Cell, 0, kMax-kMin)
		faces          []Face
		ghostIDs       = make(map[uint32]int) // global id -> owner
		seen           = make(map[types.FaceKey]bool)
		areas          = types.Vec3{h[1] * h[2], h[0] * h[2], h[0] * h[1]}
		lengthScale    = math.Min(h[0], math.Min(h[1], h[2]))
		ownedRef       = func(id uint32) Ref { return Ref{Kind: RefCell, Index: int(id) - kMin} }
		isOwned        = func(id uint32) bool { return int(id) >= kMin && int(id) < kMax }
		pendingFaceRef []int // faces whose ghost side is resolved after ghosts are numbered
		pendingGhostID []uint32
		pendingIsLeft  []bool
	)
	for k := kMin; k < kMax; k++ {
		ijk := bs.IJK(uint32(k))
		cells = append(cells, Cell{
			GlobalID:    uint32(k),
			Volume:      h[0] * h[1] * h[2],
			LengthScale: lengthScale,
			Centroid:    bs.Centroid(ijk),
		})
	}
	for k := kMin; k < kMax; k++ {
		var (
			id  = uint32(k)
			ijk = bs.IJK(id)
			xc  = bs.Centroid(ijk)
		)
		for side := XMin; side <= ZMax; side++ {
			var (
				d      = int(side) / 2
				out    = sideNormal(side)
				toFace = out.Scale(0.5 * h[d])
			)
			nb, ok := bs.neighbor(ijk, side)
			if !ok {
				faces = append(faces, Face{
					Key:      types.NewBoundaryFaceKey(id, int(side)),
					Left:     ownedRef(id),
					Right:    Ref{Kind: RefBoundary, Index: len(faces)},
					Normal:   out,
					Area:     areas[d],
					Centroid: xc.Add(toFace),
					Delta:    toFace,
					Offset:   toFace,
					Side:     side,
				})
				continue
			}
			key := types.NewFaceKey([2]uint32{id, nb})
			if seen[key] {
				continue
			}
			seen[key] = true
			var (
				iAmLeft = id < nb
				face    = Face{
					Key:      key,
					Area:     areas[d],
					Centroid: xc.Add(toFace),
					Side:     NoSide,
				}
				nbRef Ref
			)
			// Periodic faces have no single centroid, Offset is taken in the frame of the Left cell
			if iAmLeft {
				face.Normal, face.Delta = out, out.Scale(h[d])
				face.Offset = toFace
			} else {
				face.Normal, face.Delta = out.Neg(), out.Scale(-h[d])
				face.Offset = face.Delta.Add(toFace)
			}
			if isOwned(nb) {
				nbRef = ownedRef(nb)
			} else {
				owner, _, _ := pm.GetBucket(int(nb))
				ghostIDs[nb] = owner
				pendingFaceRef = append(pendingFaceRef, len(faces))
				pendingGhostID = append(pendingGhostID, nb)
				pendingIsLeft = append(pendingIsLeft, iAmLeft)
			}
			if iAmLeft {
				face.Left, face.Right = ownedRef(id), nbRef
			} else {
				face.Left, face.Right = nbRef, ownedRef(id)
			}
			faces = append(faces, face)
		}
	}
	// Ghosts are numbered in ascending global id order
	ids := make([]uint32, 0, len(ghostIDs))
	for id := range ghostIDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	ghosts := make([]GhostCell, len(ids))
	ghostSlot := make(map[uint32]int, len(ids))
	for i, id := range ids {
		ghosts[i] = GhostCell{
			Partition: ghostIDs[id],
			GlobalID:  id,
			Centroid:  bs.Centroid(bs.IJK(id)),
		}
		ghostSlot[id] = i
	}
	for i, f := range pendingFaceRef {
		ref := Ref{Kind: RefGhost, Index: ghostSlot[pendingGhostID[i]]}
		if pendingIsLeft[i] {
			faces[f].Right = ref
		} else {
			faces[f].Left = ref
		}
	}
	if g, err = NewGrid(np, pm.ParallelDegree, bs.CellCount(), cells, ghosts, faces); err != nil {
		return
	}
	err = BuildGradientMaps(g)
	return
}
