package grid

import (
	"fmt"

	"github.com/notargets/gofvm/types"
)

// Side labels the six faces of the bounding box, boundary faces carry the side they lie on
type Side int8

const (
	NoSide Side = iota - 1
	XMin
	XMax
	YMin
	YMax
	ZMin
	ZMax
)

var sideNames = []string{"XMin", "XMax", "YMin", "YMax", "ZMin", "ZMax"}

func (s Side) String() string {
	if s < XMin || s > ZMax {
		return "None"
	}
	return sideNames[s]
}

/*
Face connects Left to Right, the unit Normal points from Left into Right.
Interior faces are oriented from the lower to the higher global cell id, so a face on a partition
boundary has the same orientation, and therefore the same flux, on both partitions holding it.
Boundary faces always have an owned cell on the Left and a RefBoundary on the Right.
*/
type Face struct {
	Key         types.FaceKey
	Left, Right Ref
	Normal      types.Vec3
	Area        float64
	Centroid    types.Vec3
	Delta       types.Vec3 // Displacement from the Left centroid to the Right centroid (or to the face for boundaries)
	Offset      types.Vec3 // Displacement from the Left centroid to the face, measured in the frame of the Left cell
	Side        Side
}

func (f *Face) IsBoundary() bool { return f.Right.Kind == RefBoundary }

// Grid is the partition local geometry and state store
type Grid struct {
	Rank, NumPartitions int
	Cells               []Cell
	Ghosts              []GhostCell
	Faces               []Face
	Index               *Index
	GradMaps            []GradMap // One per owned cell, see BuildGradientMaps
}

func NewGrid(rank, numPartitions, globalCellCount int, cells []Cell, ghosts []GhostCell, faces []Face) (g *Grid, err error) {
	g = &Grid{
		Rank:          rank,
		NumPartitions: numPartitions,
		Cells:         cells,
		Ghosts:        ghosts,
		Faces:         faces,
	}
	if g.Index, err = NewIndex(globalCellCount, cells, ghosts); err != nil {
		return nil, fmt.Errorf("partition %d: %w", rank, err)
	}
	if err = g.Validate(); err != nil {
		return nil, err
	}
	return
}

/*
Validate checks that every reference held by the partition resolves to a valid local slot, and that
every face key is unique and names the cells the face connects in its canonical orientation.
*/
func (g *Grid) Validate() (err error) {
	keys := make(map[types.FaceKey]int, len(g.Faces))
	checkRef := func(f int, r Ref) error {
		switch r.Kind {
		case RefCell:
			if r.Index < 0 || r.Index >= len(g.Cells) {
				return fmt.Errorf("partition %d face %d references %s out of range", g.Rank, f, r)
			}
		case RefGhost:
			if r.Index < 0 || r.Index >= len(g.Ghosts) {
				return fmt.Errorf("partition %d face %d references %s out of range", g.Rank, f, r)
			}
		case RefBoundary:
		default:
			return fmt.Errorf("partition %d face %d references an absent slot", g.Rank, f)
		}
		return nil
	}
	for f := range g.Faces {
		face := &g.Faces[f]
		if err = checkRef(f, face.Left); err != nil {
			return
		}
		if err = checkRef(f, face.Right); err != nil {
			return
		}
		if face.Left.Kind == RefBoundary {
			return fmt.Errorf("partition %d face %d has a boundary on the left", g.Rank, f)
		}
		if face.Left.Kind != RefCell && face.Right.Kind != RefCell {
			return fmt.Errorf("partition %d face %d touches no owned cell", g.Rank, f)
		}
		if prev, dup := keys[face.Key]; dup {
			return fmt.Errorf("partition %d faces %d and %d share the key %d", g.Rank, prev, f, face.Key)
		}
		keys[face.Key] = f
		if face.IsBoundary() {
			if want := types.NewBoundaryFaceKey(g.GlobalID(face.Left), int(face.Side)); face.Key != want {
				return fmt.Errorf("partition %d boundary face %d has key %d, expected %d", g.Rank, f, face.Key, want)
			}
		} else if cells := face.Key.GetCells(false); cells != [2]uint32{g.GlobalID(face.Left), g.GlobalID(face.Right)} {
			return fmt.Errorf("partition %d face %d joins %d to %d against its key %v",
				g.Rank, f, g.GlobalID(face.Left), g.GlobalID(face.Right), cells)
		}
	}
	for gh := range g.Ghosts {
		if g.Ghosts[gh].Partition == g.Rank {
			return fmt.Errorf("partition %d ghost %d is owned by its own partition", g.Rank, g.Ghosts[gh].GlobalID)
		}
	}
	return
}

func (g *Grid) GlobalID(r Ref) uint32 {
	switch r.Kind {
	case RefCell:
		return g.Cells[r.Index].GlobalID
	case RefGhost:
		return g.Ghosts[r.Index].GlobalID
	}
	panic(fmt.Errorf("no global id for %s", r))
}

func (g *Grid) State(r Ref) *PrimitiveState {
	switch r.Kind {
	case RefCell:
		return &g.Cells[r.Index].State
	case RefGhost:
		return &g.Ghosts[r.Index].State
	}
	panic(fmt.Errorf("no stored state for %s", r))
}

func (g *Grid) Grad(r Ref) *Gradient {
	switch r.Kind {
	case RefCell:
		return &g.Cells[r.Index].Grad
	case RefGhost:
		return &g.Ghosts[r.Index].Grad
	}
	panic(fmt.Errorf("no stored gradient for %s", r))
}

func (g *Grid) SlopeScale(r Ref) *[NumVars]float64 {
	switch r.Kind {
	case RefCell:
		return &g.Cells[r.Index].SlopeScale
	case RefGhost:
		return &g.Ghosts[r.Index].SlopeScale
	}
	panic(fmt.Errorf("no stored slope scale for %s", r))
}

func (g *Grid) Centroid(r Ref) types.Vec3 {
	switch r.Kind {
	case RefCell:
		return g.Cells[r.Index].Centroid
	case RefGhost:
		return g.Ghosts[r.Index].Centroid
	}
	panic(fmt.Errorf("no centroid for %s", r))
}
