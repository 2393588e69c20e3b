package Euler3D

import (
	"fmt"
	"math"

	"github.com/notargets/gofvm/grid"
	"github.com/notargets/gofvm/types"
)

// Box is an axis aligned region given by two opposite corners, in any order
type Box struct {
	Min, Max types.Vec3
}

// WithinBox reports whether x lies inside b, faces of the box included
func WithinBox(x types.Vec3, b Box) bool {
	for d := 0; d < 3; d++ {
		var (
			lo, hi = math.Min(b.Min[d], b.Max[d]), math.Max(b.Min[d], b.Max[d])
			tol    = 1.e-9 * (1 + hi - lo)
		)
		if x[d] < lo-tol || x[d] > hi+tol {
			return false
		}
	}
	return true
}

// BoundaryCondition applies to every boundary face whose centroid lies in Region
type BoundaryCondition struct {
	Name   string
	Type   types.BCFLAG
	Region Box
	State  grid.PrimitiveState // Prescribed state, inflow only
}

/*
Boundaries resolves the exterior state of every boundary face of a partition.
Faces are matched against the conditions in order, the first region containing the face centroid wins,
faces matched by no region get the Default type.
*/
type Boundaries struct {
	BCs     []BoundaryCondition
	Default types.BCFLAG
	faceBC  []int // Per face: index into BCs, len(BCs) for the default, -1 for interior faces
	faces   []grid.Face
}

func NewBoundaries(g *grid.Grid, bcs []BoundaryCondition, def types.BCFLAG) (b *Boundaries, err error) {
	if def == types.BC_In || def == types.BC_None {
		return nil, fmt.Errorf("default boundary condition cannot be %s", def)
	}
	for _, bc := range bcs {
		switch bc.Type {
		case types.BC_In:
			if !(bc.State.Rho > 0 && bc.State.P > 0) {
				return nil, fmt.Errorf("inflow boundary %s needs a positive density and pressure", bc.Name)
			}
		case types.BC_Out, types.BC_Slip, types.BC_Wall:
		default:
			return nil, fmt.Errorf("boundary %s has no usable type", bc.Name)
		}
	}
	b = &Boundaries{
		BCs:     bcs,
		Default: def,
		faceBC:  make([]int, len(g.Faces)),
		faces:   g.Faces,
	}
	for f := range g.Faces {
		face := &g.Faces[f]
		if !face.IsBoundary() {
			b.faceBC[f] = -1
			continue
		}
		b.faceBC[f] = len(bcs)
		for i, bc := range bcs {
			if WithinBox(face.Centroid, bc.Region) {
				b.faceBC[f] = i
				break
			}
		}
	}
	return
}

func (b *Boundaries) Type(f int) types.BCFLAG {
	switch i := b.faceBC[f]; {
	case i < 0:
		return types.BC_None
	case i == len(b.BCs):
		return b.Default
	default:
		return b.BCs[i].Type
	}
}

// State returns the exterior state across boundary face f given the interior state at the face
func (b *Boundaries) State(f int, interior grid.PrimitiveState) (s grid.PrimitiveState) {
	s = interior
	switch b.Type(f) {
	case types.BC_In:
		s = b.BCs[b.faceBC[f]].State
	case types.BC_Out:
	case types.BC_Slip:
		n := b.faces[f].Normal
		s.V = interior.V.Sub(n.Scale(2 * interior.V.Dot(n)))
	case types.BC_Wall:
		s.V = interior.V.Neg()
	default:
		panic(fmt.Errorf("face %d is not a boundary face", f))
	}
	return
}

// Counts returns the number of boundary faces per condition name, for reporting
func (b *Boundaries) Counts() (counts map[string]int) {
	counts = make(map[string]int)
	for _, i := range b.faceBC {
		switch {
		case i < 0:
		case i == len(b.BCs):
			counts["default "+b.Default.String()]++
		default:
			counts[b.BCs[i].Name]++
		}
	}
	return
}
