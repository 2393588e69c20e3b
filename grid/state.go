// Package grid holds the per-partition geometry and flow state of a cell centered finite volume mesh
package grid

import "github.com/notargets/gofvm/types"

// NumVars is the number of flow variables carried per cell: density, three velocity components and pressure
const NumVars = 5

// PrimitiveState is the primitive flow state of a cell
type PrimitiveState struct {
	Rho float64
	V   types.Vec3
	P   float64
}

// Vars packs the state in the fixed order rho, u, v, w, p
func (s PrimitiveState) Vars() (q [NumVars]float64) {
	q = [NumVars]float64{s.Rho, s.V[0], s.V[1], s.V[2], s.P}
	return
}

func NewPrimitiveState(q [NumVars]float64) PrimitiveState {
	return PrimitiveState{Rho: q[0], V: types.Vec3{q[1], q[2], q[3]}, P: q[4]}
}

// Gradient holds one cartesian gradient per flow variable, in Vars order
type Gradient [NumVars]types.Vec3

// Cell is owned exclusively by its partition
type Cell struct {
	GlobalID    uint32
	Volume      float64
	LengthScale float64
	Centroid    types.Vec3
	State       PrimitiveState
	Flux        [NumVars]float64 // Accumulated outward flux: mass, three momenta, energy
	Grad        Gradient
	SlopeScale  [NumVars]float64 // Per variable factor in [0,1] applied to Grad by limited reconstruction
}

// GhostCell is a read-only mirror of a cell owned by another partition, written only by ghost synchronization
type GhostCell struct {
	Partition  int
	GlobalID   uint32
	Centroid   types.Vec3
	State      PrimitiveState
	Grad       Gradient
	SlopeScale [NumVars]float64
}
