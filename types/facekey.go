package types

import (
	"fmt"
	"math"
)

/*
FaceKey is an always positive number that stores the two global cell ids sharing a face in a way that can be compared
A face between cells [4] and [0] will always be stored as [0,4], in the ascending order of the ids, which fixes the
orientation of the face normal (from the lower to the higher id) on every partition that holds the face
*/
type FaceKey uint64

func NewFaceKey(cells [2]uint32) (packed FaceKey) {
	var c1, c2 uint32
	if cells[0] <= cells[1] {
		c1, c2 = cells[0], cells[1]
	} else {
		c1, c2 = cells[1], cells[0]
	}
	packed = FaceKey(uint64(c1) + uint64(c2)<<32)
	return
}

// NewBoundaryFaceKey labels a boundary face by its cell and the side of the cell it sits on
func NewBoundaryFaceKey(cell uint32, side int) (packed FaceKey) {
	if side < 0 || side > 5 {
		panic(fmt.Errorf("side %d out of range for a hexahedral cell", side))
	}
	// The high word is above any valid cell id, so boundary keys never collide with interior keys
	packed = FaceKey(uint64(cell) + uint64(math.MaxUint32-side)<<32)
	return
}

func (fk FaceKey) GetCells(rev bool) (cells [2]uint32) {
	cells[1] = uint32(fk >> 32)
	cells[0] = uint32(fk & math.MaxUint32)
	if rev {
		cells[0], cells[1] = cells[1], cells[0]
	}
	return
}
