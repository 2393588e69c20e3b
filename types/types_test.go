package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypes(t *testing.T) {
	{ // Test packed int for face labeling
		fk := NewFaceKey([2]uint32{1, 0})
		assert.Equal(t, FaceKey(1<<32), fk)
		assert.Equal(t, [2]uint32{0, 1}, fk.GetCells(false))

		fk = NewFaceKey([2]uint32{0, 1})
		assert.Equal(t, FaceKey(1<<32), fk)
		assert.Equal(t, [2]uint32{1, 0}, fk.GetCells(true))

		fk = NewFaceKey([2]uint32{100, 1})
		assert.Equal(t, FaceKey(100*(1<<32)+1), fk)
		assert.Equal(t, [2]uint32{1, 100}, fk.GetCells(false))

		fk = NewFaceKey([2]uint32{math.MaxUint32 - 7, 3})
		assert.Equal(t, [2]uint32{3, math.MaxUint32 - 7}, fk.GetCells(false))
	}
	{ // Boundary keys never alias interior keys
		bk := NewBoundaryFaceKey(12, 0)
		assert.NotEqual(t, NewFaceKey([2]uint32{12, 0}), bk)
		assert.Equal(t, uint32(12), bk.GetCells(false)[0])
		assert.Panics(t, func() { NewBoundaryFaceKey(1, 6) })
	}
	{ // Vec3 arithmetic
		a, b := Vec3{1, 2, 3}, Vec3{-1, 0.5, 2}
		assert.Equal(t, Vec3{0, 2.5, 5}, a.Add(b))
		assert.Equal(t, Vec3{2, 1.5, 1}, a.Sub(b))
		assert.Equal(t, 6., a.Dot(b))
		assert.Equal(t, Vec3{2, 4, 6}, a.Scale(2))
		assert.InDelta(t, math.Sqrt(14), a.Norm(), 1.e-14)
	}
	{ // Boundary condition names
		bc, err := NewBCFLAG(" Outlet ")
		assert.NoError(t, err)
		assert.Equal(t, BC_Out, bc)
		assert.Equal(t, "Outlet", bc.String())
		_, err = NewBCFLAG("vortex")
		assert.Error(t, err)
	}
}
