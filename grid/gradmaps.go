package grid

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/notargets/gofvm/types"
)

/*
GradMap holds the least squares gradient stencil of one owned cell.
For every stencil member j with displacement d_j from the cell centroid, the gradient of a variable phi is

	grad(phi) = sum_j Weights[j] * (phi_j - phi_cell)

where the weights are the columns of the pseudo-inverse (A^T A)^-1 A^T of the displacement matrix A.
Members are neighbor cells, ghost cells, or boundary faces (Ref with Kind RefBoundary, Index = face number).
*/
type GradMap struct {
	Members []Ref
	Weights []types.Vec3
}

// BuildGradientMaps computes the least squares weights of every owned cell from the face connectivity
func BuildGradientMaps(g *Grid) (err error) {
	var (
		members = make([][]Ref, len(g.Cells))
		deltas  = make([][]types.Vec3, len(g.Cells))
	)
	add := func(c int, r Ref, d types.Vec3) {
		members[c] = append(members[c], r)
		deltas[c] = append(deltas[c], d)
	}
	for f := range g.Faces {
		face := &g.Faces[f]
		if face.IsBoundary() {
			add(face.Left.Index, Ref{Kind: RefBoundary, Index: f}, face.Delta)
			continue
		}
		if face.Left.Kind == RefCell {
			add(face.Left.Index, face.Right, face.Delta)
		}
		if face.Right.Kind == RefCell {
			add(face.Right.Index, face.Left, face.Delta.Neg())
		}
	}
	g.GradMaps = make([]GradMap, len(g.Cells))
	for c := range g.Cells {
		n := len(members[c])
		if n < 3 {
			return fmt.Errorf("partition %d cell %d has %d gradient stencil members, need at least 3",
				g.Rank, g.Cells[c].GlobalID, n)
		}
		A := mat.NewDense(n, 3, nil)
		for j, d := range deltas[c] {
			A.SetRow(j, d[:])
		}
		var ata, inv, W mat.Dense
		ata.Mul(A.T(), A)
		if err = inv.Inverse(&ata); err != nil {
			return fmt.Errorf("partition %d cell %d: degenerate gradient stencil: %w",
				g.Rank, g.Cells[c].GlobalID, err)
		}
		W.Mul(&inv, A.T())
		gm := GradMap{Members: members[c], Weights: make([]types.Vec3, n)}
		for j := 0; j < n; j++ {
			gm.Weights[j] = types.Vec3{W.At(0, j), W.At(1, j), W.At(2, j)}
		}
		g.GradMaps[c] = gm
	}
	return
}
