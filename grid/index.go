package grid

import "fmt"

type RefKind uint8

const (
	RefAbsent RefKind = iota
	RefCell
	RefGhost
	RefBoundary
)

// Ref addresses a slot in the partition: an owned cell, a ghost cell or a boundary face
type Ref struct {
	Kind  RefKind
	Index int
}

// Absent is the sentinel returned for global ids this partition never references
var Absent = Ref{Kind: RefAbsent, Index: -1}

func (r Ref) IsAbsent() bool { return r.Kind == RefAbsent }

func (r Ref) String() string {
	switch r.Kind {
	case RefCell:
		return fmt.Sprintf("cell[%d]", r.Index)
	case RefGhost:
		return fmt.Sprintf("ghost[%d]", r.Index)
	case RefBoundary:
		return fmt.Sprintf("boundary[%d]", r.Index)
	}
	return "absent"
}

/*
Index maps global cell ids into the local address space shared by owned cells and ghost cells.
It is a left-unique function over the ids this partition references, ids outside it resolve to Absent.
*/
type Index struct {
	slots []Ref // indexed by global id
}

func NewIndex(globalCellCount int, cells []Cell, ghosts []GhostCell) (ix *Index, err error) {
	ix = &Index{slots: make([]Ref, globalCellCount)}
	for i := range ix.slots {
		ix.slots[i] = Absent
	}
	set := func(id uint32, r Ref) error {
		if int(id) >= globalCellCount {
			return fmt.Errorf("global id %d out of range [0,%d)", id, globalCellCount)
		}
		if !ix.slots[id].IsAbsent() {
			return fmt.Errorf("global id %d mapped twice: %s and %s", id, ix.slots[id], r)
		}
		ix.slots[id] = r
		return nil
	}
	for c := range cells {
		if err = set(cells[c].GlobalID, Ref{RefCell, c}); err != nil {
			return nil, err
		}
	}
	for g := range ghosts {
		if err = set(ghosts[g].GlobalID, Ref{RefGhost, g}); err != nil {
			return nil, err
		}
	}
	return
}

func (ix *Index) Lookup(globalID uint32) Ref {
	if int(globalID) >= len(ix.slots) {
		return Absent
	}
	return ix.slots[globalID]
}

func (ix *Index) GlobalCellCount() int { return len(ix.slots) }
