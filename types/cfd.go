package types

import (
	"fmt"
	"strings"
)

type BCFLAG uint8

const (
	BC_None BCFLAG = iota
	BC_In          // Prescribed state
	BC_Out         // Extrapolated from the interior
	BC_Slip        // Reflected normal velocity
	BC_Wall        // Reflected velocity, no-slip
)

var BCNameMap = map[string]BCFLAG{
	"inflow":   BC_In,
	"inlet":    BC_In,
	"in":       BC_In,
	"out":      BC_Out,
	"outflow":  BC_Out,
	"outlet":   BC_Out,
	"slip":     BC_Slip,
	"symmetry": BC_Slip,
	"wall":     BC_Wall,
	"noslip":   BC_Wall,
}

var bcPrintNames = []string{"None", "Inlet", "Outlet", "Slip", "Wall"}

func (bc BCFLAG) String() string {
	if int(bc) < len(bcPrintNames) {
		return bcPrintNames[bc]
	}
	return fmt.Sprintf("BCFLAG(%d)", bc)
}

func NewBCFLAG(label string) (bc BCFLAG, err error) {
	var ok bool
	if bc, ok = BCNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown boundary condition type [%s]", label)
	}
	return
}
