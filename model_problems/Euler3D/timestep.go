package Euler3D

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/notargets/gofvm/grid"
)

type TimeStepType uint8

const (
	TIMESTEP_Fixed TimeStepType = iota
	TIMESTEP_CFL
)

var (
	TimeStepNames = map[string]TimeStepType{
		"fixed": TIMESTEP_Fixed,
		"cfl":   TIMESTEP_CFL,
	}
	TimeStepPrintNames = []string{"Fixed", "CFL"}
)

func (tt TimeStepType) Print() (txt string) {
	txt = TimeStepPrintNames[tt]
	return
}

func NewTimeStepType(label string) (tt TimeStepType) {
	var (
		ok  bool
		err error
	)
	label = strings.ToLower(strings.TrimSpace(label))
	if tt, ok = TimeStepNames[label]; !ok {
		err = fmt.Errorf("unable to use time step type %s", label)
		panic(err)
	}
	return
}

/*
CalculateDT returns the step size, identical on every partition.
With a CFL target each cell contributes CFL*L/(|v_i|+a) for every velocity component i,
the partition minimum is then reduced to the global minimum.
*/
func (c *Solver) CalculateDT() (dt float64, err error) {
	if c.TimeStep == TIMESTEP_Fixed {
		return c.DT, nil
	}
	for k := range c.Grid.Cells {
		c.dtCand[k] = c.LocalDT(&c.Grid.Cells[k])
	}
	local := math.Inf(1)
	if len(c.dtCand) > 0 {
		local = floats.Min(c.dtCand)
	}
	if dt, err = c.Comm.AllreduceMin(local); err != nil {
		return
	}
	if !(dt > 0) || math.IsInf(dt, 0) {
		return 0, fmt.Errorf("no usable time step, have %g", dt)
	}
	return
}

func (c *Solver) LocalDT(cell *grid.Cell) (dt float64) {
	var (
		a = c.Gas.SoundSpeed(cell.State)
	)
	dt = math.Inf(1)
	for i := 0; i < 3; i++ {
		dt = math.Min(dt, c.CFL*cell.LengthScale/(math.Abs(cell.State.V[i])+a))
	}
	return
}
