package Euler3D

import (
	"fmt"
	"strings"

	"github.com/notargets/gofvm/InputParameters"
	"github.com/notargets/gofvm/grid"
	"github.com/notargets/gofvm/types"
)

// Case is everything the input file defines for a run, in solver terms
type Case struct {
	Config      Config
	Box         grid.BoxSpec
	BCs         []BoundaryCondition
	InitType    InitType
	Regions     []Region
	ShockTubeX0 float64
	Steps       int
}

/*
NewCase translates the input parameters. The name parsers panic on unknown names the way they do
everywhere else in the solver, here the panic is recovered into the returned error.
*/
func NewCase(ip *InputParameters.InputParameters3D) (cs *Case, err error) {
	defer func() {
		if r := recover(); r != nil {
			cs, err = nil, fmt.Errorf("invalid input: %v", r)
		}
	}()
	cfg := DefaultConfig()
	cfg.Gamma = ip.Gamma
	cfg.Equations = NewEquationSet(ip.Equations)
	cfg.Viscosity = ip.Viscosity.Value
	cfg.Prandtl = ip.Viscosity.Prandtl
	if cfg.Equations == NAVIER_STOKES {
		if vt := strings.ToLower(ip.Viscosity.Type); vt != "" && vt != "constant" {
			return nil, fmt.Errorf("unable to use viscosity type %s", ip.Viscosity.Type)
		}
	}
	cfg.TimeStep = NewTimeStepType(ip.TimeMarching.Type)
	cfg.DT = ip.TimeMarching.Step
	cfg.CFL = ip.TimeMarching.CFL
	cfg.OutFreq = ip.TimeMarching.OutFreq
	cfg.Order = NewSchemeOrder(ip.NumericalOptions.Order)
	cfg.Limiter = NewLimiterType(ip.NumericalOptions.Limiter)
	cfg.Flux = NewFluxType(ip.NumericalOptions.FluxType)
	if cfg.DefaultBC, err = types.NewBCFLAG(ip.DefaultBC); err != nil {
		return nil, err
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	cs = &Case{
		Config: cfg,
		Box: grid.BoxSpec{
			N:        ip.Grid.Cells,
			Min:      types.Vec3(ip.Grid.Min),
			Max:      types.Vec3(ip.Grid.Max),
			Periodic: ip.Grid.Periodic,
		},
		InitType: NewInitType(ip.InitType),
		Steps:    ip.TimeMarching.NumberOfSteps,
	}
	if err = cs.Box.Validate(); err != nil {
		return nil, err
	}
	cs.ShockTubeX0 = 0.5 * (cs.Box.Min[0] + cs.Box.Max[0])
	if ip.ShockTubeX0 != nil {
		cs.ShockTubeX0 = *ip.ShockTubeX0
	}
	for _, r := range ip.InitialConditions {
		cs.Regions = append(cs.Regions, Region{Box: regionBox(r), State: primitive(r.State)})
	}
	if cs.InitType == REGIONS && len(cs.Regions) == 0 {
		return nil, fmt.Errorf("initial conditions need at least the background state")
	}
	for _, name := range ip.BCNames() {
		var (
			bi = ip.BCs[name]
			bc = BoundaryCondition{Name: name, Region: regionBox(bi.Region), State: primitive(bi.State)}
		)
		if bc.Type, err = types.NewBCFLAG(bi.Type); err != nil {
			return nil, fmt.Errorf("boundary condition %s: %w", name, err)
		}
		cs.BCs = append(cs.BCs, bc)
	}
	return
}

// Initialize sets the initial state of a partition
func (cs *Case) Initialize(c *Solver) error {
	switch cs.InitType {
	case SHOCKTUBE:
		c.InitializeShockTube(cs.ShockTubeX0)
		return nil
	default:
		return c.InitializeRegions(cs.Regions)
	}
}

func regionBox(r InputParameters.Region) Box {
	return Box{Min: types.Vec3(r.Min), Max: types.Vec3(r.Max)}
}

func primitive(s InputParameters.State) grid.PrimitiveState {
	return grid.PrimitiveState{Rho: s.Rho, V: types.Vec3(s.V), P: s.P}
}
