/*
Package Euler3D advances the compressible Euler and Navier Stokes equations on a partitioned cell
centered finite volume grid. Each partition is driven by one Solver, partitions exchange ghost
data only through the exchange package, and every step runs the same collective protocol on all
partitions: ghost state sync, gradients, ghost gradient sync, time step reduction, flux
accumulation and the conservative update.
*/
package Euler3D

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/notargets/gofvm/exchange"
	"github.com/notargets/gofvm/grid"
	"github.com/notargets/gofvm/telemetry"
	"github.com/notargets/gofvm/types"
	"github.com/notargets/gofvm/utils"
)

type EquationSet uint8

const (
	EULER EquationSet = iota
	NAVIER_STOKES
)

var (
	EquationNames = map[string]EquationSet{
		"euler":         EULER,
		"ns":            NAVIER_STOKES,
		"navierstokes":  NAVIER_STOKES,
		"navier-stokes": NAVIER_STOKES,
	}
	EquationPrintNames = []string{"Euler", "Navier Stokes"}
)

func (es EquationSet) Print() (txt string) {
	txt = EquationPrintNames[es]
	return
}

func NewEquationSet(label string) (es EquationSet) {
	var (
		ok  bool
		err error
	)
	if len(label) == 0 {
		return EULER
	}
	label = strings.ToLower(strings.TrimSpace(label))
	if es, ok = EquationNames[label]; !ok {
		err = fmt.Errorf("unable to use equation set named %s", label)
		panic(err)
	}
	return
}

type Config struct {
	Gamma     float64
	Equations EquationSet
	Viscosity float64 // Dynamic viscosity, Navier Stokes only
	Prandtl   float64
	TimeStep  TimeStepType
	DT        float64 // Step size when TimeStep is fixed
	CFL       float64
	Order     SchemeOrder
	Limiter   LimiterType
	Flux      FluxType
	OutFreq   int // Steps between output callbacks, zero disables output
	DefaultBC types.BCFLAG
}

func DefaultConfig() Config {
	return Config{
		Gamma:     1.4,
		Equations: EULER,
		Prandtl:   0.72,
		TimeStep:  TIMESTEP_CFL,
		CFL:       0.5,
		Order:     SECOND_ORDER,
		Limiter:   LIMITER_Minmod,
		Flux:      FLUX_Roe,
		DefaultBC: types.BC_Slip,
	}
}

func (cfg Config) Validate() error {
	switch {
	case !(cfg.Gamma > 1):
		return fmt.Errorf("gamma must exceed 1, have %g", cfg.Gamma)
	case cfg.TimeStep == TIMESTEP_Fixed && !(cfg.DT > 0):
		return fmt.Errorf("fixed time step must be positive, have %g", cfg.DT)
	case cfg.TimeStep == TIMESTEP_CFL && !(cfg.CFL > 0):
		return fmt.Errorf("CFL number must be positive, have %g", cfg.CFL)
	case cfg.Equations == NAVIER_STOKES && !(cfg.Viscosity >= 0 && cfg.Prandtl > 0):
		return fmt.Errorf("navier stokes needs a non negative viscosity and a positive Prandtl number, have %g and %g",
			cfg.Viscosity, cfg.Prandtl)
	case cfg.DefaultBC != types.BC_Out && cfg.DefaultBC != types.BC_Slip && cfg.DefaultBC != types.BC_Wall:
		return fmt.Errorf("default boundary condition cannot be %s", cfg.DefaultBC)
	case cfg.OutFreq < 0:
		return fmt.Errorf("output frequency must not be negative, have %d", cfg.OutFreq)
	}
	return nil
}

func (cfg Config) Print() (txt string) {
	txt = fmt.Sprintf("%s, gamma = %g, %s flux, %s order", cfg.Equations.Print(), cfg.Gamma, cfg.Flux.Print(), cfg.Order.Print())
	if cfg.Order == SECOND_ORDER {
		txt += fmt.Sprintf(" with %s limiter", cfg.Limiter.Print())
	}
	if cfg.Equations == NAVIER_STOKES {
		txt += fmt.Sprintf(", viscosity = %g", cfg.Viscosity)
	}
	switch cfg.TimeStep {
	case TIMESTEP_Fixed:
		txt += fmt.Sprintf(", fixed dt = %g", cfg.DT)
	case TIMESTEP_CFL:
		txt += fmt.Sprintf(", CFL = %g", cfg.CFL)
	}
	return
}

// Solver is the per-partition solver context
type Solver struct {
	Config
	Gas        Gas
	Comm       *utils.Comm
	Grid       *grid.Grid
	BCs        *Boundaries
	Sync       *exchange.Synchronizer
	Scheme     Scheme
	Time       float64
	StepNumber int
	RunID      string
	Logger     *slog.Logger
	Metrics    *telemetry.Metrics
	dtCand     []float64
	rank       string
}

type Option func(c *Solver)

func WithLogger(logger *slog.Logger) Option { return func(c *Solver) { c.Logger = logger } }

func WithMetrics(m *telemetry.Metrics) Option { return func(c *Solver) { c.Metrics = m } }

func WithRunID(runID string) Option { return func(c *Solver) { c.RunID = runID } }

/*
NewSolver assembles the solver of one partition. Building the ghost exchange schedule is collective,
so NewSolver must be called on every rank of the world.
*/
func NewSolver(cfg Config, comm *utils.Comm, g *grid.Grid, bcs []BoundaryCondition, opts ...Option) (c *Solver, err error) {
	c = &Solver{
		Config: cfg,
		Comm:   comm,
		Grid:   g,
		Logger: slog.Default(),
		rank:   strconv.Itoa(comm.Rank()),
		dtCand: make([]float64, len(g.Cells)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Logger = telemetry.WithRank(c.Logger, comm.Rank())
	if c.RunID != "" {
		c.Logger = telemetry.WithRunID(c.Logger, c.RunID)
	}
	if comm.Rank() != g.Rank {
		return nil, fmt.Errorf("rank %d was handed the grid of partition %d", comm.Rank(), g.Rank)
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	if c.Gas, err = NewGas(cfg.Gamma); err != nil {
		return nil, err
	}
	if c.BCs, err = NewBoundaries(g, bcs, cfg.DefaultBC); err != nil {
		return nil, fmt.Errorf("partition %d: %w", g.Rank, err)
	}
	em, err := exchange.NewExchangeMap(comm, g)
	if err != nil {
		return nil, err
	}
	c.Sync = exchange.NewSynchronizer(comm, g, em, c.Metrics)
	c.Scheme = NewScheme(cfg.Order, cfg.Limiter, g)
	c.Logger.Debug("partition ready",
		"cells", len(g.Cells), "ghosts", len(g.Ghosts), "faces", len(g.Faces),
		"exchange", em.GetStats(), "boundaries", c.BCs.Counts())
	return
}

// NeedsGradients is true when the scheme reconstructs or the viscous flux is active
func (c *Solver) NeedsGradients() bool {
	return c.Scheme.NeedsGradients() || c.Equations == NAVIER_STOKES
}

/*
Step advances the partition by one time step and returns the step size used.
Ghost states are current on return of the state sync, ghost gradients on return of the gradient sync,
and every flux read in the step depends only on those.
*/
func (c *Solver) Step() (dt float64, err error) {
	if err = c.Sync.SyncState(); err != nil {
		return
	}
	if c.NeedsGradients() {
		c.CalculateGradients()
		if err = c.Sync.SyncGradients(); err != nil {
			return
		}
	}
	if dt, err = c.CalculateDT(); err != nil {
		return
	}
	c.Scheme.AccumulateFluxes(c, dt)
	if c.Equations == NAVIER_STOKES {
		c.AccumulateViscousFluxes()
	}
	c.Advance(dt)
	return
}

// OutputFunc is called with the solver after every OutFreq steps
type OutputFunc func(c *Solver) error

// Run takes nSteps steps, stopping at the first error or non physical state
func (c *Solver) Run(nSteps int, output OutputFunc) (err error) {
	var (
		dt float64
	)
	c.Logger.Info("starting", "config", c.Config.Print(), "step", c.StepNumber, "time", c.Time)
	for i := 0; i < nSteps; i++ {
		start := time.Now()
		if dt, err = c.Step(); err != nil {
			return fmt.Errorf("partition %d step %d: %w", c.Grid.Rank, c.StepNumber+1, err)
		}
		if err = c.CheckState(); err != nil {
			return fmt.Errorf("step %d: %w", c.StepNumber, err)
		}
		c.Metrics.ObserveStep(c.rank, dt, c.Time, time.Since(start))
		if c.Comm.Rank() == 0 {
			fmt.Printf("%d %8.5f %8.5e\n", c.StepNumber, c.Time, dt)
		}
		if output != nil && c.OutFreq > 0 && c.StepNumber%c.OutFreq == 0 {
			if err = output(c); err != nil {
				return fmt.Errorf("output at step %d: %w", c.StepNumber, err)
			}
			c.Logger.Debug("output written", "step", c.StepNumber, "time", c.Time)
		}
	}
	c.Logger.Info("finished", "step", c.StepNumber, "time", c.Time, "memory", utils.GetMemUsage())
	return
}
