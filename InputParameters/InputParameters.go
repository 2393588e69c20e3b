package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

// Parameters obtained from the YAML input file
type InputParameters3D struct {
	Title             string             `json:"Title"`
	Gamma             float64            `json:"Gamma"`
	Equations         string             `json:"Equations"`
	Viscosity         Viscosity          `json:"Viscosity"`
	TimeMarching      TimeMarching       `json:"TimeMarching"`
	NumericalOptions  NumericalOptions   `json:"NumericalOptions"`
	Grid              Grid               `json:"Grid"`
	InitType          string             `json:"InitType"`
	InitialConditions []Region           `json:"InitialConditions"` // The first entry is the background state
	ShockTubeX0       *float64           `json:"ShockTubeX0"`       // Diaphragm position, the middle of the grid when absent
	BCs               map[string]BCInput `json:"BCs"`               // Keyed by name, regions are matched in name order
	DefaultBC         string             `json:"DefaultBC"`
}

type Viscosity struct {
	Type    string  `json:"Type"`
	Value   float64 `json:"Value"`
	Prandtl float64 `json:"Prandtl"`
}

type TimeMarching struct {
	Type          string  `json:"Type"` // fixed or CFL
	Step          float64 `json:"Step"`
	CFL           float64 `json:"CFL"`
	NumberOfSteps int     `json:"NumberOfSteps"`
	OutFreq       int     `json:"OutFreq"`
}

type NumericalOptions struct {
	Order    string `json:"Order"`
	Limiter  string `json:"Limiter"`
	FluxType string `json:"FluxType"`
}

type Grid struct {
	Cells    [3]int     `json:"Cells"` // Cell counts along x, y and z
	Min      [3]float64 `json:"Min"`
	Max      [3]float64 `json:"Max"`
	Periodic [3]bool    `json:"Periodic"`
}

type State struct {
	Rho float64    `json:"rho"`
	V   [3]float64 `json:"v"`
	P   float64    `json:"p"`
}

type Region struct {
	Min [3]float64 `json:"Min"`
	Max [3]float64 `json:"Max"`
	State
}

type BCInput struct {
	Type string `json:"Type"`
	Region
}

func (ip *InputParameters3D) Parse(data []byte) (err error) {
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	ip.setDefaults()
	return ip.Validate()
}

func (ip *InputParameters3D) setDefaults() {
	if ip.Gamma == 0 {
		ip.Gamma = 1.4
	}
	if ip.Equations == "" {
		ip.Equations = "Euler"
	}
	if ip.Viscosity.Prandtl == 0 {
		ip.Viscosity.Prandtl = 0.72
	}
	if ip.TimeMarching.Type == "" {
		ip.TimeMarching.Type = "CFL"
	}
	if ip.TimeMarching.CFL == 0 {
		ip.TimeMarching.CFL = 0.5
	}
	if ip.NumericalOptions.Order == "" {
		ip.NumericalOptions.Order = "second"
	}
	if ip.NumericalOptions.FluxType == "" {
		ip.NumericalOptions.FluxType = "roe"
	}
	if ip.InitType == "" {
		ip.InitType = "regions"
	}
	if ip.DefaultBC == "" {
		ip.DefaultBC = "slip"
	}
}

// Validate checks the structure of the input, names of schemes and types are checked by the solver
func (ip *InputParameters3D) Validate() error {
	for d := 0; d < 3; d++ {
		if ip.Grid.Cells[d] < 1 {
			return fmt.Errorf("grid needs at least one cell along axis %d, have %d", d, ip.Grid.Cells[d])
		}
		if !(ip.Grid.Max[d] > ip.Grid.Min[d]) {
			return fmt.Errorf("grid extent along axis %d is empty: [%g,%g]", d, ip.Grid.Min[d], ip.Grid.Max[d])
		}
	}
	if ip.TimeMarching.NumberOfSteps < 0 {
		return fmt.Errorf("number of steps must not be negative, have %d", ip.TimeMarching.NumberOfSteps)
	}
	for i, r := range ip.InitialConditions {
		if !(r.Rho > 0 && r.P > 0) {
			return fmt.Errorf("initial condition %d needs a positive density and pressure", i)
		}
	}
	for _, name := range ip.BCNames() {
		if ip.BCs[name].Type == "" {
			return fmt.Errorf("boundary condition %s has no type", name)
		}
	}
	return nil
}

// BCNames returns the boundary condition names in matching order
func (ip *InputParameters3D) BCNames() (keys []string) {
	keys = make([]string, 0, len(ip.BCs))
	for k := range ip.BCs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return
}

func (ip *InputParameters3D) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("%8.5f\t\t= Gamma\n", ip.Gamma)
	fmt.Printf("[%s]\t\t\t= Equations\n", ip.Equations)
	if ip.Viscosity.Value != 0 {
		fmt.Printf("%8.5f\t\t= Viscosity, Prandtl = %g\n", ip.Viscosity.Value, ip.Viscosity.Prandtl)
	}
	fmt.Printf("[%s]\t\t\t= Time Marching, Step = %g, CFL = %g\n", ip.TimeMarching.Type, ip.TimeMarching.Step, ip.TimeMarching.CFL)
	fmt.Printf("[%d]\t\t\t= Number of Steps, Output every %d\n", ip.TimeMarching.NumberOfSteps, ip.TimeMarching.OutFreq)
	fmt.Printf("[%s]\t\t\t= Order, Limiter = [%s]\n", ip.NumericalOptions.Order, ip.NumericalOptions.Limiter)
	fmt.Printf("[%s]\t\t\t= Flux Type\n", ip.NumericalOptions.FluxType)
	fmt.Printf("%v x %v x %v\t\t= Grid, periodic %v\n", ip.Grid.Cells, ip.Grid.Min, ip.Grid.Max, ip.Grid.Periodic)
	fmt.Printf("[%s]\t\t= InitType\n", ip.InitType)
	for i, r := range ip.InitialConditions {
		fmt.Printf("IC[%d] = %v\n", i, r)
	}
	for _, key := range ip.BCNames() {
		fmt.Printf("BCs[%s] = %v\n", key, ip.BCs[key])
	}
	fmt.Printf("[%s]\t\t\t= Default BC\n", ip.DefaultBC)
}
