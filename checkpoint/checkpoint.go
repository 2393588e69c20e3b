/*
Package checkpoint writes and reads the per partition restart files of a run.
Each partition writes out<step>.<rank>.dat: a commented header carrying the simulation time,
the step and the run id, followed by one row per owned cell with the columns

	globalId x y z rho u v w p

optionally followed by derived columns, which are written for post processing and ignored on restart.
*/
package checkpoint

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/phil-mansfield/table"

	"github.com/notargets/gofvm/grid"
)

// FileName is the restart file of one partition at one step
func FileName(dir string, step, rank int) string {
	return filepath.Join(dir, fmt.Sprintf("out%d.%d.dat", step, rank))
}

// Column is a derived quantity written after the restart columns, Name must be a single word
type Column struct {
	Name  string
	Value func(s grid.PrimitiveState) float64
}

// Write saves the state of every owned cell of g, then the derived columns in order
func Write(dir string, step int, time float64, runID string, g *grid.Grid, derived ...Column) (err error) {
	var (
		file *os.File
		name = FileName(dir, step, g.Rank)
	)
	for _, col := range derived {
		if len(strings.Fields(col.Name)) != 1 {
			return fmt.Errorf("column name %q is not a single word", col.Name)
		}
	}
	if file, err = os.Create(name); err != nil {
		return
	}
	w := bufio.NewWriter(file)
	fmt.Fprintf(w, "# time %.17g\n", time)
	fmt.Fprintf(w, "# step %d\n", step)
	fmt.Fprintf(w, "# run %s\n", runID)
	fmt.Fprintf(w, "# globalId x y z rho u v w p")
	for _, col := range derived {
		fmt.Fprintf(w, " %s", col.Name)
	}
	fmt.Fprintln(w)
	for _, c := range g.Cells {
		fmt.Fprintf(w, "%d %.17g %.17g %.17g %.17g %.17g %.17g %.17g %.17g",
			c.GlobalID, c.Centroid[0], c.Centroid[1], c.Centroid[2],
			c.State.Rho, c.State.V[0], c.State.V[1], c.State.V[2], c.State.P)
		for _, col := range derived {
			fmt.Fprintf(w, " %.17g", col.Value(c.State))
		}
		fmt.Fprintln(w)
	}
	if err = w.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return file.Close()
}

// Header is the commented preamble of a restart file
type Header struct {
	Time  float64
	Step  int
	RunID string
}

func ReadHeader(name string) (h Header, err error) {
	var (
		file *os.File
		seen int
	)
	if file, err = os.Open(name); err != nil {
		return
	}
	defer file.Close()
	sc := bufio.NewScanner(file)
	for sc.Scan() {
		line := sc.Text()
		if !strings.HasPrefix(line, "#") {
			break
		}
		fields := strings.Fields(strings.TrimPrefix(line, "#"))
		if len(fields) != 2 {
			continue
		}
		switch fields[0] {
		case "time":
			h.Time, err = strconv.ParseFloat(fields[1], 64)
			seen++
		case "step":
			h.Step, err = strconv.Atoi(fields[1])
			seen++
		case "run":
			h.RunID = fields[1]
		}
		if err != nil {
			return h, fmt.Errorf("%s: bad header line %q: %w", name, line, err)
		}
	}
	if err = sc.Err(); err != nil {
		return
	}
	if seen < 2 {
		return h, fmt.Errorf("%s: missing time or step header", name)
	}
	return
}

/*
Read loads every partition file of a step found in dir and returns the states keyed by global id.
The partitioning of the files need not match the partitioning of the run being restarted.
*/
func Read(dir string, step int) (states map[uint32]grid.PrimitiveState, h Header, err error) {
	var (
		names []string
	)
	if names, err = filepath.Glob(filepath.Join(dir, fmt.Sprintf("out%d.*.dat", step))); err != nil {
		return
	}
	if len(names) == 0 {
		return nil, h, fmt.Errorf("no restart files for step %d in %s", step, dir)
	}
	sort.Strings(names)
	states = make(map[uint32]grid.PrimitiveState)
	for i, name := range names {
		var (
			hh   Header
			cols [][]float64
		)
		if hh, err = ReadHeader(name); err != nil {
			return
		}
		if i == 0 {
			h = hh
		} else if hh.Step != h.Step || hh.Time != h.Time {
			return nil, h, fmt.Errorf("%s is at step %d time %g, %s at step %d time %g",
				name, hh.Step, hh.Time, names[0], h.Step, h.Time)
		}
		if cols, err = table.ReadTable(name, []int{0, 4, 5, 6, 7, 8}, nil); err != nil {
			return nil, h, fmt.Errorf("reading %s: %w", name, err)
		}
		for r, id := range cols[0] {
			gid := uint32(id)
			if _, dup := states[gid]; dup {
				return nil, h, fmt.Errorf("%s: cell %d appears in more than one restart file", name, gid)
			}
			states[gid] = grid.NewPrimitiveState([grid.NumVars]float64{
				cols[1][r], cols[2][r], cols[3][r], cols[4][r], cols[5][r],
			})
		}
	}
	return
}
