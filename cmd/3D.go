/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gofvm/InputParameters"
	"github.com/notargets/gofvm/checkpoint"
	"github.com/notargets/gofvm/grid"
	"github.com/notargets/gofvm/model_problems/Euler3D"
	"github.com/notargets/gofvm/telemetry"
	"github.com/notargets/gofvm/utils"
)

type Model3D struct {
	ICFile       string
	Partitions   int
	RestartStep  int // Negative for a fresh start
	OutputDir    string
	Profile      string
	MetricsAddr  string
	PerfCounters bool
}

// ThreeDCmd represents the 3D command
var ThreeDCmd = &cobra.Command{
	Use:   "3D",
	Short: "Three dimensional partitioned finite volume solver on a box grid",
	Long: `Three dimensional partitioned finite volume solver on a box grid.
Writes a restart file per partition every OutFreq steps and can resume from any of them.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			ip *InputParameters.InputParameters3D
		)
		m3d := &Model3D{
			ICFile:       viper.GetString("inputConditionsFile"),
			Partitions:   viper.GetInt("partitions"),
			RestartStep:  viper.GetInt("restart"),
			OutputDir:    viper.GetString("outputDir"),
			Profile:      viper.GetString("profile"),
			MetricsAddr:  viper.GetString("metricsAddr"),
			PerfCounters: viper.GetBool("perfCounters"),
		}
		if ip, err = processInput(m3d); err != nil {
			return
		}
		ip.Print()
		return Run3D(cmd.Context(), m3d, ip)
	},
}

const exampleFile = `
########################################
Title: "Sod shock tube"
Equations: Euler
TimeMarching: {Type: CFL, CFL: 0.5, NumberOfSteps: 200, OutFreq: 50}
NumericalOptions: {Order: second, Limiter: minmod, FluxType: roe}
Grid: {Cells: [200, 1, 1], Min: [0, 0, 0], Max: [1, 0.01, 0.01]}
InitType: shocktube
########################################
`

func processInput(m3d *Model3D) (ip *InputParameters.InputParameters3D, err error) {
	var (
		data []byte
	)
	if len(m3d.ICFile) == 0 {
		fmt.Printf("Example File:%s\n", exampleFile)
		return nil, fmt.Errorf("must supply an input parameters file (-I, --inputConditionsFile)")
	}
	if m3d.Partitions < 1 {
		return nil, fmt.Errorf("need at least one partition, have %d", m3d.Partitions)
	}
	if data, err = os.ReadFile(m3d.ICFile); err != nil {
		return
	}
	ip = &InputParameters.InputParameters3D{}
	if err = ip.Parse(data); err != nil {
		return nil, fmt.Errorf("%s: %w", m3d.ICFile, err)
	}
	return
}

// Run3D runs the case described by ip on m3d.Partitions partitions
func Run3D(ctx context.Context, m3d *Model3D, ip *InputParameters.InputParameters3D) (err error) {
	var (
		runID   = uuid.New().String()
		logger  = telemetry.WithRunID(telemetry.SetupLogger(os.Stderr), runID)
		metrics = telemetry.NewMetrics(runID)
		cs      *Euler3D.Case
		grids   []*grid.Grid
		restart map[uint32]grid.PrimitiveState
		header  checkpoint.Header
	)
	if ctx == nil {
		ctx = context.Background()
	}
	if cs, err = Euler3D.NewCase(ip); err != nil {
		return
	}
	if err = os.MkdirAll(m3d.OutputDir, 0755); err != nil {
		return
	}
	switch strings.ToLower(m3d.Profile) {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(m3d.OutputDir), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(m3d.OutputDir), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile kind %s, use cpu or mem", m3d.Profile)
	}
	if m3d.MetricsAddr != "" {
		var stop func()
		if stop, err = serveMetrics(m3d.MetricsAddr, metrics, logger); err != nil {
			return
		}
		defer stop()
	}
	if grids, err = grid.NewBoxMesh(cs.Box, m3d.Partitions); err != nil {
		return
	}
	if m3d.RestartStep >= 0 {
		if restart, header, err = checkpoint.Read(m3d.OutputDir, m3d.RestartStep); err != nil {
			return
		}
		logger.Info("restarting", "step", header.Step, "time", header.Time, "from_run", header.RunID)
	}
	output := func(c *Euler3D.Solver) error {
		return checkpoint.Write(m3d.OutputDir, c.StepNumber, c.Time, runID, c.Grid,
			c.Gas.Columns(Euler3D.Mach, Euler3D.Temperature, Euler3D.Entropy)...)
	}
	run := func() error {
		return Euler3D.RunPartitioned(ctx, grids, func(comm *utils.Comm, g *grid.Grid) (err error) {
			var c *Euler3D.Solver
			if c, err = Euler3D.NewSolver(cs.Config, comm, g, cs.BCs,
				Euler3D.WithLogger(logger), Euler3D.WithMetrics(metrics), Euler3D.WithRunID(runID)); err != nil {
				return
			}
			if restart != nil {
				err = c.Restore(restart, header.Time, header.Step)
			} else {
				err = cs.Initialize(c)
			}
			if err != nil {
				return
			}
			return c.Run(cs.Steps, output)
		})
	}
	logger.Info("running", "title", ip.Title, "partitions", m3d.Partitions, "cells", cs.Box.CellCount(), "steps", cs.Steps)
	if m3d.PerfCounters {
		return countInstructions(run, logger)
	}
	return run()
}

func serveMetrics(addr string, m *telemetry.Metrics, logger *slog.Logger) (stop func(), err error) {
	var (
		ln  net.Listener
		mux = http.NewServeMux()
	)
	if ln, err = net.Listen("tcp", addr); err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Handler: mux}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "err", err)
		}
	}()
	logger.Info("serving metrics", "addr", ln.Addr().String())
	return func() { srv.Close() }, nil
}

func init() {
	rootCmd.AddCommand(ThreeDCmd)
	ThreeDCmd.Flags().StringP("inputConditionsFile", "I", "", "YAML file for input parameters like:\n\t- Grid\n\t- TimeMarching\n\t- NumericalOptions\n\t- BCs")
	ThreeDCmd.Flags().IntP("partitions", "n", 1, "number of partitions, each advanced by its own worker")
	ThreeDCmd.Flags().IntP("restart", "r", -1, "restart from the output files of this step")
	ThreeDCmd.Flags().StringP("outputDir", "o", ".", "directory for output and restart files")
	ThreeDCmd.Flags().String("profile", "", "write a cpu or mem profile to the output directory")
	ThreeDCmd.Flags().String("metricsAddr", "", "serve prometheus metrics on this address, e.g. :9090")
	ThreeDCmd.Flags().Bool("perfCounters", false, "count cpu instructions over the run (linux)")
	if err := viper.BindPFlags(ThreeDCmd.Flags()); err != nil {
		panic(err)
	}
}
