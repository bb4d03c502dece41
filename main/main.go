package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/phil-mansfield/gopm"
	"github.com/phil-mansfield/gopm/io"
	"github.com/phil-mansfield/gopm/render"
)

const (
	// Number of snapshots which can wait to be written before the simulation
	// blocks.
	snapshotBufLen = 2

	summaryWidth, summaryHeight = 70, 12
)

// FileGroup contains utility files for logging and writing profiles to.
type FileGroup struct {
	log, prof *os.File
}

// Close closes the files inside FileGroup.
func (fg *FileGroup) Close() {
	if fg.log != nil {
		err := fg.log.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		if err != nil {
			log.Fatal(err.Error())
		}
	}
}

func main() {
	var (
		simulate, exampleConfig string
		threads                 int
		verbose                 bool
	)
	vars := map[string]*string{
		"Simulate":      &simulate,
		"ExampleConfig": &exampleConfig,
	}

	flag.IntVar(
		&threads, "Threads", 0,
		"Number of threads used. Overrides Workers in the config file. "+
			"Default is the number of logical cores.",
	)
	flag.BoolVar(&verbose, "Verbose", false, "Log every step.")
	flag.StringVar(
		&simulate, "Simulate", "",
		"Configuration file for [Simulation] mode.",
	)
	flag.StringVar(
		&exampleConfig, "ExampleConfig", "",
		"Prints an example configuration file of the specified type to "+
			"stdout. The only accepted argument is 'Simulation'.",
	)

	flag.Parse()
	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	modeName, err := getModeName(vars)
	if err != nil {
		log.Fatal(err.Error())
	}

	switch modeName {
	case "Simulate":
		con, err := io.ReadSimulationConfig(simulate)
		if err != nil {
			log.Fatal(err.Error())
		}
		if threads > 0 {
			con.Workers = threads
		}
		simulateMain(con)

	case "ExampleConfig":
		switch exampleConfig {
		case "Simulation":
			fmt.Println(io.ExampleSimulationFile)
		default:
			log.Fatal(
				"Unrecognized 'ExampleConfig' argument. The only recognized " +
					"argument is 'Simulation'.",
			)
		}

	default:
		panic("Impossible")
	}
}

// getModeName returns the name of the mode and fails with a descriptive error
// if the user provided less or more than one mode flag.
func getModeName(vars map[string]*string) (string, error) {
	setNames := []string{}

	for name, varPtr := range vars {
		if *varPtr != "" {
			setNames = append(setNames, name)
		}
	}

	if len(setNames) == 0 {
		return "", fmt.Errorf("No flags have been set.")
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but gopm only accepts one "+
				"flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

// setupFiles redirects logging and starts profiling as requested by the
// config file.
func setupFiles(con *io.SimulationConfig) *FileGroup {
	fg := &FileGroup{}
	if con.ValidLogFile() {
		f, err := os.Create(con.LogFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		log.SetOutput(f)
		fg.log = f
	}

	if con.ValidProfileFile() {
		f, err := os.Create(con.ProfileFile)
		if err != nil {
			log.Fatal(err.Error())
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err.Error())
		}
		fg.prof = f
	}
	return fg
}

func simulateMain(con *io.SimulationConfig) {
	fg := setupFiles(con)
	defer fg.Close()

	cfg, err := con.Config()
	if err != nil {
		log.Fatal(err.Error())
	}
	if cfg.Workers > 0 {
		runtime.GOMAXPROCS(cfg.Workers)
	}

	sim, err := gopm.NewSimulation(cfg)
	if err != nil {
		log.Fatal(err.Error())
	}

	gw, err := io.NewGridWriter(con.Output, cfg.Cosmo)
	if err != nil {
		log.Fatal(err.Error())
	}
	log.WithField("run_id", gw.RunID()).Infof("Writing to %s", con.Output)

	sinks := io.MultiSink{gw}
	var ps *render.PlotSink
	if con.Histograms || con.HeatMaps {
		ps, err = render.NewPlotSink(
			con.Output, con.HistBins, cfg.Workers,
			con.Histograms, con.HeatMaps,
		)
		if err != nil {
			log.Fatal(err.Error())
		}
		sinks = append(sinks, ps)
	}

	as := io.NewAsyncSink(context.Background(), sinks, snapshotBufLen)
	runErr := sim.Run(as)
	if err := as.Close(); err != nil {
		log.Fatal(err.Error())
	} else if runErr != nil {
		log.Fatal(runErr.Error())
	}

	if ps != nil {
		if err := ps.Close(); err != nil {
			log.Fatal(err.Error())
		}
	}

	fmt.Println(render.Summary(sim.Diagnostics(), summaryWidth, summaryHeight))
}
