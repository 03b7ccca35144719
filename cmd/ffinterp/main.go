package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"ffinterp/pkg/config"
)

func main() {
	configPath := flag.String("config", "ffinterp.yaml", "YAML configuration file (defaults are used if it does not exist)")
	function := flag.String("function", "", "Reference function: sine, weierstrass, noise or csv")
	input := flag.String("input", "", "CSV file of x,y samples (implies -function csv)")
	numPoints := flag.Int("points", 0, "Number of samples generated from the reference function")
	lo := flag.Float64("lo", 0, "Lower end of the sampled range")
	hi := flag.Float64("hi", 0, "Upper end of the sampled range")
	freeVariable := flag.Float64("d", 0, "Contraction factor shared by every segment")
	iterations := flag.Int("iterations", 0, "Refinement rounds per evaluation")
	numCores := flag.Int("cores", 0, "Number of CPU cores to use (default: all available)")
	queries := flag.Int("queries", 0, "Number of evenly spaced evaluation points")
	output := flag.String("output", "", "CSV file for evaluation results")
	dbPath := flag.String("db", "", "SQLite file to record the run in")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	writeConfig := flag.Bool("write-config", false, "Write the effective configuration to -config and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Flags given on the command line override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "function":
			cfg.Dataset.Function = *function
		case "input":
			cfg.Dataset.Input = *input
			cfg.Dataset.Function = "csv"
		case "points":
			cfg.Dataset.Points = *numPoints
		case "lo":
			cfg.Dataset.Lo = *lo
		case "hi":
			cfg.Dataset.Hi = *hi
		case "d":
			cfg.Interpolation.FreeVariable = *freeVariable
			cfg.Interpolation.FreeVariables = nil
		case "iterations":
			cfg.Interpolation.Iterations = *iterations
		case "cores":
			cfg.Interpolation.NumCores = *numCores
		case "queries":
			cfg.Evaluation.Queries = *queries
		case "output":
			cfg.Output.Results = *output
		case "db":
			cfg.Output.Database = *dbPath
		case "verbose":
			cfg.Output.Verbose = *verbose
		}
	})

	slog.SetDefault(newLogger(os.Stderr, cfg.Output.Verbose))

	if *writeConfig {
		if err := config.SaveConfig(cfg, *configPath); err != nil {
			slog.Error("failed to write configuration", "path", *configPath, "error", err)
			os.Exit(1)
		}
		slog.Info("configuration written", "path", *configPath)
		return
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if _, err := run(context.Background(), cfg); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

// newLogger writes human-readable text to a terminal and JSON otherwise.
func newLogger(f *os.File, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()) {
		return slog.New(slog.NewTextHandler(f, opts))
	}
	return slog.New(slog.NewJSONHandler(f, opts))
}
