package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/wildstyl3r/msmc/internal/config"
	"github.com/wildstyl3r/msmc/internal/model"
	"github.com/wildstyl3r/msmc/internal/utils"
)

func envOr(key, fallback string) string {
	if value, some := os.LookupEnv(key); some && value != "" {
		return value
	}
	return fallback
}

// loadDotEnv reads .env files into the environment; a missing file is fine.
func loadDotEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	return nil
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// optional: MSMC_INPUT, MSMC_THREADS
	if err := loadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	defaultThreads := runtime.NumCPU()
	if threads, err := strconv.Atoi(envOr("MSMC_THREADS", "")); err == nil && threads > 0 {
		defaultThreads = threads
	}

	flags := flag.NewFlagSet("msmc", flag.ContinueOnError)
	dataFlags := model.NewDataFlags(flags)
	var configFileNamePointer = flags.String("input", envOr("MSMC_INPUT", "muscat"), "simulation configuration in toml format")
	var threads = flags.Int("t", defaultThreads, "number of worker goroutines")
	var verbose = flags.Bool("v", false, "print model details and progress")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	startTime := time.Now()
	fmt.Printf("Current time: %s\n", startTime.UTC().Format(time.UnixDate))

	cfg, meta, err := config.LoadConfig(*configFileNamePointer)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	outputPath := ""
	if cfg.OutputDir != "" && cfg.OutputDir != "." {
		if err := os.MkdirAll(cfg.OutputDir, 0750); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		outputPath = cfg.OutputDir
	}
	dataFlags.SetOutputPath(outputPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var summary utils.CSV
	failed := false
	for _, modelName := range cfg.ModelNames() {
		fmt.Println("\n" + modelName)
		parameters := cfg.Models[modelName]
		parameters.SetThreads(*threads)
		parameters.SetVerbosity(*verbose)
		if err := parameters.CheckAndUnify(modelName, &cfg, &meta); err != nil {
			fmt.Fprintf(os.Stderr, "model %s: %v\n", modelName, err)
			failed = true
			continue
		}

		m, err := model.NewModel(parameters)
		if err != nil {
			fmt.Fprintf(os.Stderr, "model %s: %v\n", modelName, err)
			failed = true
			continue
		}
		result, err := model.NewDriver(m).Run(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "model %s: %v\n", modelName, err)
			failed = true
			break
		}
		if *verbose {
			fmt.Printf("Attenuation to first scatter: %f\n", result.AttenuationToFirstScatter)
			fmt.Printf("Walks: %d, discarded: %d, missing cells: %d\n", result.Walks(), result.Discarded(), result.Missing())
		}
		if err := result.Save(modelName, dataFlags, parameters.MakeDir); err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed = true
		}
		summary = append(summary, result.SummaryRow(modelName))
	}

	if len(summary) > 0 {
		if err := utils.WriteAsCSV(summary, dataFlags.GetOutputPath(), "", "summary", model.SummaryColumns); err != nil {
			fmt.Fprintln(os.Stderr, err)
			failed = true
		}
	}
	fmt.Printf("Elapsed time: %v\n", time.Since(startTime))
	if failed {
		return 1
	}
	return 0
}
