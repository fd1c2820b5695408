// Command gridplan runs one connection planning run over an element table
// and writes the resulting tables.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dd0wney/cluso-gridplan/pkg/config"
	"github.com/dd0wney/cluso-gridplan/pkg/logging"
	"github.com/dd0wney/cluso-gridplan/pkg/metrics"
	"github.com/dd0wney/cluso-gridplan/pkg/network"
	"github.com/dd0wney/cluso-gridplan/pkg/optimizer"
	"github.com/dd0wney/cluso-gridplan/pkg/pgstore"
	"github.com/dd0wney/cluso-gridplan/pkg/pipeline"
	"github.com/dd0wney/cluso-gridplan/pkg/report"
)

// Exit codes
const (
	exitOK         = 0
	exitError      = 1
	exitInfeasible = 2
)

func main() {
	var (
		configFile   = flag.String("config", "", "YAML configuration file (see cmd/gridplan/gridplan.yaml)")
		elementsFile = flag.String("elements", "", "Element CSV file (overrides input.elements_file)")
		outDir       = flag.String("out", "", "Output directory (overrides output.dir)")
		archive      = flag.Bool("archive", false, "Also write a compressed plan archive")
		importCSV    = flag.String("import", "", "Load this CSV into the database elements table and exit")
		quiet        = flag.Bool("quiet", false, "Do not print the run summary")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *elementsFile != "" {
		cfg.Input.Source = config.SourceCSV
		cfg.Input.ElementsFile = *elementsFile
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if *archive {
		cfg.Output.Archive = true
	}

	logger := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(cfg.LogLevel))
	logging.SetDefaultLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *importCSV != "" {
		if err := importElements(ctx, cfg, *importCSV); err != nil {
			log.Fatalf("Import failed: %v", err)
		}
		return
	}

	code := run(ctx, cfg, logger, *quiet)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg config.Config, logger logging.Logger, quiet bool) int {
	reg := metrics.DefaultRegistry()
	opts := append(pipeline.FromConfig(cfg),
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(reg),
		pipeline.WithSink(report.NewWriter(cfg.Output.Dir, cfg.Output.Archive)),
	)

	var source pipeline.Source = pipeline.CSVSource{Path: cfg.Input.ElementsFile}
	if cfg.Input.Source == config.SourcePostgres {
		store, err := pgstore.NewPGStore(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+err.Error()))
			return exitError
		}
		defer store.Close()
		source = store
		opts = append(opts, pipeline.WithSink(store))
	}

	res, err := pipeline.NewPlanner(source, opts...).Run(ctx)
	writeMetrics(cfg.MetricsFile, reg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+err.Error()))
		if errors.Is(err, optimizer.ErrInfeasible) {
			return exitInfeasible
		}
		return exitError
	}

	if !quiet {
		fmt.Println(renderSummary(report.Summarize(res), cfg.Output.Dir))
	}
	return exitOK
}

func importElements(ctx context.Context, cfg config.Config, path string) error {
	if cfg.Database.URL == "" {
		return errors.New("database.url (or GRIDPLAN_DATABASE_URL) is required for -import")
	}
	elements, err := network.LoadCSVFile(path)
	if err != nil {
		return err
	}
	// Reject tables the planner could not load.
	if _, err := network.NewStore(elements); err != nil {
		return err
	}

	store, err := pgstore.NewPGStore(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ImportElements(ctx, elements); err != nil {
		return err
	}
	log.Printf("Imported %d elements from %s", len(elements), path)
	return nil
}

func writeMetrics(path string, reg *metrics.Registry, logger logging.Logger) {
	if path == "" {
		return
	}
	if err := reg.WriteTextfile(path); err != nil {
		logger.Warn("failed to write metrics file", logging.String("path", path), logging.Error(err))
	}
}
