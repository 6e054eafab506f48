package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"tennisetl/internal/augment"
	"tennisetl/internal/config"
	"tennisetl/internal/metrics"
	"tennisetl/internal/metrics/datadog"
	"tennisetl/internal/refdata"
	"tennisetl/internal/storage"

	// register all sink backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "tennisetl/internal/storage/all"
)

// main is the entry point for the augment binary. It loads the run config,
// optionally initializes a metrics backend and a database sink, and runs
// the join-and-repair pipeline once per division.
func main() {
	var (
		cfgPath    string
		sourceDir  string
		outDir     string
		divisions  string
		encoding   string
		storeKind  string
		storeDSN   string
		storeTable string
		metricsFlg string
		validate   bool
	)

	flag.StringVar(&cfgPath, "config", "", "run config JSON path (flags override)")
	flag.StringVar(&sourceDir, "source-dir", "", "directory holding the OnCourt export CSVs")
	flag.StringVar(&outDir, "out-dir", "", "directory receiving augmented_games_<division>.csv")
	flag.StringVar(&divisions, "divisions", "", "comma-separated divisions (e.g. atp,wta)")
	flag.StringVar(&encoding, "encoding", "", `input encoding: "" (UTF-8) or "cp1252"`)
	flag.StringVar(&storeKind, "storage", "", "optional sink backend (postgres, sqlite, mssql)")
	flag.StringVar(&storeDSN, "dsn", "", "sink DSN (env vars expanded)")
	flag.StringVar(&storeTable, "table", "", "sink table base name")
	flag.StringVar(&metricsFlg, "metrics-backend", "", "metrics backend to use (datadog, none)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.Parse()

	var run config.Run
	if cfgPath != "" {
		var err error
		run, err = config.Load(cfgPath)
		if err != nil {
			log.Fatalf("load config: %v", err)
		}
	}

	// Flags override file values.
	if sourceDir != "" {
		run.SourceDir = sourceDir
	}
	if outDir != "" {
		run.OutDir = outDir
	}
	if divisions != "" {
		run.Divisions = splitList(divisions)
	}
	if encoding != "" {
		run.Encoding = encoding
	}
	if storeKind != "" {
		run.Storage.Kind = storeKind
	}
	if storeDSN != "" {
		run.Storage.DSN = storeDSN
	}
	if storeTable != "" {
		run.Storage.Table = storeTable
	}
	if metricsFlg != "" {
		run.Metrics.Backend = metricsFlg
	}

	run.ApplyDefaults()

	issues := config.Validate(run)
	hasError := false
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
		if iss.Severity == config.SeverityError {
			hasError = true
		}
	}
	if hasError {
		log.Fatalf("configuration is invalid")
	}
	if validate {
		log.Printf("configuration is valid")
		return
	}

	ctx := context.Background()
	logger := log.New(os.Stderr, "", log.LstdFlags)

	switch run.Metrics.Backend {
	case "datadog":
		b, err := datadog.NewBackend(ctx, datadog.Options{
			JobName: run.Job,
			Tags:    run.Metrics.Tags,
		})
		if err != nil {
			logger.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Close(); err != nil {
					logger.Printf("metrics: close error: %v", err)
				}
			}()
		}
	case "", "none":
	}

	// Shared dictionaries load once; they are read-only across divisions.
	rounds := refdata.NewTable(
		filepath.Join(run.SourceDir, augment.RoundsFile),
		augment.RoundIDColumn, augment.RoundNameColumn)
	rounds.Encoding = run.Encoding
	if err := rounds.Load(); err != nil {
		log.Fatalf("load rounds: %v", err)
	}

	courts := refdata.NewTable(
		filepath.Join(run.SourceDir, augment.CourtsFile),
		augment.CourtIDColumn, augment.CourtNameColumn)
	courts.Encoding = run.Encoding
	if err := courts.Load(); err != nil {
		log.Fatalf("load courts: %v", err)
	}

	for _, division := range run.Divisions {
		opts := augment.RunOptions{
			Division:  division,
			SourceDir: run.SourceDir,
			OutPath:   filepath.Join(run.OutDir, fmt.Sprintf(augment.OutFilePattern, division)),
			Encoding:  run.Encoding,
			Rounds:    rounds,
			Courts:    courts,
			Logger:    logger,
		}

		if run.Storage.Kind != "" {
			sink, err := storage.New(ctx, storage.Config{
				Kind:  run.Storage.Kind,
				DSN:   os.ExpandEnv(run.Storage.DSN),
				Table: run.Storage.Table + "_" + division,
			})
			if err != nil {
				log.Fatalf("storage: %v", err)
			}
			opts.Sink = sink
			if err := augment.Run(ctx, opts); err != nil {
				sink.Close()
				log.Fatalf("division %s: %v", division, err)
			}
			sink.Close()
			continue
		}

		if err := augment.Run(ctx, opts); err != nil {
			log.Fatalf("division %s: %v", division, err)
		}
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
