package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"chronos_evaluation/pkg/config"
	"chronos_evaluation/pkg/core/evaluator"
	"chronos_evaluation/pkg/core/runner"
	"chronos_evaluation/pkg/core/store"
)

func main() {
	datasetPath := flag.String("dataset", "", "path to the JSONL dataset to evaluate (required)")
	configPath := flag.String("config", "", "optional YAML config file")
	outputDir := flag.String("output", "", "report output directory (overrides config)")
	service := flag.String("service", "", "service label for the run (overrides config)")
	save := flag.Bool("save", false, "persist the run to Postgres (DATABASE_URL)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := godotenv.Load(); err != nil {
		log.Debug(".env file not found, assuming environment variables are set")
	}

	if *datasetPath == "" {
		log.Error("missing -dataset")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.WithError(err).Fatal("cannot load config")
		}
		cfg = loaded
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *service != "" {
		cfg.Service = *service
	}

	eval := evaluator.New()
	eval.SetTolerance(cfg.Tolerance)
	eval.SetBands(cfg.CompareBands())
	for canonical, names := range cfg.Aliases {
		eval.AddFieldAliases(canonical, names...)
	}

	run := runner.New(eval, cfg.Service, cfg.OutputDir, log)

	ctx := context.Background()
	if *save {
		if err := store.InitDB(ctx); err != nil {
			log.WithError(err).Fatal("cannot connect to database")
		}
		defer store.Close()
		run.SetRepository(store.NewRunRepo())
	}

	report, err := run.Run(ctx, *datasetPath)
	if err != nil {
		log.WithError(err).Fatal("evaluation run failed")
	}

	// Low accuracy is a finding, not a process failure: exit zero so batch
	// pipelines can keep evaluating the remaining services.
	if overall, ok := report.Metrics["overall"]; ok {
		log.WithField("mean_accuracy", overall.Mean).Info("done")
	}
}
