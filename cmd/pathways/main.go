// Command pathways migrates and validates serialized documents from the
// command line. It reads a document in yaml form, upgrades it to the
// current schema, runs the requested validation pass and writes the
// upgraded yaml to stdout.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"pathways-engine/domain/core/validators"
	"pathways-engine/domain/migrations"
	"pathways-engine/infrastructure/config"
)

func main() {
	var (
		input  = flag.String("input", "", "path to the document yaml (required)")
		strict = flag.Bool("strict", false, "run the publication validation pass")
		quiet  = flag.Bool("quiet", false, "suppress the migrated yaml output")
	)
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := buildLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	data, err := os.ReadFile(*input)
	if err != nil {
		logger.Fatal("Could not read input file", zap.Error(err))
	}

	doc, err := migrations.FromYAML(data)
	if err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}
	logger.Info("Document migrated",
		zap.String("documentID", doc.ID().String()),
		zap.Int("nodeSchemaVersion", doc.NodeSchemaVersion()),
		zap.Int("nodes", len(doc.NodeNames())),
	)

	if err := validators.Validate(doc, *strict); err != nil {
		logger.Fatal("Validation failed", zap.Error(err))
	}

	if !*quiet {
		out, err := migrations.ToYAML(doc)
		if err != nil {
			logger.Fatal("Could not encode document", zap.Error(err))
		}
		os.Stdout.Write(out)
	}
}

func buildLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
