package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/wastenutrient/internal/adapters/ingest"
	"github.com/zatekoja/wastenutrient/internal/adapters/plants"
	"github.com/zatekoja/wastenutrient/internal/application/services"
	"github.com/zatekoja/wastenutrient/internal/domain/entities"
	"github.com/zatekoja/wastenutrient/internal/infrastructure/observability"
	"github.com/zatekoja/wastenutrient/pkg/config"
	apperrors "github.com/zatekoja/wastenutrient/pkg/errors"
)

// evaluation is the JSON document printed to stdout.
type evaluation struct {
	DatasetID      string                   `json:"dataset_id"`
	Rows           int                      `json:"rows"`
	MissingColumns []string                 `json:"missing_columns"`
	SyntheticRows  int                      `json:"synthetic_rows"`
	Training       *entities.TrainingReport `json:"training"`
	Sample         entities.WasteSample     `json:"sample"`
	Analysis       *entities.AnalysisResult `json:"analysis"`
}

func main() {
	dataPath := flag.String("data", "", "path to a waste sample CSV file (required)")
	plant := flag.String("plant", "", "plant to score; all catalog plants when empty")
	sampleJSON := flag.String("sample", "", "query sample as JSON; defaults to the first dataset row")
	seed := flag.Uint64("seed", 0, "seed for the holdout split and synthetic labels; configured value when 0")
	testFraction := flag.Float64("test-fraction", 0, "holdout fraction; configured value when 0")
	flag.Parse()

	if *dataPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the report, logs go to stderr
	observability.InitLogger("waste-nutrient-evaluate", cfg.Env)
	log.Logger = log.Logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if *seed != 0 {
		cfg.Model.Seed = *seed
		cfg.Synthetic.Seed = *seed
	}
	if *testFraction != 0 {
		cfg.Model.TestFraction = *testFraction
	}

	catalog, err := plants.LoadCatalog(cfg.Plants.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load plant catalog")
	}

	svc := services.NewAnalysisService(
		services.NewNutrientPredictor(cfg.Model.MinTrainingRows, cfg.Model.RidgeLambda),
		services.NewRecommendationEngine(catalog, cfg.Recommend.MarginalTolerance),
		catalog,
		nil,
		nil,
		services.AnalysisOptions{
			SyntheticSeed: cfg.Synthetic.Seed,
			NoiseFraction: cfg.Synthetic.NoiseFraction,
			Holdout: services.HoldoutOptions{
				TestFraction: cfg.Model.TestFraction,
				Seed:         cfg.Model.Seed,
			},
		},
	)

	ctx := context.Background()
	result, err := run(ctx, svc, *dataPath, *plant, *sampleJSON, cfg.Server.MaxDatasetRows)
	if result != nil {
		out, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(out))
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Evaluation failed")
	}
}

func run(ctx context.Context, svc *services.AnalysisService, dataPath, plant, sampleJSON string, maxRows int) (*evaluation, error) {
	f, err := os.Open(dataPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := ingest.NewCSVReader(maxRows).Read(ctx, f)
	if err != nil {
		return nil, err
	}

	ds, err := svc.LoadDataset(ctx, table)
	if err != nil {
		return nil, err
	}

	report, err := svc.Train(ctx, nil)
	if err != nil {
		return nil, err
	}

	sample := ds.Samples[0].WithoutNutrients()
	if sampleJSON != "" {
		var query entities.WasteSample
		if err := json.Unmarshal([]byte(sampleJSON), &query); err != nil {
			return nil, fmt.Errorf("invalid -sample: %w", err)
		}
		sample = query
	}

	analysis, err := svc.Recommend(ctx, sample, plant)
	if err != nil && !(apperrors.IsType(err, apperrors.ErrorTypeUnknownPlant) && analysis != nil) {
		return nil, err
	}

	// An unknown plant still reports the prediction alongside the error.
	return &evaluation{
		DatasetID:      ds.ID,
		Rows:           ds.Len(),
		MissingColumns: ds.MissingColumns,
		SyntheticRows:  ds.SyntheticRows,
		Training:       report,
		Sample:         sample,
		Analysis:       analysis,
	}, err
}
