package main

import (
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/basalamahsyarief/pykeen/internal/datasets"
	"github.com/basalamahsyarief/pykeen/internal/model"
	"github.com/basalamahsyarief/pykeen/internal/pipeline"
)

// loadRunDir restores a saved run: its configuration, the dataset it was
// trained on, and the model rebuilt from the stored embedding tables.  The
// dataset flags override the stored dataset selection when set explicitly.
func loadRunDir(cmd *cli.Command, dir string) (pipeline.Config, *datasets.Dataset, model.Model, error) {
	res, err := pipeline.LoadResult(dir)
	if err != nil {
		return pipeline.Config{}, nil, nil, fmt.Errorf("load run summary: %w", err)
	}
	cfg := res.Config
	if cmd.IsSet("dataset") || cmd.IsSet("d") {
		cfg.Dataset.Name = datasetName
	}
	if cmd.IsSet("dataset-dir") {
		cfg.Dataset.Dir = datasetDir
	}
	cfg.Dataset.Dir = resolveDatasetDir(cfg.Dataset.Dir)

	ds, err := datasets.Load(cfg.Dataset.Name, cfg.Dataset.Dir)
	if err != nil {
		return pipeline.Config{}, nil, nil, err
	}
	m, err := pipeline.LoadModel(dir, cfg, ds.Train)
	if err != nil {
		return pipeline.Config{}, nil, nil, err
	}
	return cfg, ds, m, nil
}
