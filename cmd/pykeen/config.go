package main

import (
	"github.com/urfave/cli/v3"

	"github.com/basalamahsyarief/pykeen/internal/pipeline"
)

// trainOverrides carries the train command's flag values into the run
// configuration.
type trainOverrides struct {
	model       string
	dim         int64
	norm        int64
	criterion   string
	margin      float64
	temperature float64
	lr          float64
	epochs      int64
	batchSize   int64
	negatives   int64
	workers     int64
	seed        int64
	filtered    bool
	outDir      string
}

// applyTrainFlags merges flag values into cfg.  Without a configuration file
// every flag applies, defaults included.  With one, only flags the user set
// explicitly override it, so the file stays authoritative for the rest.
func applyTrainFlags(cmd *cli.Command, cfg *pipeline.Config, v trainOverrides, haveConfig bool) {
	set := func(names ...string) bool {
		if !haveConfig {
			return true
		}
		for _, n := range names {
			if cmd.IsSet(n) {
				return true
			}
		}
		return false
	}

	if set("dataset", "d") {
		cfg.Dataset.Name = datasetName
	}
	if set("dataset-dir") {
		cfg.Dataset.Dir = datasetDir
	}
	cfg.Dataset.Dir = resolveDatasetDir(cfg.Dataset.Dir)

	if set("model", "m") {
		cfg.Model.Name = v.model
	}
	if set("dim") {
		cfg.Model.Dim = int(v.dim)
	}
	if set("norm") {
		cfg.Model.Norm = int(v.norm)
	}
	if set("criterion") {
		cfg.Criterion.Name = v.criterion
	}
	if set("margin") {
		m := v.margin
		cfg.Criterion.Margin = &m
	}
	if set("temperature", "temp") {
		t := v.temperature
		cfg.Criterion.Temperature = &t
	}
	if set("learning-rate", "lr") {
		cfg.Optimizer.LearningRate = v.lr
	}
	if set("epochs", "e") {
		cfg.Training.Epochs = int(v.epochs)
	}
	if set("batch-size", "b") {
		cfg.Training.BatchSize = int(v.batchSize)
	}
	if set("negatives", "k") {
		cfg.Training.Negatives = int(v.negatives)
	}
	if set("workers") {
		cfg.Training.Workers = int(v.workers)
	}
	if set("seed") {
		cfg.Seed = v.seed
	}
	if set("filtered") {
		cfg.Eval.Filtered = v.filtered
	}
	if set("out", "o") {
		cfg.OutputDir = v.outDir
	}
}
