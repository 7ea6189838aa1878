package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/basalamahsyarief/pykeen/internal/eval"
	"github.com/basalamahsyarief/pykeen/internal/logger"
	"github.com/basalamahsyarief/pykeen/internal/pipeline"
	"github.com/basalamahsyarief/pykeen/internal/storage"
)

func trainCmd() *cli.Command {
	var (
		configPath string
		v          trainOverrides
		storePath  string
		noStore    bool
	)

	return &cli.Command{
		Name:  "train",
		Usage: "Train a model and evaluate it on the held-out split",
		Flags: append(append(datasetFlags(), loggingFlags()...),
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to a YAML run configuration",
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "model",
				Aliases:     []string{"m"},
				Usage:       "model name (hole, distmult, transe, rotate)",
				Value:       "hole",
				Destination: &v.model,
			},
			&cli.Int64Flag{
				Name:        "dim",
				Usage:       "embedding dimension",
				Value:       200,
				Destination: &v.dim,
			},
			&cli.Int64Flag{
				Name:        "norm",
				Usage:       "distance norm for translational models (1 or 2)",
				Value:       1,
				Destination: &v.norm,
			},
			&cli.StringFlag{
				Name:        "criterion",
				Usage:       "loss name (nssa, margin, softplus)",
				Value:       "nssa",
				Destination: &v.criterion,
			},
			&cli.Float64Flag{
				Name:        "margin",
				Usage:       "loss margin",
				Value:       1,
				Destination: &v.margin,
			},
			&cli.Float64Flag{
				Name:        "temperature",
				Aliases:     []string{"temp"},
				Usage:       "self-adversarial softmax temperature",
				Value:       1,
				Destination: &v.temperature,
			},
			&cli.Float64Flag{
				Name:        "learning-rate",
				Aliases:     []string{"lr"},
				Usage:       "SGD learning rate",
				Value:       0.01,
				Destination: &v.lr,
			},
			&cli.Int64Flag{
				Name:        "epochs",
				Aliases:     []string{"e"},
				Usage:       "training epochs",
				Value:       50,
				Destination: &v.epochs,
			},
			&cli.Int64Flag{
				Name:        "batch-size",
				Aliases:     []string{"b"},
				Usage:       "training batch size",
				Value:       128,
				Destination: &v.batchSize,
			},
			&cli.Int64Flag{
				Name:        "negatives",
				Aliases:     []string{"k"},
				Usage:       "negative samples per positive triple",
				Value:       4,
				Destination: &v.negatives,
			},
			&cli.Int64Flag{
				Name:        "workers",
				Usage:       "scoring workers (0 = GOMAXPROCS)",
				Destination: &v.workers,
			},
			&cli.Int64Flag{
				Name:        "seed",
				Usage:       "RNG seed for init, shuffling and sampling",
				Destination: &v.seed,
			},
			&cli.BoolFlag{
				Name:        "filtered",
				Usage:       "filter known triples during evaluation",
				Value:       true,
				Destination: &v.filtered,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "directory for run artifacts (embedding tables, result.json)",
				Destination: &v.outDir,
			},
			&cli.StringFlag{
				Name:        "store",
				Usage:       "path to the run store database",
				Destination: &storePath,
			},
			&cli.BoolFlag{
				Name:        "no-store",
				Usage:       "skip recording the run in the store",
				Destination: &noStore,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := newLogger()
			ctx = logger.WithContext(ctx, log)

			var cfg pipeline.Config
			if configPath != "" {
				var err error
				cfg, err = pipeline.LoadFile(configPath)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: load config: %v", err), 1)
				}
			}
			applyTrainFlags(cmd, &cfg, v, configPath != "")

			res, err := pipeline.Run(ctx, cfg)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			if cfg.OutputDir != "" {
				if err := res.Save(cfg.OutputDir); err != nil {
					return cli.Exit(fmt.Sprintf("error: save artifacts: %v", err), 1)
				}
				log.Info("artifacts saved", "dir", cfg.OutputDir)
			}

			if !noStore {
				if err := recordRun(ctx, storePath, res); err != nil {
					return cli.Exit(fmt.Sprintf("error: record run: %v", err), 1)
				}
			}

			if res.Metrics != nil {
				printMetrics(os.Stdout, res.Metrics)
			}
			return nil
		},
	}
}

// recordRun appends the finished run to the SQLite run store.
func recordRun(ctx context.Context, storeFlag string, res *pipeline.Result) error {
	path, err := resolveStorePath(storeFlag)
	if err != nil {
		return err
	}
	rec, err := res.Record()
	if err != nil {
		return err
	}
	st := storage.NewSQLiteStore(path)
	if err := st.Init(ctx); err != nil {
		return err
	}
	defer func() { _ = st.Close() }()
	if err := st.SaveRun(ctx, rec); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("run recorded", "store", path, "run_id", rec.ID)
	return nil
}

// printMetrics writes evaluation metrics as indented JSON.
func printMetrics(w io.Writer, m *eval.Results) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(w, string(data))
}
