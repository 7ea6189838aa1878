package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/basalamahsyarief/pykeen/internal/eval"
	"github.com/basalamahsyarief/pykeen/internal/logger"
	"github.com/basalamahsyarief/pykeen/internal/pipeline"
)

func evaluateCmd() *cli.Command {
	var (
		runDir    string
		filtered  bool
		batchSize int64
		workers   int64
	)

	return &cli.Command{
		Name:    "evaluate",
		Aliases: []string{"eval"},
		Usage:   "Evaluate a saved model with rank-based metrics",
		Flags: append(append(datasetFlags(), loggingFlags()...),
			&cli.StringFlag{
				Name:        "run",
				Aliases:     []string{"r"},
				Usage:       "run directory holding the saved artifacts",
				Required:    true,
				Destination: &runDir,
			},
			&cli.BoolFlag{
				Name:        "filtered",
				Usage:       "filter known triples from the candidate sets",
				Value:       true,
				Destination: &filtered,
			},
			&cli.Int64Flag{
				Name:        "batch-size",
				Aliases:     []string{"b"},
				Usage:       "evaluation batch size (0 = default)",
				Destination: &batchSize,
			},
			&cli.Int64Flag{
				Name:        "workers",
				Usage:       "evaluation workers (0 = GOMAXPROCS)",
				Destination: &workers,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := newLogger()
			ctx = logger.WithContext(ctx, log)

			cfg, ds, m, err := loadRunDir(cmd, runDir)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			split := pipeline.EvalSplit(ds)
			if split == nil {
				return cli.Exit("error: dataset has no held-out split to evaluate", 1)
			}

			evalCfg := eval.Config{
				Filtered:  filtered,
				HitsAt:    cfg.Eval.HitsAt,
				BatchSize: int(batchSize),
				Workers:   int(workers),
			}
			ev, err := eval.New(m, evalCfg, ds.KnownTriples(), log)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			log.Info("evaluating", "model", m.Name(), "dataset", ds.Name,
				"triples", split.NumTriples(), "filtered", filtered)
			metrics, err := ev.Evaluate(ctx, split)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			printMetrics(os.Stdout, metrics)
			return nil
		},
	}
}
