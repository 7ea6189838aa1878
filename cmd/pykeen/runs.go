package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/basalamahsyarief/pykeen/internal/eval"
	"github.com/basalamahsyarief/pykeen/internal/storage"
)

func runsCmd() *cli.Command {
	var storePath string

	return &cli.Command{
		Name:      "runs",
		Usage:     "List recorded runs, or show one as JSON",
		ArgsUsage: "[run-id]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "store",
				Usage:       "path to the run store database",
				Destination: &storePath,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := resolveStorePath(storePath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			st := storage.NewSQLiteStore(path)
			if err := st.Init(ctx); err != nil {
				return cli.Exit(fmt.Sprintf("error: open run store: %v", err), 1)
			}
			defer func() { _ = st.Close() }()

			if id := cmd.Args().First(); id != "" {
				rec, ok, err := st.GetRun(ctx, id)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				if !ok {
					return cli.Exit(fmt.Sprintf("error: no run %s in %s", id, path), 1)
				}
				data, err := json.MarshalIndent(rec, "", "  ")
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				fmt.Fprintln(os.Stdout, string(data))
				return nil
			}

			recs, err := st.ListRuns(ctx)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if len(recs) == 0 {
				fmt.Printf("No runs recorded in %s\n", path)
				return nil
			}

			fmt.Printf("Runs in %s:\n\n", path)
			for _, rec := range recs {
				fmt.Printf("  %-36s  %-20s  %-12s  %-10s  %s\n",
					rec.ID,
					rec.CreatedAt.Local().Format(time.DateTime),
					rec.Dataset,
					rec.Model,
					summariseMetrics(rec.Metrics))
			}
			fmt.Printf("\n%d run(s) recorded\n", len(recs))
			return nil
		},
	}
}

// summariseMetrics pulls the headline MRR out of a stored metrics blob,
// preferring filtered metrics when present.
func summariseMetrics(blob json.RawMessage) string {
	if len(blob) == 0 {
		return "-"
	}
	var res eval.Results
	if err := json.Unmarshal(blob, &res); err != nil {
		return "-"
	}
	side := res.Unfiltered
	kind := "mrr"
	if res.Filtered != nil {
		side = *res.Filtered
		kind = "filtered mrr"
	}
	return fmt.Sprintf("%s %.4f", kind, side.Both.MRR)
}
