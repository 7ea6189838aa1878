package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/basalamahsyarief/pykeen/internal/triples"
)

type prediction struct {
	Entity string  `json:"entity"`
	Score  float64 `json:"score"`
}

func predictCmd() *cli.Command {
	var (
		runDir   string
		head     string
		relation string
		tail     string
		topK     int64
		filter   bool
	)

	return &cli.Command{
		Name:  "predict",
		Usage: "Score a triple or rank completions for a partial one",
		Flags: append(datasetFlags(),
			&cli.StringFlag{
				Name:        "run",
				Aliases:     []string{"r"},
				Usage:       "run directory holding the saved artifacts",
				Required:    true,
				Destination: &runDir,
			},
			&cli.StringFlag{
				Name:        "head",
				Usage:       "head entity label",
				Destination: &head,
			},
			&cli.StringFlag{
				Name:        "relation",
				Aliases:     []string{"rel"},
				Usage:       "relation label",
				Required:    true,
				Destination: &relation,
			},
			&cli.StringFlag{
				Name:        "tail",
				Usage:       "tail entity label",
				Destination: &tail,
			},
			&cli.Int64Flag{
				Name:        "k",
				Usage:       "number of completions to return",
				Value:       10,
				Destination: &topK,
			},
			&cli.BoolFlag{
				Name:        "filter",
				Usage:       "drop completions that form known triples",
				Destination: &filter,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_ = ctx

			_, ds, m, err := loadRunDir(cmd, runDir)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			rid, err := ds.Train.RelationID(relation)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			var known func(triples.Triple) bool
			if filter {
				known = ds.KnownTriples()
			}

			out := map[string]any{"relation": relation}
			switch {
			case head != "" && tail != "":
				hid, err := ds.Train.EntityID(head)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				tid, err := ds.Train.EntityID(tail)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				scores, err := m.ScoreHRT([]int64{hid}, []int64{rid}, []int64{tid})
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				out["head"] = head
				out["tail"] = tail
				out["score"] = scores[0]

			case head != "":
				hid, err := ds.Train.EntityID(head)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				rows, err := m.ScoreTails([]int64{hid}, []int64{rid})
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				preds, err := topEntities(ds.Train, known, rows.Row(0), int(topK), func(id int64) triples.Triple {
					return triples.Triple{Head: hid, Relation: rid, Tail: id}
				})
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				out["head"] = head
				out["predictions"] = preds

			case tail != "":
				tid, err := ds.Train.EntityID(tail)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				rows, err := m.ScoreHeads([]int64{rid}, []int64{tid})
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				preds, err := topEntities(ds.Train, known, rows.Row(0), int(topK), func(id int64) triples.Triple {
					return triples.Triple{Head: id, Relation: rid, Tail: tid}
				})
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				out["tail"] = tail
				out["predictions"] = preds

			default:
				return cli.Exit("error: provide --head, --tail, or both", 1)
			}

			data, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
}

// topEntities ranks one score row over every entity, drops candidates whose
// completed triple is already known when a membership test is given, and
// returns the k best with labels attached.  Ties break towards the lower
// entity index.
func topEntities(f *triples.Factory, known func(triples.Triple) bool, row []float64, k int, complete func(int64) triples.Triple) ([]prediction, error) {
	if k < 0 {
		return nil, fmt.Errorf("k must not be negative, got %d", k)
	}
	type cand struct {
		id    int64
		score float64
	}
	cands := make([]cand, 0, len(row))
	for i, s := range row {
		id := int64(i)
		if known != nil && known(complete(id)) {
			continue
		}
		cands = append(cands, cand{id: id, score: s})
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].id < cands[j].id
	})
	if k < len(cands) {
		cands = cands[:k]
	}
	out := make([]prediction, len(cands))
	for i, c := range cands {
		label, err := f.EntityLabel(c.id)
		if err != nil {
			return nil, err
		}
		out[i] = prediction{Entity: label, Score: c.score}
	}
	return out, nil
}
