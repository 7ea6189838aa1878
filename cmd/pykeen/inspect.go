package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/basalamahsyarief/pykeen/internal/datasets"
	"github.com/basalamahsyarief/pykeen/internal/triples"
)

func inspectCmd() *cli.Command {
	var (
		showRelations  bool
		showEntities   bool
		relationsLimit int
		entitiesLimit  int
	)

	return &cli.Command{
		Name:  "inspect",
		Usage: "Print dataset statistics",
		Flags: append(datasetFlags(),
			&cli.BoolFlag{Name: "relations", Usage: "show relation frequencies", Destination: &showRelations},
			&cli.BoolFlag{Name: "entities", Usage: "show entity degrees", Destination: &showEntities},
			&cli.IntFlag{Name: "relations-limit", Usage: "limit relation listing (0 = no limit)", Value: 20, Destination: &relationsLimit},
			&cli.IntFlag{Name: "entities-limit", Usage: "limit entity listing (0 = no limit)", Value: 20, Destination: &entitiesLimit},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_ = ctx

			ds, err := datasets.Load(datasetName, resolveDatasetDir(datasetDir))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			train := splitSize(ds.Train)
			valid := splitSize(ds.Validation)
			test := splitSize(ds.Test)
			fmt.Printf("Dataset:   %s\n", ds.Name)
			fmt.Printf("Entities:  %s\n", humanize.Comma(int64(ds.Train.NumEntities())))
			fmt.Printf("Relations: %s\n", humanize.Comma(int64(ds.Train.NumRelations())))
			fmt.Printf("Triples:   %s (train %s, valid %s, test %s)\n",
				humanize.Comma(int64(train+valid+test)),
				humanize.Comma(int64(train)), humanize.Comma(int64(valid)), humanize.Comma(int64(test)))

			if showRelations {
				printRelationFrequencies(ds.Train, relationsLimit)
			}
			if showEntities {
				printEntityDegrees(ds.Train, entitiesLimit)
			}
			return nil
		},
	}
}

func splitSize(f *triples.Factory) int {
	if f == nil {
		return 0
	}
	return f.NumTriples()
}

// printRelationFrequencies lists relations by training triple count.
func printRelationFrequencies(f *triples.Factory, limit int) {
	labels := f.RelationLabels()
	counts := make([]int, len(labels))
	for _, t := range f.Triples() {
		counts[t.Relation]++
	}
	order := sortByCount(counts)

	fmt.Printf("\nRelations by training frequency:\n")
	for shown, id := range order {
		if limit > 0 && shown == limit {
			fmt.Printf("  ... and %s more\n", humanize.Comma(int64(len(order)-limit)))
			break
		}
		fmt.Printf("  %-40s %8s\n", labels[id], humanize.Comma(int64(counts[id])))
	}
}

// printEntityDegrees lists entities by the number of training triples they
// appear in on either side.
func printEntityDegrees(f *triples.Factory, limit int) {
	labels := f.EntityLabels()
	counts := make([]int, len(labels))
	for _, t := range f.Triples() {
		counts[t.Head]++
		counts[t.Tail]++
	}
	order := sortByCount(counts)

	fmt.Printf("\nEntities by training degree:\n")
	for shown, id := range order {
		if limit > 0 && shown == limit {
			fmt.Printf("  ... and %s more\n", humanize.Comma(int64(len(order)-limit)))
			break
		}
		fmt.Printf("  %-40s %8s\n", labels[id], humanize.Comma(int64(counts[id])))
	}
}

// sortByCount returns the indices of counts ordered by descending count,
// breaking ties towards the lower index.
func sortByCount(counts []int) []int {
	order := make([]int, len(counts))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return order[i] < order[j]
	})
	return order
}
