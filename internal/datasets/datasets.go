// Package datasets resolves named knowledge-graph datasets into triples
// factories with shared label maps across their splits.
package datasets

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/basalamahsyarief/pykeen/internal/triples"
)

// Dataset bundles the splits of one knowledge graph.  Validation and Test
// may be nil when the source provides no such split.
type Dataset struct {
	Name       string
	Train      *triples.Factory
	Validation *triples.Factory
	Test       *triples.Factory
}

// Load resolves a dataset by name.  The built-in "toy" dataset is generated
// in memory; any other name is treated as a directory under dir containing
// train.txt and optionally valid.txt and test.txt.  All splits share the
// training split's label maps.
func Load(name, dir string) (*Dataset, error) {
	if name == "" || name == "toy" {
		return Toy(), nil
	}

	root := filepath.Join(dir, name)
	train, err := triples.FromFile(filepath.Join(root, "train.txt"))
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", name, err)
	}

	d := &Dataset{Name: name, Train: train}
	for _, split := range []struct {
		file string
		dst  **triples.Factory
	}{
		{"valid.txt", &d.Validation},
		{"test.txt", &d.Test},
	} {
		path := filepath.Join(root, split.file)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("dataset %s: %w", name, err)
		}
		f, err := train.WithMaps(path)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", name, err)
		}
		*split.dst = f
	}
	return d, nil
}

// KnownTriples returns a factory-independent membership test over every
// split of the dataset, as needed for filtered evaluation.
func (d *Dataset) KnownTriples() func(triples.Triple) bool {
	return func(t triples.Triple) bool {
		if d.Train != nil && d.Train.Contains(t) {
			return true
		}
		if d.Validation != nil && d.Validation.Contains(t) {
			return true
		}
		if d.Test != nil && d.Test.Contains(t) {
			return true
		}
		return false
	}
}
