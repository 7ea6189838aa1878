// Package triples maps labelled knowledge-graph statements onto dense integer
// indices and provides the negative sampling used during training.
package triples

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

// Triple is an indexed (head, relation, tail) statement.
type Triple struct {
	Head     int64
	Relation int64
	Tail     int64
}

// Factory assigns dense indices to entity and relation labels in first-seen
// order and holds the indexed triples of one dataset split.
//
// Splits derived with WithMaps or Split share the parent's label maps, so an
// index means the same label in every split.  A Factory is immutable after
// construction and safe for concurrent readers.
type Factory struct {
	entityToID   map[string]int64
	relationToID map[string]int64

	entityLabels   []string
	relationLabels []string

	triples []Triple
	known   map[Triple]struct{}
}

// NewFactory returns an empty factory with fresh label maps.
func NewFactory() *Factory {
	return &Factory{
		entityToID:   make(map[string]int64),
		relationToID: make(map[string]int64),
		known:        make(map[Triple]struct{}),
	}
}

// FromFile loads a factory from a text file of whitespace-separated
// "head relation tail" lines, assigning indices in first-seen order.  A
// fourth column (a per-triple weight in some corpora) is accepted and
// ignored.  Blank lines and lines starting with '#' are skipped.
func FromFile(path string) (*Factory, error) {
	f := NewFactory()
	if err := f.load(path, false); err != nil {
		return nil, err
	}
	return f, nil
}

// WithMaps loads another split using this factory's label maps.  Labels not
// present in the parent are errors, so evaluation splits can never introduce
// entities the model has no embedding for.
func (f *Factory) WithMaps(path string) (*Factory, error) {
	child := &Factory{
		entityToID:     f.entityToID,
		relationToID:   f.relationToID,
		entityLabels:   f.entityLabels,
		relationLabels: f.relationLabels,
		known:          make(map[Triple]struct{}),
	}
	if err := child.load(path, true); err != nil {
		return nil, err
	}
	return child, nil
}

// FromLabeled builds a factory from in-memory labelled triples, each a
// [head, relation, tail] array.
func FromLabeled(labeled [][3]string) *Factory {
	f := NewFactory()
	for _, l := range labeled {
		f.add(l[0], l[1], l[2])
	}
	return f
}

func (f *Factory) load(path string, strict bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open triples file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) != 3 && len(parts) != 4 {
			return fmt.Errorf("%s:%d: expected 3 columns (head relation tail), got %d", path, lineNo, len(parts))
		}
		if strict {
			if err := f.addStrict(parts[0], parts[1], parts[2]); err != nil {
				return fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
		} else {
			f.add(parts[0], parts[1], parts[2])
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read triples file: %w", err)
	}
	return nil
}

func (f *Factory) add(head, relation, tail string) {
	t := Triple{
		Head:     f.entityID(head),
		Relation: f.relationID(relation),
		Tail:     f.entityID(tail),
	}
	f.triples = append(f.triples, t)
	f.known[t] = struct{}{}
}

func (f *Factory) addStrict(head, relation, tail string) error {
	h, ok := f.entityToID[head]
	if !ok {
		return fmt.Errorf("unknown entity %q", head)
	}
	r, ok := f.relationToID[relation]
	if !ok {
		return fmt.Errorf("unknown relation %q", relation)
	}
	tl, ok := f.entityToID[tail]
	if !ok {
		return fmt.Errorf("unknown entity %q", tail)
	}
	t := Triple{Head: h, Relation: r, Tail: tl}
	f.triples = append(f.triples, t)
	f.known[t] = struct{}{}
	return nil
}

func (f *Factory) entityID(label string) int64 {
	if id, ok := f.entityToID[label]; ok {
		return id
	}
	id := int64(len(f.entityLabels))
	f.entityToID[label] = id
	f.entityLabels = append(f.entityLabels, label)
	return id
}

func (f *Factory) relationID(label string) int64 {
	if id, ok := f.relationToID[label]; ok {
		return id
	}
	id := int64(len(f.relationLabels))
	f.relationToID[label] = id
	f.relationLabels = append(f.relationLabels, label)
	return id
}

// NumEntities returns the number of distinct entity labels.
func (f *Factory) NumEntities() int { return len(f.entityLabels) }

// NumRelations returns the number of distinct relation labels.
func (f *Factory) NumRelations() int { return len(f.relationLabels) }

// NumTriples returns the number of triples in this split.
func (f *Factory) NumTriples() int { return len(f.triples) }

// Triples returns the indexed triples of this split.  The slice must not be
// modified.
func (f *Factory) Triples() []Triple { return f.triples }

// Contains reports whether the triple is part of this split.
func (f *Factory) Contains(t Triple) bool {
	_, ok := f.known[t]
	return ok
}

// EntityID resolves an entity label to its index.
func (f *Factory) EntityID(label string) (int64, error) {
	id, ok := f.entityToID[label]
	if !ok {
		return 0, fmt.Errorf("unknown entity %q", label)
	}
	return id, nil
}

// RelationID resolves a relation label to its index.
func (f *Factory) RelationID(label string) (int64, error) {
	id, ok := f.relationToID[label]
	if !ok {
		return 0, fmt.Errorf("unknown relation %q", label)
	}
	return id, nil
}

// EntityLabel resolves an entity index to its label.
func (f *Factory) EntityLabel(id int64) (string, error) {
	if id < 0 || id >= int64(len(f.entityLabels)) {
		return "", fmt.Errorf("entity index %d out of range [0, %d)", id, len(f.entityLabels))
	}
	return f.entityLabels[id], nil
}

// RelationLabel resolves a relation index to its label.
func (f *Factory) RelationLabel(id int64) (string, error) {
	if id < 0 || id >= int64(len(f.relationLabels)) {
		return "", fmt.Errorf("relation index %d out of range [0, %d)", id, len(f.relationLabels))
	}
	return f.relationLabels[id], nil
}

// EntityLabels returns all entity labels in index order.  The slice must not
// be modified.
func (f *Factory) EntityLabels() []string { return f.entityLabels }

// RelationLabels returns all relation labels in index order.  The slice must
// not be modified.
func (f *Factory) RelationLabels() []string { return f.relationLabels }

// Split partitions the triples into len(fractions)+1 splits after a seeded
// shuffle; the final split receives the remainder.  All splits share this
// factory's label maps.  Fractions must be positive and sum to less than one.
func (f *Factory) Split(seed int64, fractions ...float64) ([]*Factory, error) {
	var total float64
	for _, fr := range fractions {
		if fr <= 0 {
			return nil, fmt.Errorf("split fraction %g must be positive", fr)
		}
		total += fr
	}
	if total >= 1 {
		return nil, fmt.Errorf("split fractions sum to %g, must be below 1", total)
	}

	shuffled := make([]Triple, len(f.triples))
	copy(shuffled, f.triples)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	splits := make([]*Factory, 0, len(fractions)+1)
	start := 0
	for _, fr := range fractions {
		end := start + int(fr*float64(len(shuffled)))
		splits = append(splits, f.subset(shuffled[start:end]))
		start = end
	}
	splits = append(splits, f.subset(shuffled[start:]))
	return splits, nil
}

func (f *Factory) subset(ts []Triple) *Factory {
	s := &Factory{
		entityToID:     f.entityToID,
		relationToID:   f.relationToID,
		entityLabels:   f.entityLabels,
		relationLabels: f.relationLabels,
		triples:        append([]Triple(nil), ts...),
		known:          make(map[Triple]struct{}, len(ts)),
	}
	for _, t := range ts {
		s.known[t] = struct{}{}
	}
	return s
}
