// Package model implements the knowledge-graph embedding models.  Every
// model scores triples of entity and relation indices against its embedding
// tables and exposes hand-derived score gradients for the training loop.
//
// The set of models is closed: adding one means implementing Model here and
// registering it in New.  Scoring methods are safe for concurrent use; table
// mutation is the training loop's job and must not overlap with scoring.
package model

import (
	"fmt"
	"sort"

	"github.com/basalamahsyarief/pykeen/internal/loss"
	"github.com/basalamahsyarief/pykeen/internal/tensor"
)

// DefaultDim is the embedding dimension used when a config leaves it unset.
const DefaultDim = 200

// Config carries the construction-time settings shared by all models.
// NumEntities and NumRelations come from the triples factory.  Dim defaults
// to DefaultDim, Criterion to margin ranking with margin 1.  Pretrained
// supplies existing tables instead of initialising fresh ones.
type Config struct {
	NumEntities  int
	NumRelations int
	Dim          int
	Norm         int // TransE distance norm, 1 or 2; default 1
	Seed         int64
	Criterion    loss.Criterion
	Pretrained   *Embeddings
}

// Model is one knowledge-graph embedding model over a pair of tables.
//
// ScoreHRT scores aligned index slices triple by triple.  ScoreTails scores
// every entity as a tail for each (head, relation) pair; ScoreHeads scores
// every entity as a head for each (relation, tail) pair.  Both return one
// row per input pair and one column per entity.  Empty batches yield empty
// results, not errors.
//
// ScoreGrad returns a single triple's score together with the gradients of
// that score with respect to the three embedding rows involved.
type Model interface {
	Name() string
	Dim() int
	NumEntities() int
	NumRelations() int
	Embeddings() *Embeddings
	Criterion() loss.Criterion

	// EntityMaxNorm reports whether entity rows are clipped to unit
	// Euclidean norm after every update.
	EntityMaxNorm() bool

	ScoreHRT(hs, rs, ts []int64) ([]float64, error)
	ScoreTails(hs, rs []int64) (*tensor.Mat, error)
	ScoreHeads(rs, ts []int64) (*tensor.Mat, error)
	ScoreGrad(h, r, t int64) (score float64, gh, gr, gt []float64, err error)
}

// New builds a registered model by name.
func New(name string, cfg Config) (Model, error) {
	switch name {
	case "hole":
		return NewHolE(cfg)
	case "distmult":
		return NewDistMult(cfg)
	case "transe":
		return NewTransE(cfg)
	case "rotate":
		return NewRotatE(cfg)
	default:
		return nil, fmt.Errorf("unknown model %q (known: %v)", name, Names())
	}
}

// Names lists the registered model names.
func Names() []string {
	names := []string{"hole", "distmult", "transe", "rotate"}
	sort.Strings(names)
	return names
}

type initKind int

const (
	initUniform initKind = iota
	initXavier
)

// Base carries the state shared by every model.
type Base struct {
	emb  *Embeddings
	crit loss.Criterion
}

func newBase(cfg Config, kind initKind) (Base, error) {
	crit := cfg.Criterion
	if crit == nil {
		mr, err := loss.NewMarginRanking(1)
		if err != nil {
			return Base{}, err
		}
		crit = mr
	}

	if cfg.Pretrained != nil {
		emb := cfg.Pretrained
		if cfg.Dim != 0 && cfg.Dim != emb.Dim() {
			return Base{}, fmt.Errorf("configured dimension %d does not match pretrained tables of dimension %d", cfg.Dim, emb.Dim())
		}
		if cfg.NumEntities != 0 && cfg.NumEntities != emb.NumEntities() {
			return Base{}, fmt.Errorf("configured entity count %d does not match pretrained table with %d rows", cfg.NumEntities, emb.NumEntities())
		}
		if cfg.NumRelations != 0 && cfg.NumRelations != emb.NumRelations() {
			return Base{}, fmt.Errorf("configured relation count %d does not match pretrained table with %d rows", cfg.NumRelations, emb.NumRelations())
		}
		return Base{emb: emb, crit: crit}, nil
	}

	dim := cfg.Dim
	if dim == 0 {
		dim = DefaultDim
	}
	var (
		emb *Embeddings
		err error
	)
	switch kind {
	case initXavier:
		emb, err = NewEmbeddingsXavier(cfg.NumEntities, cfg.NumRelations, dim, cfg.Seed)
	default:
		emb, err = NewEmbeddings(cfg.NumEntities, cfg.NumRelations, dim, cfg.Seed)
	}
	if err != nil {
		return Base{}, err
	}
	return Base{emb: emb, crit: crit}, nil
}

func (b *Base) Dim() int                  { return b.emb.Dim() }
func (b *Base) NumEntities() int          { return b.emb.NumEntities() }
func (b *Base) NumRelations() int         { return b.emb.NumRelations() }
func (b *Base) Embeddings() *Embeddings   { return b.emb }
func (b *Base) Criterion() loss.Criterion { return b.crit }

func checkAligned3(hs, rs, ts []int64) error {
	if len(hs) != len(rs) || len(hs) != len(ts) {
		return fmt.Errorf("batch shape mismatch: %d heads, %d relations, %d tails", len(hs), len(rs), len(ts))
	}
	return nil
}

func checkAligned2(a, b []int64) error {
	if len(a) != len(b) {
		return fmt.Errorf("batch shape mismatch: %d and %d indices", len(a), len(b))
	}
	return nil
}
