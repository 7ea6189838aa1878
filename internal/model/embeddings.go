package model

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"

	"github.com/basalamahsyarief/pykeen/internal/tensor"
)

// Embeddings holds the entity and relation tables of one model.  Both are
// dense row-major matrices with one row per index and a shared column
// count.
//
// Reads and writes follow a single-writer discipline: the training loop is
// the only mutator, and it never overlaps updates with scoring.  Concurrent
// readers are safe between updates.
type Embeddings struct {
	Entities  *tensor.Mat
	Relations *tensor.Mat
}

// initBound is the classic uniform initialisation range 6/sqrt(rows+dim),
// computed per table.
func initBound(rows, dim int) float64 {
	return 6 / math.Sqrt(float64(rows+dim))
}

// xavierStd is the zero-mean normal initialisation deviation
// sqrt(2/(rows+dim)), computed per table.
func xavierStd(rows, dim int) float64 {
	return math.Sqrt(2 / float64(rows+dim))
}

func checkShape(numEntities, numRelations, dim int) error {
	if numEntities < 1 {
		return fmt.Errorf("need at least one entity, got %d", numEntities)
	}
	if numRelations < 1 {
		return fmt.Errorf("need at least one relation, got %d", numRelations)
	}
	if dim < 1 {
		return fmt.Errorf("embedding dimension must be positive, got %d", dim)
	}
	return nil
}

// NewEmbeddings allocates tables for the given counts and fills each table
// uniformly from (-b, b) with b = 6/sqrt(rows+dim).  The same seed always
// produces the same tables.
func NewEmbeddings(numEntities, numRelations, dim int, seed int64) (*Embeddings, error) {
	if err := checkShape(numEntities, numRelations, dim); err != nil {
		return nil, err
	}
	e := &Embeddings{
		Entities:  tensor.NewMat(numEntities, dim),
		Relations: tensor.NewMat(numRelations, dim),
	}
	rng := rand.New(rand.NewSource(seed))
	tensor.FillUniform(e.Entities, initBound(numEntities, dim), rng)
	tensor.FillUniform(e.Relations, initBound(numRelations, dim), rng)
	return e, nil
}

// NewEmbeddingsXavier is NewEmbeddings with zero-mean normal initialisation
// of deviation sqrt(2/(rows+dim)) per table.
func NewEmbeddingsXavier(numEntities, numRelations, dim int, seed int64) (*Embeddings, error) {
	if err := checkShape(numEntities, numRelations, dim); err != nil {
		return nil, err
	}
	e := &Embeddings{
		Entities:  tensor.NewMat(numEntities, dim),
		Relations: tensor.NewMat(numRelations, dim),
	}
	rng := rand.New(rand.NewSource(seed))
	tensor.FillNormal(e.Entities, xavierStd(numEntities, dim), rng)
	tensor.FillNormal(e.Relations, xavierStd(numRelations, dim), rng)
	return e, nil
}

// NewEmbeddingsFromTables wraps caller-supplied tables.  Supplying tables
// is an explicit constructor choice; they are validated but never
// reinitialised.
func NewEmbeddingsFromTables(entities, relations *tensor.Mat) (*Embeddings, error) {
	if entities == nil || relations == nil {
		return nil, fmt.Errorf("both entity and relation tables must be supplied")
	}
	if err := checkShape(entities.R, relations.R, entities.C); err != nil {
		return nil, err
	}
	if entities.C != relations.C {
		return nil, fmt.Errorf("entity dimension %d does not match relation dimension %d", entities.C, relations.C)
	}
	return &Embeddings{Entities: entities, Relations: relations}, nil
}

// Dim returns the shared embedding dimension.
func (e *Embeddings) Dim() int { return e.Entities.C }

// NumEntities returns the entity table row count.
func (e *Embeddings) NumEntities() int { return e.Entities.R }

// NumRelations returns the relation table row count.
func (e *Embeddings) NumRelations() int { return e.Relations.R }

// EntityRow returns the embedding of entity i, or an error when i is out of
// range.  The slice aliases the table.
func (e *Embeddings) EntityRow(i int64) ([]float64, error) {
	if i < 0 || i >= int64(e.Entities.R) {
		return nil, fmt.Errorf("entity index %d out of range [0, %d)", i, e.Entities.R)
	}
	return e.Entities.Row(int(i)), nil
}

// RelationRow returns the embedding of relation i, or an error when i is
// out of range.  The slice aliases the table.
func (e *Embeddings) RelationRow(i int64) ([]float64, error) {
	if i < 0 || i >= int64(e.Relations.R) {
		return nil, fmt.Errorf("relation index %d out of range [0, %d)", i, e.Relations.R)
	}
	return e.Relations.Row(int(i)), nil
}

// ClipEntityNorm rescales entity row i to unit Euclidean norm when it is
// longer.  Models such as HolE apply this after every update.
func (e *Embeddings) ClipEntityNorm(i int64) error {
	row, err := e.EntityRow(i)
	if err != nil {
		return err
	}
	if n := floats.Norm(row, 2); n > 1 {
		floats.Scale(1/n, row)
	}
	return nil
}
