package model

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestInitBound(t *testing.T) {
	const (
		numEntities  = 40
		numRelations = 9
		dim          = 25
	)
	emb, err := NewEmbeddings(numEntities, numRelations, dim, 3)
	if err != nil {
		t.Fatal(err)
	}

	entBound := 6 / math.Sqrt(float64(numEntities+dim))
	for _, v := range emb.Entities.Data {
		if math.Abs(v) >= entBound {
			t.Fatalf("entity value %g outside (-%g, %g)", v, entBound, entBound)
		}
	}
	relBound := 6 / math.Sqrt(float64(numRelations+dim))
	for _, v := range emb.Relations.Data {
		if math.Abs(v) >= relBound {
			t.Fatalf("relation value %g outside (-%g, %g)", v, relBound, relBound)
		}
	}

	// The two tables use different bounds, so at least one entity value
	// should exceed the tighter relation bound.
	var exceeds bool
	for _, v := range emb.Entities.Data {
		if math.Abs(v) > relBound {
			exceeds = true
			break
		}
	}
	if !exceeds {
		t.Fatal("entity table looks like it was drawn with the relation bound")
	}
}

func TestInitDeterministic(t *testing.T) {
	a, _ := NewEmbeddings(10, 4, 8, 77)
	b, _ := NewEmbeddings(10, 4, 8, 77)
	c, _ := NewEmbeddings(10, 4, 8, 78)

	for i := range a.Entities.Data {
		if a.Entities.Data[i] != b.Entities.Data[i] {
			t.Fatal("same seed produced different entity tables")
		}
	}
	var differs bool
	for i := range a.Entities.Data {
		if a.Entities.Data[i] != c.Entities.Data[i] {
			differs = true
			break
		}
	}
	if !differs {
		t.Fatal("different seeds produced identical entity tables")
	}
}

func TestClipEntityNorm(t *testing.T) {
	emb, err := NewEmbeddings(3, 1, 4, 1)
	if err != nil {
		t.Fatal(err)
	}

	long := emb.Entities.Row(0)
	copy(long, []float64{3, 0, 4, 0})
	if err := emb.ClipEntityNorm(0); err != nil {
		t.Fatal(err)
	}
	if n := floats.Norm(long, 2); math.Abs(n-1) > 1e-12 {
		t.Fatalf("clipped norm = %g, want 1", n)
	}
	if math.Abs(long[0]-0.6) > 1e-12 || math.Abs(long[2]-0.8) > 1e-12 {
		t.Fatalf("clip changed direction: %v", long)
	}

	short := emb.Entities.Row(1)
	copy(short, []float64{0.1, 0.2, 0, 0})
	if err := emb.ClipEntityNorm(1); err != nil {
		t.Fatal(err)
	}
	if short[0] != 0.1 || short[1] != 0.2 {
		t.Fatalf("clip rescaled a row inside the unit ball: %v", short)
	}

	if err := emb.ClipEntityNorm(5); err == nil {
		t.Fatal("expected error for out-of-range row")
	}
}

func TestGatherOutOfRange(t *testing.T) {
	emb, _ := NewEmbeddings(3, 2, 4, 1)

	if _, err := emb.EntityRow(-1); err == nil {
		t.Fatal("expected error for negative entity index")
	}
	if _, err := emb.EntityRow(3); err == nil {
		t.Fatal("expected error for entity index past the table")
	}
	if _, err := emb.RelationRow(2); err == nil {
		t.Fatal("expected error for relation index past the table")
	}
	if row, err := emb.EntityRow(2); err != nil || len(row) != 4 {
		t.Fatalf("EntityRow(2) = %v, %v", row, err)
	}
}

func TestConstructorShapeValidation(t *testing.T) {
	if _, err := NewEmbeddings(0, 1, 4, 1); err == nil {
		t.Fatal("expected error for zero entities")
	}
	if _, err := NewEmbeddings(1, 0, 4, 1); err == nil {
		t.Fatal("expected error for zero relations")
	}
	if _, err := NewEmbeddings(1, 1, 0, 1); err == nil {
		t.Fatal("expected error for zero dimension")
	}
	if _, err := NewEmbeddingsXavier(1, 1, -3, 1); err == nil {
		t.Fatal("expected error for negative dimension")
	}
}

func TestXavierDeterministic(t *testing.T) {
	a, err := NewEmbeddingsXavier(20, 5, 16, 11)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := NewEmbeddingsXavier(20, 5, 16, 11)

	for i := range a.Relations.Data {
		if a.Relations.Data[i] != b.Relations.Data[i] {
			t.Fatal("same seed produced different relation tables")
		}
	}
	var nonzero bool
	for _, v := range a.Entities.Data {
		if v != 0 {
			nonzero = true
			break
		}
	}
	if !nonzero {
		t.Fatal("xavier init left the entity table zeroed")
	}
}
