package loss

import (
	"math"
	"testing"
)

// The reference batch: positives [0, 0, -0.5, -0.5] against negatives
// [0, 0, -1, -1] with margin 1 and temperature 1 yields a loss of about
// 0.34, with softmax weights [0.37, 0.37, 0.13, 0.13] over the whole
// negative batch.
func TestSelfAdversarialReferenceBatch(t *testing.T) {
	l, err := NewSelfAdversarial(1, 1)
	if err != nil {
		t.Fatal(err)
	}

	pos := []float64{0, 0, -0.5, -0.5}
	neg := []float64{0, 0, -1, -1}

	got, err := l.Value(pos, neg)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-0.34015) > 1e-3 {
		t.Fatalf("loss = %g, want 0.34015", got)
	}
}

func TestSelfAdversarialGroupedSingleNegatives(t *testing.T) {
	l, _ := NewSelfAdversarial(1, 1)

	pos := []float64{0, 0, -0.5, -0.5}
	neg := [][]float64{{0}, {0}, {-1}, {-1}}

	// With one negative per row every weight is 1, so the negative term is
	// the plain mean of logsigmoid(-neg-margin):
	// (2*logsig(-1) + 2*logsig(0))/4 = -1.00320, and the positive term is
	// -0.39367, giving (0.39367+1.00320)/2 = 0.69844.
	got, err := l.ValueGrouped(pos, neg)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got-0.69844) > 1e-3 {
		t.Fatalf("grouped loss = %g, want 0.69844", got)
	}
}

// frozenValue recomputes the self-adversarial loss with externally fixed
// weights, matching what the criterion differentiates when it detaches the
// softmax.
func frozenValue(margin float64, pos, neg, w []float64) float64 {
	var posSum float64
	for _, s := range pos {
		posSum += logSigmoid(margin + s)
	}
	var negSum float64
	for j, s := range neg {
		negSum += w[j] * logSigmoid(-s-margin)
	}
	return -(posSum/float64(len(pos)) + negSum/float64(len(neg))) / 2
}

func TestSelfAdversarialGradMatchesFiniteDifference(t *testing.T) {
	l, _ := NewSelfAdversarial(1, 2)

	pos := []float64{0.3, -0.2, 1.1}
	neg := []float64{-0.4, 0.5, -1.2, 0.1, 0.9, -0.8}

	gPos, gNeg, err := l.Grad(pos, neg)
	if err != nil {
		t.Fatal(err)
	}

	const eps = 1e-6

	// Positive scores do not enter the weighting, so a plain finite
	// difference of Value applies.
	for i := range pos {
		up := append([]float64(nil), pos...)
		dn := append([]float64(nil), pos...)
		up[i] += eps
		dn[i] -= eps
		vUp, _ := l.Value(up, neg)
		vDn, _ := l.Value(dn, neg)
		fd := (vUp - vDn) / (2 * eps)
		if math.Abs(fd-gPos[i]) > 1e-6 {
			t.Fatalf("gPos[%d] = %g, finite difference %g", i, gPos[i], fd)
		}
	}

	// Negative scores feed the weights, which the gradient treats as
	// constants; differentiate the frozen-weight value instead.
	w := l.weights(neg)
	for j := range neg {
		up := append([]float64(nil), neg...)
		dn := append([]float64(nil), neg...)
		up[j] += eps
		dn[j] -= eps
		fd := (frozenValue(l.Margin, pos, up, w) - frozenValue(l.Margin, pos, dn, w)) / (2 * eps)
		if math.Abs(fd-gNeg[j]) > 1e-6 {
			t.Fatalf("gNeg[%d] = %g, frozen finite difference %g", j, gNeg[j], fd)
		}
	}
}

func TestMarginRankingGradMatchesFiniteDifference(t *testing.T) {
	l, err := NewMarginRanking(1)
	if err != nil {
		t.Fatal(err)
	}

	// Chosen away from the hinge kink so the finite difference is clean.
	pos := []float64{0.6, -0.3}
	neg := []float64{0.2, -0.9, 1.4, 0.0}

	gPos, gNeg, err := l.Grad(pos, neg)
	if err != nil {
		t.Fatal(err)
	}

	const eps = 1e-6
	for i := range pos {
		up := append([]float64(nil), pos...)
		dn := append([]float64(nil), pos...)
		up[i] += eps
		dn[i] -= eps
		vUp, _ := l.Value(up, neg)
		vDn, _ := l.Value(dn, neg)
		fd := (vUp - vDn) / (2 * eps)
		if math.Abs(fd-gPos[i]) > 1e-6 {
			t.Fatalf("gPos[%d] = %g, finite difference %g", i, gPos[i], fd)
		}
	}
	for j := range neg {
		up := append([]float64(nil), neg...)
		dn := append([]float64(nil), neg...)
		up[j] += eps
		dn[j] -= eps
		vUp, _ := l.Value(pos, up)
		vDn, _ := l.Value(pos, dn)
		fd := (vUp - vDn) / (2 * eps)
		if math.Abs(fd-gNeg[j]) > 1e-6 {
			t.Fatalf("gNeg[%d] = %g, finite difference %g", j, gNeg[j], fd)
		}
	}
}

func TestSoftplusGradMatchesFiniteDifference(t *testing.T) {
	l := Softplus{}

	pos := []float64{0.4, -1.2, 2.0}
	neg := []float64{-0.5, 0.7, 0.1}

	gPos, gNeg, err := l.Grad(pos, neg)
	if err != nil {
		t.Fatal(err)
	}

	const eps = 1e-6
	for i := range pos {
		up := append([]float64(nil), pos...)
		dn := append([]float64(nil), pos...)
		up[i] += eps
		dn[i] -= eps
		vUp, _ := l.Value(up, neg)
		vDn, _ := l.Value(dn, neg)
		fd := (vUp - vDn) / (2 * eps)
		if math.Abs(fd-gPos[i]) > 1e-6 {
			t.Fatalf("gPos[%d] = %g, finite difference %g", i, gPos[i], fd)
		}
	}
	for j := range neg {
		up := append([]float64(nil), neg...)
		dn := append([]float64(nil), neg...)
		up[j] += eps
		dn[j] -= eps
		vUp, _ := l.Value(pos, up)
		vDn, _ := l.Value(pos, dn)
		fd := (vUp - vDn) / (2 * eps)
		if math.Abs(fd-gNeg[j]) > 1e-6 {
			t.Fatalf("gNeg[%d] = %g, finite difference %g", j, gNeg[j], fd)
		}
	}
}

func TestShapeValidation(t *testing.T) {
	l, _ := NewSelfAdversarial(1, 1)

	if _, err := l.Value([]float64{1, 2}, []float64{1, 2, 3}); err == nil {
		t.Fatal("expected error when negatives are not a multiple of positives")
	}
	if _, err := l.Value(nil, []float64{1}); err == nil {
		t.Fatal("expected error for an empty positive batch")
	}
	if _, err := l.ValueGrouped([]float64{1, 2}, [][]float64{{1}}); err == nil {
		t.Fatal("expected error for a row count mismatch")
	}
	if _, err := l.ValueGrouped([]float64{1, 2}, [][]float64{{1, 2}, {3}}); err == nil {
		t.Fatal("expected error for ragged negative rows")
	}
}

func TestConstructorValidation(t *testing.T) {
	if _, err := NewSelfAdversarial(1, 0); err == nil {
		t.Fatal("expected error for a zero temperature")
	}
	if _, err := NewSelfAdversarial(1, -2); err == nil {
		t.Fatal("expected error for a negative temperature")
	}
	if _, err := NewMarginRanking(-1); err == nil {
		t.Fatal("expected error for a negative margin")
	}
}

func TestRegistry(t *testing.T) {
	c, err := New("nssa", 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if c.Name() != "nssa" {
		t.Fatalf("Name() = %q, want nssa", c.Name())
	}
	if _, err := New("nssa", 1, 0); err == nil {
		t.Fatal("expected temperature error through the registry")
	}
	if _, err := New("margin", 0.5, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := New("softplus", 0, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := New("bogus", 1, 1); err == nil {
		t.Fatal("expected error for an unknown criterion name")
	}
}
