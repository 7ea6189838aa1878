// Package loss implements the ranking criteria that score positive triples
// against sampled negatives during training.
//
// Every criterion accepts scores in two layouts.  The flat layout takes one
// slice of positive scores and one slice of negative scores whose length is
// a multiple of the positive count; criteria that weight negatives treat the
// whole flat slice as a single group.  The grouped layout takes one row of
// negatives per positive and applies per-row weighting.  Models produce
// plausibility scores (higher is more plausible); criteria that are stated
// on distances negate internally.
package loss

import "fmt"

// Criterion turns positive and negative plausibility scores into a batch
// loss and its gradients.  Gradients are with respect to the scores; any
// adversarial weighting is treated as constant.
type Criterion interface {
	Name() string
	Value(pos, neg []float64) (float64, error)
	ValueGrouped(pos []float64, neg [][]float64) (float64, error)
	Grad(pos, neg []float64) (gPos, gNeg []float64, err error)
	GradGrouped(pos []float64, neg [][]float64) (gPos []float64, gNeg [][]float64, err error)
}

// New builds a criterion by name.  Recognised names are "nssa" (or
// "self_adversarial"), "margin" (or "margin_ranking") and "softplus".
// The temperature is only consulted by the self-adversarial criterion,
// which requires it to be positive.
func New(name string, margin, temperature float64) (Criterion, error) {
	switch name {
	case "nssa", "self_adversarial":
		return NewSelfAdversarial(margin, temperature)
	case "margin", "margin_ranking":
		return NewMarginRanking(margin)
	case "softplus":
		return Softplus{}, nil
	default:
		return nil, fmt.Errorf("unknown criterion %q (known: nssa, margin, softplus)", name)
	}
}

// checkFlat validates the flat layout and returns the number of negatives
// per positive.
func checkFlat(pos, neg []float64) (int, error) {
	if len(pos) == 0 {
		return 0, fmt.Errorf("empty positive score batch")
	}
	if len(neg) == 0 || len(neg)%len(pos) != 0 {
		return 0, fmt.Errorf("negative batch size %d is not a positive multiple of positive batch size %d", len(neg), len(pos))
	}
	return len(neg) / len(pos), nil
}

// checkGrouped validates the grouped layout and returns the common row
// width.
func checkGrouped(pos []float64, neg [][]float64) (int, error) {
	if len(pos) == 0 {
		return 0, fmt.Errorf("empty positive score batch")
	}
	if len(neg) != len(pos) {
		return 0, fmt.Errorf("got %d negative rows for %d positives", len(neg), len(pos))
	}
	k := len(neg[0])
	if k == 0 {
		return 0, fmt.Errorf("empty negative row")
	}
	for i, row := range neg {
		if len(row) != k {
			return 0, fmt.Errorf("negative row %d has %d scores, row 0 has %d", i, len(row), k)
		}
	}
	return k, nil
}
