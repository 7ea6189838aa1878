package loss

import "fmt"

// MarginRanking is the pairwise hinge mean(max(0, Margin - pos + neg)).
// In the flat layout each positive is paired with its contiguous run of
// negatives.  This is the classic criterion of the translational and
// holographic embedding papers.
type MarginRanking struct {
	Margin float64
}

// NewMarginRanking rejects negative margins; a zero margin degenerates to
// rewarding any positive/negative gap.
func NewMarginRanking(margin float64) (*MarginRanking, error) {
	if margin < 0 {
		return nil, fmt.Errorf("margin must not be negative, got %g", margin)
	}
	return &MarginRanking{Margin: margin}, nil
}

func (l *MarginRanking) Name() string { return "margin" }

func (l *MarginRanking) Value(pos, neg []float64) (float64, error) {
	k, err := checkFlat(pos, neg)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i, p := range pos {
		for _, n := range neg[i*k : (i+1)*k] {
			if h := l.Margin - p + n; h > 0 {
				sum += h
			}
		}
	}
	return sum / float64(len(neg)), nil
}

func (l *MarginRanking) ValueGrouped(pos []float64, neg [][]float64) (float64, error) {
	k, err := checkGrouped(pos, neg)
	if err != nil {
		return 0, err
	}
	var sum float64
	for i, p := range pos {
		for _, n := range neg[i] {
			if h := l.Margin - p + n; h > 0 {
				sum += h
			}
		}
	}
	return sum / float64(len(pos)*k), nil
}

func (l *MarginRanking) Grad(pos, neg []float64) ([]float64, []float64, error) {
	k, err := checkFlat(pos, neg)
	if err != nil {
		return nil, nil, err
	}
	gPos := make([]float64, len(pos))
	gNeg := make([]float64, len(neg))
	scale := 1 / float64(len(neg))
	for i, p := range pos {
		for j, n := range neg[i*k : (i+1)*k] {
			if l.Margin-p+n > 0 {
				gPos[i] -= scale
				gNeg[i*k+j] += scale
			}
		}
	}
	return gPos, gNeg, nil
}

func (l *MarginRanking) GradGrouped(pos []float64, neg [][]float64) ([]float64, [][]float64, error) {
	k, err := checkGrouped(pos, neg)
	if err != nil {
		return nil, nil, err
	}
	gPos := make([]float64, len(pos))
	gNeg := make([][]float64, len(neg))
	scale := 1 / float64(len(pos)*k)
	for i, p := range pos {
		g := make([]float64, len(neg[i]))
		for j, n := range neg[i] {
			if l.Margin-p+n > 0 {
				gPos[i] -= scale
				g[j] += scale
			}
		}
		gNeg[i] = g
	}
	return gPos, gNeg, nil
}
