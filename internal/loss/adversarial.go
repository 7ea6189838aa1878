package loss

import "fmt"

// SelfAdversarial is the negative sampling self-adversarial loss.  Scores
// are negated into distances, negatives are weighted by a softmax over
// Temperature times their scores, and both terms are averaged:
//
//	L = -( mean(logsigmoid(Margin - posDist)) +
//	       mean(weights * logsigmoid(negDist - Margin)) ) / 2
//
// The weights are treated as constants when differentiating, so hard
// negatives steer the update without receiving gradient through the
// weighting itself.  Margin and Temperature are exported so a trained
// model's criterion can be inspected.
type SelfAdversarial struct {
	Margin      float64
	Temperature float64
}

// NewSelfAdversarial validates the configuration at construction time.
// The temperature scales the weighting softmax and must be positive.
func NewSelfAdversarial(margin, temperature float64) (*SelfAdversarial, error) {
	if temperature <= 0 {
		return nil, fmt.Errorf("self-adversarial loss requires a positive temperature, got %g", temperature)
	}
	return &SelfAdversarial{Margin: margin, Temperature: temperature}, nil
}

func (l *SelfAdversarial) Name() string { return "nssa" }

// weights returns softmax(Temperature * scores).
func (l *SelfAdversarial) weights(scores []float64) []float64 {
	w := make([]float64, len(scores))
	for i, s := range scores {
		w[i] = l.Temperature * s
	}
	softmaxInPlace(w)
	return w
}

// posTerm is mean(logsigmoid(Margin - posDist)) with posDist = -pos.
func (l *SelfAdversarial) posTerm(pos []float64) float64 {
	var sum float64
	for _, s := range pos {
		sum += logSigmoid(l.Margin + s)
	}
	return sum / float64(len(pos))
}

func (l *SelfAdversarial) Value(pos, neg []float64) (float64, error) {
	if _, err := checkFlat(pos, neg); err != nil {
		return 0, err
	}
	w := l.weights(neg)
	var negSum float64
	for j, s := range neg {
		negSum += w[j] * logSigmoid(-s-l.Margin)
	}
	negTerm := negSum / float64(len(neg))
	return -(l.posTerm(pos) + negTerm) / 2, nil
}

func (l *SelfAdversarial) ValueGrouped(pos []float64, neg [][]float64) (float64, error) {
	k, err := checkGrouped(pos, neg)
	if err != nil {
		return 0, err
	}
	var negSum float64
	for _, row := range neg {
		w := l.weights(row)
		for j, s := range row {
			negSum += w[j] * logSigmoid(-s-l.Margin)
		}
	}
	negTerm := negSum / float64(len(pos)*k)
	return -(l.posTerm(pos) + negTerm) / 2, nil
}

func (l *SelfAdversarial) Grad(pos, neg []float64) ([]float64, []float64, error) {
	if _, err := checkFlat(pos, neg); err != nil {
		return nil, nil, err
	}
	gPos := make([]float64, len(pos))
	for i, s := range pos {
		gPos[i] = -sigmoid(-l.Margin-s) / float64(2*len(pos))
	}
	w := l.weights(neg)
	gNeg := make([]float64, len(neg))
	for j, s := range neg {
		gNeg[j] = w[j] * sigmoid(s+l.Margin) / float64(2*len(neg))
	}
	return gPos, gNeg, nil
}

func (l *SelfAdversarial) GradGrouped(pos []float64, neg [][]float64) ([]float64, [][]float64, error) {
	k, err := checkGrouped(pos, neg)
	if err != nil {
		return nil, nil, err
	}
	gPos := make([]float64, len(pos))
	for i, s := range pos {
		gPos[i] = -sigmoid(-l.Margin-s) / float64(2*len(pos))
	}
	total := float64(2 * len(pos) * k)
	gNeg := make([][]float64, len(neg))
	for r, row := range neg {
		w := l.weights(row)
		g := make([]float64, len(row))
		for j, s := range row {
			g[j] = w[j] * sigmoid(s+l.Margin) / total
		}
		gNeg[r] = g
	}
	return gPos, gNeg, nil
}
