package loss

// Softplus is the pointwise criterion
// (mean(softplus(-pos)) + mean(softplus(neg))) / 2, a smooth variant of
// pushing positive scores up and negative scores down with no margin or
// weighting parameters.
type Softplus struct{}

func (Softplus) Name() string { return "softplus" }

func (Softplus) Value(pos, neg []float64) (float64, error) {
	if _, err := checkFlat(pos, neg); err != nil {
		return 0, err
	}
	var posSum float64
	for _, s := range pos {
		posSum += softplus(-s)
	}
	var negSum float64
	for _, s := range neg {
		negSum += softplus(s)
	}
	return (posSum/float64(len(pos)) + negSum/float64(len(neg))) / 2, nil
}

func (l Softplus) ValueGrouped(pos []float64, neg [][]float64) (float64, error) {
	k, err := checkGrouped(pos, neg)
	if err != nil {
		return 0, err
	}
	flat := make([]float64, 0, len(pos)*k)
	for _, row := range neg {
		flat = append(flat, row...)
	}
	return l.Value(pos, flat)
}

func (Softplus) Grad(pos, neg []float64) ([]float64, []float64, error) {
	if _, err := checkFlat(pos, neg); err != nil {
		return nil, nil, err
	}
	gPos := make([]float64, len(pos))
	for i, s := range pos {
		gPos[i] = -sigmoid(-s) / float64(2*len(pos))
	}
	gNeg := make([]float64, len(neg))
	for j, s := range neg {
		gNeg[j] = sigmoid(s) / float64(2*len(neg))
	}
	return gPos, gNeg, nil
}

func (l Softplus) GradGrouped(pos []float64, neg [][]float64) ([]float64, [][]float64, error) {
	k, err := checkGrouped(pos, neg)
	if err != nil {
		return nil, nil, err
	}
	flat := make([]float64, 0, len(pos)*k)
	for _, row := range neg {
		flat = append(flat, row...)
	}
	gPos, flatNeg, err := l.Grad(pos, flat)
	if err != nil {
		return nil, nil, err
	}
	gNeg := make([][]float64, len(neg))
	for i := range neg {
		gNeg[i] = flatNeg[i*k : (i+1)*k]
	}
	return gPos, gNeg, nil
}
