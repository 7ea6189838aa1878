package loss

import "math"

// softplus computes log(1+exp(x)) without overflowing for large |x|.
func softplus(x float64) float64 {
	return math.Log1p(math.Exp(-math.Abs(x))) + math.Max(x, 0)
}

// logSigmoid computes log(sigmoid(x)) through the softplus identity
// log(sigmoid(x)) = -softplus(-x), which stays finite for large negative x.
func logSigmoid(x float64) float64 {
	return -softplus(-x)
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// softmaxInPlace overwrites x with softmax(x), subtracting the maximum
// before exponentiating.
func softmaxInPlace(x []float64) {
	if len(x) == 0 {
		return
	}
	max := x[0]
	for _, v := range x[1:] {
		if v > max {
			max = v
		}
	}
	var sum float64
	for i, v := range x {
		e := math.Exp(v - max)
		x[i] = e
		sum += e
	}
	for i := range x {
		x[i] /= sum
	}
}
