package training

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// SGD applies plain stochastic gradient descent row updates with a learning
// rate that decays linearly over the planned number of steps, never below
// one ten-thousandth of the initial rate.
type SGD struct {
	alpha float64
	total int
	step  int
}

// NewSGD returns an optimiser starting at learning rate alpha and decaying
// across totalSteps calls to Step.
func NewSGD(alpha float64, totalSteps int) (*SGD, error) {
	if alpha <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %g", alpha)
	}
	if totalSteps < 1 {
		return nil, fmt.Errorf("total steps must be at least 1, got %d", totalSteps)
	}
	return &SGD{alpha: alpha, total: totalSteps}, nil
}

// LearningRate returns the rate for the current step.
func (o *SGD) LearningRate() float64 {
	lr := o.alpha * (1 - float64(o.step)/float64(o.total))
	if floor := o.alpha * 1e-4; lr < floor {
		lr = floor
	}
	return lr
}

// Step advances the decay schedule by one batch.
func (o *SGD) Step() { o.step++ }

// Apply performs row -= LearningRate() * scale * grad.
func (o *SGD) Apply(row []float64, scale float64, grad []float64) {
	floats.AddScaled(row, -o.LearningRate()*scale, grad)
}
