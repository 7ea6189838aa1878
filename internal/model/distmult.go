package model

import (
	"gonum.org/v1/gonum/floats"

	"github.com/basalamahsyarief/pykeen/internal/tensor"
)

// DistMult scores a triple with the trilinear product
//
//	score(h, r, t) = sum(h * r * t)
//
// where * is the elementwise product.  The relation acts as a diagonal
// matrix, so the model is symmetric in head and tail.  Tables use
// Xavier-normal initialisation.
type DistMult struct {
	Base
}

// NewDistMult builds a DistMult model from cfg.
func NewDistMult(cfg Config) (*DistMult, error) {
	base, err := newBase(cfg, initXavier)
	if err != nil {
		return nil, err
	}
	return &DistMult{Base: base}, nil
}

func (m *DistMult) Name() string        { return "distmult" }
func (m *DistMult) EntityMaxNorm() bool { return false }

func (m *DistMult) ScoreHRT(hs, rs, ts []int64) ([]float64, error) {
	if err := checkAligned3(hs, rs, ts); err != nil {
		return nil, err
	}
	scores := make([]float64, len(hs))
	for i := range hs {
		h, err := m.emb.EntityRow(hs[i])
		if err != nil {
			return nil, err
		}
		r, err := m.emb.RelationRow(rs[i])
		if err != nil {
			return nil, err
		}
		t, err := m.emb.EntityRow(ts[i])
		if err != nil {
			return nil, err
		}
		var sum float64
		for k := range h {
			sum += h[k] * r[k] * t[k]
		}
		scores[i] = sum
	}
	return scores, nil
}

func (m *DistMult) ScoreTails(hs, rs []int64) (*tensor.Mat, error) {
	if err := checkAligned2(hs, rs); err != nil {
		return nil, err
	}
	out := tensor.NewMat(len(hs), m.NumEntities())
	hr := make([]float64, m.Dim())
	for i := range hs {
		h, err := m.emb.EntityRow(hs[i])
		if err != nil {
			return nil, err
		}
		r, err := m.emb.RelationRow(rs[i])
		if err != nil {
			return nil, err
		}
		floats.MulTo(hr, h, r)
		row := out.Row(i)
		for j := 0; j < m.NumEntities(); j++ {
			row[j] = floats.Dot(hr, m.emb.Entities.Row(j))
		}
	}
	return out, nil
}

func (m *DistMult) ScoreHeads(rs, ts []int64) (*tensor.Mat, error) {
	if err := checkAligned2(rs, ts); err != nil {
		return nil, err
	}
	out := tensor.NewMat(len(rs), m.NumEntities())
	rt := make([]float64, m.Dim())
	for i := range rs {
		r, err := m.emb.RelationRow(rs[i])
		if err != nil {
			return nil, err
		}
		t, err := m.emb.EntityRow(ts[i])
		if err != nil {
			return nil, err
		}
		floats.MulTo(rt, r, t)
		row := out.Row(i)
		for j := 0; j < m.NumEntities(); j++ {
			row[j] = floats.Dot(rt, m.emb.Entities.Row(j))
		}
	}
	return out, nil
}

func (m *DistMult) ScoreGrad(h, r, t int64) (float64, []float64, []float64, []float64, error) {
	hRow, err := m.emb.EntityRow(h)
	if err != nil {
		return 0, nil, nil, nil, err
	}
	rRow, err := m.emb.RelationRow(r)
	if err != nil {
		return 0, nil, nil, nil, err
	}
	tRow, err := m.emb.EntityRow(t)
	if err != nil {
		return 0, nil, nil, nil, err
	}

	d := m.Dim()
	gh := make([]float64, d)
	gr := make([]float64, d)
	gt := make([]float64, d)
	var score float64
	for k := 0; k < d; k++ {
		gh[k] = rRow[k] * tRow[k]
		gr[k] = hRow[k] * tRow[k]
		gt[k] = hRow[k] * rRow[k]
		score += hRow[k] * rRow[k] * tRow[k]
	}
	return score, gh, gr, gt, nil
}
