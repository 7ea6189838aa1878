package model

import (
	"fmt"
	"math"

	"github.com/basalamahsyarief/pykeen/internal/tensor"
)

// TransE models a relation as a translation in embedding space and scores a
// triple by the negated distance
//
//	score(h, r, t) = -|| h + r - t ||_p
//
// with p taken from Config.Norm (1 or 2, default 1).  Higher scores mean
// shorter translations, keeping the plausibility convention shared by all
// models.
type TransE struct {
	Base
	norm int
}

// NewTransE builds a TransE model from cfg.
func NewTransE(cfg Config) (*TransE, error) {
	norm := cfg.Norm
	if norm == 0 {
		norm = 1
	}
	if norm != 1 && norm != 2 {
		return nil, fmt.Errorf("transe norm must be 1 or 2, got %d", cfg.Norm)
	}
	base, err := newBase(cfg, initUniform)
	if err != nil {
		return nil, err
	}
	return &TransE{Base: base, norm: norm}, nil
}

func (m *TransE) Name() string        { return "transe" }
func (m *TransE) EntityMaxNorm() bool { return false }

func (m *TransE) distance(delta []float64) float64 {
	var sum float64
	if m.norm == 1 {
		for _, v := range delta {
			sum += math.Abs(v)
		}
		return sum
	}
	for _, v := range delta {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (m *TransE) ScoreHRT(hs, rs, ts []int64) ([]float64, error) {
	if err := checkAligned3(hs, rs, ts); err != nil {
		return nil, err
	}
	scores := make([]float64, len(hs))
	delta := make([]float64, m.Dim())
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
		for k := range delta {
			delta[k] = h[k] + r[k] - t[k]
		}
		scores[i] = -m.distance(delta)
	}
	return scores, nil
}

func (m *TransE) ScoreTails(hs, rs []int64) (*tensor.Mat, error) {
	if err := checkAligned2(hs, rs); err != nil {
		return nil, err
	}
	out := tensor.NewMat(len(hs), m.NumEntities())
	hr := make([]float64, m.Dim())
	delta := make([]float64, m.Dim())
	for i := range hs {
		h, err := m.emb.EntityRow(hs[i])
		if err != nil {
			return nil, err
		}
		r, err := m.emb.RelationRow(rs[i])
		if err != nil {
			return nil, err
		}
		for k := range hr {
			hr[k] = h[k] + r[k]
		}
		row := out.Row(i)
		for j := 0; j < m.NumEntities(); j++ {
			e := m.emb.Entities.Row(j)
			for k := range delta {
				delta[k] = hr[k] - e[k]
			}
			row[j] = -m.distance(delta)
		}
	}
	return out, nil
}

func (m *TransE) ScoreHeads(rs, ts []int64) (*tensor.Mat, error) {
	if err := checkAligned2(rs, ts); err != nil {
		return nil, err
	}
	out := tensor.NewMat(len(rs), m.NumEntities())
	rt := make([]float64, m.Dim())
	delta := make([]float64, m.Dim())
	for i := range rs {
		r, err := m.emb.RelationRow(rs[i])
		if err != nil {
			return nil, err
		}
		t, err := m.emb.EntityRow(ts[i])
		if err != nil {
			return nil, err
		}
		for k := range rt {
			rt[k] = r[k] - t[k]
		}
		row := out.Row(i)
		for j := 0; j < m.NumEntities(); j++ {
			e := m.emb.Entities.Row(j)
			for k := range delta {
				delta[k] = e[k] + rt[k]
			}
			row[j] = -m.distance(delta)
		}
	}
	return out, nil
}

func (m *TransE) ScoreGrad(h, r, t int64) (float64, []float64, []float64, []float64, error) {
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
	delta := make([]float64, d)
	for k := 0; k < d; k++ {
		delta[k] = hRow[k] + rRow[k] - tRow[k]
	}
	dist := m.distance(delta)

	gh := make([]float64, d)
	gr := make([]float64, d)
	gt := make([]float64, d)
	if m.norm == 1 {
		for k, v := range delta {
			var s float64
			switch {
			case v > 0:
				s = 1
			case v < 0:
				s = -1
			}
			gh[k] = -s
			gr[k] = -s
			gt[k] = s
		}
	} else if dist > 0 {
		for k, v := range delta {
			g := v / dist
			gh[k] = -g
			gr[k] = -g
			gt[k] = g
		}
	}
	return -dist, gh, gr, gt, nil
}
