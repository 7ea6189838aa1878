package model

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/basalamahsyarief/pykeen/internal/tensor"
)

// RotatE interprets embedding rows as interleaved complex pairs and models
// a relation as an elementwise rotation in the complex plane:
//
//	score(h, r, t) = -sum_k | h_k * r_k - t_k |
//
// summing the modulus of each complex component.  Relation pairs start on
// the unit circle so that they begin as pure rotations.  The embedding
// dimension must be even.
type RotatE struct {
	Base
}

// NewRotatE builds a RotatE model from cfg.
func NewRotatE(cfg Config) (*RotatE, error) {
	dim := cfg.Dim
	if cfg.Pretrained != nil {
		dim = cfg.Pretrained.Dim()
	} else if dim == 0 {
		dim = DefaultDim
	}
	if dim%2 != 0 {
		return nil, fmt.Errorf("rotate requires an even embedding dimension, got %d", dim)
	}
	base, err := newBase(cfg, initUniform)
	if err != nil {
		return nil, err
	}
	m := &RotatE{Base: base}
	if cfg.Pretrained == nil {
		m.initPhases(cfg.Seed)
	}
	return m, nil
}

// initPhases rewrites every relation pair as (cos t, sin t) for a uniform
// random phase t in (-pi, pi).
func (m *RotatE) initPhases(seed int64) {
	rng := rand.New(rand.NewSource(seed + 1))
	rel := m.emb.Relations
	for i := 0; i < rel.R; i++ {
		row := rel.Row(i)
		for k := 0; k+1 < len(row); k += 2 {
			theta := (rng.Float64()*2 - 1) * math.Pi
			row[k] = math.Cos(theta)
			row[k+1] = math.Sin(theta)
		}
	}
}

func (m *RotatE) Name() string        { return "rotate" }
func (m *RotatE) EntityMaxNorm() bool { return false }

// pairDistance sums |h_k*r_k - t_k| over the complex pairs of three rows.
func pairDistance(h, r, t []float64) float64 {
	var sum float64
	for k := 0; k+1 < len(h); k += 2 {
		a := h[k]*r[k] - h[k+1]*r[k+1] - t[k]
		b := h[k]*r[k+1] + h[k+1]*r[k] - t[k+1]
		sum += math.Hypot(a, b)
	}
	return sum
}

func (m *RotatE) ScoreHRT(hs, rs, ts []int64) ([]float64, error) {
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
		scores[i] = -pairDistance(h, r, t)
	}
	return scores, nil
}

func (m *RotatE) ScoreTails(hs, rs []int64) (*tensor.Mat, error) {
	if err := checkAligned2(hs, rs); err != nil {
		return nil, err
	}
	out := tensor.NewMat(len(hs), m.NumEntities())
	rotated := make([]float64, m.Dim())
	for i := range hs {
		h, err := m.emb.EntityRow(hs[i])
		if err != nil {
			return nil, err
		}
		r, err := m.emb.RelationRow(rs[i])
		if err != nil {
			return nil, err
		}
		for k := 0; k+1 < len(h); k += 2 {
			rotated[k] = h[k]*r[k] - h[k+1]*r[k+1]
			rotated[k+1] = h[k]*r[k+1] + h[k+1]*r[k]
		}
		row := out.Row(i)
		for j := 0; j < m.NumEntities(); j++ {
			e := m.emb.Entities.Row(j)
			var sum float64
			for k := 0; k+1 < len(e); k += 2 {
				sum += math.Hypot(rotated[k]-e[k], rotated[k+1]-e[k+1])
			}
			row[j] = -sum
		}
	}
	return out, nil
}

func (m *RotatE) ScoreHeads(rs, ts []int64) (*tensor.Mat, error) {
	if err := checkAligned2(rs, ts); err != nil {
		return nil, err
	}
	out := tensor.NewMat(len(rs), m.NumEntities())
	for i := range rs {
		r, err := m.emb.RelationRow(rs[i])
		if err != nil {
			return nil, err
		}
		t, err := m.emb.EntityRow(ts[i])
		if err != nil {
			return nil, err
		}
		row := out.Row(i)
		for j := 0; j < m.NumEntities(); j++ {
			row[j] = -pairDistance(m.emb.Entities.Row(j), r, t)
		}
	}
	return out, nil
}

func (m *RotatE) ScoreGrad(h, r, t int64) (float64, []float64, []float64, []float64, error) {
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
	var dist float64
	for k := 0; k+1 < d; k += 2 {
		hr, hi := hRow[k], hRow[k+1]
		rr, ri := rRow[k], rRow[k+1]
		a := hr*rr - hi*ri - tRow[k]
		b := hr*ri + hi*rr - tRow[k+1]
		mod := math.Hypot(a, b)
		dist += mod
		if mod == 0 {
			continue
		}
		gh[k] = -(a*rr + b*ri) / mod
		gh[k+1] = (a*ri - b*rr) / mod
		gr[k] = -(a*hr + b*hi) / mod
		gr[k+1] = (a*hi - b*hr) / mod
		gt[k] = a / mod
		gt[k+1] = b / mod
	}
	return -dist, gh, gr, gt, nil
}
