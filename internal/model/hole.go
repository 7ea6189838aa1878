package model

import (
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/basalamahsyarief/pykeen/internal/tensor"
)

// HolE scores a triple as the dot product of the relation embedding with
// the circular correlation of head and tail:
//
//	score(h, r, t) = r . corr(h, t)
//
// The correlation runs through the frequency domain with the head side
// conjugated.  Entity rows are kept at unit maximum norm during training.
type HolE struct {
	Base

	// spectral pools per-goroutine FFT kernels so concurrent scoring never
	// shares scratch buffers.
	spectral sync.Pool
}

// NewHolE builds a HolE model from cfg.
func NewHolE(cfg Config) (*HolE, error) {
	base, err := newBase(cfg, initUniform)
	if err != nil {
		return nil, err
	}
	m := &HolE{Base: base}
	m.spectral.New = func() any {
		return tensor.NewSpectral(m.Dim())
	}
	return m, nil
}

func (m *HolE) Name() string        { return "hole" }
func (m *HolE) EntityMaxNorm() bool { return true }

func (m *HolE) ScoreHRT(hs, rs, ts []int64) ([]float64, error) {
	if err := checkAligned3(hs, rs, ts); err != nil {
		return nil, err
	}
	scores := make([]float64, len(hs))
	if len(hs) == 0 {
		return scores, nil
	}

	sp := m.spectral.Get().(*tensor.Spectral)
	defer m.spectral.Put(sp)

	comp := make([]float64, m.Dim())
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
		sp.Corr(comp, h, t)
		scores[i] = floats.Dot(r, comp)
	}
	return scores, nil
}

// entitySpectra transforms every entity row exactly once, regardless of the
// batch size of the closed-world call that follows.
func (m *HolE) entitySpectra(sp *tensor.Spectral) [][]complex128 {
	specs := make([][]complex128, m.NumEntities())
	for j := range specs {
		specs[j] = sp.Coefficients(nil, m.emb.Entities.Row(j))
	}
	return specs
}

func (m *HolE) ScoreTails(hs, rs []int64) (*tensor.Mat, error) {
	if err := checkAligned2(hs, rs); err != nil {
		return nil, err
	}
	out := tensor.NewMat(len(hs), m.NumEntities())
	if len(hs) == 0 {
		return out, nil
	}

	sp := m.spectral.Get().(*tensor.Spectral)
	defer m.spectral.Put(sp)

	specs := m.entitySpectra(sp)
	hSpec := make([]complex128, sp.SpecLen())
	prod := make([]complex128, sp.SpecLen())
	comp := make([]float64, m.Dim())
	for i := range hs {
		h, err := m.emb.EntityRow(hs[i])
		if err != nil {
			return nil, err
		}
		r, err := m.emb.RelationRow(rs[i])
		if err != nil {
			return nil, err
		}
		sp.Coefficients(hSpec, h)
		row := out.Row(i)
		for j, tSpec := range specs {
			tensor.CorrSpectra(prod, hSpec, tSpec)
			sp.Sequence(comp, prod)
			row[j] = floats.Dot(r, comp)
		}
	}
	return out, nil
}

func (m *HolE) ScoreHeads(rs, ts []int64) (*tensor.Mat, error) {
	if err := checkAligned2(rs, ts); err != nil {
		return nil, err
	}
	out := tensor.NewMat(len(rs), m.NumEntities())
	if len(rs) == 0 {
		return out, nil
	}

	sp := m.spectral.Get().(*tensor.Spectral)
	defer m.spectral.Put(sp)

	// The candidate entities sit in the head slot here, so their spectra
	// take the conjugated side of the correlation.
	specs := m.entitySpectra(sp)
	tSpec := make([]complex128, sp.SpecLen())
	prod := make([]complex128, sp.SpecLen())
	comp := make([]float64, m.Dim())
	for i := range rs {
		r, err := m.emb.RelationRow(rs[i])
		if err != nil {
			return nil, err
		}
		t, err := m.emb.EntityRow(ts[i])
		if err != nil {
			return nil, err
		}
		sp.Coefficients(tSpec, t)
		row := out.Row(i)
		for j, hSpec := range specs {
			tensor.CorrSpectra(prod, hSpec, tSpec)
			sp.Sequence(comp, prod)
			row[j] = floats.Dot(r, comp)
		}
	}
	return out, nil
}

// ScoreGrad differentiates score(h, r, t) = r . corr(h, t) by row:
//
//	d/dh = corr(r, t)    d/dr = corr(h, t)    d/dt = conv(h, r)
func (m *HolE) ScoreGrad(h, r, t int64) (float64, []float64, []float64, []float64, error) {
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

	sp := m.spectral.Get().(*tensor.Spectral)
	defer m.spectral.Put(sp)

	gr := sp.Corr(nil, hRow, tRow)
	score := floats.Dot(rRow, gr)
	gh := sp.Corr(nil, rRow, tRow)
	gt := sp.Conv(nil, hRow, rRow)
	return score, gh, gr, gt, nil
}
