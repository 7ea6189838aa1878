package tensor

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// Spectral computes circular correlations and convolutions of real sequences
// of a fixed length through the frequency domain.  The transform length may
// be any positive integer; it does not need to be a power of two.
//
// A Spectral carries scratch state and is not safe for concurrent use.  Give
// each goroutine its own instance.
type Spectral struct {
	n      int
	fft    *fourier.FFT
	fa, fb []complex128
}

// NewSpectral returns a Spectral for sequences of length n.
func NewSpectral(n int) *Spectral {
	if n <= 0 {
		panic("non-positive transform length")
	}
	return &Spectral{
		n:   n,
		fft: fourier.NewFFT(n),
		fa:  make([]complex128, n/2+1),
		fb:  make([]complex128, n/2+1),
	}
}

// SpecLen returns the length of the one-sided spectrum, n/2+1.
func (s *Spectral) SpecLen() int { return s.n/2 + 1 }

// Coefficients computes the one-sided discrete Fourier transform of seq into
// dst.  The real input has a conjugate-symmetric spectrum, so only the first
// n/2+1 coefficients are stored.  If dst is nil a new slice is allocated.
func (s *Spectral) Coefficients(dst []complex128, seq []float64) []complex128 {
	return s.fft.Coefficients(dst, seq)
}

// Sequence computes the inverse transform of the one-sided spectrum spec into
// dst, normalising by the transform length so that
// Sequence(Coefficients(x)) == x.  If dst is nil a new slice is allocated.
func (s *Spectral) Sequence(dst []float64, spec []complex128) []float64 {
	dst = s.fft.Sequence(dst, spec)
	floats.Scale(1/float64(s.n), dst)
	return dst
}

// Corr computes the circular correlation of a and b into dst:
//
//	dst[k] = sum_i a[i] * b[(i+k) mod n]
//
// via conj(FFT(a)) * FFT(b) followed by the normalised inverse transform.
// If dst is nil a new slice is allocated.
func (s *Spectral) Corr(dst, a, b []float64) []float64 {
	s.fft.Coefficients(s.fa, a)
	s.fft.Coefficients(s.fb, b)
	CorrSpectra(s.fa, s.fa, s.fb)
	return s.Sequence(dst, s.fa)
}

// Conv computes the circular convolution of a and b into dst:
//
//	dst[k] = sum_i a[i] * b[(k-i) mod n]
//
// via FFT(a) * FFT(b) followed by the normalised inverse transform.  If dst
// is nil a new slice is allocated.
func (s *Spectral) Conv(dst, a, b []float64) []float64 {
	s.fft.Coefficients(s.fa, a)
	s.fft.Coefficients(s.fb, b)
	ConvSpectra(s.fa, s.fa, s.fb)
	return s.Sequence(dst, s.fa)
}

// CorrSpectra writes the frequency-domain circular correlation conj(a)*b
// into dst elementwise.  dst may alias a or b.
func CorrSpectra(dst, a, b []complex128) {
	for i := range dst {
		dst[i] = cmplx.Conj(a[i]) * b[i]
	}
}

// ConvSpectra writes the frequency-domain circular convolution a*b into dst
// elementwise.  dst may alias a or b.
func ConvSpectra(dst, a, b []complex128) {
	for i := range dst {
		dst[i] = a[i] * b[i]
	}
}

// CorrNaive computes the circular correlation of a and b by the direct
// O(n^2) sum.  It is the reference implementation for the spectral path and
// remains usable for very small dimensions.
func CorrNaive(dst, a, b []float64) []float64 {
	n := len(a)
	if len(b) != n {
		panic("length mismatch for circular correlation")
	}
	if dst == nil {
		dst = make([]float64, n)
	}
	for k := 0; k < n; k++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += a[i] * b[(i+k)%n]
		}
		dst[k] = sum
	}
	return dst
}

// ConvNaive computes the circular convolution of a and b by the direct
// O(n^2) sum.
func ConvNaive(dst, a, b []float64) []float64 {
	n := len(a)
	if len(b) != n {
		panic("length mismatch for circular convolution")
	}
	if dst == nil {
		dst = make([]float64, n)
	}
	for k := 0; k < n; k++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += a[i] * b[((k-i)%n+n)%n]
		}
		dst[k] = sum
	}
	return dst
}
