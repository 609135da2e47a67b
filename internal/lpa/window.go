package lpa

import "fmt"

// coeffCount is the number of unknowns in the 2nd-order 3D polynomial
// model, and therefore the number of deconvolution kernels.
const coeffCount = 10

// Window describes the analysis window geometry in samples. NX and NY
// come from the survey grid step-out (2·stepout+1), NZ from the
// inclusive z sample margin.
type Window struct {
	NX, NY, NZ int
}

// FromStepOut builds a window from an (inline, crossline) step-out and
// a symmetric-or-not z margin [lo, hi] in samples, matching the host
// plugin's parameterisation. A step-out of 1 with margin [-1, 1] gives
// the default 3×3×3 window.
func FromStepOut(inl, crl, marginLo, marginHi int) Window {
	return Window{
		NX: 2*inl + 1,
		NY: 2*crl + 1,
		NZ: marginHi - marginLo + 1,
	}
}

// Points returns the number of grid points in the window.
func (w Window) Points() int { return w.NX * w.NY * w.NZ }

// MinExtent returns the smallest of the three extents.
func (w Window) MinExtent() int {
	m := w.NX
	if w.NY < m {
		m = w.NY
	}
	if w.NZ < m {
		m = w.NZ
	}
	return m
}

// validate checks the window against the fit requirements: positive
// extents and at least as many points as polynomial unknowns.
func (w Window) validate() error {
	if w.NX < 1 || w.NY < 1 || w.NZ < 1 {
		return &ConfigError{Reason: fmt.Sprintf("window extents must be positive, got (%d,%d,%d)", w.NX, w.NY, w.NZ)}
	}
	if w.Points() < coeffCount {
		return &ConfigError{Reason: fmt.Sprintf("window has %d points, need at least %d to fit %d coefficients",
			w.Points(), coeffCount, coeffCount)}
	}
	return nil
}

// Gamma returns the mixing constant that balances gradient energy
// against curvature energy in the orientation tensor:
//
//	γ = 1 / (8·((min(nx,ny,nz)−1)·σ)²)
//
// It depends only on the window geometry and weight factor, so it is
// computed once at Configure time.
func Gamma(w Window, sigma float64) float64 {
	m := float64(w.MinExtent()-1) * sigma
	return 1 / (8 * m * m)
}

// centered returns n evenly spaced coordinates from −(n−1)/2 to
// (n−1)/2, the window grid along one axis.
func centered(n int) []float64 {
	c := make([]float64, n)
	h := float64(n-1) / 2
	for i := range c {
		c[i] = float64(i) - h
	}
	return c
}
