package lpa

import (
	"sync"

	"github.com/banshee-data/seisattr/internal/volume"
)

// CoefficientNames are the observable output identifiers of the
// coefficient variant, in kernel order.
var CoefficientNames = [coeffCount]string{"r0", "r1", "r2", "r3", "r4", "r5", "r6", "r7", "r8", "r9"}

// EigenNames are the observable output identifiers of the eigenvalue
// variant, in descending eigenvalue order.
var EigenNames = [3]string{"e1", "e2", "e3"}

// Engine is a configured attribute computer: an immutable kernel set
// plus the precomputed tensor mixing constant. Engines hold no mutable
// state, so a single Engine may be shared by concurrent workers; each
// Compute call allocates its own transient output.
type Engine struct {
	kernels *KernelSet
	gamma   float64
}

// kernelKey memoises kernel sets per configuration. Building a set
// involves a dense solve, so repeat configurations (every trace of a
// survey uses the same one) reuse the cached result.
type kernelKey struct {
	nx, ny, nz int
	sigma      float64
}

var (
	kernelCacheMu sync.Mutex
	kernelCache   = map[kernelKey]*KernelSet{}
)

// Configure validates the window and weight factor, builds (or reuses)
// the deconvolution kernel set and returns a ready Engine. Errors are
// ConfigError for invalid parameters and SingularError for a
// degenerate fit geometry; both are fatal for this configuration.
func Configure(w Window, weightFactor float64) (*Engine, error) {
	key := kernelKey{nx: w.NX, ny: w.NY, nz: w.NZ, sigma: weightFactor}

	kernelCacheMu.Lock()
	ks, ok := kernelCache[key]
	kernelCacheMu.Unlock()
	if !ok {
		var err error
		ks, err = BuildKernelSet(w, weightFactor)
		if err != nil {
			return nil, err
		}
		kernelCacheMu.Lock()
		kernelCache[key] = ks
		kernelCacheMu.Unlock()
	}

	return &Engine{kernels: ks, gamma: Gamma(w, weightFactor)}, nil
}

// Window returns the configured analysis window.
func (e *Engine) Window() Window { return e.kernels.Window }

// Sigma returns the configured weight factor.
func (e *Engine) Sigma() float64 { return e.kernels.Sigma }

// Gamma returns the precomputed tensor mixing constant.
func (e *Engine) Gamma() float64 { return e.gamma }

// Kernels returns the engine's immutable kernel set.
func (e *Engine) Kernels() *KernelSet { return e.kernels }

// CoefficientProfile holds the ten coefficient streams r0..r9 along
// the z axis of one block. Only indices in [ValidLo, ValidHi) are
// defined; entries outside that range are unset by contract and must
// not be read.
type CoefficientProfile struct {
	Samples          int
	ValidLo, ValidHi int
	R                [coeffCount][]float64
}

// Stream returns the coefficient stream with the given output name
// ("r0".."r9"), or false if the name is unknown.
func (p *CoefficientProfile) Stream(name string) ([]float64, bool) {
	for i, n := range CoefficientNames {
		if n == name {
			return p.R[i], true
		}
	}
	return nil, false
}

// EigenProfile holds the eigenvalue streams e1 ≥ e2 ≥ e3 along the z
// axis of one block, with the same valid-range contract as
// CoefficientProfile.
type EigenProfile struct {
	Samples          int
	ValidLo, ValidHi int
	E1, E2, E3       []float64
}

// Stream returns the eigenvalue stream with the given output name
// ("e1", "e2", "e3"), or false if the name is unknown.
func (p *EigenProfile) Stream(name string) ([]float64, bool) {
	switch name {
	case "e1":
		return p.E1, true
	case "e2":
		return p.E2, true
	case "e3":
		return p.E3, true
	}
	return nil, false
}

// ComputeCoefficients runs the ten kernel correlations against the
// centre trace of block and returns the coefficient profile. A block
// smaller than the window in any axis is rejected with ShapeError and
// produces no output.
func (e *Engine) ComputeCoefficients(block *volume.Block) (*CoefficientProfile, error) {
	w := e.kernels.Window
	if block.NX < w.NX || block.NY < w.NY || block.NZ < w.NZ {
		return nil, &ShapeError{
			BlockNX: block.NX, BlockNY: block.NY, BlockNZ: block.NZ,
			KernelNX: w.NX, KernelNY: w.NY, KernelNZ: w.NZ,
		}
	}

	hz := w.NZ / 2
	p := &CoefficientProfile{
		Samples: block.NZ,
		ValidLo: hz,
		ValidHi: block.NZ - hz,
	}
	for i := 0; i < coeffCount; i++ {
		p.R[i] = make([]float64, block.NZ)
		if err := CorrelateCenterTrace(block, e.kernels.Kernel(i), p.R[i]); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// ComputeEigenvalues computes the coefficient profile, assembles the
// orientation tensor at every valid z sample and returns its sorted
// eigenvalues. Shape preconditions match ComputeCoefficients.
func (e *Engine) ComputeEigenvalues(block *volume.Block) (*EigenProfile, error) {
	coef, err := e.ComputeCoefficients(block)
	if err != nil {
		return nil, err
	}

	p := &EigenProfile{
		Samples: coef.Samples,
		ValidLo: coef.ValidLo,
		ValidHi: coef.ValidHi,
		E1:      make([]float64, coef.Samples),
		E2:      make([]float64, coef.Samples),
		E3:      make([]float64, coef.Samples),
	}
	var r [coeffCount]float64
	for z := coef.ValidLo; z < coef.ValidHi; z++ {
		for i := 0; i < coeffCount; i++ {
			r[i] = coef.R[i][z]
		}
		t := AssembleTensor(&r, e.gamma)
		p.E1[z], p.E2[z], p.E3[z] = t.EigenvaluesDescending()
	}
	return p, nil
}
