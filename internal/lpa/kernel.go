package lpa

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/seisattr/internal/volume"
)

// KernelSet holds the ten deconvolution kernels for one window
// geometry and weight factor. Applying kernel k to a data block by
// correlation yields the k-th polynomial coefficient of the local
// weighted least-squares fit directly.
//
// A KernelSet is immutable after construction and safe for concurrent
// read access from any number of workers.
type KernelSet struct {
	Window Window
	Sigma  float64

	kernels [coeffCount]*volume.Block
}

// Kernel returns the deconvolution kernel for coefficient i in the
// fixed order (1, x, y, z, x², y², z², xy, xz, yz). The returned block
// must not be modified.
func (ks *KernelSet) Kernel(i int) *volume.Block { return ks.kernels[i] }

// BuildKernelSet computes the deconvolution kernels for the given
// window and weight factor by solving the Gaussian-weighted normal
// equations once:
//
//	D = (AᵀWA)⁻¹ AᵀW
//
// where A is the N×10 design matrix of monomials over the window grid
// and W the diagonal Gaussian weight matrix with per-axis scale
// σ_axis = sigma·(extent−1). Row k of D, reshaped to the window
// extents, is the kernel for coefficient k.
//
// The 10×10 normal matrix is inverted here, at configuration time; a
// rank-deficient window fails with SingularError before any data is
// processed. The computation is pure, so results are memoised by
// Configure.
func BuildKernelSet(w Window, sigma float64) (*KernelSet, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	if sigma <= 0 {
		return nil, &ConfigError{Reason: "weight factor must be positive"}
	}

	n := w.Points()
	xs := centered(w.NX)
	ys := centered(w.NY)
	zs := centered(w.NZ)

	// Axis-scaled Gaussian exponents. An axis of extent 1 has a single
	// coordinate at 0 and contributes nothing to the exponent.
	ex := weightExponents(xs, sigma)
	ey := weightExponents(ys, sigma)
	ez := weightExponents(zs, sigma)

	design := mat.NewDense(n, coeffCount, nil)
	weighted := mat.NewDense(n, coeffCount, nil) // W·A, W diagonal
	row := 0
	for i, x := range xs {
		for j, y := range ys {
			for k, z := range zs {
				wgt := math.Exp(-(ex[i] + ey[j] + ez[k]))
				monos := [coeffCount]float64{1, x, y, z, x * x, y * y, z * z, x * y, x * z, y * z}
				for c, m := range monos {
					design.Set(row, c, m)
					weighted.Set(row, c, wgt*m)
				}
				row++
			}
		}
	}

	// Normal matrix AᵀWA (10×10, symmetric positive definite for any
	// non-degenerate window).
	var normal mat.Dense
	normal.Mul(design.T(), weighted)

	var inv mat.Dense
	if err := inv.Inverse(&normal); err != nil {
		return nil, &SingularError{Window: w, Sigma: sigma, Cause: err}
	}

	// D = (AᵀWA)⁻¹ AᵀW. W is diagonal, so AᵀW = (W·A)ᵀ.
	var deconv mat.Dense
	deconv.Mul(&inv, weighted.T())

	ks := &KernelSet{Window: w, Sigma: sigma}
	for c := 0; c < coeffCount; c++ {
		data := make([]float64, n)
		mat.Row(data, c, &deconv)
		// Row order matches the grid walk above: x-major, z fastest,
		// which is exactly the Block layout.
		b, err := volume.FromSlice(w.NX, w.NY, w.NZ, data)
		if err != nil {
			return nil, err
		}
		ks.kernels[c] = b
	}
	return ks, nil
}

// weightExponents returns x²/(2·σ_axis²) per axis coordinate, with
// σ_axis = sigma·(n−1). Degenerate axes (extent 1) get zero exponents.
func weightExponents(coords []float64, sigma float64) []float64 {
	e := make([]float64, len(coords))
	if len(coords) == 1 {
		return e
	}
	s := sigma * float64(len(coords)-1)
	for i, c := range coords {
		e[i] = c * c / (2 * s * s)
	}
	return e
}
