package lpa

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/seisattr/internal/volume"
)

// sampleGlobalPolynomial fills a block with a degree-2 polynomial in
// absolute grid coordinates.
func sampleGlobalPolynomial(nx, ny, nz int, c [10]float64) *volume.Block {
	b, _ := volume.New(nx, ny, nz)
	for ix := 0; ix < nx; ix++ {
		for iy := 0; iy < ny; iy++ {
			for iz := 0; iz < nz; iz++ {
				x, y, z := float64(ix), float64(iy), float64(iz)
				v := c[0] + c[1]*x + c[2]*y + c[3]*z +
					c[4]*x*x + c[5]*y*y + c[6]*z*z +
					c[7]*x*y + c[8]*x*z + c[9]*y*z
				b.Set(ix, iy, iz, v)
			}
		}
	}
	return b
}

// localCoefficients re-centres a global degree-2 polynomial at the
// analysis point p: the constant becomes the value, the linear terms
// become the first derivatives, and the quadratic terms are invariant
// under translation.
func localCoefficients(c [10]float64, px, py, pz float64) [10]float64 {
	var r [10]float64
	r[0] = c[0] + c[1]*px + c[2]*py + c[3]*pz +
		c[4]*px*px + c[5]*py*py + c[6]*pz*pz +
		c[7]*px*py + c[8]*px*pz + c[9]*py*pz
	r[1] = c[1] + 2*c[4]*px + c[7]*py + c[8]*pz
	r[2] = c[2] + 2*c[5]*py + c[7]*px + c[9]*pz
	r[3] = c[3] + 2*c[6]*pz + c[8]*px + c[9]*py
	copy(r[4:], c[4:])
	return r
}

// TestComputeCoefficients_ExactOnPolynomial is the headline property:
// on noiseless degree-2 data the engine recovers the local polynomial
// coefficients exactly (to floating tolerance) at every valid sample,
// for any admissible window and weight factor.
func TestComputeCoefficients_ExactOnPolynomial(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	var c [10]float64
	for i := range c {
		c[i] = rng.NormFloat64()
	}

	windows := []Window{{3, 3, 3}, {5, 5, 5}, {3, 5, 7}}
	sigmas := []float64{0.2, 0.7}

	for _, w := range windows {
		for _, sigma := range sigmas {
			eng, err := Configure(w, sigma)
			require.NoError(t, err)

			nx, ny, nz := w.NX, w.NY, 4*w.NZ
			block := sampleGlobalPolynomial(nx, ny, nz, c)
			prof, err := eng.ComputeCoefficients(block)
			require.NoError(t, err)

			px := float64(nx / 2)
			py := float64(ny / 2)
			for z := prof.ValidLo; z < prof.ValidHi; z++ {
				want := localCoefficients(c, px, py, float64(z))
				for i := 0; i < 10; i++ {
					assert.InDeltaf(t, want[i], prof.R[i][z], 1e-6,
						"window %v sigma %g: r%d at z=%d", w, sigma, i, z)
				}
			}
		}
	}
}

// TestComputeCoefficients_ConstantIdentity: a constant volume has r0
// equal to the constant and every other coefficient zero.
func TestComputeCoefficients_ConstantIdentity(t *testing.T) {
	eng, err := Configure(Window{3, 3, 3}, 0.2)
	require.NoError(t, err)

	block, _ := volume.New(3, 3, 12)
	block.Fill(42.5)

	prof, err := eng.ComputeCoefficients(block)
	require.NoError(t, err)

	for z := prof.ValidLo; z < prof.ValidHi; z++ {
		assert.InDelta(t, 42.5, prof.R[0][z], 1e-9, "r0 at z=%d", z)
		for i := 1; i < 10; i++ {
			assert.InDeltaf(t, 0, prof.R[i][z], 1e-9, "r%d at z=%d", i, z)
		}
	}
}

func TestComputeCoefficients_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(22))
	eng, err := Configure(Window{3, 3, 5}, 0.2)
	require.NoError(t, err)

	block := randomBlock(rng, 5, 5, 20)
	a, err := eng.ComputeCoefficients(block)
	require.NoError(t, err)
	b, err := eng.ComputeCoefficients(block)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		for z := a.ValidLo; z < a.ValidHi; z++ {
			if a.R[i][z] != b.R[i][z] {
				t.Fatalf("r%d at z=%d differs between identical calls", i, z)
			}
		}
	}
}

func TestComputeCoefficients_ShapeRejection(t *testing.T) {
	eng, err := Configure(Window{3, 3, 3}, 0.2)
	require.NoError(t, err)

	small, _ := volume.New(2, 3, 9)
	prof, err := eng.ComputeCoefficients(small)
	assert.Nil(t, prof, "no partial output on shape mismatch")
	var shapeErr *ShapeError
	assert.True(t, errors.As(err, &shapeErr), "expected ShapeError, got %v", err)

	_, err = eng.ComputeEigenvalues(small)
	assert.True(t, errors.As(err, &shapeErr), "eigen variant must reject the same shape, got %v", err)
}

func TestConfigure_Rejection(t *testing.T) {
	var cfgErr *ConfigError

	_, err := Configure(Window{3, 3, 3}, 0)
	assert.True(t, errors.As(err, &cfgErr), "zero weight factor: got %v", err)

	_, err = Configure(Window{3, 3, 1}, 0.2)
	assert.True(t, errors.As(err, &cfgErr), "9-point window: got %v", err)
}

func TestComputeEigenvalues_OrderingAndRange(t *testing.T) {
	rng := rand.New(rand.NewSource(23))
	eng, err := Configure(Window{3, 3, 3}, 0.2)
	require.NoError(t, err)

	block := randomBlock(rng, 3, 3, 16)
	prof, err := eng.ComputeEigenvalues(block)
	require.NoError(t, err)

	assert.Equal(t, 1, prof.ValidLo)
	assert.Equal(t, 15, prof.ValidHi)

	for z := prof.ValidLo; z < prof.ValidHi; z++ {
		e1, e2, e3 := prof.E1[z], prof.E2[z], prof.E3[z]
		assert.Truef(t, e1 >= e2 && e2 >= e3, "z=%d: ordering violated (%g,%g,%g)", z, e1, e2, e3)
		assert.GreaterOrEqualf(t, e3, -1e-9, "z=%d: tensor not PSD", z)
	}
}

func TestComputeEigenvalues_FlatVolume(t *testing.T) {
	// A constant volume has zero gradient and curvature everywhere:
	// the tensor vanishes and all eigenvalues are (near) zero. That is
	// a valid isotropic outcome, not an error.
	eng, err := Configure(Window{3, 3, 3}, 0.2)
	require.NoError(t, err)

	block, _ := volume.New(3, 3, 10)
	block.Fill(7)

	prof, err := eng.ComputeEigenvalues(block)
	require.NoError(t, err)
	for z := prof.ValidLo; z < prof.ValidHi; z++ {
		for _, e := range []float64{prof.E1[z], prof.E2[z], prof.E3[z]} {
			assert.InDeltaf(t, 0, e, 1e-9, "z=%d", z)
		}
	}
}

func TestProfileStreams_Names(t *testing.T) {
	eng, err := Configure(Window{3, 3, 3}, 0.2)
	require.NoError(t, err)

	block, _ := volume.New(3, 3, 8)
	coef, err := eng.ComputeCoefficients(block)
	require.NoError(t, err)
	eigen, err := eng.ComputeEigenvalues(block)
	require.NoError(t, err)

	for i, name := range CoefficientNames {
		s, ok := coef.Stream(name)
		require.Truef(t, ok, "missing stream %s", name)
		assert.Same(t, &coef.R[i][0], &s[0], "stream %s must alias r%d", name, i)
	}
	for _, name := range EigenNames {
		_, ok := eigen.Stream(name)
		require.Truef(t, ok, "missing stream %s", name)
	}

	_, ok := coef.Stream("r10")
	assert.False(t, ok)
	_, ok = eigen.Stream("e4")
	assert.False(t, ok)
}
