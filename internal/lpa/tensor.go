package lpa

import "math"

// tensorEpsilon is the threshold below which off-diagonal tensor
// energy is treated as zero, so near-diagonal tensors take the exact
// path instead of the trigonometric one.
const tensorEpsilon = 1e-30

// Tensor is a symmetric 3×3 orientation tensor in packed form.
type Tensor struct {
	XX, YY, ZZ float64
	XY, XZ, YZ float64
}

// AssembleTensor builds the orientation tensor from the polynomial
// coefficients r1..r9 (r0, the local mean, carries no orientation and
// is unused):
//
//	T = Ah·Ahᵀ + γ·g·gᵀ
//
// with the curvature block Ah = [[r4, r7/2, r8/2], [r7/2, r5, r9/2],
// [r8/2, r9/2, r6]] and gradient g = [r1, r2, r3]. Both terms are
// positive semi-definite (a Gram matrix and a scaled outer product),
// so T is PSD by construction and its eigenvalues are real and
// non-negative up to floating error.
func AssembleTensor(r *[coeffCount]float64, gamma float64) Tensor {
	a11, a22, a33 := r[4], r[5], r[6]
	a12, a13, a23 := r[7]/2, r[8]/2, r[9]/2
	g1, g2, g3 := r[1], r[2], r[3]

	// Ah is symmetric, so Ah·Ahᵀ = Ah².
	return Tensor{
		XX: a11*a11 + a12*a12 + a13*a13 + gamma*g1*g1,
		YY: a12*a12 + a22*a22 + a23*a23 + gamma*g2*g2,
		ZZ: a13*a13 + a23*a23 + a33*a33 + gamma*g3*g3,
		XY: a11*a12 + a12*a22 + a13*a23 + gamma*g1*g2,
		XZ: a11*a13 + a12*a23 + a13*a33 + gamma*g1*g3,
		YZ: a12*a13 + a22*a23 + a23*a33 + gamma*g2*g3,
	}
}

// EigenvaluesDescending returns the three eigenvalues of the symmetric
// tensor sorted e1 ≥ e2 ≥ e3, computed with the closed-form
// trigonometric solve for symmetric 3×3 matrices.
//
// A near-zero tensor legitimately yields a near-zero triple (isotropic
// or flat local structure); there is no error path for well-formed
// input. Near-degenerate tensors are handled by clamping the acos
// argument into [−1, 1].
func (t Tensor) EigenvaluesDescending() (e1, e2, e3 float64) {
	offDiag := t.XY*t.XY + t.XZ*t.XZ + t.YZ*t.YZ
	if offDiag < tensorEpsilon {
		// Diagonal tensor: the eigenvalues are the diagonal entries.
		return sort3Desc(t.XX, t.YY, t.ZZ)
	}

	q := (t.XX + t.YY + t.ZZ) / 3
	p2 := (t.XX-q)*(t.XX-q) + (t.YY-q)*(t.YY-q) + (t.ZZ-q)*(t.ZZ-q) + 2*offDiag
	p := math.Sqrt(p2 / 6)

	// B = (T − q·I)/p has eigenvalues in [−2, 2]; det(B)/2 ∈ [−1, 1]
	// up to rounding.
	bxx := (t.XX - q) / p
	byy := (t.YY - q) / p
	bzz := (t.ZZ - q) / p
	bxy := t.XY / p
	bxz := t.XZ / p
	byz := t.YZ / p

	detB := bxx*(byy*bzz-byz*byz) - bxy*(bxy*bzz-byz*bxz) + bxz*(bxy*byz-byy*bxz)
	r := detB / 2
	if r < -1 {
		r = -1
	} else if r > 1 {
		r = 1
	}

	phi := math.Acos(r) / 3
	e1 = q + 2*p*math.Cos(phi)
	e3 = q + 2*p*math.Cos(phi+2*math.Pi/3)
	e2 = 3*q - e1 - e3 // trace identity
	return e1, e2, e3
}

// sort3Desc orders three values descending without allocation.
func sort3Desc(a, b, c float64) (float64, float64, float64) {
	if a < b {
		a, b = b, a
	}
	if b < c {
		b, c = c, b
	}
	if a < b {
		a, b = b, a
	}
	return a, b, c
}
