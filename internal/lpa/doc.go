// Package lpa implements local polynomial approximation attributes for
// 3D scalar volumes.
//
// At every sample of a trace the engine fits a 2nd-order polynomial
//
//	r0 + r1·x + r2·y + r3·z + r4·x² + r5·y² + r6·z² + r7·xy + r8·xz + r9·yz
//
// to a small Gaussian-weighted window around the sample, with x, y, z
// relative to the analysis location. The fit is not performed per
// sample: a one-time weighted least-squares solve turns the window
// geometry into ten deconvolution kernels, and each coefficient is then
// a single correlation of the data with its kernel.
//
// From the coefficients an orientation tensor after Farnebäck is
// assembled, and its sorted eigenvalues (e1 ≥ e2 ≥ e3) describe local
// coherence and dominant orientation.
//
// Responsibilities: kernel construction, centre-trace correlation,
// tensor assembly and the symmetric 3×3 eigensolve, behind a
// Configure/Compute request-response API. The engine owns no I/O, no
// loop and no mutable shared state beyond the immutable kernel cache;
// streaming transport and parameter negotiation belong to the host.
package lpa
