// Package volume provides the dense 3D scalar block type shared by the
// attribute engine, the trace runner and the QC tooling.
//
// Blocks are stored in a single flat slice in x-major order with z
// varying fastest, so each (x,y) trace is a contiguous run of NZ
// samples. This matches the sample order of the survey transport and
// keeps the correlation inner loop sequential in memory.
package volume

import "fmt"

// Block is a dense 3D array of float64 samples with extents NX, NY, NZ.
// Index layout: Data[(ix*NY+iy)*NZ+iz].
type Block struct {
	NX, NY, NZ int
	Data       []float64
}

// New allocates a zero-filled block with the given extents.
func New(nx, ny, nz int) (*Block, error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("block extents must be positive, got (%d,%d,%d)", nx, ny, nz)
	}
	return &Block{
		NX:   nx,
		NY:   ny,
		NZ:   nz,
		Data: make([]float64, nx*ny*nz),
	}, nil
}

// FromSlice wraps an existing flat slice as a block without copying.
// The slice length must equal nx*ny*nz exactly.
func FromSlice(nx, ny, nz int, data []float64) (*Block, error) {
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("block extents must be positive, got (%d,%d,%d)", nx, ny, nz)
	}
	if len(data) != nx*ny*nz {
		return nil, fmt.Errorf("slice length %d does not match extents (%d,%d,%d) = %d samples",
			len(data), nx, ny, nz, nx*ny*nz)
	}
	return &Block{NX: nx, NY: ny, NZ: nz, Data: data}, nil
}

// Index returns the flat offset of sample (ix,iy,iz). No bounds check.
func (b *Block) Index(ix, iy, iz int) int {
	return (ix*b.NY+iy)*b.NZ + iz
}

// At returns the sample at (ix,iy,iz). No bounds check.
func (b *Block) At(ix, iy, iz int) float64 {
	return b.Data[(ix*b.NY+iy)*b.NZ+iz]
}

// Set stores v at (ix,iy,iz). No bounds check.
func (b *Block) Set(ix, iy, iz int, v float64) {
	b.Data[(ix*b.NY+iy)*b.NZ+iz] = v
}

// Trace returns the contiguous z-trace at (ix,iy) as a slice view.
// Writes through the returned slice modify the block.
func (b *Block) Trace(ix, iy int) []float64 {
	off := (ix*b.NY + iy) * b.NZ
	return b.Data[off : off+b.NZ]
}

// Len returns the total sample count.
func (b *Block) Len() int { return len(b.Data) }

// Fill sets every sample to v.
func (b *Block) Fill(v float64) {
	for i := range b.Data {
		b.Data[i] = v
	}
}

// CopyWindow copies the sub-block of extents (nx,ny,nz) whose corner is
// at (x0,y0,z0) into dst, which must already have those extents. The
// window must lie entirely inside b.
func (b *Block) CopyWindow(dst *Block, x0, y0, z0 int) error {
	if dst.NX+x0 > b.NX || dst.NY+y0 > b.NY || dst.NZ+z0 > b.NZ || x0 < 0 || y0 < 0 || z0 < 0 {
		return fmt.Errorf("window (%d,%d,%d)+(%d,%d,%d) outside block (%d,%d,%d)",
			x0, y0, z0, dst.NX, dst.NY, dst.NZ, b.NX, b.NY, b.NZ)
	}
	for ix := 0; ix < dst.NX; ix++ {
		for iy := 0; iy < dst.NY; iy++ {
			src := b.Data[b.Index(x0+ix, y0+iy, z0) : b.Index(x0+ix, y0+iy, z0)+dst.NZ]
			copy(dst.Trace(ix, iy), src)
		}
	}
	return nil
}
