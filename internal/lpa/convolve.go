package lpa

import (
	"fmt"

	"github.com/banshee-data/seisattr/internal/volume"
)

// CorrelateCenterTrace applies one deconvolution kernel to the centre
// (x,y) column of block, writing one value per z sample into dst
// (len(dst) must be block.NZ).
//
// This is deliberately not a full 3D convolution: output is produced
// only along z at the block's fixed centre trace, which is the only
// position the attribute pipeline ever reads. That turns
// O(X·Y·Z·Kx·Ky·Kz) work into O(Z·Kx·Ky·Kz) per block.
//
// Kernel indices are traversed in reverse (correlation with a flipped
// kernel) to match convolution convention. Output is defined for z in
// [⌊Kz/2⌋, Z−⌊Kz/2⌋); entries outside that range are left untouched
// and carry no contract.
func CorrelateCenterTrace(block, kernel *volume.Block, dst []float64) error {
	if block.NX < kernel.NX || block.NY < kernel.NY || block.NZ < kernel.NZ {
		return &ShapeError{
			BlockNX: block.NX, BlockNY: block.NY, BlockNZ: block.NZ,
			KernelNX: kernel.NX, KernelNY: kernel.NY, KernelNZ: kernel.NZ,
		}
	}
	if len(dst) != block.NZ {
		return fmt.Errorf("dst length %d does not match block z extent %d", len(dst), block.NZ)
	}

	kx, ky, kz := kernel.NX, kernel.NY, kernel.NZ
	// Anchor the kernel's x,y support at the block's own centre trace.
	x0 := block.NX/2 - kx/2
	y0 := block.NY/2 - ky/2
	hz := kz / 2

	for z := hz; z < block.NZ-hz; z++ {
		var sum float64
		for i := 0; i < kx; i++ {
			for j := 0; j < ky; j++ {
				bOff := block.Index(x0+i, y0+j, z-hz)
				// Flipped kernel row: walk (kx−1−i, ky−1−j, ·)
				// backwards along z while the data runs forwards.
				kOff := kernel.Index(kx-1-i, ky-1-j, kz-1)
				for k := 0; k < kz; k++ {
					sum += kernel.Data[kOff-k] * block.Data[bOff+k]
				}
			}
		}
		dst[z] = sum
	}
	return nil
}
