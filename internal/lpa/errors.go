package lpa

import "fmt"

// ConfigError reports invalid window extents or an invalid weight
// factor. It is returned at Configure time, before any matrix work;
// no processing is possible after it.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Reason
}

// SingularError reports that the weighted normal-equations matrix is
// not invertible, which means the window geometry or weighting is
// degenerate. It is detected once at Configure time, never during data
// processing.
type SingularError struct {
	Window Window
	Sigma  float64
	Cause  error
}

func (e *SingularError) Error() string {
	return fmt.Sprintf("normal equations singular for window (%d,%d,%d), sigma %g: %v",
		e.Window.NX, e.Window.NY, e.Window.NZ, e.Sigma, e.Cause)
}

func (e *SingularError) Unwrap() error { return e.Cause }

// ShapeError reports a data block too small for the configured kernel.
// The call that produced it yields no output at all.
type ShapeError struct {
	BlockNX, BlockNY, BlockNZ    int
	KernelNX, KernelNY, KernelNZ int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("block (%d,%d,%d) smaller than kernel (%d,%d,%d)",
		e.BlockNX, e.BlockNY, e.BlockNZ, e.KernelNX, e.KernelNY, e.KernelNZ)
}
