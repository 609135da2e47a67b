// Package config loads driver tuning parameters from JSON.
//
// The schema uses pointer fields so a partial file only overrides what
// it names; Get* accessors supply the defaults. Defaults match the
// host plugin's: step-out (1,1), symmetric z margin [-1,1], weight
// factor 0.2.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/seisattr/internal/lpa"
)

// Output variant identifiers accepted by GetOutput.
const (
	OutputCoefficients = "coef"
	OutputEigenvalues  = "eigen"
)

// Tuning is the root driver configuration. All fields are optional.
type Tuning struct {
	// Window geometry
	StepOutInline    *int `json:"step_out_inline,omitempty"`
	StepOutCrossline *int `json:"step_out_crossline,omitempty"`
	ZMarginLo        *int `json:"z_margin_lo,omitempty"` // inclusive, typically negative
	ZMarginHi        *int `json:"z_margin_hi,omitempty"` // inclusive

	// Fit parameters
	WeightFactor *float64 `json:"weight_factor,omitempty"`

	// Driver behaviour
	Output  *string `json:"output,omitempty"` // "coef" or "eigen"
	Workers *int    `json:"workers,omitempty"`
	DBPath  *string `json:"db_path,omitempty"`
	PlotDir *string `json:"plot_dir,omitempty"`
}

// Load reads a Tuning from a JSON file. Unknown fields are rejected so
// typos fail loudly rather than silently falling back to defaults.
func Load(path string) (*Tuning, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Tuning{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", cleanPath, err)
	}
	return cfg, nil
}

// GetStepOut returns the (inline, crossline) step-out.
func (c *Tuning) GetStepOut() (int, int) {
	inl, crl := 1, 1
	if c.StepOutInline != nil {
		inl = *c.StepOutInline
	}
	if c.StepOutCrossline != nil {
		crl = *c.StepOutCrossline
	}
	return inl, crl
}

// GetZMargin returns the inclusive z sample margin [lo, hi].
func (c *Tuning) GetZMargin() (int, int) {
	lo, hi := -1, 1
	if c.ZMarginLo != nil {
		lo = *c.ZMarginLo
	}
	if c.ZMarginHi != nil {
		hi = *c.ZMarginHi
	}
	return lo, hi
}

// GetWeightFactor returns the Gaussian weight factor.
func (c *Tuning) GetWeightFactor() float64 {
	if c.WeightFactor != nil {
		return *c.WeightFactor
	}
	return 0.2
}

// GetOutput returns the output variant, "coef" or "eigen".
func (c *Tuning) GetOutput() string {
	if c.Output != nil {
		return *c.Output
	}
	return OutputEigenvalues
}

// GetWorkers returns the worker pool size; 0 means one per CPU.
func (c *Tuning) GetWorkers() int {
	if c.Workers != nil {
		return *c.Workers
	}
	return 0
}

// GetDBPath returns the results database path; empty disables the
// run store.
func (c *Tuning) GetDBPath() string {
	if c.DBPath != nil {
		return *c.DBPath
	}
	return ""
}

// GetPlotDir returns the QC plot directory; empty disables plotting.
func (c *Tuning) GetPlotDir() string {
	if c.PlotDir != nil {
		return *c.PlotDir
	}
	return ""
}

// Window derives the analysis window from step-out and z margin.
func (c *Tuning) Window() (lpa.Window, error) {
	inl, crl := c.GetStepOut()
	lo, hi := c.GetZMargin()
	if inl < 0 || crl < 0 {
		return lpa.Window{}, fmt.Errorf("step-out must be non-negative, got (%d,%d)", inl, crl)
	}
	if hi < lo {
		return lpa.Window{}, fmt.Errorf("z margin [%d,%d] is empty", lo, hi)
	}
	return lpa.FromStepOut(inl, crl, lo, hi), nil
}

// Validate checks the output variant and window parameters without
// building kernels.
func (c *Tuning) Validate() error {
	if out := c.GetOutput(); out != OutputCoefficients && out != OutputEigenvalues {
		return fmt.Errorf("output must be %q or %q, got %q", OutputCoefficients, OutputEigenvalues, out)
	}
	_, err := c.Window()
	return err
}
