package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/seisattr/internal/lpa"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	inl, crl := cfg.GetStepOut()
	if inl != 1 || crl != 1 {
		t.Errorf("default step-out = (%d,%d), want (1,1)", inl, crl)
	}
	lo, hi := cfg.GetZMargin()
	if lo != -1 || hi != 1 {
		t.Errorf("default z margin = [%d,%d], want [-1,1]", lo, hi)
	}
	if wf := cfg.GetWeightFactor(); wf != 0.2 {
		t.Errorf("default weight factor = %g, want 0.2", wf)
	}
	if out := cfg.GetOutput(); out != OutputEigenvalues {
		t.Errorf("default output = %q, want %q", out, OutputEigenvalues)
	}

	w, err := cfg.Window()
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if diff := cmp.Diff(lpa.Window{NX: 3, NY: 3, NZ: 3}, w); diff != "" {
		t.Errorf("default window mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, `{
		"step_out_inline": 2,
		"step_out_crossline": 1,
		"z_margin_lo": -3,
		"z_margin_hi": 3,
		"weight_factor": 0.5,
		"output": "coef",
		"workers": 4
	}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	w, err := cfg.Window()
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if diff := cmp.Diff(lpa.Window{NX: 5, NY: 3, NZ: 7}, w); diff != "" {
		t.Errorf("window mismatch (-want +got):\n%s", diff)
	}
	if cfg.GetWeightFactor() != 0.5 {
		t.Errorf("weight factor = %g, want 0.5", cfg.GetWeightFactor())
	}
	if cfg.GetOutput() != OutputCoefficients {
		t.Errorf("output = %q, want coef", cfg.GetOutput())
	}
	if cfg.GetWorkers() != 4 {
		t.Errorf("workers = %d, want 4", cfg.GetWorkers())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_Rejections(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "tuning.yaml")); err == nil {
		t.Error("expected rejection of non-JSON extension")
	}
	if _, err := Load(writeConfig(t, `{"weight_faktor": 0.3}`)); err == nil {
		t.Error("expected rejection of unknown field")
	}
	if _, err := Load(writeConfig(t, `not json`)); err == nil {
		t.Error("expected rejection of malformed JSON")
	}
}

func TestValidate_Rejections(t *testing.T) {
	bad := "spectrum"
	cfg := &Tuning{Output: &bad}
	if err := cfg.Validate(); err == nil {
		t.Error("expected rejection of unknown output variant")
	}

	lo, hi := 2, -2
	cfg = &Tuning{ZMarginLo: &lo, ZMarginHi: &hi}
	if err := cfg.Validate(); err == nil {
		t.Error("expected rejection of empty z margin")
	}

	neg := -1
	cfg = &Tuning{StepOutInline: &neg}
	if err := cfg.Validate(); err == nil {
		t.Error("expected rejection of negative step-out")
	}
}
