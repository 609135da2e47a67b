// Package monitor provides QC output for attribute runs: PNG plots of
// kernels and eigenvalue profiles, and a static HTML report of
// eigenvalue distributions.
package monitor

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/seisattr/internal/lpa"
	"github.com/banshee-data/seisattr/internal/volume"
)

// kernelSlice adapts the central z-slice of a kernel block to the
// heat map grid interface.
type kernelSlice struct {
	b *volume.Block
	z int
}

func (k kernelSlice) Dims() (int, int)   { return k.b.NX, k.b.NY }
func (k kernelSlice) X(c int) float64    { return float64(c) - float64(k.b.NX-1)/2 }
func (k kernelSlice) Y(r int) float64    { return float64(r) - float64(k.b.NY-1)/2 }
func (k kernelSlice) Z(c, r int) float64 { return k.b.At(c, r, k.z) }

// PlotKernelSlices renders the central z-slice of each deconvolution
// kernel as a heat map PNG under dir, one file per coefficient
// (kernel_r0.png .. kernel_r9.png). Useful for eyeballing that the
// weighting and monomial structure look sane for a configuration.
func PlotKernelSlices(ks *lpa.KernelSet, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create plot directory: %w", err)
	}

	for i, name := range lpa.CoefficientNames {
		k := ks.Kernel(i)

		p := plot.New()
		p.Title.Text = fmt.Sprintf("kernel %s (window %dx%dx%d, sigma %g, z-slice %d)",
			name, k.NX, k.NY, k.NZ, ks.Sigma, k.NZ/2)
		p.X.Label.Text = "inline offset"
		p.Y.Label.Text = "crossline offset"

		hm := plotter.NewHeatMap(kernelSlice{b: k, z: k.NZ / 2}, palette.Heat(64, 1))
		p.Add(hm)

		file := filepath.Join(dir, fmt.Sprintf("kernel_%s.png", name))
		if err := p.Save(6*vg.Inch, 6*vg.Inch, file); err != nil {
			return fmt.Errorf("failed to save %s: %w", file, err)
		}
	}
	return nil
}

// PlotEigenProfile renders the three eigenvalue streams of one trace
// as a line plot PNG. Only the valid z-range is drawn.
func PlotEigenProfile(prof *lpa.EigenProfile, file string) error {
	p := plot.New()
	p.Title.Text = "orientation tensor eigenvalues"
	p.X.Label.Text = "z sample"
	p.Y.Label.Text = "eigenvalue"

	series := []struct {
		name string
		data []float64
	}{
		{"e1", prof.E1},
		{"e2", prof.E2},
		{"e3", prof.E3},
	}
	for i, s := range series {
		pts := make(plotter.XYs, 0, prof.ValidHi-prof.ValidLo)
		for z := prof.ValidLo; z < prof.ValidHi; z++ {
			pts = append(pts, plotter.XY{X: float64(z), Y: s.data[z]})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to build %s line: %w", s.name, err)
		}
		line.Width = vg.Points(1)
		line.Color = plotter.DefaultLineStyle.Color
		line.Dashes = plotutil.DefaultDashes[i%len(plotutil.DefaultDashes)]
		p.Add(line)
		p.Legend.Add(s.name, line)
	}

	if err := p.Save(14*vg.Inch, 6*vg.Inch, file); err != nil {
		return fmt.Errorf("failed to save %s: %w", file, err)
	}
	return nil
}
