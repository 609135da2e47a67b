// Package trace fans the attribute engine out across every trace of a
// survey volume.
//
// Each (inline, crossline) position is an independent computation over
// an immutable kernel set, so the work is embarrassingly parallel: a
// fixed pool of workers pulls trace positions from a channel, each
// worker owning its own scratch window so the hot path takes no locks.
package trace

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/banshee-data/seisattr/internal/lpa"
	"github.com/banshee-data/seisattr/internal/volume"
)

// Runner applies a configured engine to whole survey volumes.
type Runner struct {
	Engine *lpa.Engine

	// Workers is the pool size; 0 or negative means runtime.NumCPU().
	Workers int
}

// CoefficientResult holds the ten coefficient volumes r0..r9 for a
// survey. Samples outside the interior trace region or the valid
// z-range are zero-filled and carry no contract.
type CoefficientResult struct {
	R                [10]*volume.Block
	MarginX, MarginY int
	ValidLo, ValidHi int
}

// Volumes returns the result volumes keyed by output name (r0..r9).
func (r *CoefficientResult) Volumes() map[string]*volume.Block {
	out := make(map[string]*volume.Block, len(r.R))
	for i, name := range lpa.CoefficientNames {
		out[name] = r.R[i]
	}
	return out
}

// EigenResult holds the three eigenvalue volumes e1 ≥ e2 ≥ e3 for a
// survey, with the same contract as CoefficientResult.
type EigenResult struct {
	E1, E2, E3       *volume.Block
	MarginX, MarginY int
	ValidLo, ValidHi int
}

// Volumes returns the result volumes keyed by output name (e1..e3).
func (r *EigenResult) Volumes() map[string]*volume.Block {
	return map[string]*volume.Block{"e1": r.E1, "e2": r.E2, "e3": r.E3}
}

func (r *Runner) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.NumCPU()
}

// tracePos identifies one output trace.
type tracePos struct{ ix, iy int }

// checkSurvey validates the survey against the configured window and
// returns the interior margins.
func (r *Runner) checkSurvey(survey *volume.Block) (mx, my int, err error) {
	w := r.Engine.Window()
	if survey.NX < w.NX || survey.NY < w.NY || survey.NZ < w.NZ {
		return 0, 0, &lpa.ShapeError{
			BlockNX: survey.NX, BlockNY: survey.NY, BlockNZ: survey.NZ,
			KernelNX: w.NX, KernelNY: w.NY, KernelNZ: w.NZ,
		}
	}
	return w.NX / 2, w.NY / 2, nil
}

// run walks every interior trace with the worker pool. emit is called
// once per trace with the worker's scratch window holding that trace's
// data; it must copy whatever it keeps.
func (r *Runner) run(survey *volume.Block, emit func(pos tracePos, win *volume.Block) error) error {
	mx, my, err := r.checkSurvey(survey)
	if err != nil {
		return err
	}
	w := r.Engine.Window()

	jobs := make(chan tracePos)
	errOnce := make(chan error, 1)
	record := func(err error) {
		select {
		case errOnce <- err:
		default:
		}
	}
	var wg sync.WaitGroup

	for n := 0; n < r.workers(); n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scratch, err := volume.New(w.NX, w.NY, survey.NZ)
			if err != nil {
				record(err)
			}
			// After a failure keep draining jobs so the producer never
			// blocks on a dead pool.
			failed := err != nil
			for pos := range jobs {
				if failed {
					continue
				}
				if err := survey.CopyWindow(scratch, pos.ix-mx, pos.iy-my, 0); err != nil {
					record(fmt.Errorf("trace (%d,%d): %w", pos.ix, pos.iy, err))
					failed = true
					continue
				}
				if err := emit(pos, scratch); err != nil {
					record(fmt.Errorf("trace (%d,%d): %w", pos.ix, pos.iy, err))
					failed = true
				}
			}
		}()
	}

	for ix := mx; ix < survey.NX-mx; ix++ {
		for iy := my; iy < survey.NY-my; iy++ {
			jobs <- tracePos{ix: ix, iy: iy}
		}
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errOnce:
		return err
	default:
		return nil
	}
}

// Coefficients computes the ten coefficient volumes for the survey.
func (r *Runner) Coefficients(survey *volume.Block) (*CoefficientResult, error) {
	mx, my, err := r.checkSurvey(survey)
	if err != nil {
		return nil, err
	}
	hz := r.Engine.Window().NZ / 2
	res := &CoefficientResult{
		MarginX: mx, MarginY: my,
		ValidLo: hz, ValidHi: survey.NZ - hz,
	}
	for i := range res.R {
		if res.R[i], err = volume.New(survey.NX, survey.NY, survey.NZ); err != nil {
			return nil, err
		}
	}

	err = r.run(survey, func(pos tracePos, win *volume.Block) error {
		prof, err := r.Engine.ComputeCoefficients(win)
		if err != nil {
			return err
		}
		// Workers write disjoint traces, so no locking is needed.
		for i := range res.R {
			dst := res.R[i].Trace(pos.ix, pos.iy)
			copy(dst[prof.ValidLo:prof.ValidHi], prof.R[i][prof.ValidLo:prof.ValidHi])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Eigenvalues computes the three eigenvalue volumes for the survey.
func (r *Runner) Eigenvalues(survey *volume.Block) (*EigenResult, error) {
	mx, my, err := r.checkSurvey(survey)
	if err != nil {
		return nil, err
	}
	hz := r.Engine.Window().NZ / 2
	res := &EigenResult{
		MarginX: mx, MarginY: my,
		ValidLo: hz, ValidHi: survey.NZ - hz,
	}
	if res.E1, err = volume.New(survey.NX, survey.NY, survey.NZ); err != nil {
		return nil, err
	}
	if res.E2, err = volume.New(survey.NX, survey.NY, survey.NZ); err != nil {
		return nil, err
	}
	if res.E3, err = volume.New(survey.NX, survey.NY, survey.NZ); err != nil {
		return nil, err
	}

	err = r.run(survey, func(pos tracePos, win *volume.Block) error {
		prof, err := r.Engine.ComputeEigenvalues(win)
		if err != nil {
			return err
		}
		copy(res.E1.Trace(pos.ix, pos.iy)[prof.ValidLo:prof.ValidHi], prof.E1[prof.ValidLo:prof.ValidHi])
		copy(res.E2.Trace(pos.ix, pos.iy)[prof.ValidLo:prof.ValidHi], prof.E2[prof.ValidLo:prof.ValidHi])
		copy(res.E3.Trace(pos.ix, pos.iy)[prof.ValidLo:prof.ValidHi], prof.E3[prof.ValidLo:prof.ValidHi])
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
