// Command seisattr is a reference driver for the LPA attribute engine.
//
// It stands in for the host plugin: it loads a survey volume from a
// raw file (or generates a synthetic one), runs the coefficient or
// eigenvalue attribute across every trace, writes the named output
// volumes as raw files and records the run in the local run store.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/banshee-data/seisattr/internal/attrdb"
	"github.com/banshee-data/seisattr/internal/config"
	"github.com/banshee-data/seisattr/internal/lpa"
	"github.com/banshee-data/seisattr/internal/monitor"
	"github.com/banshee-data/seisattr/internal/trace"
	"github.com/banshee-data/seisattr/internal/volume"
)

func main() {
	var (
		configPath = flag.String("config", "", "tuning config JSON (optional; defaults match the host plugin)")
		inputPath  = flag.String("input", "", "raw input volume file (little-endian)")
		inputNX    = flag.Int("nx", 0, "input volume inline extent")
		inputNY    = flag.Int("ny", 0, "input volume crossline extent")
		inputNZ    = flag.Int("nz", 0, "input volume z extent")
		format     = flag.String("format", string(volume.Float32LE), "raw sample format: float32le or float64le")
		outDir     = flag.String("out", "out", "directory for output volumes")
		synthetic  = flag.Bool("synthetic", false, "generate a synthetic dipping-layer volume instead of reading -input")
		listRuns   = flag.Bool("list-runs", false, "print recent runs from the run store and exit")
	)
	flag.Parse()

	cfg := &config.Tuning{}
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if *listRuns {
		printRuns(cfg.GetDBPath())
		return
	}

	survey, err := loadSurvey(*inputPath, *inputNX, *inputNY, *inputNZ, volume.SampleFormat(*format), *synthetic)
	if err != nil {
		log.Fatalf("Failed to load survey: %v", err)
	}
	log.Printf("Survey loaded: %dx%dx%d samples", survey.NX, survey.NY, survey.NZ)

	window, err := cfg.Window()
	if err != nil {
		log.Fatalf("Invalid window: %v", err)
	}
	engine, err := lpa.Configure(window, cfg.GetWeightFactor())
	if err != nil {
		log.Fatalf("Failed to configure engine: %v", err)
	}
	log.Printf("Engine configured: window %dx%dx%d, weight factor %g, gamma %g",
		window.NX, window.NY, window.NZ, engine.Sigma(), engine.Gamma())

	runner := &trace.Runner{Engine: engine, Workers: cfg.GetWorkers()}

	started := time.Now()
	var outputs map[string]*volume.Block
	var margins struct{ mx, my, lo, hi int }
	var eigenRes *trace.EigenResult

	switch cfg.GetOutput() {
	case config.OutputCoefficients:
		res, err := runner.Coefficients(survey)
		if err != nil {
			log.Fatalf("Attribute run failed: %v", err)
		}
		outputs = res.Volumes()
		margins.mx, margins.my, margins.lo, margins.hi = res.MarginX, res.MarginY, res.ValidLo, res.ValidHi
	case config.OutputEigenvalues:
		res, err := runner.Eigenvalues(survey)
		if err != nil {
			log.Fatalf("Attribute run failed: %v", err)
		}
		eigenRes = res
		outputs = res.Volumes()
		margins.mx, margins.my, margins.lo, margins.hi = res.MarginX, res.MarginY, res.ValidLo, res.ValidHi
	}
	elapsed := time.Since(started)
	log.Printf("Attribute run complete in %s (%d outputs)", elapsed, len(outputs))

	if err := writeOutputs(*outDir, outputs, volume.SampleFormat(*format)); err != nil {
		log.Fatalf("Failed to write outputs: %v", err)
	}

	if dir := cfg.GetPlotDir(); dir != "" {
		if err := monitor.PlotKernelSlices(engine.Kernels(), dir); err != nil {
			log.Printf("QC kernel plots failed: %v", err)
		}
		if eigenRes != nil {
			report := filepath.Join(dir, "eigen_report.html")
			if err := monitor.WriteEigenReport(eigenRes, "seisattr eigenvalue run", report); err != nil {
				log.Printf("QC report failed: %v", err)
			} else {
				log.Printf("QC report written to %s", report)
			}
		}
	}

	if dbPath := cfg.GetDBPath(); dbPath != "" {
		recordRun(dbPath, cfg, engine, survey, outputs, margins.mx, margins.my, margins.lo, margins.hi, started, elapsed)
	}
}

// loadSurvey reads the input volume or synthesises a dipping-layer
// model useful for smoke-testing orientation attributes.
func loadSurvey(path string, nx, ny, nz int, format volume.SampleFormat, synthetic bool) (*volume.Block, error) {
	if synthetic {
		if nx == 0 {
			nx, ny, nz = 21, 21, 101
		}
		return syntheticSurvey(nx, ny, nz), nil
	}
	if path == "" {
		return nil, fmt.Errorf("either -input or -synthetic is required")
	}
	if nx < 1 || ny < 1 || nz < 1 {
		return nil, fmt.Errorf("-nx, -ny and -nz are required with -input")
	}
	return volume.ReadRaw(path, nx, ny, nz, format)
}

// syntheticSurvey builds dipping sine layers with a little noise.
func syntheticSurvey(nx, ny, nz int) *volume.Block {
	b, _ := volume.New(nx, ny, nz)
	rng := rand.New(rand.NewSource(1))
	for ix := 0; ix < nx; ix++ {
		for iy := 0; iy < ny; iy++ {
			for iz := 0; iz < nz; iz++ {
				phase := float64(iz) - 0.3*float64(ix) - 0.15*float64(iy)
				b.Set(ix, iy, iz, math.Sin(phase/3)+0.05*rng.NormFloat64())
			}
		}
	}
	return b
}

// writeOutputs writes one raw file per named output volume.
func writeOutputs(dir string, outputs map[string]*volume.Block, format volume.SampleFormat) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	names := make([]string, 0, len(outputs))
	for name := range outputs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		file := filepath.Join(dir, name+".bin")
		if err := volume.WriteRaw(file, outputs[name], format); err != nil {
			return err
		}
		log.Printf("Wrote %s", file)
	}
	return nil
}

// recordRun stores run metadata and per-output summary statistics.
func recordRun(dbPath string, cfg *config.Tuning, engine *lpa.Engine, survey *volume.Block,
	outputs map[string]*volume.Block, mx, my, lo, hi int, started time.Time, elapsed time.Duration) {

	db, err := attrdb.Open(dbPath)
	if err != nil {
		log.Printf("Run store unavailable: %v", err)
		return
	}
	defer db.Close()

	w := engine.Window()
	run := attrdb.Run{
		RunID:        attrdb.NewRunID(),
		Output:       cfg.GetOutput(),
		NX:           w.NX,
		NY:           w.NY,
		NZ:           w.NZ,
		WeightFactor: engine.Sigma(),
		Gamma:        engine.Gamma(),
		SurveyNX:     survey.NX,
		SurveyNY:     survey.NY,
		SurveyNZ:     survey.NZ,
		Workers:      cfg.GetWorkers(),
		StartedAt:    started.UTC(),
		DurationMs:   elapsed.Milliseconds(),
	}
	if err := db.RecordRun(run); err != nil {
		log.Printf("Failed to record run: %v", err)
		return
	}

	stats := make([]attrdb.OutputStat, 0, len(outputs))
	for name, vol := range outputs {
		stats = append(stats, summarise(run.RunID, name, vol, mx, my, lo, hi))
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	if err := db.RecordOutputStats(stats); err != nil {
		log.Printf("Failed to record output stats: %v", err)
		return
	}
	log.Printf("Run %s recorded in %s", run.RunID, dbPath)
}

// summarise reduces the defined region of one output volume.
func summarise(runID, name string, vol *volume.Block, mx, my, lo, hi int) attrdb.OutputStat {
	s := attrdb.OutputStat{RunID: runID, Name: name, Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for ix := mx; ix < vol.NX-mx; ix++ {
		for iy := my; iy < vol.NY-my; iy++ {
			tr := vol.Trace(ix, iy)
			for z := lo; z < hi; z++ {
				v := tr[z]
				s.Min = math.Min(s.Min, v)
				s.Max = math.Max(s.Max, v)
				sum += v
				s.Samples++
			}
		}
	}
	if s.Samples > 0 {
		s.Mean = sum / float64(s.Samples)
	} else {
		s.Min, s.Max = 0, 0
	}
	return s
}

// printRuns lists recent runs from the run store.
func printRuns(dbPath string) {
	if dbPath == "" {
		log.Fatal("No db_path configured; nothing to list")
	}
	db, err := attrdb.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open run store: %v", err)
	}
	defer db.Close()

	runs, err := db.ListRuns(20)
	if err != nil {
		log.Fatalf("Failed to list runs: %v", err)
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  %-5s  window %dx%dx%d  sigma %.3g  survey %dx%dx%d  %dms\n",
			r.StartedAt.Format(time.RFC3339), r.RunID, r.Output,
			r.NX, r.NY, r.NZ, r.WeightFactor,
			r.SurveyNX, r.SurveyNY, r.SurveyNZ, r.DurationMs)
	}
}
