package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"
	"time"

	"harpoon/bvh"
	"harpoon/debugz"
	"harpoon/publish"
	"harpoon/rendermetrics"
	"harpoon/rgbimage"
	"harpoon/scene"
	"harpoon/scenepack"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/time/rate"
	"golang.org/x/xerrors"
)

var (
	sceneName   string
	sceneFile   string
	outputRows  int
	outputCols  int
	samples     int
	maxDepth    int
	parallelism int
	chunkRows   int
	seed        int64
	outputFile  string
	pngDest     string
	resume      bool

	gcsCredentials string
	debugListen    string
	cpuprofile     string
	memprofile     string

	monitoring           bool
	monitoringProject    string
	monitoringTraceRatio float64
	enableProfiling      bool
)

var cmdRender = &cobra.Command{
	Use:   "render",
	Short: "Render a scene into a sample accumulator",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dumpFlags()

		if cpuprofile != "" {
			f, err := os.Create(cpuprofile)
			if err != nil {
				return fmt.Errorf("while creating CPU profile: %w", err)
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				return fmt.Errorf("while starting CPU profile: %w", err)
			}
			defer pprof.StopCPUProfile()
		}

		if err := doRender(); err != nil {
			return err
		}

		if memprofile != "" {
			f, err := os.Create(memprofile)
			if err != nil {
				return fmt.Errorf("while creating memory profile: %w", err)
			}
			defer f.Close()
			runtime.GC()
			if err := pprof.WriteHeapProfile(f); err != nil {
				return fmt.Errorf("while writing memory profile: %w", err)
			}
		}

		return nil
	},
}

func init() {
	f := cmdRender.Flags()
	f.StringVar(&sceneName, "scene", "bouncing-spheres", "Built-in scene to render.  See `renderer scenes`.")
	f.StringVar(&sceneFile, "scene-file", "", "JSON scene file to render.  Overrides --scene.")
	f.IntVar(&outputRows, "rows", 0, "Output image rows.  Zero derives rows from --cols and the scene's aspect ratio.")
	f.IntVar(&outputCols, "cols", 400, "Output image columns")
	f.IntVar(&samples, "samples", 100, "Number of samples to collect from each pixel")
	f.IntVar(&maxDepth, "max-depth", 50, "Maximum number of bounces to consider")
	f.IntVar(&parallelism, "parallelism", runtime.NumCPU(), "Number of chunks to render concurrently")
	f.IntVar(&chunkRows, "chunk-rows", 0, "Rows per unit of work.  Zero splits the image evenly across workers.")
	f.Int64Var(&seed, "seed", 1, "Seed for scene construction and sampling")
	f.StringVar(&outputFile, "output", "output.harpoon", "Output sample accumulator")
	f.StringVar(&pngDest, "png", "", "If set, also write a PNG here.  Accepts local paths and gs://bucket/object.")
	f.BoolVar(&resume, "resume", false, "Should we re-open the output file to add more samples?")

	f.StringVar(&gcsCredentials, "gcs-credentials", "", "Service account key file for GCS.  Empty uses Application Default Credentials.")
	f.StringVar(&debugListen, "debug-listen", "", "If set, serve debug endpoints at this address:port.")
	f.StringVar(&cpuprofile, "cpuprofile", "", "Write cpu profile to `file`")
	f.StringVar(&memprofile, "memprofile", "", "Write memory profile to `file`")

	f.BoolVar(&monitoring, "monitoring", false, "Enable monitoring?")
	f.StringVar(&monitoringProject, "monitoring-project", "", "Override project used for monitoring integration.  If not specified, the project associated with Application Default Credentials is used.")
	f.Float64Var(&monitoringTraceRatio, "monitoring-trace-ratio", 0.01, "What ratio of traces should be exported?")
	f.BoolVar(&enableProfiling, "enable-profiling", false, "Enable Cloud Profiler?")
}

func dumpFlags() {
	glog.Infof("flags:")
	glog.Infof("scene: %v", sceneName)
	glog.Infof("scene-file: %v", sceneFile)
	glog.Infof("rows: %v", outputRows)
	glog.Infof("cols: %v", outputCols)
	glog.Infof("samples: %v", samples)
	glog.Infof("max-depth: %v", maxDepth)
	glog.Infof("parallelism: %v", parallelism)
	glog.Infof("chunk-rows: %v", chunkRows)
	glog.Infof("seed: %v", seed)
	glog.Infof("output: %v", outputFile)
	glog.Infof("png: %v", pngDest)
	glog.Infof("resume: %v", resume)
	glog.Infof("debug-listen: %v", debugListen)
	glog.Infof("monitoring: %v", monitoring)
	glog.Infof("monitoring-project: %v", monitoringProject)
	glog.Infof("monitoring-trace-ratio: %v", monitoringTraceRatio)
	glog.Infof("enable-profiling: %v", enableProfiling)
}

func loadScene(ctx context.Context) (*scene.Scene, error) {
	rng := rand.New(rand.NewSource(seed))

	if sceneFile != "" {
		return scenepack.LoadScene(ctx, sceneFile, rng)
	}

	s, err := scenepack.Builtin(ctx, sceneName, rng)
	if err != nil {
		serr := &scenepack.Error{}
		if xerrors.As(err, &serr) && xerrors.Is(serr.Err, scenepack.ErrUnknownScene) {
			return nil, fmt.Errorf("%w (known scenes: %v)", err, scenepack.Names())
		}
		return nil, err
	}
	return s, nil
}

// imageSize fills in whichever of rows and cols was left at zero.
func imageSize(rows, cols int, aspect float64) (int, int) {
	if aspect <= 0 {
		aspect = 1
	}
	if rows <= 0 {
		rows = int(float64(cols) / aspect)
	}
	if cols <= 0 {
		cols = int(float64(rows) * aspect)
	}
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return rows, cols
}

// openAccumulator loads the existing accumulator when resuming, and otherwise
// creates a fresh one, refusing to clobber an existing file.
func openAccumulator(s *scene.Scene, rows, cols int) (*rgbimage.Image, error) {
	if !resume {
		// Check that the output file doesn't exist, to avoid blowing away hours
		// of render time.
		if _, err := os.Stat(outputFile); err == nil {
			return nil, fmt.Errorf("resumption not requested, but output file %q exists", outputFile)
		}

		sampleDB := rgbimage.New(rows, cols)
		sampleDB.Scene = s.Name
		sampleDB.MaxDepth = maxDepth
		return sampleDB, nil
	}

	sampleDB, err := rgbimage.ReadFromFile(outputFile)
	if err != nil {
		return nil, fmt.Errorf("resumption requested, but encountered error loading existing file: %w", err)
	}

	if sampleDB.RowSize != rows {
		return nil, fmt.Errorf("resumption requested, but the existing image doesn't have the right number of rows (got %d, want %d)", sampleDB.RowSize, rows)
	}

	if sampleDB.ColSize != cols {
		return nil, fmt.Errorf("resumption requested, but the existing image doesn't have the right number of columns (got %d, want %d)", sampleDB.ColSize, cols)
	}

	if sampleDB.Scene != s.Name {
		return nil, fmt.Errorf("resumption requested, but the existing image is of a different scene (got %q, want %q)", sampleDB.Scene, s.Name)
	}

	if sampleDB.MaxDepth != maxDepth {
		return nil, fmt.Errorf("resumption requested, but the existing image used a different max depth (got %d, want %d)", sampleDB.MaxDepth, maxDepth)
	}

	return sampleDB, nil
}

// newProgressReporter redraws a counter in place on a terminal, and logs a
// line every few seconds otherwise.
func newProgressReporter(tracker *debugz.Progress) scene.ProgressFunction {
	interactive := term.IsTerminal(int(os.Stderr.Fd()))
	limiter := rate.NewLimiter(rate.Every(5*time.Second), 1)

	return func(cur, tot int) {
		tracker.Update(cur, tot)

		pct := 100
		if tot > 0 {
			pct = 100 * cur / tot
		}

		if interactive {
			fmt.Fprintf(os.Stderr, "\r%d/%d %d%%", cur, tot, pct)
			return
		}
		if limiter.Allow() {
			glog.Infof("Progress: %d/%d samples (%d%%)", cur, tot, pct)
		}
	}
}

func doRender() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdown, err := startMonitoring()
	if err != nil {
		return err
	}
	defer shutdown()

	if err := rendermetrics.Register(); err != nil {
		return fmt.Errorf("while registering metrics views: %w", err)
	}
	defer rendermetrics.Unregister()

	s, err := loadScene(ctx)
	if err != nil {
		return fmt.Errorf("while loading scene: %w", err)
	}

	st := bvh.Stats(s.World)
	glog.Infof("Scene %q: bvh nodes=%d leaves=%d depth=%d root_area=%.4g leaf_area=%.4g", s.Name, st.Nodes, st.Leaves, st.Depth, st.RootArea, st.LeafArea)

	rows, cols := imageSize(outputRows, outputCols, s.AspectRatio)

	sampleDB, err := openAccumulator(s, rows, cols)
	if err != nil {
		return err
	}

	tracker := debugz.NewProgress(s.Name, rows, cols)
	if debugListen != "" {
		debugServer := &http.Server{
			Addr:    debugListen,
			Handler: debugz.NewServeMux(tracker),

			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		go func() {
			if err := debugServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				glog.Errorf("Debug server died: %v", err)
			}
		}()
		defer debugServer.Close()
	}

	options := &scene.RenderOptions{
		MaxDepth:      maxDepth,
		TargetSamples: samples,
		Parallelism:   parallelism,
		ChunkRows:     chunkRows,
		Seed:          seed,
	}

	start := time.Now()
	renderErr := scene.RenderScene(ctx, s, options, sampleDB, newProgressReporter(tracker))
	if term.IsTerminal(int(os.Stderr.Fd())) {
		fmt.Fprintf(os.Stderr, "\n")
	}
	glog.Infof("Render finished in %v with %d samples recorded", time.Since(start).Round(time.Millisecond), sampleDB.TotalSamples())

	// Save whatever we have, even after an interruption, so that the render
	// can be resumed.
	if err := rgbimage.WriteToFile(sampleDB, outputFile); err != nil {
		return fmt.Errorf("while writing sample accumulator: %w", err)
	}

	if renderErr != nil {
		return fmt.Errorf("render interrupted, partial results saved to %q: %w", outputFile, renderErr)
	}

	if pngDest != "" {
		opts := publish.Options{
			Overwrite:       true,
			CredentialsFile: gcsCredentials,
		}
		if err := publish.WritePNG(context.Background(), pngDest, sampleDB.ToImage(), opts); err != nil {
			return fmt.Errorf("while publishing png: %w", err)
		}
		glog.Infof("Wrote %s", pngDest)
	}

	return nil
}
