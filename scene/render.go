package scene

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"harpoon/rendermetrics"
	"harpoon/rgbimage"

	"github.com/golang/glog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

type RenderOptions struct {
	MaxDepth      int
	TargetSamples int

	// Parallelism bounds the number of chunks rendered at once.  Zero means
	// runtime.NumCPU().
	Parallelism int

	// ChunkRows is the height of a unit of work.  Zero splits the image into
	// one chunk per worker.
	ChunkRows int

	Seed int64
}

// ProgressFunction is called with the number of samples collected so far
// and the number the render is expected to collect in total.
type ProgressFunction func(cur, total int)

// ChunkWorker renders a horizontal band of the image into its own cut of the
// accumulator.
type ChunkWorker struct {
	sampleDB         *rgbimage.Image
	rng              *rand.Rand
	progressFunction func(int)

	maxDepth      int
	targetSamples int

	// These are the dimensions of the overall image, not just this chunk.
	imgRows int
	imgCols int

	rowSrc int
	rowLim int

	scene *Scene

	samples int
	bounces int64
}

// Render stops early, leaving the chunk partially sampled, when ctx is
// cancelled.
func (w *ChunkWorker) Render(ctx context.Context) error {
	for cr := w.rowSrc; cr < w.rowLim; cr++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		samplesCollected := 0
		for cc := 0; cc < w.imgCols; cc++ {
			r := cr - w.rowSrc

			samp := w.sampleDB.ReadSample(r, cc)
			for cs := int(samp.Count); cs < w.targetSamples; cs++ {
				query := w.scene.Camera.ImageToRay(cr, w.imgRows, cc, w.imgCols, w.rng)
				radiance, bounces := w.scene.SampleRay(query, w.maxDepth, w.rng)
				w.sampleDB.RecordSample(r, cc, radiance)
				w.bounces += int64(bounces)
				samplesCollected++
			}
		}

		w.samples += samplesCollected
		w.progressFunction(samplesCollected)
	}
	return nil
}

// RenderScene tops every pixel of sampleDB up to options.TargetSamples.
//
// Chunks that finish are pasted back into sampleDB even when the render is
// cancelled, so a partial render can be saved and resumed.
func RenderScene(ctx context.Context, scene *Scene, options *RenderOptions, sampleDB *rgbimage.Image, progressFunction ProgressFunction) error {
	tracer := otel.Tracer("harpoon/scene")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "RenderScene")
	defer span.End()

	span.SetAttributes(
		attribute.String("scene", scene.Name),
		attribute.Int("rows", sampleDB.RowSize),
		attribute.Int("cols", sampleDB.ColSize),
		attribute.Int("target_samples", options.TargetSamples),
		attribute.Int("max_depth", options.MaxDepth),
	)

	if scene.Camera == nil || scene.World == nil {
		err := fmt.Errorf("scene %q is missing a camera or world", scene.Name)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	curProgress := 0

	// progressMutex locks both curProgress and sampleDB.
	progressMutex := sync.Mutex{}

	// Count the total number of samples recorded in sampleDB.  When we resume
	// a render, we don't want to just repeat our same RNG choices again!
	existingSamples := 0
	wantSamples := 0
	for _, c := range sampleDB.Counts {
		existingSamples += int(c)
		if int(c) < options.TargetSamples {
			wantSamples += options.TargetSamples - int(c)
		}
	}

	parallelism := options.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.NumCPU()
	}

	workUnit := options.ChunkRows
	if workUnit <= 0 {
		workUnit = (sampleDB.RowSize + parallelism - 1) / parallelism
	}
	if workUnit < 1 {
		workUnit = 1
	}

	glog.V(1).Infof("Rendering scene=%q rows=%d cols=%d parallelism=%d chunk-rows=%d existing-samples=%d want-samples=%d",
		scene.Name, sampleDB.RowSize, sampleDB.ColSize, parallelism, workUnit, existingSamples, wantSamples)

	eg, egCtx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(parallelism))

	var acquireErr error
	for chunk, rowSrc := 0, 0; rowSrc < sampleDB.RowSize; chunk, rowSrc = chunk+1, rowSrc+workUnit {
		rowLim := rowSrc + workUnit
		if rowLim > sampleDB.RowSize {
			rowLim = sampleDB.RowSize
		}

		worker := &ChunkWorker{
			rng: rand.New(rand.NewSource(options.Seed ^ int64(existingSamples) ^ int64(chunk)<<32)),
			progressFunction: func(subProgress int) {
				progressMutex.Lock()
				defer progressMutex.Unlock()
				curProgress += subProgress
				if progressFunction != nil {
					progressFunction(curProgress, wantSamples)
				}
			},
			maxDepth:      options.MaxDepth,
			targetSamples: options.TargetSamples,
			imgRows:       sampleDB.RowSize,
			imgCols:       sampleDB.ColSize,
			rowSrc:        rowSrc,
			rowLim:        rowLim,
			scene:         scene,
		}

		if err := sem.Acquire(egCtx, 1); err != nil {
			acquireErr = fmt.Errorf("while acquiring concurrency limiter semaphore: %w", err)
			break
		}

		progressMutex.Lock()
		worker.sampleDB = sampleDB.Cut(rowSrc, rowLim, 0, sampleDB.ColSize)
		progressMutex.Unlock()

		eg.Go(func() error {
			defer sem.Release(1)
			return renderChunk(egCtx, worker, func() {
				progressMutex.Lock()
				defer progressMutex.Unlock()
				sampleDB.Paste(worker.sampleDB, worker.rowSrc, 0)
			})
		})
	}

	err := eg.Wait()
	if err == nil {
		err = acquireErr
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("while rendering chunks: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func renderChunk(ctx context.Context, worker *ChunkWorker, paste func()) error {
	tracer := otel.Tracer("harpoon/scene")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "ChunkWorker.Render")
	defer span.End()

	span.SetAttributes(attribute.Int("row_src", worker.rowSrc), attribute.Int("row_lim", worker.rowLim))

	start := time.Now()
	renderErr := worker.Render(ctx)

	// Whatever was collected is still good, even after cancellation.
	paste()

	rendermetrics.RecordChunk(ctx, worker.scene.Name, worker.samples, worker.bounces, time.Since(start))

	if renderErr != nil {
		span.SetStatus(codes.Error, renderErr.Error())
		return fmt.Errorf("while rendering rows [%d, %d): %w", worker.rowSrc, worker.rowLim, renderErr)
	}
	return nil
}
