// Package rendermetrics holds the OpenCensus measures recorded while
// rendering.
package rendermetrics

import (
	"context"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	KeyScene = tag.MustNewKey("scene")

	Samples      = stats.Int64("harpoon/samples", "Radiance samples traced", stats.UnitDimensionless)
	ChunkLatency = stats.Float64("harpoon/chunk_latency", "Time to render one chunk of rows", stats.UnitMilliseconds)
	PathLength   = stats.Float64("harpoon/path_length", "Mean bounces per path over one chunk", stats.UnitDimensionless)
)

var (
	SamplesView = &view.View{
		Name:        "harpoon/samples",
		Description: "Counter of radiance samples traced",
		TagKeys:     []tag.Key{KeyScene},
		Measure:     Samples,
		Aggregation: view.Sum(),
	}

	ChunkLatencyView = &view.View{
		Name:        "harpoon/chunk_latency",
		Description: "Distribution of chunk render times",
		TagKeys:     []tag.Key{KeyScene},
		Measure:     ChunkLatency,
		Aggregation: view.Distribution(10, 50, 100, 500, 1000, 5000, 10000, 60000, 300000),
	}

	PathLengthView = &view.View{
		Name:        "harpoon/path_length",
		Description: "Distribution of per-chunk mean path lengths",
		TagKeys:     []tag.Key{KeyScene},
		Measure:     PathLength,
		Aggregation: view.Distribution(1, 2, 3, 4, 6, 8, 12, 16, 24, 32, 50),
	}
)

func Register() error {
	return view.Register(SamplesView, ChunkLatencyView, PathLengthView)
}

func Unregister() {
	view.Unregister(SamplesView, ChunkLatencyView, PathLengthView)
}

// RecordChunk records the outcome of one finished chunk to both OpenCensus
// and OpenTelemetry.  bounces is the total number of bounces over all of the
// chunk's samples.
func RecordChunk(ctx context.Context, scene string, samples int, bounces int64, elapsed time.Duration) {
	ms := []stats.Measurement{
		Samples.M(int64(samples)),
		ChunkLatency.M(float64(elapsed) / float64(time.Millisecond)),
	}
	if samples > 0 {
		ms = append(ms, PathLength.M(float64(bounces)/float64(samples)))
	}

	// Recording only fails on bad tag values.
	_ = stats.RecordWithTags(ctx, []tag.Mutator{tag.Upsert(KeyScene, scene)}, ms...)

	otelChunk.record(ctx, scene, samples, bounces, elapsed)
}
