package rendermetrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	"go.opentelemetry.io/otel/unit"
)

const instrumentationName = "harpoon/rendermetrics"

// otelInstruments mirrors the OpenCensus measures onto OpenTelemetry
// instruments, so that chunk data also reaches whatever meter provider the
// Cloud Monitoring pipeline installs.
type otelInstruments struct {
	samples      metric.Int64Counter
	chunkLatency metric.Float64ValueRecorder
	pathLength   metric.Float64ValueRecorder
}

func newOTelInstruments(meter metric.Meter) *otelInstruments {
	mm := metric.Must(meter)
	return &otelInstruments{
		samples: mm.NewInt64Counter("harpoon.samples",
			metric.WithDescription("Radiance samples traced"),
			metric.WithUnit(unit.Dimensionless)),
		chunkLatency: mm.NewFloat64ValueRecorder("harpoon.chunk_latency",
			metric.WithDescription("Time to render one chunk of rows"),
			metric.WithUnit(unit.Milliseconds)),
		pathLength: mm.NewFloat64ValueRecorder("harpoon.path_length",
			metric.WithDescription("Mean bounces per path over one chunk"),
			metric.WithUnit(unit.Dimensionless)),
	}
}

func (o *otelInstruments) record(ctx context.Context, scene string, samples int, bounces int64, elapsed time.Duration) {
	labels := []attribute.KeyValue{attribute.String("scene", scene)}
	o.samples.Add(ctx, int64(samples), labels...)
	o.chunkLatency.Record(ctx, float64(elapsed)/float64(time.Millisecond), labels...)
	if samples > 0 {
		o.pathLength.Record(ctx, float64(bounces)/float64(samples), labels...)
	}
}

// The global meter delegates to the provider set later by
// cloudmetrics.InstallNewPipeline, and is a no-op until then.
var otelChunk = newOTelInstruments(global.Meter(instrumentationName))
