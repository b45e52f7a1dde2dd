package main

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/profiler"
	"contrib.go.opencensus.io/exporter/stackdriver"
	cloudmetrics "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/metric"
	cloudtrace "github.com/GoogleCloudPlatform/opentelemetry-operations-go/exporter/trace"
	"github.com/golang/glog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// startMonitoring installs the exporters selected by flags.  The returned
// function flushes and stops them.
func startMonitoring() (func(), error) {
	var cleanups []func()
	shutdown := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// Cloud Profiler initialization, best done as early as possible.
	if enableProfiling {
		if err := profiler.Start(profiler.Config{
			Service:        "harpoon-renderer",
			ServiceVersion: "0.0.1",
			ProjectID:      monitoringProject,
		}); err != nil {
			return shutdown, fmt.Errorf("while initializing profiler: %w", err)
		}
	}

	if !monitoring {
		return shutdown, nil
	}

	metricsOpts := []cloudmetrics.Option{}
	traceOpts := []cloudtrace.Option{}
	if monitoringProject != "" {
		metricsOpts = append(metricsOpts, cloudmetrics.WithProjectID(monitoringProject))
		traceOpts = append(traceOpts, cloudtrace.WithProjectID(monitoringProject))
	}

	_, traceShutdown, err := cloudtrace.InstallNewPipeline(traceOpts, sdktrace.WithSampler(sdktrace.TraceIDRatioBased(monitoringTraceRatio)))
	if err != nil {
		return shutdown, fmt.Errorf("while installing Cloud Trace OpenTelemetry trace pipeline: %w", err)
	}
	cleanups = append(cleanups, traceShutdown)

	pusher, err := cloudmetrics.InstallNewPipeline(metricsOpts)
	if err != nil {
		shutdown()
		return func() {}, fmt.Errorf("while installing Cloud Metrics OpenTelemetry meter pipeline: %w", err)
	}
	cleanups = append(cleanups, func() {
		if err := stopDetached(pusher.Stop); err != nil {
			glog.Errorf("Error stopping Cloud Metrics pusher: %v", err)
		}
	})

	// The render metrics themselves are OpenCensus views.
	exporter, err := stackdriver.NewExporter(stackdriver.Options{
		ProjectID:         monitoringProject,
		MetricPrefix:      "harpoon",
		ReportingInterval: 60 * time.Second,
	})
	if err != nil {
		shutdown()
		return func() {}, fmt.Errorf("while initializing Stackdriver exporter: %w", err)
	}
	if err := exporter.StartMetricsExporter(); err != nil {
		shutdown()
		return func() {}, fmt.Errorf("while starting Stackdriver metrics exporter: %w", err)
	}
	cleanups = append(cleanups, func() {
		exporter.StopMetricsExporter()
		exporter.Flush()
	})

	return shutdown, nil
}

const exporterStopTimeout = 30 * time.Second

// stopDetached calls stop with its own deadline.  Shutdown runs after the
// render context has been cancelled, so that context can't be used here.
func stopDetached(stop func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), exporterStopTimeout)
	defer cancel()
	return stop(ctx)
}
