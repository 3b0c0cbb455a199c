package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/multierr"
)

const (
	MetricsNone       = "none"
	MetricsConsole    = "console"
	MetricsPrometheus = "prometheus"
)

const (
	consoleExportInterval = 10 * time.Second
	consoleExportTimeout  = 5 * time.Second
)

var ErrUnknownMetricsExporter = errors.New("[observability] unknown metrics exporter")

// Serves for test/dev environment. Shutdown exports the last collection.
func newConsoleMetricsExporter(w io.Writer, interval, timeout time.Duration, opts ...stdoutmetric.Option) (*metric.MeterProvider, func(ctx context.Context) error, error) {
	opts = append([]stdoutmetric.Option{stdoutmetric.WithWriter(w)}, opts...)
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	callback := mp.Shutdown
	otel.SetMeterProvider(mp)
	return mp, callback, nil
}

// A one-shot process has no scrape endpoint, so the registry is written
// in the Prometheus text format on shutdown instead.
func newPrometheusMetricsExporter(w io.Writer) (*metric.MeterProvider, func(ctx context.Context) error, error) {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, nil, err
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	callback := func(ctx context.Context) error {
		families, err := registry.Gather()
		for _, mf := range families {
			if _, werr := expfmt.MetricFamilyToText(w, mf); werr != nil {
				err = multierr.Append(err, werr)
				break
			}
		}
		return multierr.Append(err, mp.Shutdown(ctx))
	}
	otel.SetMeterProvider(mp)
	return mp, callback, nil
}

// NewMetricsExporter installs the global meter provider of kind. The
// returned callback flushes and shuts the provider down.
func NewMetricsExporter(kind string, w io.Writer) (otelmetric.MeterProvider, func(ctx context.Context) error, error) {
	switch kind {
	case "", MetricsNone:
		return noop.NewMeterProvider(), func(context.Context) error { return nil }, nil
	case MetricsConsole:
		return newConsoleMetricsExporter(w, consoleExportInterval, consoleExportTimeout, stdoutmetric.WithPrettyPrint())
	case MetricsPrometheus:
		return newPrometheusMetricsExporter(w)
	default:
	}
	return nil, nil, fmt.Errorf("%w: %q", ErrUnknownMetricsExporter, kind)
}
