package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes scoring-domain instruments.
type Metrics struct {
	eligibilityEvaluations metric.Int64Counter
	submissionsComputed    metric.Int64Counter
	compositeScore         metric.Float64Histogram
	categoryUnavailable    metric.Int64Counter
	configFallbacks        metric.Int64Counter
	gapsGenerated          metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return provider.Shutdown(ctx)
			},
		})
	}
	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}
	return provider, nil
}

// New configures the domain instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "meritscore"
	}
	meter := provider.Meter(name)

	eligibility, err := meter.Int64Counter("meritscore_eligibility_evaluations_total")
	if err != nil {
		return nil, err
	}
	submissions, err := meter.Int64Counter("meritscore_submissions_computed_total")
	if err != nil {
		return nil, err
	}
	composite, err := meter.Float64Histogram("meritscore_composite_score",
		metric.WithExplicitBucketBoundaries(0, 25, 50, 60, 75, 85, 95, 100),
	)
	if err != nil {
		return nil, err
	}
	unavailable, err := meter.Int64Counter("meritscore_category_data_unavailable_total")
	if err != nil {
		return nil, err
	}
	fallbacks, err := meter.Int64Counter("meritscore_program_config_fallbacks_total")
	if err != nil {
		return nil, err
	}
	gaps, err := meter.Int64Counter("meritscore_gaps_generated_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		eligibilityEvaluations: eligibility,
		submissionsComputed:    submissions,
		compositeScore:         composite,
		categoryUnavailable:    unavailable,
		configFallbacks:        fallbacks,
		gapsGenerated:          gaps,
	}, nil
}

func (m *Metrics) RecordEligibility(ctx context.Context, status string) {
	if m == nil {
		return
	}
	m.eligibilityEvaluations.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("status", strings.TrimSpace(status)),
	)...))
}

func (m *Metrics) RecordSubmission(ctx context.Context, year int, composite float64) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.Int("performance_year", year))
	m.submissionsComputed.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.compositeScore.Record(ctx, composite, metric.WithAttributes(attrs...))
}

func (m *Metrics) RecordCategoryUnavailable(ctx context.Context, category string) {
	if m == nil {
		return
	}
	m.categoryUnavailable.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("category", strings.TrimSpace(category)),
	)...))
}

func (m *Metrics) RecordConfigFallback(ctx context.Context, reason string) {
	if m == nil {
		return
	}
	m.configFallbacks.Add(ctx, 1, metric.WithAttributes(FilterAttributes(
		attribute.String("reason", strings.TrimSpace(reason)),
	)...))
}

func (m *Metrics) RecordGaps(ctx context.Context, category, impact string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.gapsGenerated.Add(ctx, int64(count), metric.WithAttributes(FilterAttributes(
		attribute.String("category", strings.TrimSpace(category)),
		attribute.String("impact", strings.TrimSpace(impact)),
	)...))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(protocol)) {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

// Provider and NPI identifiers never become labels.
var allowedLabelKeys = map[attribute.Key]struct{}{
	"status":           {},
	"category":         {},
	"impact":           {},
	"reason":           {},
	"performance_year": {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
