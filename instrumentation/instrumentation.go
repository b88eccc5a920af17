package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const (
	// DefaultServiceName is used when no service name is configured.
	DefaultServiceName = "mixin-oauth"

	// DefaultServiceVersion is used when no version is provided.
	DefaultServiceVersion = "unknown"

	// instrumentationScope prefixes meter and tracer names.
	instrumentationScope = "github.com/quoralabs/mixin-oauth"
)

// Config holds instrumentation configuration.
type Config struct {
	// ServiceName identifies the host application in telemetry.
	ServiceName string

	// ServiceVersion is the version of the host application.
	ServiceVersion string

	// Enabled controls whether instrumentation is active. When false,
	// no-op providers are used and recording has zero overhead.
	Enabled bool

	// MeterProvider overrides the meter provider. When nil and Enabled,
	// the global no-op provider is used until the host supplies one.
	MeterProvider metric.MeterProvider

	// TracerProvider overrides the tracer provider.
	TracerProvider trace.TracerProvider

	// Resource allows custom resource attributes. When nil, a default
	// resource carrying service name and version is created.
	Resource *resource.Resource
}

// Instrumentation provides OpenTelemetry components for the client.
type Instrumentation struct {
	config   Config
	resource *resource.Resource

	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider

	metrics *Metrics
}

// New creates a new instrumentation instance. A zero Config yields a
// fully functional no-op instance.
func New(config Config) (*Instrumentation, error) {
	if config.ServiceName == "" {
		config.ServiceName = DefaultServiceName
	}
	if config.ServiceVersion == "" {
		config.ServiceVersion = DefaultServiceVersion
	}

	res := config.Resource
	if res == nil {
		var err error
		res, err = resource.New(
			context.Background(),
			resource.WithAttributes(
				semconv.ServiceName(config.ServiceName),
				semconv.ServiceVersion(config.ServiceVersion),
			),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create resource: %w", err)
		}
	}

	inst := &Instrumentation{
		config:   config,
		resource: res,
	}

	if config.Enabled {
		inst.meterProvider = config.MeterProvider
		inst.tracerProvider = config.TracerProvider
	}
	if inst.meterProvider == nil {
		inst.meterProvider = noop.NewMeterProvider()
	}
	if inst.tracerProvider == nil {
		inst.tracerProvider = tracenoop.NewTracerProvider()
	}

	metrics, err := newMetrics(inst)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}
	inst.metrics = metrics

	return inst, nil
}

// Disabled returns a ready no-op instance for hosts that opt out of
// telemetry. It never fails: no-op instrument creation cannot error.
func Disabled() *Instrumentation {
	inst, err := New(Config{Enabled: false})
	if err != nil {
		panic(fmt.Sprintf("instrumentation: no-op initialization failed: %v", err))
	}
	return inst
}

// Meter returns a named meter for the given scope. Scopes are layer
// names like "client" or "strategy"; the full name becomes
// "github.com/quoralabs/mixin-oauth/{scope}".
func (i *Instrumentation) Meter(scope string) metric.Meter {
	return i.meterProvider.Meter(instrumentationScope + "/" + scope)
}

// Tracer returns a named tracer for the given scope.
func (i *Instrumentation) Tracer(scope string) trace.Tracer {
	return i.tracerProvider.Tracer(instrumentationScope + "/" + scope)
}

// Metrics returns the metrics holder for recording metric values.
func (i *Instrumentation) Metrics() *Metrics {
	return i.metrics
}

// MeterProvider returns the underlying meter provider.
func (i *Instrumentation) MeterProvider() metric.MeterProvider {
	return i.meterProvider
}

// TracerProvider returns the underlying tracer provider.
func (i *Instrumentation) TracerProvider() trace.TracerProvider {
	return i.tracerProvider
}
