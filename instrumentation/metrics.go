package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds all metric instruments for the authorization-code flow.
type Metrics struct {
	// Flow metrics
	AuthorizationStarted  metric.Int64Counter
	StateValidationFailed metric.Int64Counter
	CodeExchanged         metric.Int64Counter
	ExchangeDuration      metric.Float64Histogram

	// Profile metrics
	ProfileFetched       metric.Int64Counter
	ProfileFetchDegraded metric.Int64Counter
	ProfileFetchDuration metric.Float64Histogram

	// Provider API metrics
	ProviderAPIErrors metric.Int64Counter
}

// newMetrics creates and registers all metric instruments.
func newMetrics(inst *Instrumentation) (*Metrics, error) {
	m := &Metrics{}
	meter := inst.Meter("strategy")

	var err error
	m.AuthorizationStarted, err = meter.Int64Counter(
		"mixin.authorization.started",
		metric.WithDescription("Number of authorization flows started"),
		metric.WithUnit("{flow}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorization.started counter: %w", err)
	}

	m.StateValidationFailed, err = meter.Int64Counter(
		"mixin.state.validation.failed",
		metric.WithDescription("Number of callback state validation failures"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create state.validation.failed counter: %w", err)
	}

	m.CodeExchanged, err = meter.Int64Counter(
		"mixin.code.exchanged",
		metric.WithDescription("Number of authorization code exchanges by result"),
		metric.WithUnit("{exchange}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create code.exchanged counter: %w", err)
	}

	m.ExchangeDuration, err = meter.Float64Histogram(
		"mixin.code.exchange.duration",
		metric.WithDescription("Token exchange duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create code.exchange.duration histogram: %w", err)
	}

	m.ProfileFetched, err = meter.Int64Counter(
		"mixin.profile.fetched",
		metric.WithDescription("Number of profile fetches by result"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile.fetched counter: %w", err)
	}

	m.ProfileFetchDegraded, err = meter.Int64Counter(
		"mixin.profile.fetch.degraded",
		metric.WithDescription("Number of profile fetches degraded to a null identity"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile.fetch.degraded counter: %w", err)
	}

	m.ProfileFetchDuration, err = meter.Float64Histogram(
		"mixin.profile.fetch.duration",
		metric.WithDescription("Profile fetch duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile.fetch.duration histogram: %w", err)
	}

	m.ProviderAPIErrors, err = meter.Int64Counter(
		"mixin.provider.api.errors",
		metric.WithDescription("Provider API failures by operation and error kind"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider.api.errors counter: %w", err)
	}

	return m, nil
}

// RecordAuthorizationStarted records the start of an authorization flow.
func (m *Metrics) RecordAuthorizationStarted(ctx context.Context) {
	m.AuthorizationStarted.Add(ctx, 1)
}

// RecordStateValidationFailed records a failed CSRF state check.
func (m *Metrics) RecordStateValidationFailed(ctx context.Context) {
	m.StateValidationFailed.Add(ctx, 1)
}

// RecordCodeExchange records one token exchange attempt. errorKind is
// empty on success.
func (m *Metrics) RecordCodeExchange(ctx context.Context, durationMs float64, errorKind string) {
	result := "success"
	if errorKind != "" {
		result = "failure"
	}

	m.CodeExchanged.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))
	m.ExchangeDuration.Record(ctx, durationMs)

	if errorKind != "" {
		m.ProviderAPIErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", "exchange"),
			attribute.String("error_kind", errorKind),
		))
	}
}

// RecordProfileFetch records one profile fetch attempt. A degraded
// fetch is one that failed and was softened to a null identity.
func (m *Metrics) RecordProfileFetch(ctx context.Context, durationMs float64, degraded bool, errorKind string) {
	result := "success"
	if degraded {
		result = "degraded"
	}

	m.ProfileFetched.Add(ctx, 1, metric.WithAttributes(
		attribute.String("result", result),
	))
	m.ProfileFetchDuration.Record(ctx, durationMs)

	if degraded {
		m.ProfileFetchDegraded.Add(ctx, 1)
		m.ProviderAPIErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", "profile"),
			attribute.String("error_kind", errorKind),
		))
	}
}
