package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Attribute keys for integration metrics
var (
	AttrOutcome    = attribute.Key("outcome")
	AttrBulkStatus = attribute.Key("bulk.status")
	AttrJobStatus  = attribute.Key("job.status")
)

// IntegrationMetrics records executor and bulk sync measurements
type IntegrationMetrics struct {
	attempts      metric.Int64Counter
	throttleWaits metric.Float64Histogram
	bulkPolls     metric.Int64Counter
	syncDuration  metric.Float64Histogram
	reconciled    metric.Int64Counter
}

// NewIntegrationMetrics creates the instruments on meter
func NewIntegrationMetrics(meter metric.Meter) (*IntegrationMetrics, error) {
	m := &IntegrationMetrics{}
	var err error

	if m.attempts, err = meter.Int64Counter("shopify.graphql.attempts",
		metric.WithDescription("GraphQL attempts by outcome class"),
		metric.WithUnit("{attempt}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create attempts counter: %w", err)
	}
	if m.throttleWaits, err = meter.Float64Histogram("shopify.throttle.wait",
		metric.WithDescription("Wait imposed by the cost throttle before the next request"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 5, 10, 20, 60),
	); err != nil {
		return nil, fmt.Errorf("failed to create throttle histogram: %w", err)
	}
	if m.bulkPolls, err = meter.Int64Counter("shopify.bulk.polls",
		metric.WithDescription("Bulk operation status polls by remote status"),
		metric.WithUnit("{poll}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create bulk poll counter: %w", err)
	}
	if m.syncDuration, err = meter.Float64Histogram("bulk_sync.duration",
		metric.WithDescription("Time from trigger until a sync job reaches a terminal status"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(30, 60, 120, 300, 600, 1800, 3600, 7200),
	); err != nil {
		return nil, fmt.Errorf("failed to create sync duration histogram: %w", err)
	}
	if m.reconciled, err = meter.Int64Counter("reconciliation.changes",
		metric.WithDescription("Rows created or updated by reconciliation passes"),
		metric.WithUnit("{row}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create reconciliation counter: %w", err)
	}
	return m, nil
}

// RecordAttempt counts one executor attempt
func (m *IntegrationMetrics) RecordAttempt(ctx context.Context, outcome string, _ int) {
	m.attempts.Add(ctx, 1, metric.WithAttributes(AttrOutcome.String(outcome)))
}

// RecordThrottleWait records a throttle wait
func (m *IntegrationMetrics) RecordThrottleWait(ctx context.Context, wait time.Duration) {
	m.throttleWaits.Record(ctx, wait.Seconds())
}

// RecordBulkPoll counts one status poll
func (m *IntegrationMetrics) RecordBulkPoll(ctx context.Context, remoteStatus string) {
	m.bulkPolls.Add(ctx, 1, metric.WithAttributes(AttrBulkStatus.String(remoteStatus)))
}

// RecordSyncFinished records the lifetime of a job that reached a terminal status
func (m *IntegrationMetrics) RecordSyncFinished(ctx context.Context, status string, d time.Duration) {
	m.syncDuration.Record(ctx, d.Seconds(), metric.WithAttributes(AttrJobStatus.String(status)))
}

// RecordReconciled counts rows changed by a reconciliation pass, by kind
// (state, town, vendor_created, vendor_updated, source_name)
func (m *IntegrationMetrics) RecordReconciled(ctx context.Context, kind string, n int) {
	if n <= 0 {
		return
	}
	m.reconciled.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
}
