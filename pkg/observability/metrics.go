// Package observability emits application metrics and traces.
package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Metrics publishes request and error counters to CloudWatch.
// A nil client turns every method into a no-op, so local runs need no
// AWS credentials.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
	logger    *zap.Logger
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string, client *cloudwatch.Client, logger *zap.Logger) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

// RecordRequest records one handled HTTP request
func (m *Metrics) RecordRequest(ctx context.Context, route string, status int, duration time.Duration) {
	if m.client == nil {
		return
	}

	outcome := "success"
	if status >= 500 {
		outcome = "failure"
	}

	metricData := []types.MetricDatum{
		{
			MetricName: aws.String("RequestLatency"),
			Dimensions: []types.Dimension{
				{Name: aws.String("Route"), Value: aws.String(route)},
				{Name: aws.String("Outcome"), Value: aws.String(outcome)},
			},
			Value:     aws.Float64(float64(duration.Milliseconds())),
			Unit:      types.StandardUnitMilliseconds,
			Timestamp: aws.Time(time.Now()),
		},
		{
			MetricName: aws.String("RequestCount"),
			Dimensions: []types.Dimension{
				{Name: aws.String("Route"), Value: aws.String(route)},
				{Name: aws.String("Outcome"), Value: aws.String(outcome)},
			},
			Value:     aws.Float64(1),
			Unit:      types.StandardUnitCount,
			Timestamp: aws.Time(time.Now()),
		},
	}

	m.put(ctx, metricData)
}

// RecordError records one classified application error
func (m *Metrics) RecordError(ctx context.Context, errorType string) {
	if m.client == nil {
		return
	}

	metricData := []types.MetricDatum{
		{
			MetricName: aws.String("Errors"),
			Dimensions: []types.Dimension{
				{Name: aws.String("ErrorType"), Value: aws.String(errorType)},
			},
			Value:     aws.Float64(1),
			Unit:      types.StandardUnitCount,
			Timestamp: aws.Time(time.Now()),
		},
	}

	m.put(ctx, metricData)
}

// RecordBusinessMetric records a custom counter, e.g. posts created
func (m *Metrics) RecordBusinessMetric(ctx context.Context, metricName string, value float64, dimensions map[string]string) {
	if m.client == nil {
		return
	}

	var cwDimensions []types.Dimension
	for name, val := range dimensions {
		cwDimensions = append(cwDimensions, types.Dimension{
			Name:  aws.String(name),
			Value: aws.String(val),
		})
	}

	metricData := []types.MetricDatum{
		{
			MetricName: aws.String(metricName),
			Dimensions: cwDimensions,
			Value:      aws.Float64(value),
			Unit:       types.StandardUnitCount,
			Timestamp:  aws.Time(time.Now()),
		},
	}

	m.put(ctx, metricData)
}

func (m *Metrics) put(ctx context.Context, data []types.MetricDatum) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	}
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		// Metrics must never fail the request path
		m.logger.Warn("failed to send metrics", zap.Error(err))
	}
}
