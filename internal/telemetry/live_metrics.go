package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// Coalesced itinerary write metrics
	itineraryWriteCounter  metric.Int64Counter
	itineraryWriteDuration metric.Float64Histogram

	// Plan generation metrics
	planGenCounter  metric.Int64Counter
	planGenDuration metric.Float64Histogram
	planGenDays     metric.Int64Histogram
)

// InitLiveMetrics initializes live-session metrics.
func InitLiveMetrics() error {
	meter := otel.Meter("daymap.live")

	var err error

	itineraryWriteCounter, err = meter.Int64Counter(
		"itinerary.write.count",
		metric.WithDescription("Number of persisted itinerary document writes"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return err
	}

	itineraryWriteDuration, err = meter.Float64Histogram(
		"itinerary.write.duration",
		metric.WithDescription("Duration of itinerary document writes"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	planGenCounter, err = meter.Int64Counter(
		"plan.generation.count",
		metric.WithDescription("Number of AI plan generation attempts"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return err
	}

	planGenDuration, err = meter.Float64Histogram(
		"plan.generation.duration",
		metric.WithDescription("Duration of AI plan generation, provider call included"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	planGenDays, err = meter.Int64Histogram(
		"plan.generation.days",
		metric.WithDescription("Number of days in generated plans"),
		metric.WithUnit("{day}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// RecordItineraryWrite records one persisted document write. kind is the
// change kind for structural writes, or "coalesced" for debounced field
// flushes.
func RecordItineraryWrite(ctx context.Context, kind string, durationMs float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	if itineraryWriteCounter != nil {
		itineraryWriteCounter.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("kind", kind),
				attribute.String("status", status),
			),
		)
	}
	if itineraryWriteDuration != nil {
		itineraryWriteDuration.Record(ctx, durationMs,
			metric.WithAttributes(attribute.String("kind", kind)),
		)
	}
}

// RecordPlanGeneration records one AI plan generation attempt.
func RecordPlanGeneration(ctx context.Context, durationMs float64, days int64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	if planGenCounter != nil {
		planGenCounter.Add(ctx, 1,
			metric.WithAttributes(attribute.String("status", status)),
		)
	}
	if planGenDuration != nil {
		planGenDuration.Record(ctx, durationMs,
			metric.WithAttributes(attribute.String("status", status)),
		)
	}
	if err == nil && planGenDays != nil {
		planGenDays.Record(ctx, days)
	}
}
