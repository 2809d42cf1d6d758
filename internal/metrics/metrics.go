package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/gatherly-app/backend-rsvp/pkg/telemetry"
)

var (
	RSVPsConfirmed  *telemetry.Counter
	RSVPsWaitlisted *telemetry.Counter
	RSVPsRejected   *telemetry.Counter
	RSVPsCancelled  *telemetry.Counter
	RSVPsPromoted   *telemetry.Counter

	CheckinsRecorded *telemetry.Counter

	AdmissionDuration *telemetry.Histogram

	initOnce sync.Once
	initErr  error
)

// Init initializes all RSVP metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	RSVPsConfirmed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "rsvp_confirmations_total",
		Description: "Total number of RSVPs confirmed",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RSVPsWaitlisted, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "rsvp_waitlists_total",
		Description: "Total number of RSVPs waitlisted",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RSVPsRejected, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "rsvp_rejections_total",
		Description: "Total number of RSVPs rejected at capacity",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RSVPsCancelled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "rsvp_cancellations_total",
		Description: "Total number of RSVPs cancelled",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	RSVPsPromoted, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "rsvp_promotions_total",
		Description: "Total number of waitlisted RSVPs promoted by payment",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	CheckinsRecorded, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "rsvp_checkins_total",
		Description: "Total number of guests checked in",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	AdmissionDuration, err = telemetry.NewHistogram(telemetry.MetricOpts{
		Name:        "rsvp_admission_duration_seconds",
		Description: "Time spent inside the per-event admission critical section",
		Unit:        "s",
	})
	return err
}

// RecordAdmission records the outcome of an admission decision
func RecordAdmission(ctx context.Context, eventID, status string, guests int) {
	attrs := []attribute.KeyValue{
		attribute.String("event_id", eventID),
	}
	switch status {
	case "confirmed":
		RSVPsConfirmed.Add(ctx, int64(guests), attrs...)
	case "waitlist":
		RSVPsWaitlisted.Add(ctx, int64(guests), attrs...)
	}
}

// RecordRejection records an RSVP rejected because the event was full
func RecordRejection(ctx context.Context, eventID string) {
	RSVPsRejected.Add(ctx, 1, attribute.String("event_id", eventID))
}

// RecordCancellation records a cancelled RSVP
func RecordCancellation(ctx context.Context, eventID string) {
	RSVPsCancelled.Add(ctx, 1, attribute.String("event_id", eventID))
}

// RecordPromotion records a payment-driven waitlist promotion
func RecordPromotion(ctx context.Context, eventID string) {
	RSVPsPromoted.Add(ctx, 1, attribute.String("event_id", eventID))
}

// RecordCheckin records checked-in guests
func RecordCheckin(ctx context.Context, eventID string, guests int) {
	CheckinsRecorded.Add(ctx, int64(guests), attribute.String("event_id", eventID))
}
