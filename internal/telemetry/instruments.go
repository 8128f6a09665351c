package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/voteflow/voteflow/types"
)

const instrumentationName = "github.com/voteflow/voteflow/voting"

// SessionInstruments records voting-session measurements through the
// global OTel meter. With telemetry disabled the global provider is
// noop, so every recording is free; with it enabled the measurements
// flow to the OTLP metric exporter alongside the traces.
type SessionInstruments struct {
	sessionTotal   metric.Int64Counter
	sampleTotal    metric.Int64Counter
	tokenTotal     metric.Int64Counter
	sessionRounds  metric.Int64Histogram
	sessionSeconds metric.Float64Histogram
	sessionCost    metric.Float64Histogram
	activeSessions metric.Int64UpDownCounter
}

// NewSessionInstruments creates the instrument set on the global meter.
func NewSessionInstruments() (*SessionInstruments, error) {
	meter := otel.Meter(instrumentationName)

	si := &SessionInstruments{}
	var err error

	si.sessionTotal, err = meter.Int64Counter("voting.session.total",
		metric.WithDescription("Total number of voting sessions by outcome"),
		metric.WithUnit("{session}"))
	if err != nil {
		return nil, err
	}

	si.sampleTotal, err = meter.Int64Counter("voting.sample.total",
		metric.WithDescription("Total samples drawn, by validity"),
		metric.WithUnit("{sample}"))
	if err != nil {
		return nil, err
	}

	si.tokenTotal, err = meter.Int64Counter("voting.token.total",
		metric.WithDescription("Total tokens spent across sessions"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	si.sessionRounds, err = meter.Int64Histogram("voting.session.rounds",
		metric.WithDescription("Rounds needed per session"),
		metric.WithUnit("{round}"),
		metric.WithExplicitBucketBoundaries(1, 2, 3, 5, 8, 13, 21, 34))
	if err != nil {
		return nil, err
	}

	si.sessionSeconds, err = meter.Float64Histogram("voting.session.duration",
		metric.WithDescription("Session duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30))
	if err != nil {
		return nil, err
	}

	si.sessionCost, err = meter.Float64Histogram("voting.session.cost",
		metric.WithDescription("Estimated sampling cost per session in USD"),
		metric.WithUnit("USD"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1))
	if err != nil {
		return nil, err
	}

	si.activeSessions, err = meter.Int64UpDownCounter("voting.session.active",
		metric.WithDescription("Sessions currently voting"),
		metric.WithUnit("{session}"))
	if err != nil {
		return nil, err
	}

	return si, nil
}

// SessionStarted marks one session in progress.
func (si *SessionInstruments) SessionStarted(ctx context.Context) {
	if si == nil {
		return
	}
	si.activeSessions.Add(ctx, 1)
}

// SessionEnded records the finished session's accumulated metrics under
// its outcome status and releases the active-session count. It must be
// called exactly once per SessionStarted.
func (si *SessionInstruments) SessionEnded(ctx context.Context, status string, m *types.VotingMetrics) {
	if si == nil {
		return
	}
	si.activeSessions.Add(ctx, -1)

	statusAttr := metric.WithAttributes(attribute.String("status", status))
	si.sessionTotal.Add(ctx, 1, statusAttr)
	si.sessionRounds.Record(ctx, int64(m.VotingRounds), statusAttr)
	si.sessionSeconds.Record(ctx, m.Duration.Seconds(), statusAttr)

	if m.ValidSamples > 0 {
		si.sampleTotal.Add(ctx, int64(m.ValidSamples),
			metric.WithAttributes(attribute.String("result", "valid")))
	}
	if m.InvalidSamples > 0 {
		si.sampleTotal.Add(ctx, int64(m.InvalidSamples),
			metric.WithAttributes(attribute.String("result", "invalid")))
	}
	if m.TokensUsed > 0 {
		si.tokenTotal.Add(ctx, int64(m.TokensUsed))
	}
	if m.EstimatedCost > 0 {
		si.sessionCost.Record(ctx, m.EstimatedCost, statusAttr)
	}
}
