package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type engineMetrics struct {
	signals         *prometheus.CounterVec
	surfaceFailures *prometheus.CounterVec
}

func newEngineMetrics(reg prometheus.Registerer) *engineMetrics {
	factory := promauto.With(reg)
	m := &engineMetrics{}
	m.signals = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "claims_signals_total",
		Help: "claim intents processed, by outcome",
	}, []string{"outcome"})
	m.surfaceFailures = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "claims_surface_failures_total",
		Help: "surface commands that failed and were degraded to a log line",
	}, []string{"command"})
	return m
}

func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, ErrNoSession):
		return "no_session"
	case errors.Is(err, ErrSignalIgnored):
		return "signal_ignored"
	case errors.Is(err, ErrPanicEnabled):
		return "panic"
	case errors.Is(err, ErrListingUnknown):
		return "unknown_listing"
	case errors.Is(err, ErrNoEntry):
		return "no_entry"
	case errors.Is(err, ErrNoPicks):
		return "no_picks"
	case errors.Is(err, ErrItemClaimed):
		return "already_claimed"
	default:
		return "error"
	}
}
