// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package metrics provides Prometheus collectors and HTTP middleware for
// monitoring the gatehouse server.
//
// Collectors live in the default registry and are exposed by the /metrics
// route through promhttp.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "gatehouse"

var (
	// RequestsTotal counts all HTTP requests by method and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total requests",
		},
		[]string{"method", "status"},
	)

	// RequestDuration records HTTP request duration in seconds by method.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request duration",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// GateDecisionsTotal counts request gate outcomes.
	// class is public or protected; outcome is pass, authorized or redirected.
	GateDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_decisions_total",
			Help:      "Request gate decisions",
		},
		[]string{"class", "outcome"},
	)

	// AuthAttemptsTotal counts login and registration attempts by outcome.
	AuthAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Authentication attempts",
		},
		[]string{"action", "outcome"},
	)

	// RateLimitRejectedTotal counts requests rejected by the action rate limiter.
	RateLimitRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratelimit_rejected_total",
			Help:      "Rate limit rejections",
		},
		[]string{"action"},
	)

	// ThrottleRejectedTotal counts requests rejected by the global per-IP throttle.
	ThrottleRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "throttle_rejected_total",
			Help:      "Global throttle rejections",
		},
	)

	// ReplayTokensTotal counts replay guard tokens by operation and outcome.
	ReplayTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replay_tokens_total",
			Help:      "Replay guard token operations",
		},
		[]string{"operation", "outcome"},
	)
)

// Label values shared by the instrumented packages.
const (
	OutcomePass       = "pass"
	OutcomeAuthorized = "authorized"
	OutcomeRedirected = "redirected"
	OutcomeSuccess    = "success"
	OutcomeFailure    = "failure"
	OutcomeRejected   = "rejected"

	OperationGenerate = "generate"
	OperationVerify   = "verify"
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		GateDecisionsTotal,
		AuthAttemptsTotal,
		RateLimitRejectedTotal,
		ThrottleRejectedTotal,
		ReplayTokensTotal,
	)
}
