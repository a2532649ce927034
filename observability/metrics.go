// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability holds the Prometheus metrics and OTLP tracer
// setup shared by the HTTP layer.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	retrievalRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "aleutian_chat_retrieval_requests_total",
		Help: "Retrieval requests by effective strategy.",
	}, []string{"strategy"})

	retrievalDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "aleutian_chat_retrieval_duration_seconds",
		Help:    "End-to-end retrieval latency by effective strategy.",
		Buckets: prometheus.DefBuckets,
	}, []string{"strategy"})

	chatTurns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aleutian_chat_turns_total",
		Help: "Completed chat turns.",
	})

	documentsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "aleutian_chat_documents_ingested_total",
		Help: "Successfully ingested documents.",
	})
)

// ObserveRetrieval records one retrieval call under its effective
// strategy (after automatic selection, so "auto" never appears).
func ObserveRetrieval(strategy string, elapsed time.Duration) {
	retrievalRequests.WithLabelValues(strategy).Inc()
	retrievalDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// CountChatTurn records one completed chat turn.
func CountChatTurn() {
	chatTurns.Inc()
}

// CountDocumentIngested records one successful document ingest.
func CountDocumentIngested() {
	documentsIngested.Inc()
}
