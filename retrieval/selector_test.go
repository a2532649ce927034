// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package retrieval

import (
	"strings"
	"testing"

	"github.com/AleutianAI/AleutianChat/datatypes"
	"github.com/stretchr/testify/assert"
)

func TestSelectStrategy_ShortQueriesUseSimilarity(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"single token", "kubernetes"},
		{"five tokens", "alpha beta gamma delta epsilon"},
		{"five tokens with indicator word", "explain the deployment rollout process"},
		{"empty query", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, datatypes.StrategySimilarity, SelectStrategy(tt.query))
		})
	}
}

func TestSelectStrategy_ComplexQueriesUseRerank(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"question word", "tell me more about exactly how replication works here"},
		{"comparison", "compare primary node behavior with replica node behavior please"},
		{"very long without indicators", strings.Repeat("token ", 11)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, datatypes.StrategyRerank, SelectStrategy(tt.query))
		})
	}
}

func TestSelectStrategy_MediumQueriesUseHybrid(t *testing.T) {
	// 6-10 tokens, none of the indicator substrings.
	query := "list recent failed ingestion jobs since yesterday"
	assert.Equal(t, datatypes.StrategyHybrid, SelectStrategy(query))
}

// The indicator check is a substring match on purpose, so words that
// merely contain an indicator ("android" contains "and") still upgrade
// the query to rerank. Pin that behavior down.
func TestSelectStrategy_IndicatorMatchesInsideWords(t *testing.T) {
	query := "summarize android tablet telemetry ingestion failures today"
	assert.Equal(t, datatypes.StrategyRerank, SelectStrategy(query))
}

func TestSelectStrategy_IsDeterministic(t *testing.T) {
	query := "list recent failed ingestion jobs since yesterday"
	first := SelectStrategy(query)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, SelectStrategy(query))
	}
}
