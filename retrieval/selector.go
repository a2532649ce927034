// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package retrieval implements the query-adaptive document retrieval
// engine: strategy selection, candidate fetching, and the three ranking
// strategies (similarity, hybrid, rerank).
//
// Everything in this package is stateless between calls. The only I/O
// is the vector backend read inside CandidateFetcher; scoring and
// sorting happen over an in-memory candidate pool and are deterministic
// given identical backend responses.
package retrieval

import (
	"strings"

	"github.com/AleutianAI/AleutianChat/datatypes"
)

// complexIndicators marks queries that benefit from multi-factor
// reranking: question words, conjunctions, comparison language.
//
// Matching is substring-based on the lowered query, not token-based,
// so "android" matches "and" and "actor" matches "or". This is a known
// imprecision of the heuristic, kept deliberately: the false positives
// only upgrade a query to a more thorough strategy.
var complexIndicators = []string{
	"how", "why", "what", "explain", "compare", "difference", "and", "or", "but",
}

// SelectStrategy picks a retrieval strategy from the query text alone.
//
// Short queries (up to 5 whitespace tokens) go to plain similarity
// search. Long queries (more than 10 tokens) or queries containing a
// complexity indicator go to reranking. Everything in between uses the
// hybrid keyword strategy.
//
// The function is pure and deterministic; it never fails.
func SelectStrategy(query string) string {
	tokens := strings.Fields(query)
	if len(tokens) <= 5 {
		return datatypes.StrategySimilarity
	}

	lowered := strings.ToLower(query)
	hasComplex := false
	for _, indicator := range complexIndicators {
		if strings.Contains(lowered, indicator) {
			hasComplex = true
			break
		}
	}

	if hasComplex || len(tokens) > 10 {
		return datatypes.StrategyRerank
	}
	return datatypes.StrategyHybrid
}
