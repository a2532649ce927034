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
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/AleutianAI/AleutianChat/datatypes"
	"github.com/AleutianAI/AleutianChat/vectorstore"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var engineTracer = otel.Tracer("aleutian.chat.retrieval")

// Rerank factor weights. Keyword overlap dominates; position keeps
// earlier chunks slightly ahead; length nudges towards medium chunks.
const (
	rerankKeywordWeight  = 0.5
	rerankLengthWeight   = 0.2
	rerankPositionWeight = 0.3

	// idealChunkWords is where the length score peaks. Chunks of 0 or
	// 400+ words score 0.
	idealChunkWords = 200.0

	// positionFloor keeps late chunks retrievable: position alone never
	// pushes a score below half.
	positionFloor = 0.5
)

// Engine ranks document chunks for a query using one of three
// strategies over an over-fetched candidate pool. It holds no mutable
// state; concurrent calls are independent.
type Engine struct {
	fetcher *CandidateFetcher
}

// NewEngine creates a ranking engine over the given fetcher.
func NewEngine(fetcher *CandidateFetcher) *Engine {
	return &Engine{fetcher: fetcher}
}

// NewEngineForIndex is a convenience constructor wiring the fetcher.
func NewEngineForIndex(index vectorstore.Index) *Engine {
	return NewEngine(NewCandidateFetcher(index))
}

// Retrieve returns up to k chunks for the query.
//
// An empty strategy delegates to SelectStrategy; an unrecognized one
// silently degrades to similarity search. Backend failures degrade to
// an empty result, never an error: callers proceed without retrieved
// context.
//
// Result order is deterministic for identical backend responses — both
// rescoring strategies use stable sorts, so score ties preserve the
// backend's relevance order.
func (e *Engine) Retrieve(ctx context.Context, query, strategy string, k int, documentIDs []string) []datatypes.Chunk {
	ctx, span := engineTracer.Start(ctx, "Engine.Retrieve")
	defer span.End()

	if strategy == "" {
		strategy = SelectStrategy(query)
		span.SetAttributes(attribute.Bool("retrieval.strategy_auto", true))
	}
	span.SetAttributes(
		attribute.String("retrieval.strategy", strategy),
		attribute.Int("retrieval.k", k),
	)

	var chunks []datatypes.Chunk
	switch strategy {
	case datatypes.StrategyHybrid:
		chunks = e.hybridSearch(ctx, query, k, documentIDs)
	case datatypes.StrategyRerank:
		chunks = e.rerankedSearch(ctx, query, k, documentIDs)
	case datatypes.StrategySimilarity:
		chunks = e.fetcher.Fetch(ctx, query, k, documentIDs)
	default:
		slog.Debug("Unknown retrieval strategy, falling back to similarity", "strategy", strategy)
		chunks = e.fetcher.Fetch(ctx, query, k, documentIDs)
	}

	span.SetAttributes(attribute.Int("retrieval.results", len(chunks)))
	return chunks
}

// scoredChunk pairs a candidate with its transient strategy score. It
// lives only for the duration of one Retrieve call.
type scoredChunk struct {
	chunk datatypes.Chunk
	score float64
}

// hybridSearch rescores a 2k similarity pool by keyword overlap with
// the query and keeps the top k.
func (e *Engine) hybridSearch(ctx context.Context, query string, k int, documentIDs []string) []datatypes.Chunk {
	candidates := e.fetcher.Fetch(ctx, query, k*2, documentIDs)

	queryTokens := tokenSet(query)
	scored := make([]scoredChunk, 0, len(candidates))
	for _, chunk := range candidates {
		scored = append(scored, scoredChunk{
			chunk: chunk,
			score: keywordScore(queryTokens, chunk.Content),
		})
	}

	return topK(scored, k)
}

// rerankedSearch rescores a 3k similarity pool with three normalized
// factors (keyword overlap, content length, document position) and
// keeps the top k by the weighted sum.
func (e *Engine) rerankedSearch(ctx context.Context, query string, k int, documentIDs []string) []datatypes.Chunk {
	candidates := e.fetcher.Fetch(ctx, query, k*3, documentIDs)
	if len(candidates) == 0 {
		return []datatypes.Chunk{}
	}

	queryTokens := tokenSet(query)
	scored := make([]scoredChunk, 0, len(candidates))
	for _, chunk := range candidates {
		score := rerankKeywordWeight*keywordScore(queryTokens, chunk.Content) +
			rerankLengthWeight*lengthScore(chunk.Content) +
			rerankPositionWeight*positionScore(chunk.ChunkIndex, chunk.TotalChunks)
		scored = append(scored, scoredChunk{chunk: chunk, score: score})
	}

	return topK(scored, k)
}

// topK stable-sorts descending by score and truncates. The stable sort
// keeps the backend's relevance order on ties.
func topK(scored []scoredChunk, k int) []datatypes.Chunk {
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	chunks := make([]datatypes.Chunk, 0, len(scored))
	for _, s := range scored {
		chunks = append(chunks, s.chunk)
	}
	return chunks
}

// tokenSet lowercases and whitespace-splits text into a set; duplicate
// tokens collapse.
func tokenSet(text string) map[string]struct{} {
	tokens := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// keywordScore is the fraction of query tokens present in the content
// token set, in [0,1]. A query with no tokens scores 0.
func keywordScore(queryTokens map[string]struct{}, content string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	contentTokens := tokenSet(content)
	matches := 0
	for token := range queryTokens {
		if _, ok := contentTokens[token]; ok {
			matches++
		}
	}
	return float64(matches) / float64(len(queryTokens))
}

// lengthScore peaks at idealChunkWords and falls off linearly to 0 at
// zero or double the ideal, clamped to [0,1].
func lengthScore(content string) float64 {
	words := float64(len(strings.Fields(content)))
	score := 1.0 - abs(words-idealChunkWords)/idealChunkWords
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// positionScore prefers earlier chunks, floored at positionFloor so a
// document's tail is never eliminated by position alone. The last chunk
// of any document scores exactly the floor.
func positionScore(chunkIndex, totalChunks int) float64 {
	if totalChunks < 1 {
		totalChunks = 1
	}
	score := 1.0 - float64(chunkIndex)/float64(totalChunks)
	if score < positionFloor {
		return positionFloor
	}
	return score
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
