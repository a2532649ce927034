// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes provides data structures shared across the chat backend.
//
// This file contains the retrieval request/response types and the Chunk
// type returned by the ranking engine. For conversation memory types see
// memory.go; for Weaviate schema definitions see weaviate_schemas.go.
package datatypes

import (
	"github.com/go-playground/validator/v10"
)

// Retrieval strategy names recognized by the ranking engine.
//
// An empty strategy means "let the selector decide"; any other
// unrecognized value degrades to similarity search rather than erroring.
const (
	StrategySimilarity = "similarity"
	StrategyHybrid     = "hybrid"
	StrategyRerank     = "rerank"
)

// Chunk is one retrievable unit of document text with its positional
// metadata. Chunks are created at ingestion time and are read-only for
// the retrieval layer.
//
// Invariant: 0 <= ChunkIndex < TotalChunks.
type Chunk struct {
	Content     string `json:"content"`
	DocumentID  string `json:"document_id"`
	Filename    string `json:"filename"`
	ChunkIndex  int    `json:"chunk_index"`
	TotalChunks int    `json:"total_chunks"`
}

// retrievalValidate is the validator instance for retrieval datatypes.
var retrievalValidate = validator.New()

// RetrievalRequest is the request body for POST /v1/retrieve.
//
// # Fields
//
//   - Query: Required. The search query. Must be non-empty.
//   - Strategy: Optional. One of "similarity", "hybrid", "rerank".
//     Empty means the strategy is selected from the query automatically.
//   - K: Optional. Maximum number of chunks to return. Defaults to 5.
//   - DocumentIDs: Optional. Restrict results to chunks owned by these
//     documents. Filtering is approximate for sparse matches (the pool
//     is over-fetched 2x and filtered locally, so fewer than K results
//     may come back even when more exist).
type RetrievalRequest struct {
	Query       string   `json:"query" validate:"required,min=1"`
	Strategy    string   `json:"strategy" validate:"omitempty,oneof=similarity hybrid rerank"`
	K           int      `json:"k" validate:"gte=0,lte=50"`
	DocumentIDs []string `json:"document_ids,omitempty"`
}

// Validate validates the RetrievalRequest fields.
func (r *RetrievalRequest) Validate() error {
	return retrievalValidate.Struct(r)
}

// EnsureDefaults populates default values for optional fields.
func (r *RetrievalRequest) EnsureDefaults() {
	if r.K <= 0 {
		r.K = 5
	}
}

// RetrievalResponse is the response body for POST /v1/retrieve.
type RetrievalResponse struct {
	Chunks      []Chunk `json:"chunks"`
	Strategy    string  `json:"strategy"`
	TotalChunks int     `json:"total_chunks"`
}
