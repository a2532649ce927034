// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package vectorstore defines the boundary to the vector search backend
// and provides the Weaviate-backed implementation.
//
// The retrieval and memory layers depend only on the Index interface.
// The backend is treated as a black box: it stores text with metadata,
// runs similarity search with a single-field equality filter, and can
// scan all records matching a filter. Set-membership ("IN") filters are
// deliberately absent from the interface; callers that need them
// compensate by over-fetching and filtering locally.
package vectorstore

import (
	"context"
	"errors"
)

// ErrBackendUnavailable wraps any failure to reach or query the vector
// backend. Callers on the retrieval path treat it as "no context"
// rather than a hard failure.
var ErrBackendUnavailable = errors.New("vector backend unavailable")

// Record is one stored object: the backend id, the raw text, and its
// metadata fields. Search results come back in descending similarity
// order.
type Record struct {
	ID       string
	Content  string
	Metadata map[string]any
}

// Filter is a single-field equality predicate over text metadata,
// e.g. conversation_id = "abc". Every field the system filters on
// (conversation IDs, document IDs) is stored as text.
type Filter struct {
	Field       string
	StringValue string
}

// WhereString builds an equality filter on a text metadata field.
func WhereString(field, value string) *Filter {
	return &Filter{Field: field, StringValue: value}
}

// Index is the black-box vector store capability.
//
// Implementations must be safe for concurrent use; the core never
// performs multi-step read-modify-write sequences against the index.
type Index interface {
	// Insert stores content with its metadata and returns the backend id.
	Insert(ctx context.Context, content string, metadata map[string]any) (string, error)

	// Update merges the given fields into the record with that id.
	// Omitted metadata fields keep their stored values; an empty
	// content string leaves content untouched.
	Update(ctx context.Context, id, content string, metadata map[string]any) error

	// Search returns up to k records ranked by descending similarity to
	// the query, optionally restricted by a metadata equality filter.
	Search(ctx context.Context, query string, k int, filter *Filter) ([]Record, error)

	// FetchAll returns every record matching the filter, in no
	// particular order. Used for recency-based retrieval where the
	// backend's native search (similarity-only) cannot help.
	FetchAll(ctx context.Context, filter *Filter) ([]Record, error)

	// DeleteWhere removes all records matching the filter and reports
	// how many were deleted.
	DeleteWhere(ctx context.Context, filter *Filter) (int, error)
}
