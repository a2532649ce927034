// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package memory stores and retrieves conversation turns.
//
// Each chat turn is persisted to the vector backend twice over its
// lifetime (a user entry and an assistant entry) and read back two
// independent ways: relevance-ranked snippets for grounding the next
// answer, and recency-ordered history for the prompt's conversation
// transcript.
package memory

import (
	"context"
	"log/slog"
	"sort"

	"github.com/AleutianAI/AleutianChat/datatypes"
	"github.com/AleutianAI/AleutianChat/vectorstore"
)

// DefaultRelevantK is how many memory snippets a chat turn grounds on
// when the caller does not say otherwise.
const DefaultRelevantK = 4

// Retriever reads conversation turns from the memory index. Both
// retrieval paths are read-only and idempotent; failures degrade to
// empty results so a chat turn never fails over missing memory.
type Retriever struct {
	index vectorstore.Index
}

// NewRetriever creates a retriever over the chat memory index.
func NewRetriever(index vectorstore.Index) *Retriever {
	return &Retriever{index: index}
}

// Relevant returns up to k turns of this conversation ranked by
// semantic similarity to the query, in the backend's relevance order.
// Empty when the conversation has no history or the backend fails.
func (r *Retriever) Relevant(ctx context.Context, conversationID, query string, k int) []datatypes.MemoryEntry {
	if k <= 0 {
		k = DefaultRelevantK
	}

	filter := vectorstore.WhereString("conversation_id", conversationID)
	records, err := r.index.Search(ctx, query, k, filter)
	if err != nil {
		slog.Warn("Relevant memory lookup failed, continuing without it",
			"conversationId", conversationID, "error", err)
		return []datatypes.MemoryEntry{}
	}

	return entriesFromRecords(records)
}

// Recent returns the conversation's turns in ascending timestamp order,
// truncated to the last limit entries. A limit of zero or less means
// unbounded.
//
// The backend's native search is similarity-only and cannot express
// "most recent", so this fetches every turn of the conversation and
// sorts locally — a full scan per call, traded for correct recency
// order.
func (r *Retriever) Recent(ctx context.Context, conversationID string, limit int) []datatypes.MemoryEntry {
	filter := vectorstore.WhereString("conversation_id", conversationID)
	records, err := r.index.FetchAll(ctx, filter)
	if err != nil {
		slog.Warn("Recent memory lookup failed, continuing without it",
			"conversationId", conversationID, "error", err)
		return []datatypes.MemoryEntry{}
	}

	entries := entriesFromRecords(records)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp < entries[j].Timestamp
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries
}

func entriesFromRecords(records []vectorstore.Record) []datatypes.MemoryEntry {
	entries := make([]datatypes.MemoryEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, datatypes.MemoryEntryFromMetadata(record.Content, record.Metadata))
	}
	return entries
}
