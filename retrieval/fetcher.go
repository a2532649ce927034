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

	"github.com/AleutianAI/AleutianChat/datatypes"
	"github.com/AleutianAI/AleutianChat/vectorstore"
)

// CandidateFetcher wraps the vector index's similarity search and
// compensates for the backend's missing set-membership filter.
//
// Retrieval is best-effort context enrichment: any backend failure is
// logged and surfaces as an empty candidate pool, never as an error.
// Failing a whole chat turn over a missing context snippet would be a
// worse outcome than answering without it.
type CandidateFetcher struct {
	index vectorstore.Index
}

// NewCandidateFetcher creates a fetcher over the document chunk index.
func NewCandidateFetcher(index vectorstore.Index) *CandidateFetcher {
	return &CandidateFetcher{index: index}
}

// Fetch returns up to k chunks in the backend's native relevance order
// (descending similarity).
//
// When documentIDs is non-empty the backend filter cannot express
// "document_id IN (...)", so the fetcher over-fetches 2k unfiltered
// candidates and keeps the matching ones locally. If the wanted
// documents are sparse among the top 2k this under-fills; that
// approximation is accepted and not corrected by further fetching.
func (f *CandidateFetcher) Fetch(ctx context.Context, query string, k int, documentIDs []string) []datatypes.Chunk {
	if k <= 0 {
		return nil
	}

	if len(documentIDs) == 0 {
		records, err := f.index.Search(ctx, query, k, nil)
		if err != nil {
			slog.Warn("Candidate fetch failed, degrading to empty context", "error", err)
			return []datatypes.Chunk{}
		}
		return chunksFromRecords(records)
	}

	records, err := f.index.Search(ctx, query, k*2, nil)
	if err != nil {
		slog.Warn("Candidate fetch failed, degrading to empty context", "error", err)
		return []datatypes.Chunk{}
	}

	wanted := make(map[string]struct{}, len(documentIDs))
	for _, id := range documentIDs {
		wanted[id] = struct{}{}
	}

	chunks := make([]datatypes.Chunk, 0, k)
	for _, record := range records {
		chunk := datatypes.ChunkFromMetadata(record.Content, record.Metadata)
		if _, ok := wanted[chunk.DocumentID]; !ok {
			continue
		}
		chunks = append(chunks, chunk)
		if len(chunks) == k {
			break
		}
	}
	return chunks
}

func chunksFromRecords(records []vectorstore.Record) []datatypes.Chunk {
	chunks := make([]datatypes.Chunk, 0, len(records))
	for _, record := range records {
		chunks = append(chunks, datatypes.ChunkFromMetadata(record.Content, record.Metadata))
	}
	return chunks
}
