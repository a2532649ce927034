// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package documents

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianChat/datatypes"
	"github.com/AleutianAI/AleutianChat/vectorstore"
)

var tracer = otel.Tracer("aleutian.chat.documents")

// Store persists document chunks to the chunk index.
type Store struct {
	index vectorstore.Index
	now   func() time.Time
}

// NewStore creates a store over the document chunk index.
func NewStore(index vectorstore.Index) *Store {
	return &Store{index: index, now: time.Now}
}

// Ingest runs the full pipeline for one upload and stores the result.
// Chunks are written one at a time; on a mid-stream failure the already
// written chunks of this document are removed so no partial document is
// ever retrievable.
func (s *Store) Ingest(ctx context.Context, filename string, data []byte) (*datatypes.IngestResponse, error) {
	ctx, span := tracer.Start(ctx, "Store.Ingest")
	defer span.End()
	span.SetAttributes(
		attribute.String("document.filename", filename),
		attribute.Int("document.bytes", len(data)),
	)

	text, err := ExtractText(filename, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	chunks, err := SplitText(filename, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, datatypes.ErrEmptyDocument
	}

	documentID := uuid.NewString()
	ingestedAt := s.now().UTC().Format(time.RFC3339)
	span.SetAttributes(
		attribute.String("document.id", documentID),
		attribute.Int("document.chunks", len(chunks)),
	)

	for i, chunk := range chunks {
		metadata := map[string]any{
			"document_id":  documentID,
			"filename":     filename,
			"chunk_index":  i,
			"total_chunks": len(chunks),
			"ingested_at":  ingestedAt,
		}
		if _, err := s.index.Insert(ctx, chunk, metadata); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			s.rollback(ctx, documentID)
			return nil, fmt.Errorf("failed to store chunk %d of %d: %w", i+1, len(chunks), err)
		}
	}

	slog.Info("Ingested document",
		"documentId", documentID, "filename", filename, "chunks", len(chunks))
	return &datatypes.IngestResponse{
		DocumentID:  documentID,
		Filename:    filename,
		TotalChunks: len(chunks),
	}, nil
}

// rollback removes whatever chunks of a failed ingest made it in.
// Best-effort: a failure here leaves orphans that a re-ingest replaces.
func (s *Store) rollback(ctx context.Context, documentID string) {
	filter := vectorstore.WhereString("document_id", documentID)
	if _, err := s.index.DeleteWhere(ctx, filter); err != nil {
		slog.Warn("Failed to roll back partial document", "documentId", documentID, "error", err)
	}
}

// List returns one summary per ingested document, sorted most recent
// first. Aggregated from the chunk level since chunks are the only
// stored representation.
func (s *Store) List(ctx context.Context) ([]datatypes.DocumentInfo, error) {
	ctx, span := tracer.Start(ctx, "Store.List")
	defer span.End()

	records, err := s.index.FetchAll(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	byID := make(map[string]*datatypes.DocumentInfo)
	for _, record := range records {
		chunk := datatypes.ChunkFromMetadata(record.Content, record.Metadata)
		if chunk.DocumentID == "" {
			continue
		}
		info, ok := byID[chunk.DocumentID]
		if !ok {
			info = &datatypes.DocumentInfo{
				DocumentID:  chunk.DocumentID,
				Filename:    chunk.Filename,
				TotalChunks: chunk.TotalChunks,
				IngestedAt:  datatypes.MetaString(record.Metadata, "ingested_at"),
			}
			byID[chunk.DocumentID] = info
		}
	}

	infos := make([]datatypes.DocumentInfo, 0, len(byID))
	for _, info := range byID {
		infos = append(infos, *info)
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].IngestedAt != infos[j].IngestedAt {
			return infos[i].IngestedAt > infos[j].IngestedAt
		}
		return infos[i].DocumentID < infos[j].DocumentID
	})
	span.SetAttributes(attribute.Int("documents.count", len(infos)))
	return infos, nil
}

// Delete removes every chunk of a document and returns how many went.
func (s *Store) Delete(ctx context.Context, documentID string) (int, error) {
	ctx, span := tracer.Start(ctx, "Store.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("document.id", documentID))

	filter := vectorstore.WhereString("document_id", documentID)
	deleted, err := s.index.DeleteWhere(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	slog.Info("Deleted document", "documentId", documentID, "chunks", deleted)
	return deleted, nil
}
