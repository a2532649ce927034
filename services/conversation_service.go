// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package services provides the business logic of the chat backend.
//
// Service structs sit between the HTTP handlers and the storage and
// model layers. They are constructed once at startup with their
// dependencies injected, accept context on every method for
// cancellation and tracing, and never reach into process-global state.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianChat/datatypes"
	"github.com/AleutianAI/AleutianChat/memory"
	"github.com/AleutianAI/AleutianChat/vectorstore"
)

// conversationTracer is the OpenTelemetry tracer for ConversationService.
var conversationTracer = otel.Tracer("aleutian.chat.services.conversation")

// ErrConversationNotFound is returned when a conversation ID resolves
// to nothing. Handlers map it to 404.
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationService manages conversation metadata and its lifecycle.
//
// Metadata (title, timestamps, counters) lives in its own collection,
// one object per conversation; the turns themselves live in the chat
// memory collection under the same conversation ID. The service owns
// both so a delete cannot leave orphaned turns behind.
type ConversationService struct {
	meta      vectorstore.Index
	turns     vectorstore.Index
	retriever *memory.Retriever
	now       func() time.Time
}

// NewConversationService creates the service over the metadata and
// chat memory indexes.
func NewConversationService(meta, turns vectorstore.Index) *ConversationService {
	return &ConversationService{
		meta:      meta,
		turns:     turns,
		retriever: memory.NewRetriever(turns),
		now:       time.Now,
	}
}

// Create starts a new conversation and returns its metadata. The title
// is typically derived from the first query and may be renamed later.
func (s *ConversationService) Create(ctx context.Context, title string) (*datatypes.Conversation, error) {
	ctx, span := conversationTracer.Start(ctx, "ConversationService.Create")
	defer span.End()

	title = truncateTitle(title)
	now := s.now().UTC().Format(time.RFC3339)
	conv := &datatypes.Conversation{
		ID:           uuid.NewString(),
		Title:        title,
		CreatedAt:    now,
		UpdatedAt:    now,
		MessageCount: 0,
	}
	span.SetAttributes(attribute.String("conversation.id", conv.ID))

	metadata := map[string]any{
		"conversation_id": conv.ID,
		"created_at":      conv.CreatedAt,
		"updated_at":      conv.UpdatedAt,
		"message_count":   0,
	}
	if _, err := s.meta.Insert(ctx, title, metadata); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	slog.Info("Created conversation", "conversationId", conv.ID, "title", title)
	return conv, nil
}

// Get returns one conversation's metadata.
func (s *ConversationService) Get(ctx context.Context, conversationID string) (*datatypes.Conversation, error) {
	record, err := s.metaRecord(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	conv := conversationFromRecord(*record)
	return &conv, nil
}

// List returns every conversation, most recently updated first, each
// with a one-line preview of its latest turn.
//
// The preview costs one extra read per conversation. Fine at personal
// scale; revisit if conversation counts grow past a few hundred.
func (s *ConversationService) List(ctx context.Context) ([]datatypes.ConversationPreview, error) {
	ctx, span := conversationTracer.Start(ctx, "ConversationService.List")
	defer span.End()

	records, err := s.meta.FetchAll(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	previews := make([]datatypes.ConversationPreview, 0, len(records))
	for _, record := range records {
		conv := conversationFromRecord(record)
		if conv.ID == "" {
			continue
		}
		preview := datatypes.ConversationPreview{Conversation: conv}
		if latest := s.retriever.Recent(ctx, conv.ID, 1); len(latest) > 0 {
			preview.LastMessage = firstLine(latest[0].Content)
		}
		previews = append(previews, preview)
	}

	sort.Slice(previews, func(i, j int) bool {
		if previews[i].UpdatedAt != previews[j].UpdatedAt {
			return previews[i].UpdatedAt > previews[j].UpdatedAt
		}
		return previews[i].ID < previews[j].ID
	})
	span.SetAttributes(attribute.Int("conversations.count", len(previews)))
	return previews, nil
}

// Rename sets a conversation's title.
func (s *ConversationService) Rename(ctx context.Context, conversationID, title string) (*datatypes.Conversation, error) {
	ctx, span := conversationTracer.Start(ctx, "ConversationService.Rename")
	defer span.End()
	span.SetAttributes(attribute.String("conversation.id", conversationID))

	record, err := s.metaRecord(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	title = truncateTitle(title)
	if err := s.meta.Update(ctx, record.ID, title, nil); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to rename conversation: %w", err)
	}

	conv := conversationFromRecord(*record)
	conv.Title = title
	return &conv, nil
}

// RecordExchange bumps the turn counter and freshness timestamp after
// turns have been appended to the conversation's memory.
//
// This is a read-modify-write without backend transactions; concurrent
// chats on the same conversation can under-count. The counter is
// display metadata only, never used for correctness.
func (s *ConversationService) RecordExchange(ctx context.Context, conversationID string, turnsAdded int) error {
	record, err := s.metaRecord(ctx, conversationID)
	if err != nil {
		return err
	}

	count := int(datatypes.MetaInt64(record.Metadata, "message_count")) + turnsAdded
	metadata := map[string]any{
		"message_count": count,
		"updated_at":    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.meta.Update(ctx, record.ID, "", metadata); err != nil {
		return fmt.Errorf("failed to update conversation counters: %w", err)
	}
	return nil
}

// Delete removes a conversation's metadata and all of its turns.
func (s *ConversationService) Delete(ctx context.Context, conversationID string) error {
	ctx, span := conversationTracer.Start(ctx, "ConversationService.Delete")
	defer span.End()
	span.SetAttributes(attribute.String("conversation.id", conversationID))

	filter := vectorstore.WhereString("conversation_id", conversationID)
	deleted, err := s.meta.DeleteWhere(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if deleted == 0 {
		return ErrConversationNotFound
	}

	turnsDeleted, err := s.turns.DeleteWhere(ctx, filter)
	if err != nil {
		// Metadata is already gone; the turns are orphaned but
		// unreachable through the API. Surface the failure anyway.
		span.RecordError(err)
		return fmt.Errorf("conversation deleted but failed to delete its turns: %w", err)
	}

	slog.Info("Deleted conversation", "conversationId", conversationID, "turns", turnsDeleted)
	return nil
}

// Search finds conversations whose turns are semantically close to the
// query. One result per conversation, best-matching turn attached,
// ranked by the backend's relevance order of that turn.
func (s *ConversationService) Search(ctx context.Context, query string, limit int) ([]datatypes.ConversationSearchResult, error) {
	ctx, span := conversationTracer.Start(ctx, "ConversationService.Search")
	defer span.End()

	if limit <= 0 {
		limit = 10
	}

	// Over-fetch turn hits since several may land in one conversation.
	records, err := s.turns.Search(ctx, query, limit*4, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to search conversations: %w", err)
	}

	seen := make(map[string]struct{})
	results := make([]datatypes.ConversationSearchResult, 0, limit)
	for _, record := range records {
		entry := datatypes.MemoryEntryFromMetadata(record.Content, record.Metadata)
		if entry.ConversationID == "" {
			continue
		}
		if _, dup := seen[entry.ConversationID]; dup {
			continue
		}
		seen[entry.ConversationID] = struct{}{}

		conv, err := s.Get(ctx, entry.ConversationID)
		if err != nil {
			// Turn without metadata: deleted mid-search. Skip it.
			continue
		}
		results = append(results, datatypes.ConversationSearchResult{
			Conversation: *conv,
			MatchedTurn:  entry,
		})
		if len(results) == limit {
			break
		}
	}
	span.SetAttributes(attribute.Int("search.results", len(results)))
	return results, nil
}

// metaRecord fetches the raw metadata record, keeping the backend id
// for follow-up updates.
func (s *ConversationService) metaRecord(ctx context.Context, conversationID string) (*vectorstore.Record, error) {
	filter := vectorstore.WhereString("conversation_id", conversationID)
	records, err := s.meta.FetchAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrConversationNotFound
	}
	return &records[0], nil
}

func conversationFromRecord(record vectorstore.Record) datatypes.Conversation {
	return datatypes.Conversation{
		ID:           datatypes.MetaString(record.Metadata, "conversation_id"),
		Title:        record.Content,
		CreatedAt:    datatypes.MetaString(record.Metadata, "created_at"),
		UpdatedAt:    datatypes.MetaString(record.Metadata, "updated_at"),
		MessageCount: int(datatypes.MetaInt64(record.Metadata, "message_count")),
	}
}

func truncateTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "New conversation"
	}
	runes := []rune(title)
	if len(runes) > datatypes.MaxTitleLength {
		return string(runes[:datatypes.MaxTitleLength])
	}
	return title
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	const max = 120
	runes := []rune(text)
	if len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return text
}
