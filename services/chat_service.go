// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AleutianAI/AleutianChat/datatypes"
	"github.com/AleutianAI/AleutianChat/llm"
	"github.com/AleutianAI/AleutianChat/memory"
	"github.com/AleutianAI/AleutianChat/retrieval"
)

// chatTracer is the OpenTelemetry tracer for ChatService operations.
var chatTracer = otel.Tracer("aleutian.chat.services.chat")

// ChatService runs one full chat turn: gather context, generate, and
// persist the exchange.
//
// Context gathering is best-effort throughout. A turn proceeds with
// whatever subset of document chunks, memory snippets, and history
// could be fetched; only generation itself can fail the request.
type ChatService struct {
	engine        *retrieval.Engine
	memories      *memory.Retriever
	turns         *memory.Store
	conversations *ConversationService
	model         llm.Client
}

// NewChatService wires the chat pipeline from its parts.
func NewChatService(
	engine *retrieval.Engine,
	memories *memory.Retriever,
	turns *memory.Store,
	conversations *ConversationService,
	model llm.Client,
) *ChatService {
	return &ChatService{
		engine:        engine,
		memories:      memories,
		turns:         turns,
		conversations: conversations,
		model:         model,
	}
}

// Chat handles one user turn and returns the assistant's answer with
// the document chunks that grounded it.
//
// An empty ConversationID starts a new conversation titled after the
// query; a non-empty one must exist or ErrConversationNotFound comes
// back. The exchange is persisted only after generation succeeds, so a
// failed turn leaves no half-written history.
func (s *ChatService) Chat(ctx context.Context, req *datatypes.ChatRequest) (*datatypes.ChatResponse, error) {
	ctx, span := chatTracer.Start(ctx, "ChatService.Chat")
	defer span.End()

	req.EnsureDefaults()

	conversationID := req.ConversationID
	if conversationID == "" {
		conv, err := s.conversations.Create(ctx, firstLine(req.Query))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		conversationID = conv.ID
	} else if _, err := s.conversations.Get(ctx, conversationID); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("conversation.id", conversationID))

	strategy := req.Strategy
	if strategy == "" {
		strategy = retrieval.SelectStrategy(req.Query)
	}
	span.SetAttributes(attribute.String("retrieval.strategy", strategy))

	chunks := s.engine.Retrieve(ctx, req.Query, strategy, req.K, req.DocumentIDs)
	snippets := s.memories.Relevant(ctx, conversationID, req.Query, memory.DefaultRelevantK)
	history := s.memories.Recent(ctx, conversationID, req.HistoryTurns)

	prompt := buildPrompt(req.Query, chunks, snippets, history)
	answer, err := s.model.Generate(ctx, prompt, llm.GenerationParams{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	s.persistExchange(ctx, conversationID, req.Query, answer)

	return &datatypes.ChatResponse{
		ConversationID: conversationID,
		Answer:         answer,
		Strategy:       strategy,
		Sources:        chunks,
	}, nil
}

// persistExchange writes both turns and bumps the conversation's
// counters. The answer has already been paid for at this point, so
// storage failures are logged and the answer is returned anyway.
func (s *ChatService) persistExchange(ctx context.Context, conversationID, query, answer string) {
	if err := s.turns.AddMessage(ctx, conversationID, datatypes.RoleUser, query); err != nil {
		slog.Warn("Failed to persist user turn", "conversationId", conversationID, "error", err)
		return
	}
	if err := s.turns.AddMessage(ctx, conversationID, datatypes.RoleAssistant, answer); err != nil {
		slog.Warn("Failed to persist assistant turn", "conversationId", conversationID, "error", err)
		return
	}
	if err := s.conversations.RecordExchange(ctx, conversationID, 2); err != nil {
		slog.Warn("Failed to update conversation counters", "conversationId", conversationID, "error", err)
	}
}

// buildPrompt assembles the generation prompt: retrieved document
// context first, then relevant memory snippets, then the recent
// transcript, then the query. Sections with nothing to say are omitted
// entirely rather than left as empty headers.
func buildPrompt(query string, chunks []datatypes.Chunk, snippets, history []datatypes.MemoryEntry) string {
	var b strings.Builder

	if len(chunks) > 0 {
		b.WriteString("Context from documents:\n")
		for i, chunk := range chunks {
			fmt.Fprintf(&b, "[%d] %s\n%s\n\n", i+1, chunk.Filename, chunk.Content)
		}
	}

	if len(snippets) > 0 {
		b.WriteString("Possibly relevant earlier exchanges:\n")
		for _, entry := range snippets {
			fmt.Fprintf(&b, "- %s: %s\n", entry.Role, entry.Content)
		}
		b.WriteString("\n")
	}

	if len(history) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, entry := range history {
			fmt.Fprintf(&b, "%s: %s\n", promptRole(entry.Role), entry.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "User: %s\nAssistant:", query)
	return b.String()
}

func promptRole(role string) string {
	if role == datatypes.RoleAssistant {
		return "Assistant"
	}
	return "User"
}
