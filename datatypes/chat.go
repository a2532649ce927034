// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// This file contains request and response types for the chat endpoint.
// Retrieval-only types live in retrieval.go.
package datatypes

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// =============================================================================
// Limits
// =============================================================================

const (
	// MaxQueryBytes is the maximum size of a single chat query. Checked
	// in bytes, not runes, so oversized payloads are rejected before any
	// further processing.
	MaxQueryBytes = 32 * 1024 // 32KB

	// DefaultHistoryTurns is how many recent turns of the conversation
	// are replayed into the prompt when the caller does not specify.
	DefaultHistoryTurns = 6

	// DefaultChatRetrievalK is how many document chunks ground a chat
	// answer. Smaller than the standalone retrieval default because the
	// prompt also carries memory snippets and history.
	DefaultChatRetrievalK = 3
)

// ErrQueryTooLarge is returned when a chat query exceeds MaxQueryBytes.
var ErrQueryTooLarge = errors.New("query exceeds maximum size of 32KB")

// chatValidate is the validator instance for chat datatypes.
var chatValidate = validator.New()

// =============================================================================
// Chat Request Types
// =============================================================================

// ChatRequest is the body of a POST /v1/chat call.
//
// # Description
//
// ChatRequest carries one user turn. When ConversationID is empty a new
// conversation is created and its ID is returned in the response; when
// set, the turn is appended to that conversation and prior turns inform
// the answer. Strategy and K tune document retrieval the same way they
// do on the retrieval endpoint; both are optional.
type ChatRequest struct {
	ConversationID string   `json:"conversation_id" validate:"omitempty,uuid4"`
	Query          string   `json:"query" validate:"required,min=1"`
	Strategy       string   `json:"strategy" validate:"omitempty,oneof=similarity hybrid rerank"`
	K              int      `json:"k" validate:"gte=0,lte=50"`
	DocumentIDs    []string `json:"document_ids" validate:"omitempty,dive,required"`
	HistoryTurns   int      `json:"history_turns" validate:"gte=0,lte=50"`
}

// Validate checks the request against its struct tags plus the byte
// limit on Query.
func (r *ChatRequest) Validate() error {
	if len(r.Query) > MaxQueryBytes {
		return ErrQueryTooLarge
	}
	return chatValidate.Struct(r)
}

// EnsureDefaults fills zero-valued tuning fields.
func (r *ChatRequest) EnsureDefaults() {
	if r.K <= 0 {
		r.K = DefaultChatRetrievalK
	}
	if r.HistoryTurns == 0 {
		r.HistoryTurns = DefaultHistoryTurns
	}
}

// =============================================================================
// Chat Response Types
// =============================================================================

// ChatResponse is the body returned by POST /v1/chat.
type ChatResponse struct {
	ConversationID string  `json:"conversation_id"`
	Answer         string  `json:"answer"`
	Strategy       string  `json:"strategy"`
	Sources        []Chunk `json:"sources"`
}
