// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// This file contains conversation metadata, search, export and sharing
// types. The turn-level memory types live in memory.go.
package datatypes

import (
	"github.com/go-playground/validator/v10"
)

// Export formats accepted by the conversation export endpoint.
const (
	ExportFormatJSON = "json"
	ExportFormatText = "txt"
	ExportFormatPDF  = "pdf"
)

// MaxTitleLength caps conversation titles. Auto-generated titles are
// truncated to this before storage.
const MaxTitleLength = 80

var conversationValidate = validator.New()

// Conversation is the stored metadata for one conversation. The turns
// themselves live in the chat memory index under the same ID.
type Conversation struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	MessageCount int    `json:"message_count"`
}

// ConversationPreview is a list-view projection of a conversation: its
// metadata plus the first line of its most recent exchange.
type ConversationPreview struct {
	Conversation
	LastMessage string `json:"last_message,omitempty"`
}

// UpdateConversationRequest is the body of PATCH /v1/conversations/:id.
type UpdateConversationRequest struct {
	Title string `json:"title" validate:"required,min=1,max=80"`
}

// Validate validates the UpdateConversationRequest fields.
func (r *UpdateConversationRequest) Validate() error {
	return conversationValidate.Struct(r)
}

// ConversationSearchResult is one hit from conversation search: the
// conversation plus the matching turn that produced the hit.
type ConversationSearchResult struct {
	Conversation Conversation `json:"conversation"`
	MatchedTurn  MemoryEntry  `json:"matched_turn"`
}

// ShareLink is the response body when a conversation share token is
// minted. The token grants read-only export access until ExpiresAt.
type ShareLink struct {
	Token     string `json:"token"`
	URL       string `json:"url"`
	ExpiresAt string `json:"expires_at"`
}
