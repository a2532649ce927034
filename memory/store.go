// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/AleutianAI/AleutianChat/vectorstore"
)

// timestampLayout is RFC3339 with a fixed-width nine-digit fraction.
// The variable-width fraction of RFC3339Nano would break the invariant
// that lexicographic order of stored timestamps is time order (".5"
// sorts after ".51"), and Recent sorts these as strings.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store appends conversation turns to the memory index.
type Store struct {
	index vectorstore.Index
	now   func() time.Time
}

// NewStore creates a store over the chat memory index.
func NewStore(index vectorstore.Index) *Store {
	return &Store{index: index, now: time.Now}
}

// AddMessage persists one conversation turn. The timestamp is assigned
// here (RFC3339 UTC, fixed-width fraction) so ordering is consistent
// regardless of caller.
func (s *Store) AddMessage(ctx context.Context, conversationID, role, content string) error {
	metadata := map[string]any{
		"conversation_id": conversationID,
		"role":            role,
		"timestamp":       s.now().UTC().Format(timestampLayout),
	}
	if _, err := s.index.Insert(ctx, content, metadata); err != nil {
		return fmt.Errorf("failed to save conversation turn: %w", err)
	}
	return nil
}

// DeleteConversation removes every stored turn of a conversation.
// Used when conversation metadata is deleted so memory does not leak.
func (s *Store) DeleteConversation(ctx context.Context, conversationID string) (int, error) {
	filter := vectorstore.WhereString("conversation_id", conversationID)
	return s.index.DeleteWhere(ctx, filter)
}
