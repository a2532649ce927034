// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package datatypes

// Conversation roles stored on memory entries.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// MemoryEntry is one stored conversation turn. Entries are append-only:
// they are written once per turn and never mutated afterwards.
//
// Timestamp is an RFC3339 UTC string, so lexicographic order equals
// temporal order and entries can be sorted without parsing.
type MemoryEntry struct {
	Content        string `json:"content"`
	ConversationID string `json:"conversation_id"`
	Role           string `json:"role"`
	Timestamp      string `json:"timestamp"`
}
