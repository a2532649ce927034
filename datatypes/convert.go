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

// Conversion from the vector backend's dynamic metadata maps into the
// typed records the rest of the system works with. Numbers arrive as
// float64 from the GraphQL layer regardless of the declared schema
// type, so the accessors accept both.

// ChunkMetadata converts a chunk's typed fields back into the metadata
// map stored on the backend.
func (c *Chunk) ChunkMetadata() map[string]any {
	return map[string]any{
		"document_id":  c.DocumentID,
		"filename":     c.Filename,
		"chunk_index":  c.ChunkIndex,
		"total_chunks": c.TotalChunks,
	}
}

// ChunkFromMetadata builds a Chunk from backend content and metadata.
func ChunkFromMetadata(content string, metadata map[string]any) Chunk {
	return Chunk{
		Content:     content,
		DocumentID:  MetaString(metadata, "document_id"),
		Filename:    MetaString(metadata, "filename"),
		ChunkIndex:  MetaInt(metadata, "chunk_index"),
		TotalChunks: MetaInt(metadata, "total_chunks"),
	}
}

// MemoryEntryFromMetadata builds a MemoryEntry from backend content and
// metadata.
func MemoryEntryFromMetadata(content string, metadata map[string]any) MemoryEntry {
	return MemoryEntry{
		Content:        content,
		ConversationID: MetaString(metadata, "conversation_id"),
		Role:           MetaString(metadata, "role"),
		Timestamp:      MetaString(metadata, "timestamp"),
	}
}

// MetaString reads a string metadata field, "" when absent.
func MetaString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// MetaInt reads an integer metadata field, 0 when absent.
func MetaInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// MetaInt64 reads a 64-bit integer metadata field, 0 when absent.
func MetaInt64(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}
