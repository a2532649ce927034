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

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weaviate/weaviate/entities/models"
)

func TestRetrievalRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     RetrievalRequest
		wantErr bool
	}{
		{"valid minimal", RetrievalRequest{Query: "q"}, false},
		{"valid full", RetrievalRequest{Query: "q", Strategy: StrategyRerank, K: 10}, false},
		{"empty query", RetrievalRequest{Query: ""}, true},
		{"unknown strategy", RetrievalRequest{Query: "q", Strategy: "keyword"}, true},
		{"negative k", RetrievalRequest{Query: "q", K: -1}, true},
		{"k too large", RetrievalRequest{Query: "q", K: 51}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRetrievalRequest_EnsureDefaults(t *testing.T) {
	req := RetrievalRequest{Query: "q"}
	req.EnsureDefaults()
	assert.Equal(t, 5, req.K)

	req = RetrievalRequest{Query: "q", K: 12}
	req.EnsureDefaults()
	assert.Equal(t, 12, req.K)
}

func TestChatRequest_Validate(t *testing.T) {
	valid := ChatRequest{Query: "hello"}
	assert.NoError(t, valid.Validate())

	withConv := ChatRequest{Query: "hello", ConversationID: "11111111-2222-4333-8444-555555555555"}
	assert.NoError(t, withConv.Validate())

	badConv := ChatRequest{Query: "hello", ConversationID: "not-a-uuid"}
	assert.Error(t, badConv.Validate())

	oversized := ChatRequest{Query: strings.Repeat("x", MaxQueryBytes+1)}
	assert.ErrorIs(t, oversized.Validate(), ErrQueryTooLarge)
}

func TestChatRequest_EnsureDefaults(t *testing.T) {
	req := ChatRequest{Query: "q"}
	req.EnsureDefaults()
	assert.Equal(t, DefaultChatRetrievalK, req.K)
	assert.Equal(t, DefaultHistoryTurns, req.HistoryTurns)
}

func TestChunkMetadata_RoundTrips(t *testing.T) {
	chunk := Chunk{
		Content:     "text",
		DocumentID:  "doc-1",
		Filename:    "a.txt",
		ChunkIndex:  3,
		TotalChunks: 7,
	}

	rebuilt := ChunkFromMetadata("text", chunk.ChunkMetadata())
	assert.Equal(t, chunk, rebuilt)
}

func TestChunkFromMetadata_HandlesGraphQLNumbers(t *testing.T) {
	// The GraphQL layer decodes every number as float64.
	chunk := ChunkFromMetadata("text", map[string]any{
		"document_id":  "doc-1",
		"filename":     "a.txt",
		"chunk_index":  float64(2),
		"total_chunks": float64(9),
	})
	assert.Equal(t, 2, chunk.ChunkIndex)
	assert.Equal(t, 9, chunk.TotalChunks)
}

func TestWeaviateSchemas_DeclareCoreProperties(t *testing.T) {
	chunkSchema := GetDocumentChunkSchema()
	require.Equal(t, ClassDocumentChunk, chunkSchema.Class)
	assertHasProperties(t, chunkSchema,
		"content", "document_id", "filename", "chunk_index", "total_chunks", "ingested_at")
	assert.Equal(t, "text2vec-transformers", chunkSchema.Vectorizer)

	memorySchema := GetChatMemorySchema()
	require.Equal(t, ClassChatMemory, memorySchema.Class)
	assertHasProperties(t, memorySchema,
		"content", "conversation_id", "role", "timestamp")
	assert.Equal(t, "text2vec-transformers", memorySchema.Vectorizer)

	metaSchema := GetConversationMetaSchema()
	require.Equal(t, ClassConversationMeta, metaSchema.Class)
	assertHasProperties(t, metaSchema,
		"content", "conversation_id", "created_at", "updated_at", "message_count")
	assert.Equal(t, "none", metaSchema.Vectorizer, "metadata is never searched semantically")
}

func assertHasProperties(t *testing.T, class *models.Class, names ...string) {
	t.Helper()
	have := make(map[string]bool, len(class.Properties))
	for _, prop := range class.Properties {
		have[prop.Name] = true
	}
	for _, name := range names {
		assert.True(t, have[name], "class %s is missing property %s", class.Class, name)
	}
}
