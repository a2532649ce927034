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
	"context"
	"fmt"
	"log/slog"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate/entities/models"
)

// Weaviate class names used by the chat backend.
const (
	ClassDocumentChunk    = "DocumentChunk"
	ClassChatMemory       = "ChatMemory"
	ClassConversationMeta = "ConversationMeta"
)

// GetDocumentChunkSchema returns the class holding ingested document
// chunks. Vectorized so similarity search works over chunk content.
func GetDocumentChunkSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       ClassDocumentChunk,
		Description: "One chunk of an ingested document, with positional metadata.",
		Vectorizer:  "text2vec-transformers",
		Properties: []*models.Property{
			{
				Name:         "content",
				DataType:     []string{"text"},
				Description:  "The chunk text.",
				Tokenization: "word",
			},
			{
				Name:            "document_id",
				DataType:        []string{"text"},
				Description:     "ID of the parent document. All chunks of one upload share it.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "filename",
				DataType:        []string{"text"},
				Description:     "Original filename of the upload.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "chunk_index",
				DataType:        []string{"int"},
				Description:     "Zero-based position of this chunk within the document.",
				IndexFilterable: indexFilterable,
			},
			{
				Name:            "total_chunks",
				DataType:        []string{"int"},
				Description:     "Total chunk count of the document.",
				IndexFilterable: indexFilterable,
			},
			{
				Name:            "ingested_at",
				DataType:        []string{"text"},
				Description:     "RFC3339 UTC timestamp of ingestion.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
		},
	}
}

// GetChatMemorySchema returns the class holding conversation turns.
func GetChatMemorySchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       ClassChatMemory,
		Description: "One conversation turn (user or assistant).",
		Vectorizer:  "text2vec-transformers",
		Properties: []*models.Property{
			{
				Name:         "content",
				DataType:     []string{"text"},
				Description:  "The turn text.",
				Tokenization: "word",
			},
			{
				Name:            "conversation_id",
				DataType:        []string{"text"},
				Description:     "Conversation this turn belongs to.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "role",
				DataType:        []string{"text"},
				Description:     "Speaker role: user or assistant.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "timestamp",
				DataType:        []string{"text"},
				Description:     "RFC3339 UTC timestamp. Lexicographic order is time order.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
		},
	}
}

// GetConversationMetaSchema returns the class holding per-conversation
// metadata (title, counters). Not vectorized: it is only ever looked up
// by ID, never searched semantically.
func GetConversationMetaSchema() *models.Class {
	indexFilterable := new(bool)
	*indexFilterable = true

	return &models.Class{
		Class:       ClassConversationMeta,
		Description: "Conversation metadata, one object per conversation.",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{
				Name:         "content",
				DataType:     []string{"text"},
				Description:  "Conversation title.",
				Tokenization: "word",
			},
			{
				Name:            "conversation_id",
				DataType:        []string{"text"},
				Description:     "Stable conversation ID.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "created_at",
				DataType:        []string{"text"},
				Description:     "RFC3339 UTC creation time.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "updated_at",
				DataType:        []string{"text"},
				Description:     "RFC3339 UTC time of the latest turn.",
				IndexFilterable: indexFilterable,
				Tokenization:    "field",
			},
			{
				Name:            "message_count",
				DataType:        []string{"int"},
				Description:     "Number of stored turns.",
				IndexFilterable: indexFilterable,
			},
		},
	}
}

// EnsureWeaviateSchema creates any of the backend's classes that do not
// exist yet. Existing classes are left untouched.
func EnsureWeaviateSchema(ctx context.Context, client *weaviate.Client) error {
	schemaGetters := []func() *models.Class{
		GetDocumentChunkSchema,
		GetChatMemorySchema,
		GetConversationMetaSchema,
	}

	for _, getSchema := range schemaGetters {
		class := getSchema()

		// The getter errors when the class does not exist.
		if _, err := client.Schema().ClassGetter().WithClassName(class.Class).Do(ctx); err == nil {
			slog.Info("Schema already exists", "class", class.Class)
			continue
		}

		slog.Info("Schema not found, creating it", "class", class.Class)
		if err := client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
			return fmt.Errorf("failed to create schema for class %s: %w", class.Class, err)
		}
	}
	return nil
}
