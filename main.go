// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log"
	"log/slog"
	"net/url"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AleutianAI/AleutianChat/config"
	"github.com/AleutianAI/AleutianChat/datatypes"
	"github.com/AleutianAI/AleutianChat/documents"
	"github.com/AleutianAI/AleutianChat/llm"
	"github.com/AleutianAI/AleutianChat/memory"
	"github.com/AleutianAI/AleutianChat/observability"
	"github.com/AleutianAI/AleutianChat/retrieval"
	"github.com/AleutianAI/AleutianChat/routes"
	"github.com/AleutianAI/AleutianChat/services"
	"github.com/AleutianAI/AleutianChat/vectorstore"
)

const serviceName = "chat-service"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := config.Load()

	cleanup, err := observability.InitTracer(serviceName, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	weaviateClient, err := newWeaviateClient(cfg.WeaviateURL)
	if err != nil {
		log.Fatalf("failed to connect to Weaviate: %v", err)
	}
	if err := datatypes.EnsureWeaviateSchema(context.Background(), weaviateClient); err != nil {
		log.Fatalf("failed to ensure Weaviate schema: %v", err)
	}

	model, err := newLLMClient(cfg)
	if err != nil {
		log.Fatalf("failed to initialize LLM client: %v", err)
	}

	// One index per collection, all sharing the client.
	chunkIndex := vectorstore.NewWeaviateIndex(weaviateClient, datatypes.ClassDocumentChunk,
		[]string{"document_id", "filename", "chunk_index", "total_chunks", "ingested_at"})
	memoryIndex := vectorstore.NewWeaviateIndex(weaviateClient, datatypes.ClassChatMemory,
		[]string{"conversation_id", "role", "timestamp"})
	metaIndex := vectorstore.NewWeaviateIndex(weaviateClient, datatypes.ClassConversationMeta,
		[]string{"conversation_id", "created_at", "updated_at", "message_count"})

	engine := retrieval.NewEngineForIndex(chunkIndex)
	memories := memory.NewRetriever(memoryIndex)
	turns := memory.NewStore(memoryIndex)
	conversations := services.NewConversationService(metaIndex, memoryIndex)
	chat := services.NewChatService(engine, memories, turns, conversations, model)
	exporter := services.NewExporter(conversations, memories)
	shares := services.NewShareStore(cfg.ShareTTL)
	documentStore := documents.NewStore(chunkIndex)

	router := gin.Default()
	router.Use(otelgin.Middleware(serviceName))
	routes.SetupRoutes(router, routes.Deps{
		Engine:        engine,
		Memories:      memories,
		Chat:          chat,
		Conversations: conversations,
		Exporter:      exporter,
		Shares:        shares,
		Documents:     documentStore,
		APIToken:      cfg.APIToken,
	})

	slog.Info("Starting chat service", "port", cfg.Port, "llmBackend", cfg.LLMBackend)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func newWeaviateClient(rawURL string) (*weaviate.Client, error) {
	if rawURL == "" {
		rawURL = "http://localhost:8080"
		slog.Warn("WEAVIATE_SERVICE_URL not set, defaulting", "url", rawURL)
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return weaviate.NewClient(weaviate.Config{
		Host:   parsed.Host,
		Scheme: parsed.Scheme,
	})
}

func newLLMClient(cfg *config.Config) (llm.Client, error) {
	switch cfg.LLMBackend {
	case "openai":
		slog.Info("Using OpenAI LLM backend")
		return llm.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	case "ollama":
		slog.Info("Using Ollama LLM backend")
		return llm.NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaModel)
	default:
		slog.Warn("LLM_BACKEND_TYPE not recognized, defaulting to ollama", "value", cfg.LLMBackend)
		return llm.NewOllamaClient(cfg.OllamaBaseURL, cfg.OllamaModel)
	}
}
