// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/AleutianChat/documents"
	"github.com/AleutianAI/AleutianChat/handlers"
	"github.com/AleutianAI/AleutianChat/memory"
	"github.com/AleutianAI/AleutianChat/middleware"
	"github.com/AleutianAI/AleutianChat/retrieval"
	"github.com/AleutianAI/AleutianChat/services"
)

// Deps bundles everything the route table needs. Assembled once in
// main and passed down; handlers never construct their own services.
type Deps struct {
	Engine        *retrieval.Engine
	Memories      *memory.Retriever
	Chat          *services.ChatService
	Conversations *services.ConversationService
	Exporter      *services.Exporter
	Shares        *services.ShareStore
	Documents     *documents.Store

	// APIToken guards /v1 when non-empty. Health, metrics, and share
	// links stay open either way.
	APIToken string
}

// SetupRoutes registers every endpoint on the router.
func SetupRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Share links are bearer tokens in their own right; they bypass
	// API auth so recipients without credentials can read them.
	router.GET("/v1/shared/:token", handlers.GetSharedConversation(deps.Exporter, deps.Shares))

	v1 := router.Group("/v1")
	v1.Use(middleware.BearerAuth(deps.APIToken))
	{
		v1.POST("/chat", handlers.HandleChat(deps.Chat))
		v1.POST("/retrieve", handlers.HandleRetrieve(deps.Engine))

		v1.POST("/documents", handlers.UploadDocument(deps.Documents))
		v1.GET("/documents", handlers.ListDocuments(deps.Documents))
		v1.DELETE("/documents/:documentId", handlers.DeleteDocument(deps.Documents))

		conversations := v1.Group("/conversations")
		{
			conversations.GET("", handlers.ListConversations(deps.Conversations))
			conversations.GET("/search", handlers.SearchConversations(deps.Conversations))
			conversations.GET("/:conversationId", handlers.GetConversation(deps.Conversations, deps.Memories))
			conversations.PATCH("/:conversationId", handlers.RenameConversation(deps.Conversations))
			conversations.DELETE("/:conversationId", handlers.DeleteConversation(deps.Conversations))
			conversations.GET("/:conversationId/export", handlers.ExportConversation(deps.Exporter))
			conversations.POST("/:conversationId/share", handlers.ShareConversation(deps.Conversations, deps.Shares))
		}
	}
}
