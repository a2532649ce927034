// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianChat/datatypes"
	"github.com/AleutianAI/AleutianChat/memory"
	"github.com/AleutianAI/AleutianChat/services"
)

// ListConversations serves GET /v1/conversations.
func ListConversations(conversations *services.ConversationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		previews, err := conversations.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list conversations"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"conversations": previews})
	}
}

// GetConversation serves GET /v1/conversations/:conversationId with the
// metadata and the transcript in ascending time order. The optional
// limit query keeps only the last N turns.
func GetConversation(conversations *services.ConversationService, memories *memory.Retriever) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("conversationId")
		conv, err := conversations.Get(c.Request.Context(), id)
		if err != nil {
			respondConversationErr(c, err)
			return
		}

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
		turns := memories.Recent(c.Request.Context(), id, limit)
		c.JSON(http.StatusOK, gin.H{"conversation": conv, "turns": turns})
	}
}

// RenameConversation serves PATCH /v1/conversations/:conversationId.
func RenameConversation(conversations *services.ConversationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.UpdateConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		conv, err := conversations.Rename(c.Request.Context(), c.Param("conversationId"), req.Title)
		if err != nil {
			respondConversationErr(c, err)
			return
		}
		c.JSON(http.StatusOK, conv)
	}
}

// DeleteConversation serves DELETE /v1/conversations/:conversationId.
func DeleteConversation(conversations *services.ConversationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := conversations.Delete(c.Request.Context(), c.Param("conversationId"))
		if err != nil {
			respondConversationErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	}
}

// SearchConversations serves GET /v1/conversations/search?q=...&limit=N.
func SearchConversations(conversations *services.ConversationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing query parameter q"})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

		results, err := conversations.Search(c.Request.Context(), query, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": results})
	}
}

// ExportConversation serves GET /v1/conversations/:conversationId/export?format=json|txt|pdf.
func ExportConversation(exporter *services.Exporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		writeExport(c, exporter, c.Param("conversationId"))
	}
}

// ShareConversation serves POST /v1/conversations/:conversationId/share,
// minting an expiring read-only link.
func ShareConversation(conversations *services.ConversationService, shares *services.ShareStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("conversationId")
		if _, err := conversations.Get(c.Request.Context(), id); err != nil {
			respondConversationErr(c, err)
			return
		}

		link, err := shares.Mint(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create share link"})
			return
		}
		c.JSON(http.StatusCreated, link)
	}
}

// GetSharedConversation serves GET /v1/shared/:token?format=..., the
// unauthenticated read side of a share link.
func GetSharedConversation(exporter *services.Exporter, shares *services.ShareStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID, err := shares.Resolve(c.Param("token"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "share link invalid or expired"})
			return
		}
		writeExport(c, exporter, conversationID)
	}
}

func writeExport(c *gin.Context, exporter *services.Exporter, conversationID string) {
	format := c.DefaultQuery("format", datatypes.ExportFormatJSON)
	data, contentType, err := exporter.Export(c.Request.Context(), conversationID, format)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrConversationNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		case errors.Is(err, services.ErrUnsupportedExportFormat):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		}
		return
	}

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=conversation-%s.%s", conversationID, format))
	c.Data(http.StatusOK, contentType, data)
}

func respondConversationErr(c *gin.Context, err error) {
	if errors.Is(err, services.ErrConversationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "conversation lookup failed"})
}
