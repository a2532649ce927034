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
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianChat/datatypes"
	"github.com/AleutianAI/AleutianChat/observability"
	"github.com/AleutianAI/AleutianChat/services"
)

// HandleChat serves POST /v1/chat: one full retrieval-augmented turn.
func HandleChat(chat *services.ChatService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		resp, err := chat.Chat(c.Request.Context(), &req)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrConversationNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
			default:
				// Generation or storage failure; the upstream detail is
				// in the logs, not the response.
				c.JSON(http.StatusBadGateway, gin.H{"error": "failed to generate answer"})
			}
			return
		}

		observability.CountChatTurn()
		c.JSON(http.StatusOK, resp)
	}
}
