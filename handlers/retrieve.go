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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianChat/datatypes"
	"github.com/AleutianAI/AleutianChat/observability"
	"github.com/AleutianAI/AleutianChat/retrieval"
)

// HandleRetrieve serves POST /v1/retrieve: raw document retrieval
// without generation, mainly for debugging strategies and for clients
// that bring their own LLM.
func HandleRetrieve(engine *retrieval.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.RetrievalRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.EnsureDefaults()

		strategy := req.Strategy
		if strategy == "" {
			strategy = retrieval.SelectStrategy(req.Query)
		}

		start := time.Now()
		chunks := engine.Retrieve(c.Request.Context(), req.Query, strategy, req.K, req.DocumentIDs)
		observability.ObserveRetrieval(strategy, time.Since(start))

		c.JSON(http.StatusOK, datatypes.RetrievalResponse{
			Chunks:      chunks,
			Strategy:    strategy,
			TotalChunks: len(chunks),
		})
	}
}
