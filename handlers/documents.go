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
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianChat/datatypes"
	"github.com/AleutianAI/AleutianChat/documents"
	"github.com/AleutianAI/AleutianChat/observability"
)

// UploadDocument serves POST /v1/documents as multipart/form-data with
// a single "file" part.
func UploadDocument(store *documents.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
			return
		}
		if fileHeader.Size > datatypes.MaxDocumentBytes {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": datatypes.ErrDocumentTooLarge.Error()})
			return
		}

		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, datatypes.MaxDocumentBytes+1))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
			return
		}

		resp, err := store.Ingest(c.Request.Context(), fileHeader.Filename, data)
		if err != nil {
			switch {
			case errors.Is(err, datatypes.ErrDocumentTooLarge):
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			case errors.Is(err, datatypes.ErrUnsupportedDocumentExt),
				errors.Is(err, datatypes.ErrEmptyDocument):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "ingestion failed"})
			}
			return
		}

		observability.CountDocumentIngested()
		c.JSON(http.StatusCreated, resp)
	}
}

// ListDocuments serves GET /v1/documents.
func ListDocuments(store *documents.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		infos, err := store.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"documents": infos})
	}
}

// DeleteDocument serves DELETE /v1/documents/:documentId.
func DeleteDocument(store *documents.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted, err := store.Delete(c.Request.Context(), c.Param("documentId"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete document"})
			return
		}
		if deleted == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted", "chunks": deleted})
	}
}
