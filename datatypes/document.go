// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// This file contains document ingestion types. The retrievable Chunk
// type lives in retrieval.go.
package datatypes

import "errors"

// MaxDocumentBytes is the largest upload the ingestion pipeline accepts.
const MaxDocumentBytes = 5 * 1024 * 1024 // 5MB

// Ingestion errors surfaced to the upload endpoint.
var (
	ErrDocumentTooLarge       = errors.New("document exceeds maximum size of 5MB")
	ErrUnsupportedDocumentExt = errors.New("unsupported document type")
	ErrEmptyDocument          = errors.New("document contains no extractable text")
)

// DocumentInfo summarizes one ingested document, aggregated from its
// stored chunks.
type DocumentInfo struct {
	DocumentID  string `json:"document_id"`
	Filename    string `json:"filename"`
	TotalChunks int    `json:"total_chunks"`
	IngestedAt  string `json:"ingested_at"`
}

// IngestResponse is the body returned by POST /v1/documents.
type IngestResponse struct {
	DocumentID  string `json:"document_id"`
	Filename    string `json:"filename"`
	TotalChunks int    `json:"total_chunks"`
}
