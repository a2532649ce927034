// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/AleutianAI/AleutianChat/datatypes"
	"github.com/AleutianAI/AleutianChat/memory"
)

// ErrUnsupportedExportFormat is returned for formats other than json,
// txt, and pdf. Handlers map it to 400.
var ErrUnsupportedExportFormat = errors.New("unsupported export format")

// Exporter renders a full conversation transcript in a portable format.
type Exporter struct {
	conversations *ConversationService
	memories      *memory.Retriever
}

// NewExporter creates an exporter over the conversation and memory
// layers.
func NewExporter(conversations *ConversationService, memories *memory.Retriever) *Exporter {
	return &Exporter{conversations: conversations, memories: memories}
}

// exportedConversation is the JSON export envelope.
type exportedConversation struct {
	Conversation datatypes.Conversation `json:"conversation"`
	Turns        []datatypes.MemoryEntry `json:"turns"`
}

// Export renders the conversation in the requested format and returns
// the bytes with their content type.
func (e *Exporter) Export(ctx context.Context, conversationID, format string) ([]byte, string, error) {
	conv, err := e.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, "", err
	}
	turns := e.memories.Recent(ctx, conversationID, 0)

	switch format {
	case datatypes.ExportFormatJSON:
		data, err := json.MarshalIndent(exportedConversation{Conversation: *conv, Turns: turns}, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode export: %w", err)
		}
		return data, "application/json", nil

	case datatypes.ExportFormatText:
		return exportText(conv, turns), "text/plain; charset=utf-8", nil

	case datatypes.ExportFormatPDF:
		data, err := exportPDF(conv, turns)
		if err != nil {
			return nil, "", err
		}
		return data, "application/pdf", nil

	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedExportFormat, format)
	}
}

func exportText(conv *datatypes.Conversation, turns []datatypes.MemoryEntry) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", conv.Title)
	fmt.Fprintf(&b, "Created: %s\n", conv.CreatedAt)
	fmt.Fprintf(&b, "Messages: %d\n\n", conv.MessageCount)
	for _, turn := range turns {
		fmt.Fprintf(&b, "[%s] %s:\n%s\n\n", turn.Timestamp, promptRole(turn.Role), turn.Content)
	}
	return []byte(b.String())
}

func exportPDF(conv *datatypes.Conversation, turns []datatypes.MemoryEntry) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(conv.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, conv.Title, "", "L", false)
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(0, 5, fmt.Sprintf("Created %s - %d messages", conv.CreatedAt, conv.MessageCount), "", "L", false)
	pdf.Ln(4)

	for _, turn := range turns {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, promptRole(turn.Role), "", "L", false)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 5, turn.Content, "", "L", false)
		pdf.Ln(3)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF export: %w", err)
	}
	return buf.Bytes(), nil
}
