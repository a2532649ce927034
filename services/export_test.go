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
	"context"
	"encoding/json"
	"testing"

	"github.com/AleutianAI/AleutianChat/datatypes"
	"github.com/AleutianAI/AleutianChat/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExportFixture(t *testing.T) (*Exporter, string) {
	t.Helper()
	svc, _, turns := newConversationFixture()
	conv, err := svc.Create(context.Background(), "export me")
	require.NoError(t, err)

	store := memory.NewStore(turns)
	require.NoError(t, store.AddMessage(context.Background(), conv.ID, datatypes.RoleUser, "question one"))
	require.NoError(t, store.AddMessage(context.Background(), conv.ID, datatypes.RoleAssistant, "answer one"))
	require.NoError(t, svc.RecordExchange(context.Background(), conv.ID, 2))

	return NewExporter(svc, memory.NewRetriever(turns)), conv.ID
}

func TestExport_JSONContainsFullTranscript(t *testing.T) {
	exporter, id := newExportFixture(t)

	data, contentType, err := exporter.Export(context.Background(), id, datatypes.ExportFormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "application/json", contentType)

	var payload exportedConversation
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, "export me", payload.Conversation.Title)
	require.Len(t, payload.Turns, 2)
	assert.Equal(t, "question one", payload.Turns[0].Content)
	assert.Equal(t, "answer one", payload.Turns[1].Content)
}

func TestExport_TextIsHumanReadable(t *testing.T) {
	exporter, id := newExportFixture(t)

	data, contentType, err := exporter.Export(context.Background(), id, datatypes.ExportFormatText)
	require.NoError(t, err)
	assert.Equal(t, "text/plain; charset=utf-8", contentType)

	text := string(data)
	assert.Contains(t, text, "export me")
	assert.Contains(t, text, "User:\nquestion one")
	assert.Contains(t, text, "Assistant:\nanswer one")
}

func TestExport_PDFProducesADocument(t *testing.T) {
	exporter, id := newExportFixture(t)

	data, contentType, err := exporter.Export(context.Background(), id, datatypes.ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	require.Greater(t, len(data), 4)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestExport_UnknownFormatAndConversation(t *testing.T) {
	exporter, id := newExportFixture(t)

	_, _, err := exporter.Export(context.Background(), id, "docx")
	assert.ErrorIs(t, err, ErrUnsupportedExportFormat)

	_, _, err = exporter.Export(context.Background(), "missing", datatypes.ExportFormatJSON)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}
