// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package documents

import (
	"strings"
	"testing"

	"github.com/AleutianAI/AleutianChat/datatypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText_PlainAndMarkdown(t *testing.T) {
	for _, name := range []string{"notes.txt", "notes.md", "NOTES.TXT"} {
		text, err := ExtractText(name, []byte("hello world"))
		require.NoError(t, err, name)
		assert.Equal(t, "hello world", text)
	}
}

func TestExtractText_CSVFlattensRows(t *testing.T) {
	csv := "name,role\nada,engineer\ngrace,admiral\n"
	text, err := ExtractText("people.csv", []byte(csv))
	require.NoError(t, err)
	assert.Equal(t, "name, role\nada, engineer\ngrace, admiral\n", text)
}

func TestExtractText_CSVRaggedRowsAccepted(t *testing.T) {
	csv := "a,b,c\nd,e\n"
	text, err := ExtractText("ragged.csv", []byte(csv))
	require.NoError(t, err)
	assert.Contains(t, text, "d, e")
}

func TestExtractText_RejectsOversized(t *testing.T) {
	data := make([]byte, datatypes.MaxDocumentBytes+1)
	_, err := ExtractText("big.txt", data)
	assert.ErrorIs(t, err, datatypes.ErrDocumentTooLarge)
}

func TestExtractText_RejectsUnsupportedExtension(t *testing.T) {
	for _, name := range []string{"report.docx", "image.png", "noextension"} {
		_, err := ExtractText(name, []byte("content"))
		assert.ErrorIs(t, err, datatypes.ErrUnsupportedDocumentExt, name)
	}
}

func TestExtractText_RejectsEmptyContent(t *testing.T) {
	_, err := ExtractText("blank.txt", []byte("   \n\t  "))
	assert.ErrorIs(t, err, datatypes.ErrEmptyDocument)
}

func TestExtractText_RejectsCorruptPDF(t *testing.T) {
	_, err := ExtractText("broken.pdf", []byte("not a pdf at all"))
	assert.Error(t, err)
}

func TestSplitText_ShortTextIsOneChunk(t *testing.T) {
	chunks, err := SplitText("short.txt", "a short document")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short document", chunks[0])
}

func TestSplitText_LongTextChunksWithinSize(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 400; i++ {
		b.WriteString("paragraph text that repeats itself for splitting purposes.\n\n")
	}

	chunks, err := SplitText("long.txt", b.String())
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for i, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), chunkSize+100, "chunk %d stays near the configured size", i)
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
}
