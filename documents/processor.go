// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package documents turns uploaded files into retrievable chunks.
//
// The pipeline is: validate (size, extension) -> extract plain text
// (per file type) -> split into overlapping chunks -> store each chunk
// with its positional metadata. Extraction and splitting are pure;
// only the store touches the vector backend.
package documents

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/AleutianAI/AleutianChat/datatypes"
)

var (
	chunkSize    = 1000
	chunkOverlap = 200

	defaultSeparators = []string{"\n\n", "\n", " ", ""}

	markdownSeparators = []string{
		"\n# ", "\n## ", "\n### ", "\n#### ", "\n##### ", "\n###### ",
		"\n\n", "\n", " ", "",
	}
)

// supportedExtensions maps accepted upload extensions to their
// extractors.
var supportedExtensions = map[string]func([]byte) (string, error){
	".pdf": extractPDF,
	".csv": extractCSV,
	".txt": extractPlain,
	".md":  extractPlain,
}

// ExtractText validates an upload and returns its plain text content.
func ExtractText(filename string, data []byte) (string, error) {
	if len(data) > datatypes.MaxDocumentBytes {
		return "", datatypes.ErrDocumentTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	extract, ok := supportedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: %s", datatypes.ErrUnsupportedDocumentExt, ext)
	}

	text, err := extract(data)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", datatypes.ErrEmptyDocument
	}
	return text, nil
}

// SplitText breaks extracted text into overlapping chunks. Markdown
// gets heading-aware separators so chunks do not straddle sections.
func SplitText(filename, text string) ([]string, error) {
	splitter := splitterForFile(filename)
	chunks, err := splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to split document text: %w", err)
	}
	return chunks, nil
}

func splitterForFile(filename string) textsplitter.TextSplitter {
	separators := defaultSeparators
	if strings.ToLower(filepath.Ext(filename)) == ".md" {
		separators = markdownSeparators
	}
	return textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
		textsplitter.WithSeparators(separators),
	)
}

func extractPlain(data []byte) (string, error) {
	return string(data), nil
}

// extractCSV flattens each row to a comma-joined line so cell values
// stay searchable next to their row context.
func extractCSV(data []byte) (string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	var builder strings.Builder
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse CSV: %w", err)
		}
		builder.WriteString(strings.Join(row, ", "))
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	plainText, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, plainText); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}
	return builder.String(), nil
}
