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
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/AleutianAI/AleutianChat/datatypes"
	"github.com/AleutianAI/AleutianChat/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex is an in-memory chunk index. failAfter > 0 makes Insert
// fail once that many inserts have succeeded.
type fakeIndex struct {
	records   []vectorstore.Record
	failAfter int
	inserted  int
}

func (f *fakeIndex) Insert(ctx context.Context, content string, metadata map[string]any) (string, error) {
	if f.failAfter > 0 && f.inserted >= f.failAfter {
		return "", vectorstore.ErrBackendUnavailable
	}
	f.inserted++
	f.records = append(f.records, vectorstore.Record{
		ID:       fmt.Sprintf("obj-%d", f.inserted),
		Content:  content,
		Metadata: metadata,
	})
	return fmt.Sprintf("obj-%d", f.inserted), nil
}

func (f *fakeIndex) Update(ctx context.Context, id, content string, metadata map[string]any) error {
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, query string, k int, filter *vectorstore.Filter) ([]vectorstore.Record, error) {
	matched := f.match(filter)
	if len(matched) > k {
		matched = matched[:k]
	}
	return matched, nil
}

func (f *fakeIndex) FetchAll(ctx context.Context, filter *vectorstore.Filter) ([]vectorstore.Record, error) {
	return f.match(filter), nil
}

func (f *fakeIndex) DeleteWhere(ctx context.Context, filter *vectorstore.Filter) (int, error) {
	kept := f.records[:0]
	deleted := 0
	for _, r := range f.records {
		if filter != nil && datatypes.MetaString(r.Metadata, filter.Field) == filter.StringValue {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	f.records = kept
	return deleted, nil
}

func (f *fakeIndex) match(filter *vectorstore.Filter) []vectorstore.Record {
	out := make([]vectorstore.Record, 0, len(f.records))
	for _, r := range f.records {
		if filter == nil || datatypes.MetaString(r.Metadata, filter.Field) == filter.StringValue {
			out = append(out, r)
		}
	}
	return out
}

func TestIngest_StoresChunksWithPositionalMetadata(t *testing.T) {
	index := &fakeIndex{}
	store := NewStore(index)

	resp, err := store.Ingest(context.Background(), "notes.txt", []byte("a small note"))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.DocumentID)
	assert.Equal(t, "notes.txt", resp.Filename)
	assert.Equal(t, 1, resp.TotalChunks)

	require.Len(t, index.records, 1)
	record := index.records[0]
	assert.Equal(t, "a small note", record.Content)
	assert.Equal(t, resp.DocumentID, datatypes.MetaString(record.Metadata, "document_id"))
	assert.Equal(t, int64(0), datatypes.MetaInt64(record.Metadata, "chunk_index"))
	assert.Equal(t, int64(1), datatypes.MetaInt64(record.Metadata, "total_chunks"))
	assert.NotEmpty(t, datatypes.MetaString(record.Metadata, "ingested_at"))
}

func TestIngest_ChunkIndexesAreSequential(t *testing.T) {
	index := &fakeIndex{}
	store := NewStore(index)

	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("line of text to force several chunks out of the splitter.\n\n")
	}

	resp, err := store.Ingest(context.Background(), "long.txt", []byte(b.String()))
	require.NoError(t, err)
	require.Greater(t, resp.TotalChunks, 1)
	require.Len(t, index.records, resp.TotalChunks)

	for i, record := range index.records {
		assert.Equal(t, int64(i), datatypes.MetaInt64(record.Metadata, "chunk_index"))
		assert.Equal(t, int64(resp.TotalChunks), datatypes.MetaInt64(record.Metadata, "total_chunks"))
	}
}

func TestIngest_MidStreamFailureRollsBack(t *testing.T) {
	index := &fakeIndex{failAfter: 2}
	store := NewStore(index)

	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("line of text to force several chunks out of the splitter.\n\n")
	}

	_, err := store.Ingest(context.Background(), "long.txt", []byte(b.String()))
	require.Error(t, err)
	assert.Empty(t, index.records, "partial chunks must be rolled back")
}

func TestIngest_RejectsBadUploads(t *testing.T) {
	store := NewStore(&fakeIndex{})

	_, err := store.Ingest(context.Background(), "report.docx", []byte("content"))
	assert.ErrorIs(t, err, datatypes.ErrUnsupportedDocumentExt)

	_, err = store.Ingest(context.Background(), "blank.txt", []byte("  "))
	assert.ErrorIs(t, err, datatypes.ErrEmptyDocument)
}

func TestList_GroupsByDocument(t *testing.T) {
	index := &fakeIndex{}
	store := NewStore(index)

	first, err := store.Ingest(context.Background(), "a.txt", []byte("document a"))
	require.NoError(t, err)
	second, err := store.Ingest(context.Background(), "b.txt", []byte("document b"))
	require.NoError(t, err)

	infos, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 2)

	byID := map[string]datatypes.DocumentInfo{}
	for _, info := range infos {
		byID[info.DocumentID] = info
	}
	assert.Equal(t, "a.txt", byID[first.DocumentID].Filename)
	assert.Equal(t, "b.txt", byID[second.DocumentID].Filename)
}

func TestDelete_RemovesOnlyThatDocument(t *testing.T) {
	index := &fakeIndex{}
	store := NewStore(index)

	doomed, err := store.Ingest(context.Background(), "doomed.txt", []byte("delete me"))
	require.NoError(t, err)
	kept, err := store.Ingest(context.Background(), "kept.txt", []byte("keep me"))
	require.NoError(t, err)

	deleted, err := store.Delete(context.Background(), doomed.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	infos, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, kept.DocumentID, infos[0].DocumentID)
}
