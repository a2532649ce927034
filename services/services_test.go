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
	"fmt"

	"github.com/AleutianAI/AleutianChat/datatypes"
	"github.com/AleutianAI/AleutianChat/llm"
	"github.com/AleutianAI/AleutianChat/vectorstore"
)

// fakeIndex is an in-memory vectorstore.Index shared by the service
// tests. Search returns matches in insertion order, standing in for
// the backend's relevance order.
type fakeIndex struct {
	records []fakeRecord
	nextID  int
	failAll bool
}

type fakeRecord struct {
	id       string
	content  string
	metadata map[string]any
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{}
}

func (f *fakeIndex) Insert(ctx context.Context, content string, metadata map[string]any) (string, error) {
	if f.failAll {
		return "", vectorstore.ErrBackendUnavailable
	}
	f.nextID++
	id := fmt.Sprintf("obj-%d", f.nextID)
	copied := make(map[string]any, len(metadata))
	for k, v := range metadata {
		copied[k] = v
	}
	f.records = append(f.records, fakeRecord{id: id, content: content, metadata: copied})
	return id, nil
}

func (f *fakeIndex) Update(ctx context.Context, id, content string, metadata map[string]any) error {
	if f.failAll {
		return vectorstore.ErrBackendUnavailable
	}
	for i := range f.records {
		if f.records[i].id != id {
			continue
		}
		if content != "" {
			f.records[i].content = content
		}
		for k, v := range metadata {
			f.records[i].metadata[k] = v
		}
		return nil
	}
	return fmt.Errorf("no object with id %s", id)
}

func (f *fakeIndex) Search(ctx context.Context, query string, k int, filter *vectorstore.Filter) ([]vectorstore.Record, error) {
	if f.failAll {
		return nil, vectorstore.ErrBackendUnavailable
	}
	matched := f.match(filter)
	if len(matched) > k {
		matched = matched[:k]
	}
	return matched, nil
}

func (f *fakeIndex) FetchAll(ctx context.Context, filter *vectorstore.Filter) ([]vectorstore.Record, error) {
	if f.failAll {
		return nil, vectorstore.ErrBackendUnavailable
	}
	return f.match(filter), nil
}

func (f *fakeIndex) DeleteWhere(ctx context.Context, filter *vectorstore.Filter) (int, error) {
	if f.failAll {
		return 0, vectorstore.ErrBackendUnavailable
	}
	kept := f.records[:0]
	deleted := 0
	for _, r := range f.records {
		if f.matches(filter, r) {
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
		if f.matches(filter, r) {
			out = append(out, vectorstore.Record{ID: r.id, Content: r.content, Metadata: r.metadata})
		}
	}
	return out
}

func (f *fakeIndex) matches(filter *vectorstore.Filter, r fakeRecord) bool {
	if filter == nil {
		return true
	}
	return datatypes.MetaString(r.metadata, filter.Field) == filter.StringValue
}

// mockLLM returns a canned answer and captures the prompt it was
// handed.
type mockLLM struct {
	answer     string
	err        error
	lastPrompt string
	calls      int
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, params llm.GenerationParams) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}
