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
	"errors"
	"testing"

	"github.com/AleutianAI/AleutianChat/datatypes"
	"github.com/AleutianAI/AleutianChat/memory"
	"github.com/AleutianAI/AleutianChat/retrieval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatFixture wires a ChatService over fake indexes and a mock LLM.
type chatFixture struct {
	chunks *fakeIndex
	turns  *fakeIndex
	meta   *fakeIndex
	model  *mockLLM
	chat   *ChatService
	convs  *ConversationService
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()
	f := &chatFixture{
		chunks: newFakeIndex(),
		turns:  newFakeIndex(),
		meta:   newFakeIndex(),
		model:  &mockLLM{answer: "a generated answer"},
	}
	f.convs = NewConversationService(f.meta, f.turns)
	f.chat = NewChatService(
		retrieval.NewEngineForIndex(f.chunks),
		memory.NewRetriever(f.turns),
		memory.NewStore(f.turns),
		f.convs,
		f.model,
	)
	return f
}

func (f *chatFixture) addChunk(t *testing.T, content, documentID string, index, total int) {
	t.Helper()
	_, err := f.chunks.Insert(context.Background(), content, map[string]any{
		"document_id":  documentID,
		"filename":     documentID + ".txt",
		"chunk_index":  index,
		"total_chunks": total,
	})
	require.NoError(t, err)
}

func TestChat_NewConversationCreatedAndPersisted(t *testing.T) {
	f := newChatFixture(t)
	f.addChunk(t, "kubernetes restarts pods on failure", "doc-a", 0, 1)

	resp, err := f.chat.Chat(context.Background(), &datatypes.ChatRequest{
		Query: "what restarts pods",
	})

	require.NoError(t, err)
	assert.Equal(t, "a generated answer", resp.Answer)
	require.NotEmpty(t, resp.ConversationID)

	// Both turns landed in memory under the new conversation.
	history := memory.NewRetriever(f.turns).Recent(context.Background(), resp.ConversationID, 0)
	require.Len(t, history, 2)
	assert.Equal(t, datatypes.RoleUser, history[0].Role)
	assert.Equal(t, "what restarts pods", history[0].Content)
	assert.Equal(t, datatypes.RoleAssistant, history[1].Role)

	// Metadata reflects the exchange.
	conv, err := f.convs.Get(context.Background(), resp.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, 2, conv.MessageCount)
}

func TestChat_SourcesComeFromRetrieval(t *testing.T) {
	f := newChatFixture(t)
	f.addChunk(t, "alpha content", "doc-a", 0, 2)
	f.addChunk(t, "beta content", "doc-a", 1, 2)

	resp, err := f.chat.Chat(context.Background(), &datatypes.ChatRequest{
		Query:    "alpha",
		Strategy: datatypes.StrategySimilarity,
		K:        1,
	})

	require.NoError(t, err)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "alpha content", resp.Sources[0].Content)
	assert.Equal(t, datatypes.StrategySimilarity, resp.Strategy)
	assert.Contains(t, f.model.lastPrompt, "alpha content", "retrieved chunk feeds the prompt")
}

func TestChat_AutoStrategyReportedInResponse(t *testing.T) {
	f := newChatFixture(t)

	resp, err := f.chat.Chat(context.Background(), &datatypes.ChatRequest{
		Query: "explain why the deployment rollout process keeps stalling",
	})

	require.NoError(t, err)
	assert.Equal(t, datatypes.StrategyRerank, resp.Strategy)
}

func TestChat_UnknownConversationRejected(t *testing.T) {
	f := newChatFixture(t)

	_, err := f.chat.Chat(context.Background(), &datatypes.ChatRequest{
		ConversationID: "11111111-2222-4333-8444-555555555555",
		Query:          "hello",
	})

	assert.ErrorIs(t, err, ErrConversationNotFound)
	assert.Zero(t, f.model.calls, "no generation for a missing conversation")
}

func TestChat_GenerationFailureLeavesNoHistory(t *testing.T) {
	f := newChatFixture(t)
	f.model.err = errors.New("model overloaded")

	conv, err := f.convs.Create(context.Background(), "existing")
	require.NoError(t, err)

	_, err = f.chat.Chat(context.Background(), &datatypes.ChatRequest{
		ConversationID: conv.ID,
		Query:          "hello",
	})

	require.Error(t, err)
	history := memory.NewRetriever(f.turns).Recent(context.Background(), conv.ID, 0)
	assert.Empty(t, history, "failed turns must not be persisted")
}

func TestChat_HistoryFlowsIntoPrompt(t *testing.T) {
	f := newChatFixture(t)

	first, err := f.chat.Chat(context.Background(), &datatypes.ChatRequest{Query: "my name is Ada"})
	require.NoError(t, err)

	_, err = f.chat.Chat(context.Background(), &datatypes.ChatRequest{
		ConversationID: first.ConversationID,
		Query:          "what is my name",
	})
	require.NoError(t, err)
	assert.Contains(t, f.model.lastPrompt, "my name is Ada")
}

func TestBuildPrompt_OmitsEmptySections(t *testing.T) {
	prompt := buildPrompt("just a question", nil, nil, nil)
	assert.NotContains(t, prompt, "Context from documents")
	assert.NotContains(t, prompt, "Recent conversation")
	assert.Contains(t, prompt, "User: just a question\nAssistant:")
}
