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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareStore_MintAndResolve(t *testing.T) {
	store := NewShareStore(time.Hour)

	link, err := store.Mint("conv-1")
	require.NoError(t, err)
	assert.Len(t, link.Token, 32, "128-bit hex token")
	assert.Equal(t, "/v1/shared/"+link.Token, link.URL)

	id, err := store.Resolve(link.Token)
	require.NoError(t, err)
	assert.Equal(t, "conv-1", id)
}

func TestShareStore_TokensAreUnique(t *testing.T) {
	store := NewShareStore(time.Hour)
	a, err := store.Mint("conv-1")
	require.NoError(t, err)
	b, err := store.Mint("conv-1")
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)

	// Both stay valid independently.
	_, err = store.Resolve(a.Token)
	assert.NoError(t, err)
	_, err = store.Resolve(b.Token)
	assert.NoError(t, err)
}

func TestShareStore_ExpiredTokenRejected(t *testing.T) {
	store := NewShareStore(time.Hour)
	link, err := store.Mint("conv-1")
	require.NoError(t, err)

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = store.Resolve(link.Token)
	assert.ErrorIs(t, err, ErrShareTokenInvalid)

	// A second resolve fails the same way: the entry is gone.
	_, err = store.Resolve(link.Token)
	assert.ErrorIs(t, err, ErrShareTokenInvalid)
}

func TestShareStore_UnknownAndRevokedTokens(t *testing.T) {
	store := NewShareStore(0)

	_, err := store.Resolve("deadbeef")
	assert.ErrorIs(t, err, ErrShareTokenInvalid)

	link, err := store.Mint("conv-1")
	require.NoError(t, err)
	store.Revoke(link.Token)
	_, err = store.Resolve(link.Token)
	assert.ErrorIs(t, err, ErrShareTokenInvalid)
}
