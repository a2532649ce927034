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
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AleutianAI/AleutianChat/datatypes"
)

// DefaultShareTTL is how long a minted share link stays valid.
const DefaultShareTTL = 24 * time.Hour

// ErrShareTokenInvalid covers unknown and expired tokens alike, so a
// caller cannot distinguish "never existed" from "expired".
var ErrShareTokenInvalid = errors.New("share token invalid or expired")

// ShareStore mints and resolves read-only share tokens for
// conversations. Tokens are random, keyed in memory, and expire after
// a fixed TTL; restarting the process invalidates all of them, which
// is acceptable for links meant to be short-lived.
type ShareStore struct {
	mu     sync.Mutex
	tokens map[string]shareGrant
	ttl    time.Duration
	now    func() time.Time
}

type shareGrant struct {
	conversationID string
	expiresAt      time.Time
}

// NewShareStore creates a store with the given TTL; zero or negative
// means DefaultShareTTL.
func NewShareStore(ttl time.Duration) *ShareStore {
	if ttl <= 0 {
		ttl = DefaultShareTTL
	}
	return &ShareStore{
		tokens: make(map[string]shareGrant),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Mint issues a new share token for the conversation. Minting again
// for the same conversation issues an independent token; earlier ones
// stay valid until they expire.
func (s *ShareStore) Mint(conversationID string) (datatypes.ShareLink, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return datatypes.ShareLink{}, fmt.Errorf("failed to mint share token: %w", err)
	}
	token := hex.EncodeToString(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	expiresAt := s.now().Add(s.ttl)
	s.tokens[token] = shareGrant{conversationID: conversationID, expiresAt: expiresAt}

	return datatypes.ShareLink{
		Token:     token,
		URL:       "/v1/shared/" + token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	}, nil
}

// Resolve returns the conversation a token grants access to.
func (s *ShareStore) Resolve(token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, ok := s.tokens[token]
	if !ok || s.now().After(grant.expiresAt) {
		delete(s.tokens, token)
		return "", ErrShareTokenInvalid
	}
	return grant.conversationID, nil
}

// Revoke invalidates a token immediately. Revoking an unknown token is
// a no-op.
func (s *ShareStore) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// prune drops expired grants. Called under the lock.
func (s *ShareStore) prune() {
	now := s.now()
	for token, grant := range s.tokens {
		if now.After(grant.expiresAt) {
			delete(s.tokens, token)
		}
	}
}
