// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config reads service configuration from the environment.
//
// All knobs are env vars so the service runs identically under
// podman-compose and bare. Values are read once at startup; nothing
// re-reads the environment afterwards.
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"
)

// Config is the full runtime configuration of the chat service.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// WeaviateURL is the full URL of the vector backend, e.g.
	// http://aleutian-weaviate:8080. Empty falls back to localhost.
	WeaviateURL string

	// LLMBackend selects the generation backend: "openai" or "ollama".
	LLMBackend string

	OpenAIAPIKey string
	OpenAIModel  string

	OllamaBaseURL string
	OllamaModel   string

	// OTLPEndpoint is the gRPC endpoint of the trace collector.
	OTLPEndpoint string

	// APIToken, when set, requires "Authorization: Bearer <token>" on
	// every /v1 route. Empty leaves the API open (local deployments).
	APIToken string

	// ShareTTL is how long conversation share links stay valid.
	ShareTTL time.Duration
}

// Load reads the configuration from the environment, applying
// defaults and logging what was defaulted.
func Load() *Config {
	cfg := &Config{
		Port:          envOr("CHAT_SERVICE_PORT", "12310"),
		WeaviateURL:   strings.Trim(os.Getenv("WEAVIATE_SERVICE_URL"), "\"' "),
		LLMBackend:    envOr("LLM_BACKEND_TYPE", "ollama"),
		OpenAIAPIKey:  readSecret("OPENAI_API_KEY", "/run/secrets/openai_api_key"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),
		OllamaBaseURL: os.Getenv("OLLAMA_BASE_URL"),
		OllamaModel:   os.Getenv("OLLAMA_MODEL"),
		OTLPEndpoint:  envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "aleutian-otel-collector:4317"),
		APIToken:      os.Getenv("CHAT_API_TOKEN"),
		ShareTTL:      durationOr("SHARE_LINK_TTL", 24*time.Hour),
	}
	if cfg.APIToken == "" {
		slog.Warn("CHAT_API_TOKEN not set, API is unauthenticated")
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// readSecret prefers the env var, falling back to a mounted secret
// file the way podman secrets deliver them.
func readSecret(key, secretPath string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	data, err := os.ReadFile(secretPath)
	if err != nil {
		return ""
	}
	slog.Info("Read secret from mounted file", "key", key)
	return strings.TrimSpace(string(data))
}

func durationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("Invalid duration, using default", "key", key, "value", v)
		return fallback
	}
	return d
}
