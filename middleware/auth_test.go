// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(token string) *gin.Engine {
	router := gin.New()
	router.Use(BearerAuth(token))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func request(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestBearerAuth_NoTokenConfiguredAllowsAll(t *testing.T) {
	router := newAuthRouter("")
	assert.Equal(t, http.StatusOK, request(router, "").Code)
	assert.Equal(t, http.StatusOK, request(router, "Bearer anything").Code)
}

func TestBearerAuth_CorrectTokenPasses(t *testing.T) {
	router := newAuthRouter("s3cret")
	assert.Equal(t, http.StatusOK, request(router, "Bearer s3cret").Code)
}

func TestBearerAuth_RejectsBadCredentials(t *testing.T) {
	router := newAuthRouter("s3cret")

	assert.Equal(t, http.StatusUnauthorized, request(router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, request(router, "Bearer wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, request(router, "s3cret").Code, "missing Bearer prefix")
	assert.Equal(t, http.StatusUnauthorized, request(router, "Basic s3cret").Code)
}
