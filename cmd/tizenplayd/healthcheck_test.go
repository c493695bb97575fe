// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthcheckCLI(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()
	addr := strings.TrimPrefix(healthy.URL, "http://")
	assert.Equal(t, 0, runHealthcheckCLI([]string{"-addr", addr}))
	assert.Equal(t, 1, runHealthcheckCLI([]string{"-mode", "ready", "-addr", addr}), "/readyz not served")

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer failing.Close()
	assert.Equal(t, 1, runHealthcheckCLI([]string{"-addr", strings.TrimPrefix(failing.URL, "http://")}))
}
