package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestHealthHandler_Liveness(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/health", nil, nil)
	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)
	if resp := decode(t, rec); resp["status"] != "healthy" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestHealthDependencies_Readiness(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	c, rec := newContext(http.MethodGet, "/health/ready", nil, nil)
	h := NewHealthDependenciesHandler(map[string]Check{"store": ok})
	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusOK)

	c, rec = newContext(http.MethodGet, "/health/ready", nil, nil)
	h = NewHealthDependenciesHandler(map[string]Check{"store": ok, "redis": down})
	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusServiceUnavailable)

	resp := decode(t, rec)
	deps := resp["dependencies"].(map[string]any)
	redis := deps["redis"].(map[string]any)
	if resp["status"] != "degraded" || redis["error"] != "connection refused" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
