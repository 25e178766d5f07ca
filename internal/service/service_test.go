package service_test

import (
	"context"
	"testing"

	"blockedit/internal/service"
)

// ─────────────────────────────────────────────────────────────
// MockEmitter tests
// ─────────────────────────────────────────────────────────────

func TestMockEmitter_Count(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, "document:saved", "a")
	m.Emit(ctx, "document:saved", "b")
	m.Emit(ctx, "document:reloaded", "a")

	if n := m.Count("document:saved"); n != 2 {
		t.Errorf("expected 2 saves, got %d", n)
	}
	if n := m.Count("image:error"); n != 0 {
		t.Errorf("expected no image errors, got %d", n)
	}
	if m.Events[2].Data != "a" {
		t.Errorf("unexpected data %v", m.Events[2].Data)
	}
}
