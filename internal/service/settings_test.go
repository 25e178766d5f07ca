package service_test

import (
	"path/filepath"
	"testing"

	"blockedit/internal/domain"
	"blockedit/internal/service"
	"blockedit/internal/storage"
)

func TestSettings_RecentTypesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "test.db"), dir)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	s := service.NewSettingsService(db)

	if got := s.RecentTypes(); got != nil {
		t.Fatalf("expected no history, got %v", got)
	}
	want := []domain.BlockType{domain.BlockTypeImage, domain.BlockTypeHeading2}
	if err := s.SaveRecentTypes(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.SaveRecentTypes(append(want, "table")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got := s.RecentTypes()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestSettings_NilServiceIsEmpty(t *testing.T) {
	var s *service.SettingsService
	if s.RecentTypes() != nil {
		t.Error("expected nil")
	}
}
