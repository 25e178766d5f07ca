package filewatch_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"blockedit/internal/filewatch"
)

type change struct{ path, content string }

func TestWatcher_ReportsSettledContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.md")
	other := filepath.Join(dir, "other.md")
	os.WriteFile(path, []byte("v0"), 0644)

	changes := make(chan change, 8)
	w, err := filewatch.New(30*time.Millisecond, func(p, c string) { changes <- change{p, c} })
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer w.Close()
	if err := w.Watch(path); err != nil {
		t.Fatalf("watch: %v", err)
	}

	os.WriteFile(other, []byte("ignored"), 0644)
	os.WriteFile(path, []byte("v1"), 0644)
	os.WriteFile(path, []byte("v2"), 0644)

	select {
	case c := <-changes:
		if c.path != path || c.content != "v2" {
			t.Errorf("unexpected change %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
	select {
	case c := <-changes:
		t.Errorf("unexpected extra change %+v", c)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_Unwatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	os.WriteFile(path, []byte("v0"), 0644)

	changes := make(chan change, 8)
	w, err := filewatch.New(10*time.Millisecond, func(p, c string) { changes <- change{p, c} })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	w.Watch(path)
	if len(w.Watching()) != 1 {
		t.Fatalf("expected one watched path, got %v", w.Watching())
	}
	w.Unwatch(path)
	os.WriteFile(path, []byte("v1"), 0644)

	select {
	case c := <-changes:
		t.Errorf("unwatched file reported %+v", c)
	case <-time.After(150 * time.Millisecond):
	}
}
