package storage_test

import (
	"errors"
	"path/filepath"
	"testing"

	"blockedit/internal/domain"
	"blockedit/internal/storage"
)

func openDB(t *testing.T) *storage.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "test.db"), filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNew_MigrationsAreRepeatable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	for i := 0; i < 2; i++ {
		db, err := storage.New(path, dir)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		db.Close()
	}
}

func TestDocumentStore_CRUD(t *testing.T) {
	docs := storage.NewDocumentStore(openDB(t))

	d := &domain.Document{Kind: domain.DocumentKindChangelog, Title: "v1.2", Body: "# v1.2\n", Locale: "en"}
	if err := docs.CreateDocument(d); err != nil {
		t.Fatalf("create: %v", err)
	}
	if d.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := docs.GetDocument(d.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "v1.2" || got.Kind != domain.DocumentKindChangelog || got.Body != "# v1.2\n" {
		t.Errorf("unexpected document %+v", got)
	}

	got.Body = "changed"
	got.FilePath = "/tmp/v12.md"
	if err := docs.UpdateDocument(got); err != nil {
		t.Fatalf("update: %v", err)
	}
	byFile, err := docs.FindByFilePath("/tmp/v12.md")
	if err != nil || byFile.ID != d.ID || byFile.Body != "changed" {
		t.Errorf("find by file: %+v %v", byFile, err)
	}

	if err := docs.DeleteDocument(d.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := docs.GetDocument(d.ID); err == nil {
		t.Error("expected error for deleted document")
	}
}

func TestDocumentStore_ListFiltersByKind(t *testing.T) {
	docs := storage.NewDocumentStore(openDB(t))
	for _, k := range []domain.DocumentKind{domain.DocumentKindArticle, domain.DocumentKindRoadmap, domain.DocumentKindArticle} {
		if err := docs.CreateDocument(&domain.Document{Kind: k, Title: string(k)}); err != nil {
			t.Fatal(err)
		}
	}
	all, err := docs.ListDocuments("")
	if err != nil || len(all) != 3 {
		t.Fatalf("list all: %d %v", len(all), err)
	}
	articles, err := docs.ListDocuments(domain.DocumentKindArticle)
	if err != nil || len(articles) != 2 {
		t.Fatalf("list articles: %d %v", len(articles), err)
	}
}

func TestDocumentStore_InvalidKindDefaultsToArticle(t *testing.T) {
	docs := storage.NewDocumentStore(openDB(t))
	d := &domain.Document{Kind: "memo"}
	if err := docs.CreateDocument(d); err != nil {
		t.Fatal(err)
	}
	if d.Kind != domain.DocumentKindArticle {
		t.Errorf("expected article, got %s", d.Kind)
	}
}

func TestRevisionStore_PushPrunesOldest(t *testing.T) {
	db := openDB(t)
	docs := storage.NewDocumentStore(db)
	revs := storage.NewRevisionStore(db, 3)
	d := &domain.Document{Title: "doc"}
	if err := docs.CreateDocument(d); err != nil {
		t.Fatal(err)
	}

	for _, body := range []string{"1", "2", "3", "4", "5"} {
		if _, err := revs.Push(d.ID, body); err != nil {
			t.Fatalf("push %s: %v", body, err)
		}
	}
	list, err := revs.List(d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 || list[0].Body != "5" || list[2].Body != "3" {
		var bodies []string
		for _, r := range list {
			bodies = append(bodies, r.Body)
		}
		t.Errorf("expected [5 4 3], got %v", bodies)
	}

	if err := revs.ClearDocument(d.ID); err != nil {
		t.Fatal(err)
	}
	if list, _ := revs.List(d.ID); len(list) != 0 {
		t.Errorf("expected no revisions, got %d", len(list))
	}
}

func TestApprovalStore_ResolveOnce(t *testing.T) {
	approvals := storage.NewApprovalStore(openDB(t))
	for _, id := range []string{"a1", "a2"} {
		if err := approvals.Insert(&storage.Approval{ID: id, Tool: "delete_block"}); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	if err := approvals.Resolve("a1", true); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := approvals.Resolve("a1", false); !errors.Is(err, storage.ErrNotPending) {
		t.Errorf("expected ErrNotPending on second answer, got %v", err)
	}
	if err := approvals.Resolve("missing", true); !errors.Is(err, storage.ErrNotPending) {
		t.Errorf("expected ErrNotPending for unknown id, got %v", err)
	}
	if status, _ := approvals.Status("a1"); status != storage.ApprovalApproved {
		t.Errorf("expected approved, got %q", status)
	}

	pending, err := approvals.ListPending()
	if err != nil || len(pending) != 1 || pending[0].ID != "a2" || pending[0].Metadata != "{}" {
		t.Fatalf("unexpected pending %+v, %v", pending, err)
	}
	approvals.Delete("a2")
	if pending, _ := approvals.ListPending(); len(pending) != 0 {
		t.Errorf("expected none pending, got %+v", pending)
	}
}
