package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"blockedit/internal/domain"
	"blockedit/internal/editor"
	"blockedit/internal/markup"
	"blockedit/internal/surface"
)

// ─────────────────────────────────────────────────────────────
// Document Service: documents, their open editors and autosave
// ─────────────────────────────────────────────────────────────

// ErrImageBusy is returned when an image is already being attached to the
// same block.
var ErrImageBusy = errors.New("image already loading for this block")

// DocumentFinder looks a document up by its linked file.
type DocumentFinder interface {
	domain.DocumentStore
	FindByFilePath(path string) (*domain.Document, error)
}

// DocumentService owns the open editors. Every autosave of an open editor
// is written back to the document row, recorded as a revision and, for
// documents linked to a file, written to that file.
type DocumentService struct {
	docs      DocumentFinder
	revs      domain.RevisionStore
	settings  *SettingsService
	exportDir string
	codec     markup.Codec
	opts      editor.Options
	emitter   EventEmitter
	ctx       context.Context

	mu     sync.Mutex
	open   map[string]*openDocument
	images imageReads
}

type openDocument struct {
	editor    *editor.Editor
	lastSaved string
}

// NewDocumentService creates a DocumentService. opts is the template for
// every editor it opens; its OnChange and OnImageError are replaced.
func NewDocumentService(
	docs DocumentFinder,
	revs domain.RevisionStore,
	opts editor.Options,
	emitter EventEmitter,
) *DocumentService {
	return &DocumentService{
		docs:    docs,
		revs:    revs,
		opts:    opts,
		emitter: emitter,
		ctx:     context.Background(),
		open:    make(map[string]*openDocument),
	}
}

// SetSettings makes editors share one insert-menu history that outlives
// them. Without it each editor starts empty.
func (s *DocumentService) SetSettings(settings *SettingsService) {
	s.settings = settings
}

// SetExportDir sets where relative export paths are resolved.
func (s *DocumentService) SetExportDir(dir string) {
	s.exportDir = dir
}

// SetContext sets the context passed to emitted events.
func (s *DocumentService) SetContext(ctx context.Context) {
	s.ctx = ctx
}

// ── Documents ──────────────────────────────────────────────

func parseKind(kind string) (domain.DocumentKind, error) {
	if kind == "" {
		return domain.DocumentKindArticle, nil
	}
	k := domain.DocumentKind(strings.ToLower(kind))
	if !k.Valid() {
		return "", fmt.Errorf("unknown document kind %q", kind)
	}
	return k, nil
}

func (s *DocumentService) Create(kind, title, body string) (*domain.Document, error) {
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	d := &domain.Document{Kind: k, Title: title, Body: body, Locale: s.opts.Locale}
	if err := s.docs.CreateDocument(d); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return d, nil
}

func (s *DocumentService) List(kind string) ([]domain.Document, error) {
	if kind == "" {
		return s.docs.ListDocuments("")
	}
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	return s.docs.ListDocuments(k)
}

// Get returns a document with its blocks. An open document reports the
// editor's live blocks, which may be ahead of the saved body.
func (s *DocumentService) Get(id string) (*domain.DocumentState, error) {
	d, err := s.docs.GetDocument(id)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	od := s.open[id]
	s.mu.Unlock()

	state := &domain.DocumentState{Document: *d}
	if od != nil {
		state.Blocks = od.editor.Blocks()
	} else {
		state.Blocks = s.codec.TextToBlocks(d.Body, true)
	}
	return state, nil
}

// Rename changes a document's title.
func (s *DocumentService) Rename(id, title string) error {
	d, err := s.docs.GetDocument(id)
	if err != nil {
		return err
	}
	d.Title = title
	return s.docs.UpdateDocument(d)
}

// Delete closes the document's editor, then removes it and its revisions.
func (s *DocumentService) Delete(id string) error {
	s.Close(id)
	if err := s.revs.ClearDocument(id); err != nil {
		return fmt.Errorf("clear revisions: %w", err)
	}
	return s.docs.DeleteDocument(id)
}

// Revisions lists a document's autosaved bodies, newest first.
func (s *DocumentService) Revisions(id string) ([]domain.Revision, error) {
	return s.revs.List(id)
}

// RestoreRevision makes an older revision the current body.
func (s *DocumentService) RestoreRevision(id, revisionID string) error {
	revs, err := s.revs.List(id)
	if err != nil {
		return err
	}
	for _, r := range revs {
		if r.ID == revisionID {
			return s.replaceBody(id, r.Body, "document:restored")
		}
	}
	return fmt.Errorf("revision %s not found", revisionID)
}

// ── Files ──────────────────────────────────────────────────

// Import creates a document from a Markdown file and links it to that
// file. The title is the first heading, or the file name.
func (s *DocumentService) Import(path, kind string) (*domain.Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	k, err := parseKind(kind)
	if err != nil {
		return nil, err
	}
	body := string(data)
	d := &domain.Document{
		Kind:     k,
		Title:    titleOf(s.codec.TextToBlocks(body, true), abs),
		Body:     body,
		Locale:   s.opts.Locale,
		FilePath: abs,
	}
	if err := s.docs.CreateDocument(d); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	log.Printf("[documents] imported %s as %s", abs, d.ID)
	return d, nil
}

func titleOf(blocks []domain.Block, path string) string {
	for _, b := range blocks {
		if b.Type.IsHeading() {
			if t := strings.TrimSpace(surface.PlainText(b.Content)); t != "" {
				return t
			}
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Export writes the current text of a document to path.
func (s *DocumentService) Export(id, path string) error {
	text, err := s.Text(id)
	if err != nil {
		return err
	}
	if !filepath.IsAbs(path) && s.exportDir != "" {
		path = filepath.Join(s.exportDir, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	return os.WriteFile(path, []byte(text), 0644)
}

// Text returns the serialized document, from its editor when open.
func (s *DocumentService) Text(id string) (string, error) {
	s.mu.Lock()
	od := s.open[id]
	s.mu.Unlock()
	if od != nil {
		return od.editor.Text(), nil
	}
	d, err := s.docs.GetDocument(id)
	if err != nil {
		return "", err
	}
	return d.Body, nil
}

// FileChanged reloads the document linked to path with its new contents.
// Unknown paths are ignored.
func (s *DocumentService) FileChanged(path string, text string) {
	d, err := s.docs.FindByFilePath(path)
	if err != nil {
		return
	}
	if err := s.Reload(d.ID, text); err != nil {
		log.Printf("[documents] reload %s: %v", d.ID, err)
	}
}

// Reload replaces a document's content with text edited elsewhere. Text
// equal to the last body this service saved is our own write coming back
// and is ignored.
func (s *DocumentService) Reload(id, text string) error {
	s.mu.Lock()
	od := s.open[id]
	if od != nil && od.lastSaved == text {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if od == nil {
		d, err := s.docs.GetDocument(id)
		if err != nil {
			return err
		}
		if d.Body == text {
			return nil
		}
	}
	return s.replaceBody(id, text, "document:reloaded")
}

func (s *DocumentService) replaceBody(id, text, event string) error {
	d, err := s.docs.GetDocument(id)
	if err != nil {
		return err
	}
	d.Body = text
	if err := s.docs.UpdateDocument(d); err != nil {
		return fmt.Errorf("update document: %w", err)
	}

	s.mu.Lock()
	od := s.open[id]
	if od != nil {
		od.lastSaved = text
	}
	s.mu.Unlock()
	if od != nil {
		od.editor.Load(text)
	}
	s.emitter.Emit(s.ctx, event, id)
	return nil
}

// ── Editors ────────────────────────────────────────────────

// Open returns the editor of a document, opening it on first use. Editors
// opened here have no rendered surfaces.
func (s *DocumentService) Open(id string) (*editor.Editor, error) {
	return s.OpenWith(id, editor.Headless{})
}

// OpenWith is Open with a rendering host. An already open editor keeps the
// host it was opened with.
func (s *DocumentService) OpenWith(id string, host editor.Host) (*editor.Editor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if od, ok := s.open[id]; ok {
		return od.editor, nil
	}
	d, err := s.docs.GetDocument(id)
	if err != nil {
		return nil, err
	}

	opts := s.opts
	if d.Locale != "" {
		opts.Locale = d.Locale
	}
	opts.Recent = s.settings.RecentTypes()
	opts.OnChange = func(text string) { s.save(id, text) }
	opts.OnImageError = func(blockID string, err error) {
		log.Printf("[documents] image for block %s: %v", blockID, err)
		s.emitter.Emit(s.ctx, "image:error", map[string]string{
			"documentId": id,
			"blockId":    blockID,
			"error":      err.Error(),
		})
	}
	od := &openDocument{
		editor:    editor.New(d.Body, host, s.codec, opts),
		lastSaved: d.Body,
	}
	s.open[id] = od
	return od.editor, nil
}

// IsOpen reports whether a document has a live editor.
func (s *DocumentService) IsOpen(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.open[id]
	return ok
}

// save is the autosave callback of an open editor.
func (s *DocumentService) save(id, text string) {
	d, err := s.docs.GetDocument(id)
	if err != nil {
		log.Printf("[documents] save %s: %v", id, err)
		return
	}
	d.Body = text
	if err := s.docs.UpdateDocument(d); err != nil {
		log.Printf("[documents] save %s: %v", id, err)
		return
	}
	if _, err := s.revs.Push(id, text); err != nil {
		log.Printf("[documents] revision %s: %v", id, err)
	}

	s.mu.Lock()
	if od, ok := s.open[id]; ok {
		od.lastSaved = text
	}
	s.mu.Unlock()

	if d.FilePath != "" {
		if err := os.WriteFile(d.FilePath, []byte(text), 0644); err != nil {
			log.Printf("[documents] write %s: %v", d.FilePath, err)
		}
	}
	s.emitter.Emit(s.ctx, "document:saved", id)
}

// AttachImage reads an image file into an image block of an open
// document. The returned channel closes once the block was updated or the
// read failed.
func (s *DocumentService) AttachImage(id, blockID, path string) (<-chan struct{}, error) {
	ed, err := s.Open(id)
	if err != nil {
		return nil, err
	}
	if !s.images.begin(id, blockID) {
		return nil, ErrImageBusy
	}
	f, err := os.Open(path)
	if err != nil {
		s.images.done(id, blockID)
		return nil, fmt.Errorf("open image: %w", err)
	}
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	done := ed.AttachImage(blockID, f, mimeType)
	out := make(chan struct{})
	go func() {
		<-done
		f.Close()
		s.images.done(id, blockID)
		close(out)
	}()
	return out, nil
}

// Close flushes and closes one document's editor.
func (s *DocumentService) Close(id string) {
	s.mu.Lock()
	od := s.open[id]
	delete(s.open, id)
	s.mu.Unlock()
	if od != nil {
		od.editor.Close()
		if s.settings != nil {
			if err := s.settings.SaveRecentTypes(od.editor.RecentTypes()); err != nil {
				log.Printf("[documents] %v", err)
			}
		}
	}
}

// CloseAll waits for image attaches in flight, then flushes and closes
// every editor.
func (s *DocumentService) CloseAll(ctx context.Context) {
	s.images.wait(ctx)
	s.mu.Lock()
	ids := make([]string, 0, len(s.open))
	for id := range s.open {
		ids = append(ids, id)
	}
	s.mu.Unlock()
	for _, id := range ids {
		s.Close(id)
	}
}
