// Package app wires configuration, storage, the document service, file
// watching and the MCP server into one process.
package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"blockedit/internal/config"
	"blockedit/internal/editor"
	"blockedit/internal/filewatch"
	mcpserver "blockedit/internal/mcp"
	"blockedit/internal/service"
	"blockedit/internal/storage"
)

// logEmitter is the EventEmitter used without a frontend: events go to the
// log.
type logEmitter struct{}

func (logEmitter) Emit(_ context.Context, event string, data any) {
	log.Printf("[event] %s %v", event, data)
}

// App owns every long-lived component.
type App struct {
	cfg       config.Config
	db        *storage.DB
	documents *service.DocumentService
	watcher   *filewatch.Watcher
	emitter   service.EventEmitter
}

// New opens the database and starts watching linked files. emitter may be
// nil, in which case events are logged.
func New(cfg config.Config, emitter service.EventEmitter) (*App, error) {
	if emitter == nil {
		emitter = logEmitter{}
	}
	db, err := storage.New(cfg.DBPath(), filepath.Join(cfg.DataDir, "files"))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	docs := service.NewDocumentService(
		storage.NewDocumentStore(db),
		storage.NewRevisionStore(db, cfg.RevisionLimit),
		editor.Options{
			Locale:        cfg.Locale,
			Trigger:       cfg.Trigger,
			AutosaveDelay: cfg.AutosaveDelay,
			ToolbarOffset: cfg.ToolbarOffset,
			RecentLimit:   cfg.RecentLimit,
		},
		emitter,
	)
	docs.SetSettings(service.NewSettingsService(db))
	docs.SetExportDir(db.DataDir())
	a := &App{cfg: cfg, db: db, documents: docs, emitter: emitter}

	if !cfg.DisableWatch {
		w, err := filewatch.New(cfg.WatchSettle, docs.FileChanged)
		if err != nil {
			log.Printf("[app] file watching disabled: %v", err)
		} else {
			a.watcher = w
			a.watchLinkedFiles()
		}
	}
	return a, nil
}

// Documents returns the document service.
func (a *App) Documents() *service.DocumentService {
	return a.documents
}

func (a *App) watchLinkedFiles() {
	docs, err := a.documents.List("")
	if err != nil {
		log.Printf("[app] list documents: %v", err)
		return
	}
	for _, d := range docs {
		if d.FilePath != "" {
			a.watch(d.FilePath)
		}
	}
}

func (a *App) watch(path string) {
	if a.watcher == nil {
		return
	}
	if err := a.watcher.Watch(path); err != nil {
		log.Printf("[app] watch %s: %v", path, err)
	}
}

// Approvals returns the destructive MCP calls shared with a running server.
func (a *App) Approvals() *storage.ApprovalStore {
	return storage.NewApprovalStore(a.db)
}

// Import imports a Markdown file and starts watching it.
func (a *App) Import(path, kind string) (string, error) {
	d, err := a.documents.Import(path, kind)
	if err != nil {
		return "", err
	}
	a.watch(d.FilePath)
	return d.ID, nil
}

// Close flushes open editors, stops watching and closes the database.
func (a *App) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.documents.CloseAll(ctx)
	if a.watcher != nil {
		a.watcher.Close()
	}
	return a.db.Close()
}

// ServeMCP runs the MCP server on stdin/stdout until interrupted.
func (a *App) ServeMCP() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	a.documents.SetContext(ctx)

	srv := mcpserver.New(ctx, mcpserver.Deps{
		Emitter:     a.emitter,
		Documents:   a.documents,
		Locale:      a.cfg.Locale,
		AutoApprove: a.cfg.MCPAutoApprove,
		Approvals:   a.Approvals(),
	})

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ServeStdio() }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Println("[MCP] Shutting down...")
		return nil
	}
}
