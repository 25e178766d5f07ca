package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"blockedit/internal/domain"
)

// DocumentStore implements domain.DocumentStore using SQLite.
type DocumentStore struct {
	db *DB
}

func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

const documentColumns = `id, kind, title, body, locale, file_path, created_at, updated_at`

func (s *DocumentStore) CreateDocument(d *domain.Document) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if !d.Kind.Valid() {
		d.Kind = domain.DocumentKindArticle
	}
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO documents (`+documentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Kind, d.Title, d.Body, d.Locale, d.FilePath, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *DocumentStore) GetDocument(id string) (*domain.Document, error) {
	d := &domain.Document{}
	err := s.db.conn.QueryRow(
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id,
	).Scan(&d.ID, &d.Kind, &d.Title, &d.Body, &d.Locale, &d.FilePath, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

// ListDocuments returns documents of one kind, or all of them when kind is
// empty, most recently updated first.
func (s *DocumentStore) ListDocuments(kind domain.DocumentKind) ([]domain.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	var args []any
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := s.db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.Kind, &d.Title, &d.Body, &d.Locale, &d.FilePath, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// FindByFilePath returns the document linked to path.
func (s *DocumentStore) FindByFilePath(path string) (*domain.Document, error) {
	d := &domain.Document{}
	err := s.db.conn.QueryRow(
		`SELECT `+documentColumns+` FROM documents WHERE file_path = ? LIMIT 1`, path,
	).Scan(&d.ID, &d.Kind, &d.Title, &d.Body, &d.Locale, &d.FilePath, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("find document by file: %w", err)
	}
	return d, nil
}

func (s *DocumentStore) UpdateDocument(d *domain.Document) error {
	d.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE documents SET kind = ?, title = ?, body = ?, locale = ?, file_path = ?, updated_at = ? WHERE id = ?`,
		d.Kind, d.Title, d.Body, d.Locale, d.FilePath, d.UpdatedAt, d.ID,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return nil
}

// DeleteDocument removes a document and its revisions.
func (s *DocumentStore) DeleteDocument(id string) error {
	if _, err := s.db.conn.Exec(`DELETE FROM revisions WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("delete revisions: %w", err)
	}
	_, err := s.db.conn.Exec(`DELETE FROM documents WHERE id = ?`, id)
	return err
}
