package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"blockedit/internal/domain"
)

// DefaultRevisionLimit is how many revisions are kept per document.
const DefaultRevisionLimit = 40

// RevisionStore keeps the autosave history of documents in SQLite.
type RevisionStore struct {
	db    *DB
	limit int
}

// NewRevisionStore creates a store keeping at most limit revisions per
// document. A non-positive limit uses DefaultRevisionLimit.
func NewRevisionStore(db *DB, limit int) *RevisionStore {
	if limit <= 0 {
		limit = DefaultRevisionLimit
	}
	return &RevisionStore{db: db, limit: limit}
}

// Push records body as the newest revision of a document and prunes the
// oldest ones beyond the limit.
func (s *RevisionStore) Push(documentID, body string) (*domain.Revision, error) {
	rev := &domain.Revision{
		ID:         uuid.New().String(),
		DocumentID: documentID,
		Body:       body,
		CreatedAt:  time.Now(),
	}
	_, err := s.db.conn.Exec(
		`INSERT INTO revisions (id, document_id, body, created_at) VALUES (?, ?, ?, ?)`,
		rev.ID, rev.DocumentID, rev.Body, rev.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert revision: %w", err)
	}
	if err := s.pruneIfNeeded(documentID); err != nil {
		return nil, err
	}
	return rev, nil
}

// List returns a document's revisions, newest first.
func (s *RevisionStore) List(documentID string) ([]domain.Revision, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, document_id, body, created_at FROM revisions
		 WHERE document_id = ? ORDER BY rowid DESC`, documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var revs []domain.Revision
	for rows.Next() {
		var r domain.Revision
		if err := rows.Scan(&r.ID, &r.DocumentID, &r.Body, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		revs = append(revs, r)
	}
	return revs, rows.Err()
}

// ClearDocument removes all revisions of a document.
func (s *RevisionStore) ClearDocument(documentID string) error {
	_, err := s.db.conn.Exec(`DELETE FROM revisions WHERE document_id = ?`, documentID)
	return err
}

// pruneIfNeeded removes the oldest revisions when the count exceeds the
// limit.
func (s *RevisionStore) pruneIfNeeded(documentID string) error {
	var count int
	if err := s.db.conn.QueryRow(`SELECT COUNT(*) FROM revisions WHERE document_id = ?`, documentID).Scan(&count); err != nil {
		return fmt.Errorf("count revisions: %w", err)
	}
	if count <= s.limit {
		return nil
	}

	// Collect ids first; the single connection cannot write while a rows
	// cursor is open.
	rows, err := s.db.conn.Query(
		`SELECT id FROM revisions WHERE document_id = ?
		 ORDER BY rowid ASC LIMIT ?`, documentID, count-s.limit,
	)
	if err != nil {
		return fmt.Errorf("select old revisions: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	rows.Close()

	for _, id := range ids {
		if _, err := s.db.conn.Exec(`DELETE FROM revisions WHERE id = ?`, id); err != nil {
			return fmt.Errorf("prune revision: %w", err)
		}
	}
	return nil
}
