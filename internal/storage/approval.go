package storage

import (
	"errors"
	"fmt"
	"time"
)

// Approval states.
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// ErrNotPending is returned when resolving an approval that is unknown or
// already answered.
var ErrNotPending = errors.New("no pending approval with that id")

// Approval is a destructive tool call waiting for a human answer. The MCP
// server writes it; a separate CLI process answers it.
type Approval struct {
	ID          string    `json:"id"`
	Tool        string    `json:"tool"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Metadata    string    `json:"metadata"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ApprovalStore keeps pending approvals in the mcp_approvals table.
type ApprovalStore struct {
	db *DB
}

func NewApprovalStore(db *DB) *ApprovalStore {
	return &ApprovalStore{db: db}
}

// Insert records a new pending approval.
func (s *ApprovalStore) Insert(a *Approval) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	a.Status = ApprovalPending
	if a.Metadata == "" {
		a.Metadata = "{}"
	}
	_, err := s.db.conn.Exec(
		`INSERT INTO mcp_approvals (id, tool, description, status, metadata, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Tool, a.Description, a.Status, a.Metadata, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	return nil
}

// Status returns the current state of an approval.
func (s *ApprovalStore) Status(id string) (string, error) {
	var status string
	err := s.db.conn.QueryRow(`SELECT status FROM mcp_approvals WHERE id = ?`, id).Scan(&status)
	if err != nil {
		return "", fmt.Errorf("approval status: %w", err)
	}
	return status, nil
}

// Resolve answers a pending approval.
func (s *ApprovalStore) Resolve(id string, approved bool) error {
	status := ApprovalRejected
	if approved {
		status = ApprovalApproved
	}
	res, err := s.db.conn.Exec(
		`UPDATE mcp_approvals SET status = ? WHERE id = ? AND status = ?`,
		status, id, ApprovalPending,
	)
	if err != nil {
		return fmt.Errorf("resolve approval: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotPending
	}
	return nil
}

// ListPending returns unanswered approvals, oldest first.
func (s *ApprovalStore) ListPending() ([]Approval, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, tool, description, status, metadata, created_at FROM mcp_approvals
		 WHERE status = ? ORDER BY rowid`, ApprovalPending,
	)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer rows.Close()

	var out []Approval
	for rows.Next() {
		var a Approval
		if err := rows.Scan(&a.ID, &a.Tool, &a.Description, &a.Status, &a.Metadata, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Delete removes an approval in any state.
func (s *ApprovalStore) Delete(id string) error {
	if _, err := s.db.conn.Exec(`DELETE FROM mcp_approvals WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete approval: %w", err)
	}
	return nil
}
