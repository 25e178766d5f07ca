package mcpserver

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"blockedit/internal/storage"
)

// EventEmitter allows the approval queue to notify the embedding app.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// PendingAction represents a destructive operation awaiting user approval.
type PendingAction struct {
	ID          string `json:"id"`
	Tool        string `json:"tool"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	Metadata    string `json:"metadata"` // JSON with extra context (e.g. block IDs)
}

// actionResult is sent through the channel when user approves/rejects.
type actionResult struct {
	approved bool
}

// DefaultApprovalTimeout is how long a destructive tool waits for a reply.
const DefaultApprovalTimeout = 120 * time.Second

// DefaultPollInterval is how often a stored approval is checked for an answer.
const DefaultPollInterval = 500 * time.Millisecond

// ApprovalStore shares pending actions with another process, such as the
// approve and reject CLI commands.
type ApprovalStore interface {
	Insert(a *storage.Approval) error
	Status(id string) (string, error)
	Resolve(id string, approved bool) error
	Delete(id string) error
}

// ApprovalQueue manages human-in-the-loop approval for destructive MCP tool
// calls. A pending action is announced as "mcp:approval-required". In
// process it is answered through Approve or Reject; with a store it is
// written to SQLite and polled until another process answers it.
type ApprovalQueue struct {
	mu          sync.Mutex
	pending     map[string]chan actionResult
	ctx         context.Context
	emitter     EventEmitter
	timeout     time.Duration
	poll        time.Duration
	autoApprove bool
	store       ApprovalStore
}

func NewApprovalQueue(ctx context.Context, emitter EventEmitter) *ApprovalQueue {
	return &ApprovalQueue{
		pending: make(map[string]chan actionResult),
		ctx:     ctx,
		emitter: emitter,
		timeout: DefaultApprovalTimeout,
		poll:    DefaultPollInterval,
	}
}

// SetStore switches to cross-process approval through store.
func (q *ApprovalQueue) SetStore(store ApprovalStore) {
	q.store = store
}

// SetPollInterval changes how often a stored approval is checked.
func (q *ApprovalQueue) SetPollInterval(d time.Duration) {
	q.poll = d
}

// SetAutoApprove makes every request succeed without asking.
func (q *ApprovalQueue) SetAutoApprove(v bool) {
	q.autoApprove = v
}

// SetTimeout changes how long Request waits.
func (q *ApprovalQueue) SetTimeout(d time.Duration) {
	q.timeout = d
}

// Request sends an approval request and blocks until approved/rejected.
// metadata is optional JSON with extra context.
func (q *ApprovalQueue) Request(tool, description string, metadata ...string) (bool, error) {
	if q.autoApprove {
		return true, nil
	}
	id := uuid.New().String()
	meta := "{}"
	if len(metadata) > 0 && metadata[0] != "" {
		meta = metadata[0]
	}

	action := PendingAction{
		ID:          id,
		Tool:        tool,
		Description: description,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Metadata:    meta,
	}
	if q.store != nil {
		return q.requestViaStore(action)
	}
	return q.requestViaChannel(action)
}

func (q *ApprovalQueue) requestViaChannel(action PendingAction) (bool, error) {
	ch := make(chan actionResult, 1)
	q.mu.Lock()
	q.pending[action.ID] = ch
	q.mu.Unlock()
	defer q.cleanup(action.ID)

	q.emitter.Emit(q.ctx, "mcp:approval-required", action)

	timeout := time.NewTimer(q.timeout)
	defer timeout.Stop()
	select {
	case result := <-ch:
		if !result.approved {
			return false, fmt.Errorf("action rejected by user: %s", action.Tool)
		}
		return true, nil
	case <-timeout.C:
		q.emitter.Emit(q.ctx, "mcp:approval-dismissed", map[string]string{"id": action.ID})
		return false, fmt.Errorf("action timed out after %s: %s", q.timeout, action.Tool)
	case <-q.ctx.Done():
		return false, fmt.Errorf("context cancelled")
	}
}

// requestViaStore writes the action to the approvals table and polls it
// until it is answered. The row is removed whatever the outcome.
func (q *ApprovalQueue) requestViaStore(action PendingAction) (bool, error) {
	err := q.store.Insert(&storage.Approval{
		ID:          action.ID,
		Tool:        action.Tool,
		Description: action.Description,
		Metadata:    action.Metadata,
	})
	if err != nil {
		return false, err
	}
	defer q.store.Delete(action.ID)

	q.emitter.Emit(q.ctx, "mcp:approval-required", action)
	log.Printf("[MCP] %s waits for approval: blockedit approve %s (or reject)", action.Tool, action.ID)

	timeout := time.NewTimer(q.timeout)
	defer timeout.Stop()
	ticker := time.NewTicker(q.poll)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			status, err := q.store.Status(action.ID)
			if err != nil {
				continue
			}
			switch status {
			case storage.ApprovalApproved:
				return true, nil
			case storage.ApprovalRejected:
				return false, fmt.Errorf("action rejected by user: %s", action.Tool)
			}
		case <-timeout.C:
			q.emitter.Emit(q.ctx, "mcp:approval-dismissed", map[string]string{"id": action.ID})
			return false, fmt.Errorf("action timed out after %s: %s", q.timeout, action.Tool)
		case <-q.ctx.Done():
			return false, fmt.Errorf("context cancelled")
		}
	}
}

// Pending returns the ids awaiting a reply.
func (q *ApprovalQueue) Pending() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	ids := make([]string, 0, len(q.pending))
	for id := range q.pending {
		ids = append(ids, id)
	}
	return ids
}

// Approve marks a pending action as approved.
func (q *ApprovalQueue) Approve(actionID string) {
	q.resolve(actionID, true)
}

// Reject marks a pending action as rejected.
func (q *ApprovalQueue) Reject(actionID string) {
	q.resolve(actionID, false)
}

func (q *ApprovalQueue) resolve(actionID string, approved bool) {
	q.mu.Lock()
	ch, ok := q.pending[actionID]
	q.mu.Unlock()
	if !ok && q.store != nil {
		if err := q.store.Resolve(actionID, approved); err != nil {
			log.Printf("[MCP] resolve %s: %v", actionID, err)
		}
		return
	}
	if ok {
		select {
		case ch <- actionResult{approved: approved}:
		default:
		}
	}
}

func (q *ApprovalQueue) cleanup(id string) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}
