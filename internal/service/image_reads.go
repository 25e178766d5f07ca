package service

import (
	"context"
	"sync"
)

type blockRef struct {
	documentID string
	blockID    string
}

// imageReads tracks image files being read into blocks. A block takes one
// read at a time; CloseAll waits on the rest before editors go away.
type imageReads struct {
	mu     sync.Mutex
	active map[blockRef]struct{}
	wg     sync.WaitGroup
}

// begin claims the block for a read. It fails while a read is active.
func (r *imageReads) begin(documentID, blockID string) bool {
	ref := blockRef{documentID, blockID}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		r.active = make(map[blockRef]struct{})
	}
	if _, busy := r.active[ref]; busy {
		return false
	}
	r.active[ref] = struct{}{}
	r.wg.Add(1)
	return true
}

// done releases a block claimed by begin.
func (r *imageReads) done(documentID, blockID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, blockRef{documentID, blockID})
	r.wg.Done()
}

// wait returns once no read is active, or when ctx ends.
func (r *imageReads) wait(ctx context.Context) {
	idle := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(idle)
	}()
	select {
	case <-idle:
	case <-ctx.Done():
	}
}
