package service

import (
	"context"
	"testing"
	"time"
)

func TestImageReads_OneReadPerBlock(t *testing.T) {
	var r imageReads
	if !r.begin("doc", "img-1") {
		t.Fatal("first read refused")
	}
	if r.begin("doc", "img-1") {
		t.Fatal("second read of the same block allowed")
	}
	if !r.begin("doc", "img-2") || !r.begin("other", "img-1") {
		t.Fatal("reads of other blocks refused")
	}
	r.done("doc", "img-1")
	r.done("doc", "img-2")
	r.done("other", "img-1")

	if !r.begin("doc", "img-1") {
		t.Fatal("block not reusable after done")
	}
	r.done("doc", "img-1")
}

func TestImageReads_WaitReturnsWhenIdle(t *testing.T) {
	var r imageReads
	r.begin("doc", "img")

	idle := make(chan struct{})
	go func() {
		r.wait(context.Background())
		close(idle)
	}()
	time.Sleep(20 * time.Millisecond)
	select {
	case <-idle:
		t.Fatal("wait returned during a read")
	default:
	}

	r.done("doc", "img")
	select {
	case <-idle:
	case <-time.After(time.Second):
		t.Fatal("wait never returned")
	}
}

func TestImageReads_WaitHonorsContext(t *testing.T) {
	var r imageReads
	r.begin("doc", "stuck")
	defer r.done("doc", "stuck")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	r.wait(ctx)
	if time.Since(start) > time.Second {
		t.Error("wait ignored the context")
	}
}
