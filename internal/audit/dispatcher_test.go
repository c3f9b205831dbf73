package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/meridianbank/core-banking/internal/core/ports"
)

type recordingRecorder struct {
	mu     sync.Mutex
	nextID int64
	events []ports.AuditEvent
	done   chan struct{}
	want   int
}

func newRecordingRecorder(want int) *recordingRecorder {
	return &recordingRecorder{done: make(chan struct{}), want: want}
}

func (r *recordingRecorder) RecordEvent(_ context.Context, event ports.AuditEvent) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.events = append(r.events, event)
	if len(r.events) == r.want {
		close(r.done)
	}
	return r.nextID, nil
}

func TestDispatcher_DeliversEvents(t *testing.T) {
	recorder := newRecordingRecorder(3)
	d := NewDispatcher(2, recorder, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d.Start(ctx)

	actor := "u1"
	for _, action := range []string{"login_success", "login_failed", "external_transfer"} {
		d.Emit(ports.AuditEvent{ActorID: &actor, Action: action})
	}

	select {
	case <-recorder.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("events not delivered in time")
	}

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(recorder.events))
	}
}

func TestDispatcher_EmitNeverBlocks(t *testing.T) {
	// No workers started: every buffer fills up and stays full.
	d := NewDispatcher(1, newRecordingRecorder(0), zerolog.Nop())

	finished := make(chan struct{})
	go func() {
		actor := "u1"
		for i := 0; i < channelBuffer*2; i++ {
			d.Emit(ports.AuditEvent{ActorID: &actor, Action: "ping"})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("emit blocked on a full queue")
	}
}

func TestDispatcher_ShardsByActor(t *testing.T) {
	d := NewDispatcher(4, newRecordingRecorder(0), zerolog.Nop())

	actor := "stable-actor"
	first := d.shardIndex(ports.AuditEvent{ActorID: &actor, Action: "a"})
	for i := 0; i < 10; i++ {
		if got := d.shardIndex(ports.AuditEvent{ActorID: &actor, Action: "b"}); got != first {
			t.Fatalf("same actor must always map to the same shard")
		}
	}
}
