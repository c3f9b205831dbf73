// Package audit decouples audit emission from the operations that produce
// events. Emission is always best-effort from the caller's side: a full
// queue or a failed write never fails or blocks the originating operation.
package audit

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/meridianbank/core-banking/internal/api/metrics"
	"github.com/meridianbank/core-banking/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	writeTimeout   = 3 * time.Second
)

// Recorder is the synchronous write path the dispatcher drains into.
type Recorder interface {
	RecordEvent(ctx context.Context, event ports.AuditEvent) (int64, error)
}

// Dispatcher fans audit events out to a fixed set of workers, sharded by
// actor so one actor's events stay ordered.
type Dispatcher struct {
	workers []chan ports.AuditEvent
	service Recorder
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service Recorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.AuditEvent, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.AuditEvent, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Emit enqueues an event without blocking. When the shard's buffer is full
// the event is dropped and counted; the caller is never held up.
func (d *Dispatcher) Emit(event ports.AuditEvent) {
	shard := d.shardIndex(event)
	select {
	case d.workers[shard] <- event:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(shard)).Set(float64(len(d.workers[shard])))
	default:
		metrics.AuditEventsDroppedTotal.Inc()
		d.log.Warn().Str("action", event.Action).Msg("audit queue full, event dropped")
	}
}

func (d *Dispatcher) shardIndex(event ports.AuditEvent) int {
	h := fnv.New32a()
	if event.ActorID != nil {
		_, _ = h.Write([]byte(*event.ActorID))
	} else {
		_, _ = h.Write([]byte(event.Action))
	}
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.AuditEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
			if _, err := d.service.RecordEvent(writeCtx, event); err != nil {
				d.log.Warn().Err(err).
					Str("action", event.Action).
					Int("worker_id", id).
					Msg("audit event delivery failed")
			}
			cancel()
			metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
		}
	}
}
