// Package worker provides background processing for session journal writes.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ewilliams-labs/moodtrack/internal/core/domain"
	"github.com/ewilliams-labs/moodtrack/internal/core/ports"
)

const defaultWriteTimeout = 2 * time.Second

// Pool drains session events into the journal and publisher off the frame loop.
type Pool struct {
	journal   ports.SessionJournal
	publisher ports.EventPublisher
	logger    *slog.Logger
	timeout   time.Duration

	jobs chan domain.SessionEvent
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

var _ ports.EventSink = (*Pool)(nil)

// Option configures a Pool.
type Option func(*Pool)

func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithWriteTimeout bounds each journal or publisher call.
func WithWriteTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// NewPool creates a pool with the given queue size. Either backend may be nil.
func NewPool(journal ports.SessionJournal, publisher ports.EventPublisher, queueSize int, opts ...Option) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	p := &Pool{
		journal:   journal,
		publisher: publisher,
		logger:    slog.Default(),
		timeout:   defaultWriteTimeout,
		jobs:      make(chan domain.SessionEvent, queueSize),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for e := range p.jobs {
				p.process(e)
			}
		}()
	}
}

// Stop closes the queue and waits for queued events to be written.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}

// Submit queues an event without blocking. A full queue drops the event.
func (p *Pool) Submit(e domain.SessionEvent) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn("worker: pool stopped, dropping event", "kind", e.Kind, "session", e.SessionID)
		return
	}
	select {
	case p.jobs <- e:
	default:
		p.logger.Warn("worker: queue full, dropping event", "kind", e.Kind, "session", e.SessionID)
	}
}

func (p *Pool) process(e domain.SessionEvent) {
	if p.journal != nil {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err := p.journal.RecordEvent(ctx, e)
		cancel()
		if err != nil {
			p.logger.Warn("worker: journal write failed", "kind", e.Kind, "error", err)
		}
	}
	if p.publisher != nil {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err := p.publisher.Publish(ctx, e)
		cancel()
		if err != nil {
			p.logger.Warn("worker: publish failed", "kind", e.Kind, "error", err)
		}
	}
	p.logger.Debug("worker: event processed", "kind", e.Kind, "mood", e.Mood.String())
}
