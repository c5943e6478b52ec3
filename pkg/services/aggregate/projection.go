package aggregate

import (
	"sync"

	"github.com/de-tools/fraud-atlas/pkg/models/domain"
)

// Source publishes every snapshot that replaces the previous one.
type Source interface {
	Subscribe(fn func(domain.Snapshot)) (unsubscribe func())
}

// Projection keeps the aggregate of the latest snapshot published by a Source.
type Projection struct {
	engine Engine

	mu          sync.RWMutex
	current     domain.Aggregate
	ready       bool
	unsubscribe func()
}

func NewProjection(engine Engine) *Projection {
	return &Projection{
		engine:  engine,
		current: engine.Aggregate(nil),
	}
}

// Attach starts following src. A previous source, if any, is detached first.
func (p *Projection) Attach(src Source) {
	p.Detach()

	unsubscribe := src.Subscribe(p.apply)

	p.mu.Lock()
	p.unsubscribe = unsubscribe
	p.mu.Unlock()
}

func (p *Projection) Detach() {
	p.mu.Lock()
	unsubscribe := p.unsubscribe
	p.unsubscribe = nil
	p.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Current returns the latest aggregate and whether any snapshot has been seen yet.
func (p *Projection) Current() (domain.Aggregate, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current, p.ready
}

func (p *Projection) apply(snap domain.Snapshot) {
	agg := p.engine.Aggregate(snap.Transactions)

	p.mu.Lock()
	p.current = agg
	p.ready = true
	p.mu.Unlock()
}
