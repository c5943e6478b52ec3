package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/de-tools/fraud-atlas/pkg/models/domain"
	snapshotstore "github.com/de-tools/fraud-atlas/pkg/store/sqlite/snapshot"
	"github.com/rs/zerolog"
)

const defaultKeep = 5

// Lister is the read side of the analytics service.
type Lister interface {
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
}

type Option func(*Repository)

// WithStore persists every successful snapshot and keeps the newest keep of them.
func WithStore(store snapshotstore.Store, keep int) Option {
	return func(r *Repository) {
		r.store = store
		if keep > 0 {
			r.keep = keep
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// Repository owns the last successful fetch of the transaction list and tells
// subscribers whenever it is replaced.
type Repository struct {
	lister Lister
	store  snapshotstore.Store
	keep   int
	now    func() time.Time

	// deliverMu serializes subscriber calls so they see snapshots in the order they were
	// applied. It is taken before mu.
	deliverMu sync.Mutex
	delivered uint64

	mu          sync.RWMutex
	snapshot    *domain.Snapshot
	version     uint64
	lastErr     error
	inFlight    int
	started     uint64
	applied     uint64
	closed      bool
	subscribers map[int]func(domain.Snapshot)
	nextSubID   int
}

func NewRepository(lister Lister, opts ...Option) *Repository {
	r := &Repository{
		lister:      lister,
		keep:        defaultKeep,
		now:         time.Now,
		subscribers: make(map[int]func(domain.Snapshot)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Refresh fetches the full list and replaces the snapshot. On failure the previous
// snapshot stays in place and the error is kept for LastError.
func (r *Repository) Refresh(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	r.started++
	seq := r.started
	r.inFlight++
	r.mu.Unlock()

	transactions, err := r.lister.ListTransactions(ctx)

	r.mu.Lock()
	r.inFlight--
	if r.closed {
		r.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		if seq > r.applied {
			r.lastErr = err
		}
		r.mu.Unlock()
		logger.Error().Err(err).Msg("failed to refresh transactions")
		return err
	}
	if seq < r.applied {
		// a newer refresh has already landed
		r.mu.Unlock()
		return nil
	}

	snap := domain.Snapshot{
		Transactions: transactions,
		FetchedAt:    r.now(),
	}
	r.snapshot = &snap
	r.version++
	r.applied = seq
	r.lastErr = nil
	r.mu.Unlock()

	logger.Debug().Int("count", snap.Len()).Msg("transactions refreshed")

	r.deliver()

	r.persist(ctx, snap)
	return nil
}

// LoadCached seeds the repository with the newest stored snapshot. It reports false
// when there is no store or nothing has been stored yet.
func (r *Repository) LoadCached(ctx context.Context) (bool, error) {
	if r.store == nil {
		return false, nil
	}

	cached, err := r.store.Latest(ctx)
	if err != nil {
		return false, err
	}
	if cached == nil {
		return false, nil
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return false, ErrClosed
	}
	if r.snapshot != nil {
		// a live fetch wins over the cache
		r.mu.Unlock()
		return false, nil
	}
	r.snapshot = cached
	r.version++
	r.mu.Unlock()

	zerolog.Ctx(ctx).Info().
		Int("count", cached.Len()).
		Time("fetched_at", cached.FetchedAt).
		Msg("loaded cached snapshot")

	r.deliver()
	return true, nil
}

// Snapshot returns the current snapshot, if any fetch has succeeded.
func (r *Repository) Snapshot() (domain.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.snapshot == nil {
		return domain.Snapshot{}, false
	}
	return *r.snapshot, true
}

// Subscribe calls fn with the current snapshot right away, if there is one, and with
// every snapshot that replaces it until unsubscribe is called. fn must not call Subscribe.
func (r *Repository) Subscribe(fn func(domain.Snapshot)) (unsubscribe func()) {
	r.deliverMu.Lock()
	defer r.deliverMu.Unlock()

	r.mu.Lock()
	id := r.nextSubID
	r.nextSubID++
	r.subscribers[id] = fn
	current := r.snapshot
	r.mu.Unlock()

	if current != nil {
		fn(*current)
	}

	return func() {
		r.mu.Lock()
		delete(r.subscribers, id)
		r.mu.Unlock()
	}
}

// LastError is the error of the most recent failed refresh, cleared by a successful one.
func (r *Repository) LastError() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastErr
}

func (r *Repository) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.inFlight > 0
}

// Close drops every subscriber. Refreshes still in flight are discarded when they return.
func (r *Repository) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.subscribers = make(map[int]func(domain.Snapshot))
}

// deliver hands the current snapshot to every subscriber unless a newer call already has.
// When refreshes overlap, the last one to apply wins here as well.
func (r *Repository) deliver() {
	r.deliverMu.Lock()
	defer r.deliverMu.Unlock()

	r.mu.RLock()
	if r.closed || r.snapshot == nil || r.version <= r.delivered {
		r.mu.RUnlock()
		return
	}
	snap := *r.snapshot
	r.delivered = r.version
	subscribers := r.subscriberList()
	r.mu.RUnlock()

	for _, fn := range subscribers {
		fn(snap)
	}
}

func (r *Repository) subscriberList() []func(domain.Snapshot) {
	out := make([]func(domain.Snapshot), 0, len(r.subscribers))
	for i := 0; i < r.nextSubID; i++ {
		if fn, ok := r.subscribers[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func (r *Repository) persist(ctx context.Context, snap domain.Snapshot) {
	if r.store == nil {
		return
	}
	logger := zerolog.Ctx(ctx)

	if _, err := r.store.Save(ctx, snap); err != nil {
		logger.Warn().Err(err).Msg("failed to cache snapshot")
		return
	}
	if err := r.store.Prune(ctx, r.keep); err != nil {
		logger.Warn().Err(err).Msg("failed to prune cached snapshots")
	}
}
