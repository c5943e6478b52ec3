package snapshot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/de-tools/fraud-atlas/pkg/models/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockLister struct {
	mock.Mock
}

func (m *mockLister) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Save(ctx context.Context, snap domain.Snapshot) (int64, error) {
	args := m.Called(ctx, snap)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) Latest(ctx context.Context) (*domain.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *mockStore) Prune(ctx context.Context, keep int) error {
	args := m.Called(ctx, keep)
	return args.Error(0)
}

type listerFunc func(ctx context.Context) ([]domain.Transaction, error)

func (f listerFunc) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	return f(ctx)
}

var fixedNow = time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC)

func sampleTransactions() []domain.Transaction {
	return []domain.Transaction{
		{ID: 1, Amount: decimal.NewFromInt(100), Timestamp: fixedNow.Add(-time.Hour)},
		{ID: 2, Amount: decimal.NewFromInt(300), Timestamp: fixedNow.Add(-2 * time.Hour)},
	}
}

func TestRepository_Refresh(t *testing.T) {
	lister := new(mockLister)
	lister.On("ListTransactions", mock.Anything).Return(sampleTransactions(), nil).Once()

	repo := NewRepository(lister, WithClock(func() time.Time { return fixedNow }))
	_, ok := repo.Snapshot()
	assert.False(t, ok)

	require.NoError(t, repo.Refresh(context.Background()))

	snap, ok := repo.Snapshot()
	require.True(t, ok)
	assert.Equal(t, 2, snap.Len())
	assert.Equal(t, fixedNow, snap.FetchedAt)
	assert.NoError(t, repo.LastError())
	assert.False(t, repo.Loading())
	lister.AssertExpectations(t)
}

func TestRepository_RefreshFailureKeepsSnapshot(t *testing.T) {
	lister := new(mockLister)
	svcErr := &domain.ServiceError{Status: 500, Detail: "database unavailable"}
	lister.On("ListTransactions", mock.Anything).Return(sampleTransactions(), nil).Once()
	lister.On("ListTransactions", mock.Anything).Return(nil, svcErr).Once()

	repo := NewRepository(lister)
	require.NoError(t, repo.Refresh(context.Background()))

	err := repo.Refresh(context.Background())
	assert.ErrorIs(t, err, svcErr)
	assert.ErrorIs(t, repo.LastError(), svcErr)

	snap, ok := repo.Snapshot()
	require.True(t, ok)
	assert.Equal(t, 2, snap.Len())

	lister.On("ListTransactions", mock.Anything).Return([]domain.Transaction{}, nil).Once()
	require.NoError(t, repo.Refresh(context.Background()))
	assert.NoError(t, repo.LastError())
	snap, _ = repo.Snapshot()
	assert.Equal(t, 0, snap.Len())
}

func TestRepository_Subscribe(t *testing.T) {
	lister := new(mockLister)
	lister.On("ListTransactions", mock.Anything).Return(sampleTransactions(), nil)

	repo := NewRepository(lister)

	var early []int
	unsubscribe := repo.Subscribe(func(snap domain.Snapshot) {
		early = append(early, snap.Len())
	})
	assert.Empty(t, early)

	require.NoError(t, repo.Refresh(context.Background()))
	assert.Equal(t, []int{2}, early)

	var late []int
	repo.Subscribe(func(snap domain.Snapshot) {
		late = append(late, snap.Len())
	})
	assert.Equal(t, []int{2}, late, "current snapshot is delivered on subscribe")

	unsubscribe()
	require.NoError(t, repo.Refresh(context.Background()))
	assert.Equal(t, []int{2}, early)
	assert.Equal(t, []int{2, 2}, late)
}

func TestRepository_SubscribersSeeSnapshotsInOrder(t *testing.T) {
	var calls atomic.Int32
	lister := listerFunc(func(context.Context) ([]domain.Transaction, error) {
		if calls.Add(1) == 1 {
			return sampleTransactions()[:1], nil
		}
		return sampleTransactions(), nil
	})
	repo := NewRepository(lister)

	entered := make(chan struct{})
	release := make(chan struct{})
	var (
		mu   sync.Mutex
		seen []int
		once sync.Once
	)
	repo.Subscribe(func(snap domain.Snapshot) {
		once.Do(func() {
			close(entered)
			<-release
		})
		mu.Lock()
		seen = append(seen, snap.Len())
		mu.Unlock()
	})

	first := make(chan error, 1)
	go func() { first <- repo.Refresh(context.Background()) }()
	<-entered

	second := make(chan error, 1)
	go func() { second <- repo.Refresh(context.Background()) }()
	assert.Eventually(t, func() bool {
		snap, _ := repo.Snapshot()
		return snap.Len() == 2
	}, time.Second, 5*time.Millisecond)

	close(release)
	require.NoError(t, <-first)
	require.NoError(t, <-second)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2}, seen)
}

func TestRepository_OverlappingRefreshKeepsNewest(t *testing.T) {
	var calls atomic.Int32
	entered := make(chan struct{})
	release := make(chan struct{})
	lister := listerFunc(func(context.Context) ([]domain.Transaction, error) {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
			return sampleTransactions()[:1], nil
		}
		return sampleTransactions(), nil
	})
	repo := NewRepository(lister)

	var seen []int
	repo.Subscribe(func(snap domain.Snapshot) { seen = append(seen, snap.Len()) })

	first := make(chan error, 1)
	go func() { first <- repo.Refresh(context.Background()) }()
	<-entered

	require.NoError(t, repo.Refresh(context.Background()))
	assert.Equal(t, []int{2}, seen)

	close(release)
	require.NoError(t, <-first)

	snap, ok := repo.Snapshot()
	require.True(t, ok)
	assert.Equal(t, 2, snap.Len())
	assert.NoError(t, repo.LastError())
	assert.Equal(t, []int{2}, seen, "the older result is dropped")
}

func TestRepository_LoadingWhileInFlight(t *testing.T) {
	release := make(chan time.Time)
	lister := new(mockLister)
	lister.On("ListTransactions", mock.Anything).
		WaitUntil(release).
		Return(sampleTransactions(), nil)

	repo := NewRepository(lister)
	done := make(chan error, 1)
	go func() {
		done <- repo.Refresh(context.Background())
	}()

	assert.Eventually(t, repo.Loading, time.Second, 5*time.Millisecond)
	close(release)
	require.NoError(t, <-done)
	assert.False(t, repo.Loading())
}

func TestRepository_CloseDiscardsLateResults(t *testing.T) {
	release := make(chan time.Time)
	lister := new(mockLister)
	lister.On("ListTransactions", mock.Anything).
		WaitUntil(release).
		Return(sampleTransactions(), nil)

	repo := NewRepository(lister)
	notified := false
	repo.Subscribe(func(domain.Snapshot) { notified = true })

	done := make(chan error, 1)
	go func() {
		done <- repo.Refresh(context.Background())
	}()
	assert.Eventually(t, repo.Loading, time.Second, 5*time.Millisecond)

	repo.Close()
	close(release)

	assert.ErrorIs(t, <-done, ErrClosed)
	_, ok := repo.Snapshot()
	assert.False(t, ok)
	assert.False(t, notified)
	assert.ErrorIs(t, repo.Refresh(context.Background()), ErrClosed)
}

func TestRepository_PersistsSnapshots(t *testing.T) {
	lister := new(mockLister)
	lister.On("ListTransactions", mock.Anything).Return(sampleTransactions(), nil)

	store := new(mockStore)
	store.On("Save", mock.Anything, mock.MatchedBy(func(s domain.Snapshot) bool {
		return s.Len() == 2 && s.FetchedAt.Equal(fixedNow)
	})).Return(int64(1), nil).Once()
	store.On("Prune", mock.Anything, 3).Return(nil).Once()

	repo := NewRepository(lister,
		WithStore(store, 3),
		WithClock(func() time.Time { return fixedNow }),
	)
	require.NoError(t, repo.Refresh(context.Background()))
	store.AssertExpectations(t)
}

func TestRepository_PersistFailureIsNotFatal(t *testing.T) {
	lister := new(mockLister)
	lister.On("ListTransactions", mock.Anything).Return(sampleTransactions(), nil)

	store := new(mockStore)
	store.On("Save", mock.Anything, mock.Anything).Return(int64(0), errors.New("disk full"))

	repo := NewRepository(lister, WithStore(store, 0))
	require.NoError(t, repo.Refresh(context.Background()))
	_, ok := repo.Snapshot()
	assert.True(t, ok)
	store.AssertNotCalled(t, "Prune", mock.Anything, mock.Anything)
}

func TestRepository_LoadCached(t *testing.T) {
	t.Run("no store", func(t *testing.T) {
		repo := NewRepository(new(mockLister))
		ok, err := repo.LoadCached(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("nothing cached", func(t *testing.T) {
		store := new(mockStore)
		store.On("Latest", mock.Anything).Return(nil, nil)

		repo := NewRepository(new(mockLister), WithStore(store, 0))
		ok, err := repo.LoadCached(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("seeds subscribers", func(t *testing.T) {
		cached := &domain.Snapshot{Transactions: sampleTransactions(), FetchedAt: fixedNow}
		store := new(mockStore)
		store.On("Latest", mock.Anything).Return(cached, nil)

		repo := NewRepository(new(mockLister), WithStore(store, 0))
		var got []domain.Snapshot
		repo.Subscribe(func(s domain.Snapshot) { got = append(got, s) })

		ok, err := repo.LoadCached(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
		require.Len(t, got, 1)
		assert.Equal(t, fixedNow, got[0].FetchedAt)
	})

	t.Run("store error", func(t *testing.T) {
		store := new(mockStore)
		store.On("Latest", mock.Anything).Return(nil, assert.AnError)

		repo := NewRepository(new(mockLister), WithStore(store, 0))
		_, err := repo.LoadCached(context.Background())
		assert.ErrorIs(t, err, assert.AnError)
	})
}
