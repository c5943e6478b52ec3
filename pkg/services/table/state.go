package table

import (
	"fmt"
	"sync"

	"github.com/de-tools/fraud-atlas/pkg/models/domain"
)

const DefaultPageSize = 10

// PageSizeOptions are the densities offered by the transactions table.
var PageSizeOptions = []int{5, 10, 25}

// Source publishes every snapshot that replaces the previous one.
type Source interface {
	Subscribe(fn func(domain.Snapshot)) (unsubscribe func())
}

// State is a paginated view over a list it does not own. The list is only ever replaced,
// never modified in place.
type State struct {
	mu           sync.RWMutex
	transactions []domain.Transaction
	pageIndex    int
	pageSize     int
}

// NewState falls back to DefaultPageSize when pageSize is not positive.
func NewState(pageSize int) *State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &State{pageSize: pageSize}
}

// SetTransactions replaces the list. When the new list is shorter, the page index is
// clamped to the last page that still has rows.
func (s *State) SetTransactions(transactions []domain.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transactions = transactions
	s.pageIndex = clamp(s.pageIndex, s.lastPage())
}

// SetPageSize always goes back to the first page.
func (s *State) SetPageSize(n int) error {
	if n <= 0 {
		return &domain.ValidationError{
			Field:   "page_size",
			Message: fmt.Sprintf("page size must be positive, got %d", n),
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pageSize = n
	s.pageIndex = 0
	return nil
}

// SetPage moves to page i, clamped into the valid range. It returns the page actually selected.
func (s *State) SetPage(i int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pageIndex = clamp(i, s.lastPage())
	return s.pageIndex
}

func (s *State) NextPage() int {
	s.mu.RLock()
	next := s.pageIndex + 1
	s.mu.RUnlock()
	return s.SetPage(next)
}

func (s *State) PrevPage() int {
	s.mu.RLock()
	prev := s.pageIndex - 1
	s.mu.RUnlock()
	return s.SetPage(prev)
}

func (s *State) View() domain.PageView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.transactions)
	start := min(s.pageIndex*s.pageSize, total)
	end := min(start+s.pageSize, total)

	rows := make([]domain.Transaction, end-start)
	copy(rows, s.transactions[start:end])

	return domain.PageView{
		PageIndex:  s.pageIndex,
		PageSize:   s.pageSize,
		TotalCount: total,
		PageCount:  s.pageCount(),
		Rows:       rows,
	}
}

// Attach keeps the table in sync with src until the returned func is called.
func (s *State) Attach(src Source) (detach func()) {
	return src.Subscribe(func(snap domain.Snapshot) {
		s.SetTransactions(snap.Transactions)
	})
}

func (s *State) pageCount() int {
	return (len(s.transactions) + s.pageSize - 1) / s.pageSize
}

func (s *State) lastPage() int {
	return max(s.pageCount()-1, 0)
}

func clamp(i, last int) int {
	if i < 0 {
		return 0
	}
	if i > last {
		return last
	}
	return i
}
