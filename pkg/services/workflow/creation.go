package workflow

import (
	"context"
	"sync"

	"github.com/de-tools/fraud-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

type Creator interface {
	CreateTransaction(ctx context.Context, draft domain.TransactionDraft) (domain.Transaction, error)
}

// Refresher re-runs the read path after a transaction was created.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Creation drives the "new transaction" dialog: Idle -> Editing -> Submitting -> Idle or
// back to Editing when the service rejects the draft.
type Creation struct {
	creator   Creator
	refresher Refresher

	mu         sync.Mutex
	status     domain.CreationStatus
	generation uint64
	closed     bool
}

func NewCreation(creator Creator, refresher Refresher) *Creation {
	return &Creation{
		creator:   creator,
		refresher: refresher,
		status:    domain.CreationStatus{State: domain.CreationIdle},
	}
}

// Open starts a new attempt with an empty draft.
func (c *Creation) Open() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.status.State == domain.CreationSubmitting {
		return ErrBusy
	}
	c.status = domain.CreationStatus{State: domain.CreationEditing}
	return nil
}

// Edit updates one draft field. Values are not checked here.
func (c *Creation) Edit(field domain.DraftField, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.closed:
		return ErrClosed
	case c.status.State == domain.CreationSubmitting:
		return ErrBusy
	case c.status.State != domain.CreationEditing:
		return ErrNotEditing
	}
	return c.status.Draft.Set(field, value)
}

// Submit sends the draft. On success the transaction list is refreshed before the dialog
// closes; on failure the draft is kept and the error message is stored for display.
func (c *Creation) Submit(ctx context.Context) (domain.Transaction, error) {
	logger := zerolog.Ctx(ctx)

	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return domain.Transaction{}, ErrClosed
	case c.status.State == domain.CreationSubmitting:
		c.mu.Unlock()
		return domain.Transaction{}, ErrBusy
	case c.status.State != domain.CreationEditing:
		c.mu.Unlock()
		return domain.Transaction{}, ErrNotEditing
	}

	c.status.Error = ""
	draft := c.status.Draft
	if err := draft.Validate(); err != nil {
		c.status.Error = domain.DisplayMessage(err, createFallback)
		c.mu.Unlock()
		return domain.Transaction{}, err
	}
	c.status.State = domain.CreationSubmitting
	gen := c.generation
	c.mu.Unlock()

	created, err := c.creator.CreateTransaction(ctx, draft)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to create transaction")

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.generation != gen {
			return domain.Transaction{}, ErrClosed
		}
		c.status.State = domain.CreationEditing
		c.status.Error = domain.DisplayMessage(err, createFallback)
		return domain.Transaction{}, err
	}

	logger.Info().Int64("transaction_id", created.ID).Msg("transaction created")

	if c.refresher != nil {
		if err := c.refresher.Refresh(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to refresh transactions after create")
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return created, ErrClosed
	}
	c.status = domain.CreationStatus{State: domain.CreationIdle}
	return created, nil
}

// Cancel discards the draft. It is a no-op when the dialog is not open.
func (c *Creation) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.closed:
		return ErrClosed
	case c.status.State == domain.CreationSubmitting:
		return ErrBusy
	}
	c.status = domain.CreationStatus{State: domain.CreationIdle}
	return nil
}

func (c *Creation) Status() domain.CreationStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Close makes results of in-flight submissions inert.
func (c *Creation) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.generation++
	c.status = domain.CreationStatus{State: domain.CreationIdle}
}
