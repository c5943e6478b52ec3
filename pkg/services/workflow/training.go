package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/de-tools/fraud-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

type Trainer interface {
	StartTraining(ctx context.Context) (domain.TrainingResult, error)
}

// Training runs the remote training call and then plays the progress display.
// Idle -> Running -> Displaying -> Idle, or Running -> Idle on failure.
type Training struct {
	trainer Trainer
	config  RunnerConfig

	mu           sync.Mutex
	status       domain.TrainingStatus
	generation   uint64
	closed       bool
	observers    map[int]func(int)
	nextObserver int
}

func NewTraining(trainer Trainer, progressInterval time.Duration) *Training {
	return &Training{
		trainer:   trainer,
		config:    RunnerConfig{SleepInterval: progressInterval},
		status:    domain.TrainingStatus{State: domain.TrainingIdle},
		observers: make(map[int]func(int)),
	}
}

// Start blocks until the run and its progress display are over.
func (t *Training) Start(ctx context.Context) error {
	gen, err := t.begin()
	if err != nil {
		return err
	}
	return t.run(ctx, gen)
}

// Subscribe registers fn for every progress value until unsubscribe is called.
func (t *Training) Subscribe(fn func(progress int)) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextObserver
	t.nextObserver++
	t.observers[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.observers, id)
		t.mu.Unlock()
	}
}

func (t *Training) Status() domain.TrainingStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *Training) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.generation++
	t.observers = make(map[int]func(int))
	t.status = domain.TrainingStatus{State: domain.TrainingIdle}
}

// begin moves Idle -> Running and clears the previous result and error.
func (t *Training) begin() (uint64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, ErrClosed
	}
	if t.status.State != domain.TrainingIdle {
		return 0, ErrBusy
	}
	t.status = domain.TrainingStatus{State: domain.TrainingRunning}
	return t.generation, nil
}

func (t *Training) run(ctx context.Context, gen uint64) error {
	logger := zerolog.Ctx(ctx)
	logger.Info().Msg("training started")

	result, err := t.trainer.StartTraining(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("training failed")
		return t.update(gen, func(s *domain.TrainingStatus) {
			*s = domain.TrainingStatus{
				State: domain.TrainingIdle,
				Error: domain.DisplayMessage(err, trainingFallback),
			}
		}, err)
	}

	logger.Info().
		Str("status", result.Status).
		Float64("final_loss", result.FinalLoss).
		Msg("training finished")

	if err := t.update(gen, func(s *domain.TrainingStatus) {
		s.State = domain.TrainingDisplaying
	}, nil); err != nil {
		return err
	}

	runner := NewProgressRunner(t.config)
	go runner.Run(ctx)

	for p := range runner.Progress() {
		t.mu.Lock()
		if t.generation != gen {
			t.mu.Unlock()
			continue
		}
		t.status.Progress = p
		observers := t.observerList()
		t.mu.Unlock()

		for _, fn := range observers {
			fn(p)
		}
	}
	<-runner.Done()

	if !runner.Completed() {
		logger.Warn().Msg("training display cancelled")
		cause := ctx.Err()
		if cause == nil {
			cause = context.Canceled
		}
		return t.update(gen, func(s *domain.TrainingStatus) {
			*s = domain.TrainingStatus{State: domain.TrainingIdle}
		}, cause)
	}

	return t.update(gen, func(s *domain.TrainingStatus) {
		*s = domain.TrainingStatus{
			State:  domain.TrainingIdle,
			Result: &result,
		}
	}, nil)
}

// update applies fn unless the workflow was closed after gen was taken.
func (t *Training) update(gen uint64, fn func(*domain.TrainingStatus), result error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.generation != gen {
		return ErrClosed
	}
	fn(&t.status)
	return result
}

func (t *Training) observerList() []func(int) {
	out := make([]func(int), 0, len(t.observers))
	for i := 0; i < t.nextObserver; i++ {
		if fn, ok := t.observers[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}
