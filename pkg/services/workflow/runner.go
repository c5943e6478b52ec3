package workflow

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultProgressInterval = 500 * time.Millisecond
	progressStep            = 10
	progressMax             = 100
)

type RunnerConfig struct {
	// SleepInterval is the pause before every progress value, including the first one.
	SleepInterval time.Duration
}

// ProgressRunner plays the fixed 0,10,...,100 progress sequence shown after a training run
// has returned. It does not measure anything.
type ProgressRunner struct {
	done     chan struct{}
	progress  chan int
	config    RunnerConfig
	completed bool
}

func NewProgressRunner(cfg RunnerConfig) *ProgressRunner {
	if cfg.SleepInterval < 0 {
		cfg.SleepInterval = 0
	}
	return &ProgressRunner{
		done:     make(chan struct{}),
		progress: make(chan int, progressMax/progressStep+1),
		config:   cfg,
	}
}

func (r *ProgressRunner) Done() <-chan struct{} {
	return r.done
}

func (r *ProgressRunner) Progress() <-chan int {
	return r.progress
}

// Completed reports whether the whole sequence was emitted. It is only meaningful once
// Done is closed.
func (r *ProgressRunner) Completed() bool {
	return r.completed
}

// Run emits the sequence and closes both channels. It stops early when ctx is cancelled.
func (r *ProgressRunner) Run(ctx context.Context) {
	logger := zerolog.Ctx(ctx)
	defer close(r.done)
	defer close(r.progress)

	timer := time.NewTimer(r.config.SleepInterval)
	defer timer.Stop()

	for p := 0; p <= progressMax; p += progressStep {
		if p > 0 {
			timer.Reset(r.config.SleepInterval)
		}
		select {
		case <-ctx.Done():
			logger.Debug().Int("progress", p).Msg("progress display stopped")
			return
		case <-timer.C:
			r.progress <- p
		}
	}
	r.completed = true
}
