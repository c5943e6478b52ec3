package workflow

import (
	"context"
	"sync"
	"time"

	"github.com/de-tools/fraud-atlas/pkg/services/snapshot"
	"github.com/rs/zerolog"
)

// Service is everything the workflows need from the analytics service.
type Service interface {
	Creator
	Analyzer
	Trainer
}

type ControllerConfig struct {
	ProgressInterval time.Duration
}

// Controller owns the repository and one instance of each workflow for a single operator
// session. Close tears all of them down together.
type Controller struct {
	ctx    context.Context
	cancel context.CancelFunc

	repository *snapshot.Repository
	creation   *Creation
	analysis   *Analysis
	training   *Training

	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewController keeps ctx as the parent of background runs. Its logger is used for them.
func NewController(
	ctx context.Context,
	service Service,
	repository *snapshot.Repository,
	cfg ControllerConfig,
) *Controller {
	if cfg.ProgressInterval <= 0 {
		cfg.ProgressInterval = DefaultProgressInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	return &Controller{
		ctx:        ctx,
		cancel:     cancel,
		repository: repository,
		creation:   NewCreation(service, repository),
		analysis:   NewAnalysis(service),
		training:   NewTraining(service, cfg.ProgressInterval),
	}
}

// Init loads the cached snapshot, if any, and then fetches the live list.
func (ctrl *Controller) Init(ctx context.Context) error {
	if _, err := ctrl.repository.LoadCached(ctx); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to load cached snapshot")
	}
	return ctrl.repository.Refresh(ctx)
}

func (ctrl *Controller) Repository() *snapshot.Repository {
	return ctrl.repository
}

func (ctrl *Controller) Creation() *Creation {
	return ctrl.creation
}

func (ctrl *Controller) Analysis() *Analysis {
	return ctrl.analysis
}

func (ctrl *Controller) Training() *Training {
	return ctrl.training
}

// StartTraining starts a training run in the background and returns right away.
// It fails with ErrBusy while a previous run is still going.
func (ctrl *Controller) StartTraining() error {
	gen, err := ctrl.training.begin()
	if err != nil {
		return err
	}

	ctrl.wg.Add(1)
	go func() {
		defer ctrl.wg.Done()
		_ = ctrl.training.run(ctrl.ctx, gen)
	}()
	return nil
}

// Close cancels background runs and waits for them to return. Late results are dropped.
func (ctrl *Controller) Close() {
	ctrl.closeOnce.Do(func() {
		ctrl.creation.Close()
		ctrl.analysis.Close()
		ctrl.training.Close()
		ctrl.repository.Close()
		ctrl.cancel()
		ctrl.wg.Wait()
	})
}
