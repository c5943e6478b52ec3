package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/de-tools/fraud-atlas/pkg/models/domain"
	"github.com/de-tools/fraud-atlas/pkg/services/snapshot"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T, svc *mockService, interval time.Duration) *Controller {
	t.Helper()
	repo := snapshot.NewRepository(svc)
	ctrl := NewController(context.Background(), svc, repo, ControllerConfig{ProgressInterval: interval})
	t.Cleanup(ctrl.Close)
	return ctrl
}

func TestController_CreateRefreshesRepository(t *testing.T) {
	first := []domain.Transaction{{ID: 1, Amount: decimal.NewFromInt(10), Timestamp: time.Now()}}
	second := append(first, domain.Transaction{ID: 2, Amount: decimal.NewFromInt(20), Timestamp: time.Now()})

	svc := new(mockService)
	svc.On("ListTransactions", mock.Anything).Return(first, nil).Once()
	svc.On("ListTransactions", mock.Anything).Return(second, nil).Once()
	svc.On("CreateTransaction", mock.Anything, mock.Anything).Return(second[1], nil).Once()

	ctrl := newTestController(t, svc, time.Millisecond)
	require.NoError(t, ctrl.Init(context.Background()))

	var sizes []int
	ctrl.Repository().Subscribe(func(s domain.Snapshot) { sizes = append(sizes, s.Len()) })

	require.NoError(t, ctrl.Creation().Open())
	require.NoError(t, ctrl.Creation().Edit(domain.DraftFieldAmount, "20"))
	_, err := ctrl.Creation().Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2}, sizes)
	svc.AssertExpectations(t)
}

func TestController_StartTraining(t *testing.T) {
	svc := new(mockService)
	svc.On("StartTraining", mock.Anything).
		Return(domain.TrainingResult{Status: "success", FinalLoss: 0.01}, nil)

	ctrl := newTestController(t, svc, time.Millisecond)
	require.NoError(t, ctrl.StartTraining())

	assert.Eventually(t, func() bool {
		return ctrl.Training().Status().Result != nil
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, domain.TrainingIdle, ctrl.Training().Status().State)
}

func TestController_StartTrainingBusy(t *testing.T) {
	release := make(chan time.Time)
	svc := new(mockService)
	svc.On("StartTraining", mock.Anything).
		WaitUntil(release).
		Return(domain.TrainingResult{Status: "success"}, nil)

	ctrl := newTestController(t, svc, time.Millisecond)
	require.NoError(t, ctrl.StartTraining())
	assert.ErrorIs(t, ctrl.StartTraining(), ErrBusy)

	close(release)
}

func TestController_CloseStopsBackgroundRuns(t *testing.T) {
	svc := new(mockService)
	svc.On("StartTraining", mock.Anything).Return(domain.TrainingResult{Status: "success"}, nil)

	repo := snapshot.NewRepository(svc)
	ctrl := NewController(context.Background(), svc, repo, ControllerConfig{ProgressInterval: time.Hour})
	require.NoError(t, ctrl.StartTraining())

	assert.Eventually(t, func() bool {
		return ctrl.Training().Status().State == domain.TrainingDisplaying
	}, time.Second, time.Millisecond)

	closed := make(chan struct{})
	go func() {
		ctrl.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("close did not return")
	}

	assert.ErrorIs(t, ctrl.StartTraining(), ErrClosed)
	assert.ErrorIs(t, repo.Refresh(context.Background()), snapshot.ErrClosed)
	ctrl.Close()
}
