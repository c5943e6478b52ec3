package workflow

import (
	"context"

	"github.com/de-tools/fraud-atlas/pkg/models/domain"
	"github.com/stretchr/testify/mock"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transaction), args.Error(1)
}

func (m *mockService) CreateTransaction(ctx context.Context, draft domain.TransactionDraft) (domain.Transaction, error) {
	args := m.Called(ctx, draft)
	return args.Get(0).(domain.Transaction), args.Error(1)
}

func (m *mockService) AnalyzeTransaction(ctx context.Context, transactionID int64) (domain.AnalysisResult, error) {
	args := m.Called(ctx, transactionID)
	return args.Get(0).(domain.AnalysisResult), args.Error(1)
}

func (m *mockService) StartTraining(ctx context.Context) (domain.TrainingResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.TrainingResult), args.Error(1)
}

type mockRefresher struct {
	mock.Mock
}

func (m *mockRefresher) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
