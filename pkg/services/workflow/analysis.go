package workflow

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/de-tools/fraud-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

type Analyzer interface {
	AnalyzeTransaction(ctx context.Context, transactionID int64) (domain.AnalysisResult, error)
}

// Analysis scores one transaction at a time. Only the latest outcome is kept.
type Analysis struct {
	analyzer Analyzer

	mu         sync.Mutex
	status     domain.AnalysisStatus
	generation uint64
	closed     bool
}

func NewAnalysis(analyzer Analyzer) *Analysis {
	return &Analysis{
		analyzer: analyzer,
		status:   domain.AnalysisStatus{State: domain.AnalysisIdle},
	}
}

// Analyze parses rawID and asks the service for its fraud score. An empty or non-numeric id
// fails with a ValidationError without calling the service.
func (a *Analysis) Analyze(ctx context.Context, rawID string) (domain.AnalysisResult, error) {
	id := strings.TrimSpace(rawID)

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return domain.AnalysisResult{}, ErrClosed
	}
	if a.status.State == domain.AnalysisRequesting {
		a.mu.Unlock()
		return domain.AnalysisResult{}, ErrBusy
	}

	a.status = domain.AnalysisStatus{State: domain.AnalysisIdle, TransactionID: id}
	transactionID, err := parseTransactionID(id)
	if err != nil {
		a.status.Error = domain.DisplayMessage(err, analyzeFallback)
		a.mu.Unlock()
		return domain.AnalysisResult{}, err
	}
	a.status.State = domain.AnalysisRequesting
	gen := a.generation
	a.mu.Unlock()

	logger := zerolog.Ctx(ctx).With().Int64("transaction_id", transactionID).Logger()
	result, err := a.analyzer.AnalyzeTransaction(ctx, transactionID)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.generation != gen {
		return domain.AnalysisResult{}, ErrClosed
	}
	a.status.State = domain.AnalysisIdle
	if err != nil {
		logger.Warn().Err(err).Msg("fraud analysis failed")
		a.status.Error = domain.DisplayMessage(err, analyzeFallback)
		return domain.AnalysisResult{}, err
	}

	logger.Info().
		Float64("fraud_score", result.FraudScore).
		Str("risk", result.RiskTier.String()).
		Msg("transaction analyzed")
	a.status.Result = &result
	return result, nil
}

func (a *Analysis) Status() domain.AnalysisStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *Analysis) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.generation++
	a.status = domain.AnalysisStatus{State: domain.AnalysisIdle}
}

func parseTransactionID(raw string) (int64, error) {
	if raw == "" {
		return 0, &domain.ValidationError{Field: "transaction_id", Message: "Please enter a transaction ID"}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &domain.ValidationError{Field: "transaction_id", Message: "Transaction ID must be an integer"}
	}
	return id, nil
}
