package adapters

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/de-tools/fraud-atlas/pkg/models/api"
	"github.com/de-tools/fraud-atlas/pkg/models/domain"
	"github.com/de-tools/fraud-atlas/pkg/models/store"
	"github.com/shopspring/decimal"
)

func MapApiTransactionToDomain(t api.Transaction, loc *time.Location) (domain.Transaction, error) {
	ts, err := api.ParseTimestamp(t.Timestamp, loc)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %d: %w", t.ID, err)
	}

	return domain.Transaction{
		ID:           t.ID,
		Amount:       t.Amount,
		MerchantID:   t.MerchantID,
		CustomerID:   t.CustomerID,
		Timestamp:    ts,
		IsFraudulent: t.IsFraudulent,
		FraudScore:   t.FraudScore,
	}, nil
}

func MapApiTransactionsToDomain(items []api.Transaction, loc *time.Location) ([]domain.Transaction, error) {
	res := make([]domain.Transaction, 0, len(items))
	for _, item := range items {
		t, err := MapApiTransactionToDomain(item, loc)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, nil
}

func MapDraftToCreateRequest(d domain.TransactionDraft) (api.CreateTransactionRequest, error) {
	amount, err := d.ParsedAmount()
	if err != nil {
		return api.CreateTransactionRequest{}, fmt.Errorf("parse amount: %w", err)
	}

	return api.CreateTransactionRequest{
		Amount:     json.Number(amount.String()),
		MerchantID: d.MerchantID,
		CustomerID: d.CustomerID,
	}, nil
}

func MapTrainResponseToDomain(r api.TrainResponse) domain.TrainingResult {
	return domain.TrainingResult{
		Status:    r.Status,
		FinalLoss: r.Results.FinalLoss,
	}
}

func MapDomainTransactionToStore(snapshotID int64, t domain.Transaction) store.TransactionRecord {
	return store.TransactionRecord{
		SnapshotID:   snapshotID,
		ID:           t.ID,
		Amount:       t.Amount.String(),
		MerchantID:   t.MerchantID,
		CustomerID:   t.CustomerID,
		Timestamp:    t.Timestamp.UTC(),
		IsFraudulent: t.IsFraudulent,
		FraudScore:   t.FraudScore,
	}
}

func MapStoreTransactionToDomain(r store.TransactionRecord) (domain.Transaction, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %d amount: %w", r.ID, err)
	}

	return domain.Transaction{
		ID:           r.ID,
		Amount:       amount,
		MerchantID:   r.MerchantID,
		CustomerID:   r.CustomerID,
		Timestamp:    r.Timestamp,
		IsFraudulent: r.IsFraudulent,
		FraudScore:   r.FraudScore,
	}, nil
}
