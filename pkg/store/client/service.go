package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/de-tools/fraud-atlas/pkg/adapters"
	"github.com/de-tools/fraud-atlas/pkg/models/api"
	"github.com/de-tools/fraud-atlas/pkg/models/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	transactionsPath = "/transactions/"
	analyzePath      = "/analyze-fraud/"
	trainPath        = "/train-gnn/"

	requestIDHeader = "X-Request-ID"
)

// Service is the remote analytics service: transaction store, fraud scorer and model trainer.
type Service interface {
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	CreateTransaction(ctx context.Context, draft domain.TransactionDraft) (domain.Transaction, error)
	AnalyzeTransaction(ctx context.Context, transactionID int64) (domain.AnalysisResult, error)
	// StartTraining returns once the remote training run has finished.
	StartTraining(ctx context.Context) (domain.TrainingResult, error)
}

type Config struct {
	BaseURL         string
	Timeout         time.Duration
	TrainingTimeout time.Duration
	// Location is used for timestamps the service sends without a zone.
	Location   *time.Location
	HTTPClient *http.Client
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
	config  Config
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is empty")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", cfg.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL: base,
		http:    httpClient,
		config:  cfg,
	}, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	var items []api.Transaction
	if err := c.do(ctx, "list transactions", http.MethodGet, transactionsPath, nil, c.config.Timeout, &items); err != nil {
		return nil, err
	}

	transactions, err := adapters.MapApiTransactionsToDomain(items, c.config.Location)
	if err != nil {
		return nil, fmt.Errorf("list transactions: decode response: %w", err)
	}
	return transactions, nil
}

func (c *Client) CreateTransaction(ctx context.Context, draft domain.TransactionDraft) (domain.Transaction, error) {
	if err := draft.Validate(); err != nil {
		return domain.Transaction{}, err
	}
	req, err := adapters.MapDraftToCreateRequest(draft)
	if err != nil {
		return domain.Transaction{}, &domain.ValidationError{Field: string(domain.DraftFieldAmount), Message: err.Error()}
	}

	var created api.Transaction
	err = c.do(ctx, "create transaction", http.MethodPost, transactionsPath, req, c.config.Timeout, &created)
	if err != nil {
		if svcErr, ok := err.(*domain.ServiceError); ok &&
			(svcErr.Status == http.StatusBadRequest || svcErr.Status == http.StatusUnprocessableEntity) {
			return domain.Transaction{}, &domain.ValidationError{Status: svcErr.Status, Message: svcErr.Detail}
		}
		return domain.Transaction{}, err
	}

	return adapters.MapApiTransactionToDomain(created, c.config.Location)
}

func (c *Client) AnalyzeTransaction(ctx context.Context, transactionID int64) (domain.AnalysisResult, error) {
	var res api.AnalyzeFraudResponse
	req := api.AnalyzeFraudRequest{TransactionID: transactionID}
	err := c.do(ctx, "analyze transaction", http.MethodPost, analyzePath, req, c.config.Timeout, &res)
	if err != nil {
		if svcErr, ok := err.(*domain.ServiceError); ok && svcErr.Status == http.StatusNotFound {
			return domain.AnalysisResult{}, &domain.NotFoundError{
				Resource: "transaction",
				ID:       transactionID,
				Detail:   svcErr.Detail,
			}
		}
		return domain.AnalysisResult{}, err
	}

	return domain.NewAnalysisResult(transactionID, res.FraudScore), nil
}

func (c *Client) StartTraining(ctx context.Context) (domain.TrainingResult, error) {
	var res api.TrainResponse
	if err := c.do(ctx, "start training", http.MethodPost, trainPath, nil, c.config.TrainingTimeout, &res); err != nil {
		return domain.TrainingResult{}, err
	}
	return adapters.MapTrainResponseToDomain(res), nil
}

func (c *Client) do(
	ctx context.Context,
	op, method, path string,
	body interface{},
	timeout time.Duration,
	out interface{},
) error {
	requestID := uuid.New().String()
	logger := zerolog.Ctx(ctx).With().
		Str("op", op).
		Str("request_id", requestID).
		Logger()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn().Err(err).Msg("request failed")
		return &domain.NetworkError{Op: op, Err: err}
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			logger.Warn().Err(err).Msg("failed to close response body")
		}
	}(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to read response")
		return &domain.NetworkError{Op: op, Err: err}
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := parseDetail(data, resp.StatusCode)
		logger.Warn().Int("status", resp.StatusCode).Str("detail", detail).Msg("service returned an error")
		return &domain.ServiceError{Op: op, Status: resp.StatusCode, Detail: detail}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: failed to unmarshal response: %w", op, err)
	}
	return nil
}

// parseDetail extracts the "detail" message of an error body. Validation errors come as a
// list of issues and are joined.
func parseDetail(body []byte, status int) string {
	var errResp api.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || len(errResp.Detail) == 0 {
		return domain.StatusDetail(status)
	}

	var detail string
	if err := json.Unmarshal(errResp.Detail, &detail); err == nil {
		if detail == "" {
			return domain.StatusDetail(status)
		}
		return detail
	}

	var issues []api.ValidationIssue
	if err := json.Unmarshal(errResp.Detail, &issues); err == nil && len(issues) > 0 {
		msgs := make([]string, 0, len(issues))
		for _, issue := range issues {
			if issue.Msg != "" {
				msgs = append(msgs, issue.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}

	return domain.StatusDetail(status)
}

var _ Service = (*Client)(nil)
