package console

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/de-tools/fraud-atlas/pkg/adapters"
	"github.com/de-tools/fraud-atlas/pkg/models/api"
	"github.com/de-tools/fraud-atlas/pkg/models/domain"
	"github.com/de-tools/fraud-atlas/pkg/services/aggregate"
	"github.com/de-tools/fraud-atlas/pkg/services/snapshot"
	"github.com/de-tools/fraud-atlas/pkg/services/table"
	"github.com/de-tools/fraud-atlas/pkg/services/workflow"
	"github.com/rs/zerolog"
)

const fetchFallback = "Error fetching transactions"

type Handler struct {
	controller *workflow.Controller
	projection *aggregate.Projection
	table      *table.State
	location   *time.Location
}

func NewHandler(
	controller *workflow.Controller,
	projection *aggregate.Projection,
	tableState *table.State,
	location *time.Location,
) *Handler {
	if location == nil {
		location = time.Local
	}
	return &Handler{
		controller: controller,
		projection: projection,
		table:      tableState,
		location:   location,
	}
}

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, h.dashboard())
}

func (h *Handler) RefreshTransactions(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Repository().Refresh(r.Context()); err != nil {
		writeError(w, r, err, fetchFallback)
		return
	}
	writeJSON(w, r, http.StatusOK, h.dashboard())
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, adapters.MapPageViewToApi(h.table.View(), h.location))
}

func (h *Handler) SetPage(w http.ResponseWriter, r *http.Request) {
	var req api.PageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, api.Error{Error: "invalid page request"})
		return
	}

	if req.PageSize != nil {
		if err := h.table.SetPageSize(*req.PageSize); err != nil {
			writeError(w, r, err, "invalid page size")
			return
		}
	}
	if req.Page != nil {
		h.table.SetPage(*req.Page)
	}
	writeJSON(w, r, http.StatusOK, adapters.MapPageViewToApi(h.table.View(), h.location))
}

func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, adapters.MapCreationStatusToApi(h.controller.Creation().Status()))
}

func (h *Handler) OpenDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Creation().Open(); err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, r, http.StatusCreated, adapters.MapCreationStatusToApi(h.controller.Creation().Status()))
}

func (h *Handler) EditDraft(w http.ResponseWriter, r *http.Request) {
	var edits []api.DraftEdit
	if err := json.NewDecoder(r.Body).Decode(&edits); err != nil {
		writeJSON(w, r, http.StatusBadRequest, api.Error{Error: "invalid draft edit"})
		return
	}

	creation := h.controller.Creation()
	for _, e := range edits {
		if err := creation.Edit(domain.DraftField(e.Field), e.Value); err != nil {
			writeError(w, r, err, "")
			return
		}
	}
	writeJSON(w, r, http.StatusOK, adapters.MapCreationStatusToApi(creation.Status()))
}

func (h *Handler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	creation := h.controller.Creation()
	created, err := creation.Submit(r.Context())
	if err != nil {
		writeStatusError(w, r, err, adapters.MapCreationStatusToApi(creation.Status()))
		return
	}
	writeJSON(w, r, http.StatusCreated, adapters.MapTransactionToRow(created, h.location))
}

func (h *Handler) CancelDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Creation().Cancel(); err != nil {
		writeError(w, r, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, adapters.MapAnalysisStatusToApi(h.controller.Analysis().Status()))
}

func (h *Handler) AnalyzeTransaction(w http.ResponseWriter, r *http.Request) {
	var req api.AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, r, http.StatusBadRequest, api.Error{Error: "invalid analysis request"})
		return
	}

	analysis := h.controller.Analysis()
	if _, err := analysis.Analyze(r.Context(), req.TransactionID); err != nil {
		writeStatusError(w, r, err, adapters.MapAnalysisStatusToApi(analysis.Status()))
		return
	}
	writeJSON(w, r, http.StatusOK, adapters.MapAnalysisStatusToApi(analysis.Status()))
}

func (h *Handler) GetTraining(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, adapters.MapTrainingStatusToApi(h.controller.Training().Status()))
}

func (h *Handler) StartTraining(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.StartTraining(); err != nil {
		writeError(w, r, err, "")
		return
	}
	writeJSON(w, r, http.StatusAccepted, adapters.MapTrainingStatusToApi(h.controller.Training().Status()))
}

func (h *Handler) dashboard() api.Dashboard {
	agg, _ := h.projection.Current()
	res := adapters.MapAggregateToApi(agg)

	repo := h.controller.Repository()
	if snap, ok := repo.Snapshot(); ok {
		fetchedAt := snap.FetchedAt
		res.FetchedAt = &fetchedAt
	}
	res.Loading = repo.Loading()
	res.Error = domain.DisplayMessage(repo.LastError(), fetchFallback)
	return res
}

func statusCode(err error) int {
	var (
		validErr    *domain.ValidationError
		notFoundErr *domain.NotFoundError
		svcErr      *domain.ServiceError
		netErr      *domain.NetworkError
	)
	switch {
	case errors.Is(err, workflow.ErrBusy), errors.Is(err, workflow.ErrNotEditing):
		return http.StatusConflict
	case errors.Is(err, workflow.ErrClosed), errors.Is(err, snapshot.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.As(err, &validErr):
		if validErr.Local() {
			return http.StatusBadRequest
		}
		return http.StatusUnprocessableEntity
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &svcErr), errors.As(err, &netErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	msg := domain.DisplayMessage(err, fallback)
	if msg == "" {
		msg = err.Error()
	}
	writeJSON(w, r, statusCode(err), api.Error{Error: msg})
}

// writeStatusError answers with the workflow status, which already carries the display message.
func writeStatusError(w http.ResponseWriter, r *http.Request, err error, status interface{}) {
	writeJSON(w, r, statusCode(err), status)
}

func writeJSON(w http.ResponseWriter, r *http.Request, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zerolog.Ctx(r.Context()).Error().
			Err(err).
			Msg("failed to encode response")
	}
}
