package handlers

import (
	"errors"
	"net/http"

	"github.com/giygas/nlem-api/data"
	"github.com/giygas/nlem-api/database"
	"github.com/giygas/nlem-api/entities"
	"github.com/giygas/nlem-api/interfaces"
	"github.com/giygas/nlem-api/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Compile-time check to ensure HTTPHandlerImpl implements HTTPHandler
var _ interfaces.HTTPHandler = (*HTTPHandlerImpl)(nil)

const internalErrorMessage = "An internal error occurred"

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	drugStore interfaces.DrugStore
	validator interfaces.DataValidator
	health    interfaces.HealthChecker
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(drugStore interfaces.DrugStore, validator interfaces.DataValidator, health interfaces.HealthChecker) *HTTPHandlerImpl {
	return &HTTPHandlerImpl{
		drugStore: drugStore,
		validator: validator,
		health:    health,
	}
}

// HealthCheck is the liveness probe. It always answers {"status":"OK"}.
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, h.health.Liveness())
}

// ReadinessResponse is the body of GET /health
type ReadinessResponse struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data"`
}

// Readiness reports whether the database is reachable
func (h *HTTPHandlerImpl) Readiness(w http.ResponseWriter, r *http.Request) {
	status, details, httpStatus := h.health.Readiness(r.Context())
	RespondWithJSON(w, httpStatus, ReadinessResponse{Status: status, Data: details})
}

// SearchDrugs handles GET /api/drugs/search?q=
func (h *HTTPHandlerImpl) SearchDrugs(w http.ResponseWriter, r *http.Request) {
	values, present := r.URL.Query()["q"]
	if !present {
		RespondWithError(w, http.StatusBadRequest, "Missing query parameter 'q'")
		return
	}
	q := values[0]

	if err := h.validator.ValidateSearchQuery(q); err != nil {
		logging.Warn("Unusual user input", "q_length", len(q), "error", err, "request_id", middleware.GetReqID(r.Context()))
		RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	drugs, err := h.drugStore.SearchDrugs(r.Context(), q)
	if err != nil {
		h.internalError(w, r, "search_drugs", err)
		return
	}
	if drugs == nil {
		drugs = []entities.Drug{}
	}

	RespondWithJSON(w, http.StatusOK, drugs)
}

// FindDrugByID handles GET /api/drugs/{id}
func (h *HTTPHandlerImpl) FindDrugByID(w http.ResponseWriter, r *http.Request) {
	id, err := h.validator.ValidateDrugID(chi.URLParam(r, "id"))
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid drug id: "+err.Error())
		return
	}

	drug, err := h.drugStore.GetDrugByID(r.Context(), id)
	if errors.Is(err, data.ErrDrugNotFound) {
		RespondWithError(w, http.StatusNotFound, "Drug not found")
		return
	}
	if err != nil {
		h.internalError(w, r, "get_drug_by_id", err)
		return
	}

	RespondWithJSON(w, http.StatusOK, drug)
}

// internalError logs the cause and answers 500 without exposing it
func (h *HTTPHandlerImpl) internalError(w http.ResponseWriter, r *http.Request, query string, err error) {
	logging.Error("Query failed",
		"query", query,
		"error", err,
		"pool_timeout", errors.Is(err, database.ErrAcquireTimeout),
		"request_id", middleware.GetReqID(r.Context()),
	)
	RespondWithError(w, http.StatusInternalServerError, internalErrorMessage)
}
