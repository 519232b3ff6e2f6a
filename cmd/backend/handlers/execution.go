package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hairizuan-noorazman/qa-agent/execution"
	"github.com/hairizuan-noorazman/qa-agent/logger"
	"github.com/hairizuan-noorazman/qa-agent/suite"
	"github.com/hairizuan-noorazman/qa-agent/testrun"
)

// ExecutionHandler handles case and suite execution plus run history.
type ExecutionHandler struct {
	coordinator *execution.Coordinator
	runStore    testrun.Store
	logger      logger.Logger
}

// NewExecutionHandler creates a new execution handler.
func NewExecutionHandler(coordinator *execution.Coordinator, runStore testrun.Store, log logger.Logger) *ExecutionHandler {
	return &ExecutionHandler{
		coordinator: coordinator,
		runStore:    runStore,
		logger:      log,
	}
}

// ExecuteCase handles POST /suites/{name}/cases/{caseID}/execute. The call
// is synchronous and returns the settling run record.
func (h *ExecutionHandler) ExecuteCase(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["name"]
	caseID := vars["caseID"]

	run, err := h.coordinator.RunCase(r.Context(), name, caseID)
	if err != nil {
		switch {
		case errors.Is(err, suite.ErrSuiteNotFound):
			respondError(w, http.StatusNotFound, "suite not found")
		case errors.Is(err, execution.ErrCaseNotFound):
			respondError(w, http.StatusNotFound, "test case not found in suite")
		default:
			h.logger.Error(r.Context(), "case execution failed", map[string]interface{}{
				"error":   err.Error(),
				"suite":   name,
				"case_id": caseID,
			})
			respondError(w, http.StatusInternalServerError, "case execution failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, run)
}

// ExecuteSuite handles POST /suites/{name}/execute. Every case runs through
// the worker pool; the response is the aggregated summary.
func (h *ExecutionHandler) ExecuteSuite(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	summary, err := h.coordinator.RunSuite(r.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, suite.ErrSuiteNotFound):
			respondError(w, http.StatusNotFound, "suite not found")
		default:
			h.logger.Error(r.Context(), "suite execution failed", map[string]interface{}{
				"error": err.Error(),
				"suite": name,
			})
			respondError(w, http.StatusInternalServerError, "suite execution failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// ListRuns handles GET /suites/{name}/runs.
func (h *ExecutionHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	limit, offset := parsePagination(r)

	runs, err := h.runStore.ListBySuite(r.Context(), name, limit, offset)
	if err != nil {
		h.logger.Error(r.Context(), "failed to list runs", map[string]interface{}{
			"error": err.Error(),
			"suite": name,
		})
		respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	respondJSON(w, http.StatusOK, PaginatedResponse{
		Items:  runs,
		Total:  len(runs),
		Limit:  limit,
		Offset: offset,
	})
}

// GetRun handles GET /runs/{id}.
func (h *ExecutionHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "run")
	if !ok {
		return
	}

	run, err := h.runStore.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, testrun.ErrTestRunNotFound) {
			respondError(w, http.StatusNotFound, "test run not found")
			return
		}
		h.logger.Error(r.Context(), "failed to get run", map[string]interface{}{
			"error":  err.Error(),
			"run_id": id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to get run")
		return
	}

	respondJSON(w, http.StatusOK, run)
}
