package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hairizuan-noorazman/qa-agent/agent"
	"github.com/hairizuan-noorazman/qa-agent/logger"
	"github.com/hairizuan-noorazman/qa-agent/suite"
)

// SuiteHandler handles suite CRUD and generation requests.
type SuiteHandler struct {
	suiteStore suite.Store
	pipeline   *agent.Pipeline
	logger     logger.Logger
}

// NewSuiteHandler creates a new suite handler.
func NewSuiteHandler(suiteStore suite.Store, pipeline *agent.Pipeline, log logger.Logger) *SuiteHandler {
	return &SuiteHandler{
		suiteStore: suiteStore,
		pipeline:   pipeline,
		logger:     log,
	}
}

// CreateSuiteRequest represents the request body for creating a suite.
type CreateSuiteRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	TargetURL   string `json:"target_url"`
	Goal        string `json:"goal"`
	Username    string `json:"username"`
}

// Create handles POST /suites.
func (h *SuiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSuiteRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s := &suite.Suite{
		Name:        req.Name,
		Description: req.Description,
		Config: suite.SuiteConfig{
			TargetURL: req.TargetURL,
			Goal:      req.Goal,
			Username:  req.Username,
		},
	}
	if err := s.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.suiteStore.Create(r.Context(), s); err != nil {
		if errors.Is(err, suite.ErrSuiteExists) {
			respondError(w, http.StatusConflict, "suite already exists")
			return
		}
		h.logger.Error(r.Context(), "failed to create suite", map[string]interface{}{
			"error": err.Error(),
			"suite": req.Name,
		})
		respondError(w, http.StatusInternalServerError, "failed to create suite")
		return
	}

	respondJSON(w, http.StatusCreated, s)
}

// List handles GET /suites.
func (h *SuiteHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	suites, err := h.suiteStore.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error(r.Context(), "failed to list suites", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to list suites")
		return
	}

	respondJSON(w, http.StatusOK, PaginatedResponse{
		Items:  suites,
		Total:  len(suites),
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /suites/{name}.
func (h *SuiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	s, err := h.suiteStore.GetByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, suite.ErrSuiteNotFound) {
			respondError(w, http.StatusNotFound, "suite not found")
			return
		}
		h.logger.Error(r.Context(), "failed to get suite", map[string]interface{}{
			"error": err.Error(),
			"suite": name,
		})
		respondError(w, http.StatusInternalServerError, "failed to get suite")
		return
	}

	respondJSON(w, http.StatusOK, s)
}

// Delete handles DELETE /suites/{name}.
func (h *SuiteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	if err := h.suiteStore.Delete(r.Context(), name); err != nil {
		if errors.Is(err, suite.ErrSuiteNotFound) {
			respondError(w, http.StatusNotFound, "suite not found")
			return
		}
		h.logger.Error(r.Context(), "failed to delete suite", map[string]interface{}{
			"error": err.Error(),
			"suite": name,
		})
		respondError(w, http.StatusInternalServerError, "failed to delete suite")
		return
	}

	respondSuccess(w, "suite deleted successfully")
}

// GenerateRequest represents the request body for a generation run. All
// fields are optional for an existing suite; target_url is required the
// first time a suite is generated into existence.
type GenerateRequest struct {
	Description string `json:"description"`
	TargetURL   string `json:"target_url"`
	Goal        string `json:"goal"`
}

// Generate handles POST /suites/{name}/generate. The run is synchronous:
// the response carries the regenerated suite with its cases and script
// keys.
func (h *SuiteHandler) Generate(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req GenerateRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := parseJSON(r, &req, h.logger); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	s, err := h.pipeline.Generate(r.Context(), agent.GenerateRequest{
		SuiteName:   name,
		Description: req.Description,
		TargetURL:   req.TargetURL,
		Goal:        req.Goal,
	})
	if err != nil {
		switch {
		case errors.Is(err, suite.ErrInvalidTargetURL), errors.Is(err, suite.ErrInvalidSuiteName):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, agent.ErrSecretLeak):
			respondError(w, http.StatusBadGateway, "generation aborted: outbound task failed the secret scan")
		case errors.Is(err, agent.ErrGenerationPanic):
			respondError(w, http.StatusBadGateway, "generation crashed; a crash report was written")
		default:
			h.logger.Error(r.Context(), "generation failed", map[string]interface{}{
				"error": err.Error(),
				"suite": name,
			})
			respondError(w, http.StatusBadGateway, "generation failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, s)
}
