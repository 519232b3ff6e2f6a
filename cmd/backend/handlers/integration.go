package handlers

import (
	"errors"
	"net/http"

	"github.com/hairizuan-noorazman/qa-agent/integration"
	"github.com/hairizuan-noorazman/qa-agent/issuetracker"
	"github.com/hairizuan-noorazman/qa-agent/logger"
)

// IntegrationHandler handles issue tracker integration requests. Tracker
// credentials arrive in plaintext exactly once, on create; they are sealed
// with the operator key before they touch the store and never returned.
type IntegrationHandler struct {
	store   integration.Store
	key     [32]byte
	sealing bool
	logger  logger.Logger
}

// NewIntegrationHandler creates a new integration handler. key is the
// sealing key derived from the operator passphrase; sealing reports whether
// a passphrase was configured at all. Without one, credential intake is
// refused rather than sealed under a predictable key.
func NewIntegrationHandler(store integration.Store, key [32]byte, sealing bool, log logger.Logger) *IntegrationHandler {
	return &IntegrationHandler{
		store:   store,
		key:     key,
		sealing: sealing,
		logger:  log,
	}
}

// CreateIntegrationRequest represents the request body for creating an
// integration. Credentials are provider-specific: token for GitHub,
// email/api_token for Jira.
type CreateIntegrationRequest struct {
	Name        string                    `json:"name"`
	Provider    issuetracker.ProviderType `json:"provider"`
	Settings    map[string]string         `json:"settings"`
	Credentials map[string]string         `json:"credentials"`
}

// Create handles POST /integrations.
func (h *IntegrationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.sealing {
		respondError(w, http.StatusBadRequest, "integration passphrase is not configured")
		return
	}

	var req CreateIntegrationRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Credentials) == 0 {
		respondError(w, http.StatusBadRequest, "credentials are required")
		return
	}

	sealed, err := integration.EncryptCredentials(h.key, req.Credentials)
	if err != nil {
		h.logger.Error(r.Context(), "failed to seal credentials", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to seal credentials")
		return
	}

	i := &integration.Integration{
		Name:              req.Name,
		Provider:          req.Provider,
		Settings:          req.Settings,
		SealedCredentials: sealed,
		Active:            true,
	}
	if err := i.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Create(r.Context(), i); err != nil {
		h.logger.Error(r.Context(), "failed to create integration", map[string]interface{}{
			"error": err.Error(),
			"name":  req.Name,
		})
		respondError(w, http.StatusInternalServerError, "failed to create integration")
		return
	}

	respondJSON(w, http.StatusCreated, i)
}

// List handles GET /integrations.
func (h *IntegrationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	integrations, err := h.store.List(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error(r.Context(), "failed to list integrations", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "failed to list integrations")
		return
	}

	respondJSON(w, http.StatusOK, PaginatedResponse{
		Items:  integrations,
		Total:  len(integrations),
		Limit:  limit,
		Offset: offset,
	})
}

// Get handles GET /integrations/{id}.
func (h *IntegrationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "integration")
	if !ok {
		return
	}

	i, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, integration.ErrIntegrationNotFound) {
			respondError(w, http.StatusNotFound, "integration not found")
			return
		}
		h.logger.Error(r.Context(), "failed to get integration", map[string]interface{}{
			"error": err.Error(),
			"id":    id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to get integration")
		return
	}

	respondJSON(w, http.StatusOK, i)
}

// UpdateIntegrationRequest represents the request body for updating an
// integration.
type UpdateIntegrationRequest struct {
	Active *bool `json:"active,omitempty"`
}

// Update handles PUT /integrations/{id}. Only the active flag is mutable;
// changing provider or credentials means creating a new integration.
func (h *IntegrationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "integration")
	if !ok {
		return
	}

	var req UpdateIntegrationRequest
	if err := parseJSON(r, &req, h.logger); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Active == nil {
		respondError(w, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := h.store.Update(r.Context(), id, integration.SetActive(*req.Active)); err != nil {
		if errors.Is(err, integration.ErrIntegrationNotFound) {
			respondError(w, http.StatusNotFound, "integration not found")
			return
		}
		h.logger.Error(r.Context(), "failed to update integration", map[string]interface{}{
			"error": err.Error(),
			"id":    id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to update integration")
		return
	}

	respondSuccess(w, "integration updated successfully")
}

// Delete handles DELETE /integrations/{id}.
func (h *IntegrationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUUIDOrRespond(w, r, "id", "integration")
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, integration.ErrIntegrationNotFound) {
			respondError(w, http.StatusNotFound, "integration not found")
			return
		}
		h.logger.Error(r.Context(), "failed to delete integration", map[string]interface{}{
			"error": err.Error(),
			"id":    id.String(),
		})
		respondError(w, http.StatusInternalServerError, "failed to delete integration")
		return
	}

	respondSuccess(w, "integration deleted successfully")
}
