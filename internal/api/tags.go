package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shunichi-ikebuchi/tag-ledger/internal/ledger"
	"github.com/shunichi-ikebuchi/tag-ledger/internal/models"
)

// TagsHandler handles tag-related API endpoints.
type TagsHandler struct {
	tags   *ledger.TagRegistry
	logger *slog.Logger
}

// NewTagsHandler creates a new TagsHandler.
func NewTagsHandler(tags *ledger.TagRegistry, logger *slog.Logger) *TagsHandler {
	return &TagsHandler{tags: tags, logger: logger}
}

// List handles GET /api/tags.
// @Summary List tags
// @Description Get every tag ordered by name
// @Tags tags
// @Produce json
// @Success 200 {array} models.Tag
// @Failure 500 {object} ErrorResponse
// @Router /tags [get]
func (h *TagsHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.List(r.Context())
	if err != nil {
		writeLedgerError(w, h.logger, err, "Failed to list tags")
		return
	}

	writeJSON(w, http.StatusOK, tags)
}

// Create handles POST /api/tags.
// @Summary Create tag
// @Description Create a tag; the color defaults to #3B82F6
// @Tags tags
// @Accept json
// @Produce json
// @Param tag body models.CreateTagRequest true "Tag"
// @Success 201 {object} models.Tag
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /tags [post]
func (h *TagsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	tag, err := h.tags.Create(r.Context(), req)
	if err != nil {
		writeLedgerError(w, h.logger, err, "Failed to create tag")
		return
	}

	writeJSON(w, http.StatusCreated, tag)
}

// Delete handles DELETE /api/tags/{id} and DELETE /api/tags?id=.
// Associations to accounts and transactions are removed with the tag.
// @Summary Delete tag
// @Tags tags
// @Produce json
// @Param id path string true "Tag ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /tags/{id} [delete]
func (h *TagsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := resourceID(r)
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Tag ID is required")
		return
	}

	if err := h.tags.Delete(r.Context(), id); err != nil {
		writeLedgerError(w, h.logger, err, "Failed to delete tag")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// resourceID reads the id from the path, falling back to the id query
// parameter.
func resourceID(r *http.Request) string {
	if id := chi.URLParam(r, "id"); id != "" {
		return id
	}
	return r.URL.Query().Get("id")
}
