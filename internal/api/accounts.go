package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shunichi-ikebuchi/tag-ledger/internal/ledger"
	"github.com/shunichi-ikebuchi/tag-ledger/internal/models"
)

// AccountsHandler handles account-related API endpoints.
type AccountsHandler struct {
	accounts *ledger.AccountStore
	logger   *slog.Logger
}

// NewAccountsHandler creates a new AccountsHandler.
func NewAccountsHandler(accounts *ledger.AccountStore, logger *slog.Logger) *AccountsHandler {
	return &AccountsHandler{accounts: accounts, logger: logger}
}

// List handles GET /api/accounts.
// @Summary List accounts
// @Description Get every account, newest first, with its tags
// @Tags accounts
// @Produce json
// @Success 200 {array} models.Account
// @Failure 500 {object} ErrorResponse
// @Router /accounts [get]
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		writeLedgerError(w, h.logger, err, "Failed to list accounts")
		return
	}

	writeJSON(w, http.StatusOK, accounts)
}

// Get handles GET /api/accounts/{id}.
// @Summary Get account
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} models.Account
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /accounts/{id} [get]
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, h.logger, err, "Failed to get account")
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// Create handles POST /api/accounts.
// @Summary Create account
// @Description Create an account and attach the given tags atomically
// @Tags accounts
// @Accept json
// @Produce json
// @Param account body models.CreateAccountRequest true "Account"
// @Success 201 {object} models.Account
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /accounts [post]
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	account, err := h.accounts.Create(r.Context(), req)
	if err != nil {
		writeLedgerError(w, h.logger, err, "Failed to create account")
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

// Update handles PUT /api/accounts/{id}.
// Omitted fields are left untouched; "tagIds": [] clears every tag.
// @Summary Update account
// @Tags accounts
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param account body models.UpdateAccountRequest true "Fields to change"
// @Success 200 {object} models.Account
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /accounts/{id} [put]
func (h *AccountsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	account, err := h.accounts.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeLedgerError(w, h.logger, err, "Failed to update account")
		return
	}

	writeJSON(w, http.StatusOK, account)
}

// Delete handles DELETE /api/accounts/{id} and DELETE /api/accounts?id=.
// @Summary Delete account
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /accounts/{id} [delete]
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := resourceID(r)
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Account ID is required")
		return
	}

	if err := h.accounts.Delete(r.Context(), id); err != nil {
		writeLedgerError(w, h.logger, err, "Failed to delete account")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
