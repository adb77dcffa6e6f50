package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shunichi-ikebuchi/tag-ledger/internal/ledger"
	"github.com/shunichi-ikebuchi/tag-ledger/internal/models"
)

// TransactionsHandler handles transaction-related API endpoints.
type TransactionsHandler struct {
	transactions *ledger.TransactionEngine
	logger       *slog.Logger
}

// NewTransactionsHandler creates a new TransactionsHandler.
func NewTransactionsHandler(transactions *ledger.TransactionEngine, logger *slog.Logger) *TransactionsHandler {
	return &TransactionsHandler{transactions: transactions, logger: logger}
}

// createTransactionBody is the wire form of a create request; the date
// arrives as text.
type createTransactionBody struct {
	models.CreateTransactionRequest
	TransactionDate string `json:"transactionDate"`
}

// List handles GET /api/transactions.
// @Summary List transactions
// @Description Get transactions, newest first, with accounts and tags resolved
// @Tags transactions
// @Produce json
// @Param accountId query string false "Match either participant account"
// @Param type query string false "deposit, expense or transfer"
// @Success 200 {array} models.TransactionView
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /transactions [get]
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := models.TransactionFilter{
		AccountID: r.URL.Query().Get("accountId"),
		Kind:      models.TransactionKind(r.URL.Query().Get("type")),
	}

	views, err := h.transactions.List(r.Context(), filter)
	if err != nil {
		writeLedgerError(w, h.logger, err, "Failed to list transactions")
		return
	}

	writeJSON(w, http.StatusOK, views)
}

// Get handles GET /api/transactions/{id}.
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.transactions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, h.logger, err, "Failed to get transaction")
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Create handles POST /api/transactions.
// @Summary Create transaction
// @Description Create a deposit, expense or transfer with its tags atomically
// @Tags transactions
// @Accept json
// @Produce json
// @Param transaction body createTransactionBody true "Transaction"
// @Success 201 {object} models.Transaction
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /transactions [post]
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createTransactionBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Failed to parse request body")
		return
	}

	req := body.CreateTransactionRequest
	if body.TransactionDate != "" {
		date, err := models.ParseTransactionDate(body.TransactionDate)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Invalid transactionDate")
			return
		}
		req.TransactionDate = date
	}

	txn, err := h.transactions.Create(r.Context(), req)
	if err != nil {
		writeLedgerError(w, h.logger, err, "Failed to create transaction")
		return
	}

	writeJSON(w, http.StatusCreated, txn)
}

// Delete handles DELETE /api/transactions/{id} and DELETE /api/transactions?id=.
// @Summary Delete transaction
// @Tags transactions
// @Produce json
// @Param id path string true "Transaction ID"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /transactions/{id} [delete]
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := resourceID(r)
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", "Transaction ID is required")
		return
	}

	if err := h.transactions.Delete(r.Context(), id); err != nil {
		writeLedgerError(w, h.logger, err, "Failed to delete transaction")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}
