package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"budget-tracker/internal/ledger"
	"budget-tracker/internal/models"
)

type transactionPayload struct {
	AccountID   *int64           `json:"account_id"`
	Description *string          `json:"description"`
	Amount      *decimal.Decimal `json:"amount"`
	Category    *string          `json:"category"`
	Type        *string          `json:"transaction_type"`
	Date        *string          `json:"date"`
}

// ListTransactions returns all of the user's transactions, newest first.
func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	transactions, err := h.db.ListTransactions(user.ID)
	if err != nil {
		h.internalError(w, r, "list transactions", err)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	h.writeJSON(w, http.StatusOK, transactions)
}

// ListTransactionsByCategory returns the user's transactions in one category.
func (h *Handlers) ListTransactionsByCategory(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	transactions, err := h.db.ListTransactionsByCategory(user.ID, r.PathValue("name"))
	if err != nil {
		h.internalError(w, r, "list transactions by category", err)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	h.writeJSON(w, http.StatusOK, transactions)
}

// CreateTransaction posts a new transaction through the ledger engine.
func (h *Handlers) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	var req transactionPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AccountID == nil || req.Amount == nil || req.Type == nil {
		h.writeError(w, http.StatusBadRequest, "account_id, amount and transaction_type are required")
		return
	}

	in := ledger.TransactionInput{
		AccountID: *req.AccountID,
		Amount:    *req.Amount,
		Type:      models.TransactionType(*req.Type),
	}
	if req.Description != nil {
		in.Description = *req.Description
	}
	if req.Category != nil {
		in.Category = *req.Category
	}
	if req.Date != nil && *req.Date != "" {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		in.Date = date
	}

	txn, _, err := h.engine.CreateTransaction(r.Context(), user.ID, in)
	if err != nil {
		h.writeLedgerError(w, r, "create transaction", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": txn.ID})
}

// UpdateTransaction edits a transaction through the ledger engine, which
// reverses the old posting and applies the new one atomically.
func (h *Handlers) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var req transactionPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	upd := ledger.TransactionUpdate{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    req.Category,
		AccountID:   req.AccountID,
	}
	if req.Type != nil {
		t := models.TransactionType(*req.Type)
		upd.Type = &t
	}
	if req.Date != nil && *req.Date != "" {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		upd.Date = &date
	}

	if _, err := h.engine.UpdateTransaction(r.Context(), user.ID, id, upd); err != nil {
		h.writeLedgerError(w, r, "update transaction", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// DeleteTransaction removes a transaction through the ledger engine, which
// reverses its balance effect.
func (h *Handlers) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	if err := h.engine.DeleteTransaction(r.Context(), user.ID, id); err != nil {
		h.writeLedgerError(w, r, "delete transaction", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
