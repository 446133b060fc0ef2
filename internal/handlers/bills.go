package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"budget-tracker/internal/models"
)

type billPayload struct {
	AccountID     *int64           `json:"account_id"`
	Name          *string          `json:"name"`
	Amount        *decimal.Decimal `json:"amount"`
	Category      *string          `json:"category"`
	DayOfMonth    *int             `json:"day_of_month"`
	IsActive      *bool            `json:"is_active"`
	LoanAccountID *int64           `json:"loan_account_id"`
}

// billView is a bill plus its derived state for the current month.
type billView struct {
	models.Bill
	DueDate       time.Time `json:"current_month_due_date"`
	PaidThisMonth bool      `json:"paid_this_month"`
	IsOverdue     bool      `json:"is_overdue"`
}

func billViews(bills []models.Bill, now time.Time) []billView {
	views := make([]billView, 0, len(bills))
	for _, b := range bills {
		views = append(views, billView{
			Bill:          b,
			DueDate:       b.DueDate(now.Year(), now.Month()),
			PaidThisMonth: b.PaidForMonth(now.Year(), now.Month()),
			IsOverdue:     b.Overdue(now),
		})
	}
	return views
}

// ListBills returns the user's bills with current-month due state.
func (h *Handlers) ListBills(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	bills, err := h.db.ListBills(user.ID)
	if err != nil {
		h.internalError(w, r, "list bills", err)
		return
	}
	h.writeJSON(w, http.StatusOK, billViews(bills, time.Now()))
}

// ListBillsByCategory returns the user's bills in one category.
func (h *Handlers) ListBillsByCategory(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	bills, err := h.db.ListBillsByCategory(user.ID, r.PathValue("name"))
	if err != nil {
		h.internalError(w, r, "list bills by category", err)
		return
	}
	h.writeJSON(w, http.StatusOK, billViews(bills, time.Now()))
}

func validBillDay(day int) bool {
	return day >= 1 && day <= models.MaxBillDay
}

// CreateBill creates a new recurring bill. The due day is restricted to
// [1, 28] so every month has the date, and the funding account must be one
// that can be posted to.
func (h *Handlers) CreateBill(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	var req billPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == nil || req.Amount == nil || req.AccountID == nil || req.DayOfMonth == nil {
		h.writeError(w, http.StatusBadRequest, "name, amount, account_id and day_of_month are required")
		return
	}
	if !validBillDay(*req.DayOfMonth) {
		h.writeError(w, http.StatusBadRequest, "day of month must be between 1 and 28")
		return
	}
	if req.Amount.Sign() <= 0 {
		h.writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	account, err := h.db.GetAccount(user.ID, *req.AccountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "account not found")
			return
		}
		h.internalError(w, r, "get account", err)
		return
	}
	if account.Kind == models.Loan {
		h.writeError(w, http.StatusBadRequest, "bills must be funded from a checking, savings, investment or credit account")
		return
	}

	bill := &models.Bill{
		UserID:        user.ID,
		AccountID:     *req.AccountID,
		Name:          *req.Name,
		Amount:        *req.Amount,
		DayOfMonth:    *req.DayOfMonth,
		IsActive:      true,
		LoanAccountID: req.LoanAccountID,
	}
	if req.Category != nil {
		bill.Category = *req.Category
	}
	if req.IsActive != nil {
		bill.IsActive = *req.IsActive
	}

	if err := h.db.CreateBill(bill); err != nil {
		h.internalError(w, r, "create bill", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": bill.ID})
}

// UpdateBill edits a bill's definition. Payment state is only reachable
// through the toggle endpoint.
func (h *Handlers) UpdateBill(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid bill id")
		return
	}

	bill, err := h.db.GetBill(user.ID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "bill not found")
			return
		}
		h.internalError(w, r, "get bill", err)
		return
	}

	var req billPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != nil {
		bill.Name = *req.Name
	}
	if req.Amount != nil {
		if req.Amount.Sign() <= 0 {
			h.writeError(w, http.StatusBadRequest, "amount must be positive")
			return
		}
		bill.Amount = *req.Amount
	}
	if req.Category != nil {
		bill.Category = *req.Category
	}
	if req.IsActive != nil {
		bill.IsActive = *req.IsActive
	}
	if req.DayOfMonth != nil {
		if !validBillDay(*req.DayOfMonth) {
			h.writeError(w, http.StatusBadRequest, "day of month must be between 1 and 28")
			return
		}
		bill.DayOfMonth = *req.DayOfMonth
	}
	if req.AccountID != nil {
		bill.AccountID = *req.AccountID
	}

	if err := h.db.UpdateBill(bill); err != nil {
		h.internalError(w, r, "update bill", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// DeleteBill removes a bill. Previously generated payment transactions stay.
func (h *Handlers) DeleteBill(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid bill id")
		return
	}

	if err := h.db.DeleteBill(user.ID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "bill not found")
			return
		}
		h.internalError(w, r, "delete bill", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// ToggleBillPaid flips the bill's paid state for the current month through
// the ledger engine.
func (h *Handlers) ToggleBillPaid(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid bill id")
		return
	}

	result, err := h.engine.ToggleBillPaid(r.Context(), user.ID, id, time.Now())
	if err != nil {
		h.writeLedgerError(w, r, "toggle bill paid", err)
		return
	}

	resp := map[string]any{"success": true, "is_paid": result.Paid}
	if result.Transaction != nil {
		resp["transaction_id"] = result.Transaction.ID
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// ResetAllBills clears payment state on every bill the user owns.
func (h *Handlers) ResetAllBills(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	reset, err := h.engine.ResetAllBills(r.Context(), user.ID)
	if err != nil {
		h.writeLedgerError(w, r, "reset bills", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true, "reset": reset})
}
