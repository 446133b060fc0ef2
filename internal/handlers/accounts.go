package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"budget-tracker/internal/ledger"
	"budget-tracker/internal/models"
)

const dateLayout = "2006-01-02"

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

type loanPayload struct {
	OriginalAmount   decimal.Decimal `json:"original_amount"`
	CurrentPrincipal decimal.Decimal `json:"current_principal"`
	InterestRate     decimal.Decimal `json:"interest_rate"`
	LoanTermMonths   int             `json:"loan_term_months"`
	MonthlyPayment   decimal.Decimal `json:"monthly_payment"`
	LoanStartDate    string          `json:"loan_start_date"`
	NextPaymentDate  string          `json:"next_payment_date"`
	Lender           string          `json:"lender"`
	Notes            string          `json:"notes"`
}

type accountPayload struct {
	Name           string           `json:"name"`
	Kind           string           `json:"account_type"`
	Balance        *decimal.Decimal `json:"balance"`
	CreditLimit    *decimal.Decimal `json:"credit_limit"`
	CurrentBalance *decimal.Decimal `json:"current_balance"`
	Loan           *loanPayload     `json:"loan"`
}

// ListAccounts returns all of the user's accounts.
func (h *Handlers) ListAccounts(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	accounts, err := h.db.ListAccounts(user.ID)
	if err != nil {
		h.internalError(w, r, "list accounts", err)
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	h.writeJSON(w, http.StatusOK, accounts)
}

// CreateAccount creates a new account. Loan accounts must carry their loan
// terms in the payload.
func (h *Handlers) CreateAccount(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	var req accountPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		h.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	kind := models.AccountKind(req.Kind)
	if !kind.Valid() {
		h.writeError(w, http.StatusBadRequest, "unknown account type")
		return
	}

	account := &models.Account{
		UserID:      user.ID,
		Name:        req.Name,
		Kind:        kind,
		CreditLimit: req.CreditLimit,
	}
	if req.Balance != nil {
		account.Balance = *req.Balance
	}
	if req.CurrentBalance != nil {
		account.CurrentBalance = *req.CurrentBalance
	}

	if kind == models.Loan {
		loan, err := loanFromPayload(req.Loan)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		account.Loan = loan
	}

	if err := h.db.CreateAccount(account); err != nil {
		h.internalError(w, r, "create account", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": account.ID})
}

func loanFromPayload(p *loanPayload) (*models.LoanDetails, error) {
	if p == nil {
		return nil, errors.New("loan accounts require loan details")
	}
	if p.OriginalAmount.Sign() <= 0 {
		return nil, errors.New("original_amount must be positive")
	}
	if p.CurrentPrincipal.Sign() < 0 || p.CurrentPrincipal.GreaterThan(p.OriginalAmount) {
		return nil, errors.New("current_principal must be between 0 and original_amount")
	}
	start, err := time.Parse(dateLayout, p.LoanStartDate)
	if err != nil {
		return nil, errors.New("loan_start_date must be YYYY-MM-DD")
	}
	next, err := time.Parse(dateLayout, p.NextPaymentDate)
	if err != nil {
		return nil, errors.New("next_payment_date must be YYYY-MM-DD")
	}
	return &models.LoanDetails{
		OriginalAmount:   p.OriginalAmount,
		CurrentPrincipal: p.CurrentPrincipal,
		InterestRate:     p.InterestRate,
		LoanTermMonths:   p.LoanTermMonths,
		MonthlyPayment:   p.MonthlyPayment,
		LoanStartDate:    start,
		NextPaymentDate:  next,
		Lender:           p.Lender,
		Notes:            p.Notes,
	}, nil
}

// UpdateAccount edits an account's name, limits and stored balances.
func (h *Handlers) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	account, err := h.db.GetAccount(user.ID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "account not found")
			return
		}
		h.internalError(w, r, "get account", err)
		return
	}

	var req accountPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != "" {
		account.Name = req.Name
	}
	if req.Balance != nil {
		account.Balance = *req.Balance
	}
	if req.CreditLimit != nil {
		account.CreditLimit = req.CreditLimit
	}
	if req.CurrentBalance != nil {
		account.CurrentBalance = *req.CurrentBalance
	}

	if err := h.db.UpdateAccount(account); err != nil {
		h.internalError(w, r, "update account", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// DeleteAccount removes an account and everything attached to it.
func (h *Handlers) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	if err := h.db.DeleteAccount(user.ID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "account not found")
			return
		}
		h.internalError(w, r, "delete account", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type loanSummaryResponse struct {
	Loan    *models.LoanDetails        `json:"loan"`
	Summary ledger.AmortizationSummary `json:"summary"`
}

// LoanSummary returns a loan account's terms plus derived payoff estimates.
func (h *Handlers) LoanSummary(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	account, err := h.db.GetAccount(user.ID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "account not found")
			return
		}
		h.internalError(w, r, "get account", err)
		return
	}
	if account.Kind != models.Loan || account.Loan == nil {
		h.writeError(w, http.StatusBadRequest, "not a loan account")
		return
	}

	h.writeJSON(w, http.StatusOK, loanSummaryResponse{
		Loan:    account.Loan,
		Summary: ledger.EstimateAmortization(account.Loan),
	})
}
