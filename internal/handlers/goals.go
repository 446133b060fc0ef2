package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"budget-tracker/internal/models"
)

type goalPayload struct {
	Name          *string          `json:"name"`
	TargetAmount  *decimal.Decimal `json:"target_amount"`
	CurrentAmount *decimal.Decimal `json:"current_amount"`
	IsActive      *bool            `json:"is_active"`
}

// goalView is a goal plus its derived progress numbers.
type goalView struct {
	models.SavingsGoal
	PercentageComplete float64         `json:"percentage_complete"`
	RemainingAmount    decimal.Decimal `json:"remaining_amount"`
}

func newGoalView(g models.SavingsGoal) goalView {
	return goalView{
		SavingsGoal:        g,
		PercentageComplete: g.PercentageComplete(),
		RemainingAmount:    g.RemainingAmount(),
	}
}

// ListSavingsGoals returns the user's active savings goals with progress.
func (h *Handlers) ListSavingsGoals(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	goals, err := h.db.ListSavingsGoals(user.ID, true)
	if err != nil {
		h.internalError(w, r, "list savings goals", err)
		return
	}
	views := make([]goalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, newGoalView(g))
	}
	h.writeJSON(w, http.StatusOK, views)
}

// CreateSavingsGoal creates a new savings goal.
func (h *Handlers) CreateSavingsGoal(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	var req goalPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == nil || *req.Name == "" || req.TargetAmount == nil {
		h.writeError(w, http.StatusBadRequest, "name and target_amount are required")
		return
	}
	if req.TargetAmount.Sign() <= 0 {
		h.writeError(w, http.StatusBadRequest, "target_amount must be positive")
		return
	}

	goal := &models.SavingsGoal{
		UserID:       user.ID,
		Name:         *req.Name,
		TargetAmount: *req.TargetAmount,
		IsActive:     true,
	}
	if req.CurrentAmount != nil {
		goal.CurrentAmount = *req.CurrentAmount
	}

	if err := h.db.CreateSavingsGoal(goal); err != nil {
		h.internalError(w, r, "create savings goal", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{"success": true, "id": goal.ID})
}

// UpdateSavingsGoal edits a goal's definition fields.
func (h *Handlers) UpdateSavingsGoal(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	goal, err := h.db.GetSavingsGoal(user.ID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "savings goal not found")
			return
		}
		h.internalError(w, r, "get savings goal", err)
		return
	}

	var req goalPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name != nil {
		goal.Name = *req.Name
	}
	if req.TargetAmount != nil {
		goal.TargetAmount = *req.TargetAmount
	}
	if req.CurrentAmount != nil {
		goal.CurrentAmount = *req.CurrentAmount
	}
	if req.IsActive != nil {
		goal.IsActive = *req.IsActive
	}

	if err := h.db.UpdateSavingsGoal(goal); err != nil {
		h.internalError(w, r, "update savings goal", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// DeleteSavingsGoal removes a goal.
func (h *Handlers) DeleteSavingsGoal(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	if err := h.db.DeleteSavingsGoal(user.ID, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.writeError(w, http.StatusNotFound, "savings goal not found")
			return
		}
		h.internalError(w, r, "delete savings goal", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type fundsRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// AddGoalFunds moves money into a goal's tally.
func (h *Handlers) AddGoalFunds(w http.ResponseWriter, r *http.Request) {
	h.goalFunds(w, r, h.engine.AddGoalFunds)
}

// WithdrawGoalFunds takes money out of a goal's tally.
func (h *Handlers) WithdrawGoalFunds(w http.ResponseWriter, r *http.Request) {
	h.goalFunds(w, r, h.engine.WithdrawGoalFunds)
}

func (h *Handlers) goalFunds(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, userID, goalID int64, amount decimal.Decimal) (*models.SavingsGoal, error)) {
	user := GetUserFromContext(r)
	id, err := parseID(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid goal id")
		return
	}

	var req fundsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := op(r.Context(), user.ID, id, req.Amount)
	if err != nil {
		h.writeLedgerError(w, r, "move goal funds", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":             true,
		"new_amount":          goal.CurrentAmount,
		"percentage_complete": goal.PercentageComplete(),
		"remaining_amount":    goal.RemainingAmount(),
	})
}
