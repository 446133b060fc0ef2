package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"budget-tracker/internal/storage"
)

// ListCategories returns the user's categories with usage counts, most used
// first.
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	usage, err := h.db.ListCategoryUsage(user.ID)
	if err != nil {
		h.internalError(w, r, "list categories", err)
		return
	}
	if usage == nil {
		usage = []storage.CategoryUsage{}
	}
	h.writeJSON(w, http.StatusOK, usage)
}

type renameCategoryRequest struct {
	NewName string `json:"new_name"`
}

// RenameCategory renames a category across the user's transactions and
// bills.
func (h *Handlers) RenameCategory(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	name := r.PathValue("name")

	var req renameCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	newName := strings.TrimSpace(req.NewName)
	if newName == "" {
		h.writeError(w, http.StatusBadRequest, "new category name is required")
		return
	}

	if err := h.db.RenameCategory(user.ID, name, newName); err != nil {
		h.internalError(w, r, "rename category", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

type removeCategoryRequest struct {
	MergeInto string `json:"merge_into"`
}

// RemoveCategory retires a category: its transactions and bills move into
// merge_into, or "Uncategorized" when no target is given.
func (h *Handlers) RemoveCategory(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	name := r.PathValue("name")

	var req removeCategoryRequest
	if r.Body != nil {
		// A body is optional here; ignore decode errors from an empty one.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	if err := h.db.RemoveCategory(user.ID, name, strings.TrimSpace(req.MergeInto)); err != nil {
		h.internalError(w, r, "remove category", err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
