package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gleanerd/gleaner/internal/capability"
	"github.com/gleanerd/gleaner/internal/models"
)

// BankHandler serves bank capability endpoints.
type BankHandler struct {
	opener
}

// NewBankHandler creates a BankHandler backed by the backend store.
func NewBankHandler(backends *models.BackendStore) *BankHandler {
	return &BankHandler{opener{backends: backends}}
}

// ListAccounts handles GET /api/backends/{name}/accounts.
func (h *BankHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	backend, err := h.open(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	bank, err := backend.AsBank()
	if err != nil {
		writeBackendError(w, err)
		return
	}

	accounts, err := bank.Accounts(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if accounts == nil {
		accounts = []capability.Account{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"backend":  name,
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// ListTransactions handles GET /api/backends/{name}/accounts/{id}/transactions.
func (h *BankHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	accountID := chi.URLParam(r, "id")

	backend, err := h.open(r.Context(), name)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	bank, err := backend.AsBank()
	if err != nil {
		writeBackendError(w, err)
		return
	}

	transactions, err := bank.Transactions(r.Context(), accountID)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	if transactions == nil {
		transactions = []capability.Transaction{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"backend":      name,
		"account":      accountID,
		"transactions": transactions,
		"count":        len(transactions),
	})
}
