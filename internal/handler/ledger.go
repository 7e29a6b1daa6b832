package handler

import (
	"net/http"
)

func (h *Handler) handleEarn(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token", "missing bearer token")
		return
	}
	if !h.allowLedger(w, id.UserID) {
		return
	}

	var req earnRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, h.validationMessages(err))
		return
	}

	rec, err := h.ledger.Earn(r.Context(), id.UserID, req.Amount, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newProfileResponse(rec))
}

func (h *Handler) handleSpend(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token", "missing bearer token")
		return
	}
	if !h.allowLedger(w, id.UserID) {
		return
	}

	var req spendRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeValidationError(w, h.validationMessages(err))
		return
	}

	ok, err := h.ledger.Spend(r.Context(), id.UserID, req.Amount, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, spendResponse{OK: ok})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing_token", "missing bearer token")
		return
	}

	history, err := h.ledger.History(r.Context(), id.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	transactions := make([]transactionResponse, len(history))
	for i, tx := range history {
		transactions[i] = newTransactionResponse(tx)
	}

	writeJSON(w, http.StatusOK, historyResponse{Transactions: transactions})
}

func (h *Handler) allowLedger(w http.ResponseWriter, userID string) bool {
	if h.limiter.Allow(userID) {
		return true
	}

	h.metrics.IncRateLimitRejection()
	writeError(w, http.StatusTooManyRequests, "rate_limited", "too many ledger requests")
	return false
}
