package httpapi

import (
	"net/http"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/domain"
	"github.com/ronnyMakhuddin/PasarKalikatir/internal/orders"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req orders.PlaceOrderRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.svc.Intake.PlaceOrder(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, result)
}

func (h *Handler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.svc.Flow.Confirm(r.Context(), chi.URLParam(r, "id"), IdentityFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, outcome)
}

func (h *Handler) RejectOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Flow.Reject(r.Context(), chi.URLParam(r, "id"), IdentityFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

func (h *Handler) ReconcileOrder(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.Flow.Reconcile(r.Context(), chi.URLParam(r, "id"), IdentityFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

type transitionRequest struct {
	Status domain.Status `json:"status"`
}

// TransitionOrder applies a status change. A seller confirming through this
// route runs the same confirm flow as /seller/orders/{id}/confirm so stock is
// reconciled the same way in every mode.
func (h *Handler) TransitionOrder(w http.ResponseWriter, r *http.Request) {
	var req transitionRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	actor := IdentityFrom(r.Context())
	if req.Status == domain.StatusConfirmed && actor.IsVerifiedSeller() {
		h.ConfirmOrder(w, r)
		return
	}
	result, err := h.svc.Status.Transition(r.Context(), chi.URLParam(r, "id"), req.Status, actor)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, result)
}
