package httpapi

import (
	"bytes"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Status.Delete(r.Context(), id, IdentityFrom(r.Context())); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"id": id})
}

func (h *Handler) ScanInvalidOrders(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Cleanup.Scan(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

type purgeRequest struct {
	Confirm bool `json:"confirm"`
}

func (h *Handler) PurgeInvalidOrders(w http.ResponseWriter, r *http.Request) {
	var req purgeRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.svc.Cleanup.Purge(r.Context(), req.Confirm)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

func (h *Handler) ListSellers(w http.ResponseWriter, r *http.Request) {
	sellers, err := h.svc.Accounts.ListSellers(r.Context(), IdentityFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, userViews(sellers))
}

func (h *Handler) VerifySeller(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Accounts.VerifySeller(r.Context(), IdentityFrom(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"id": id, "isVerified": true})
}

func (h *Handler) RejectSeller(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Accounts.RejectSeller(r.Context(), IdentityFrom(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{"id": id, "isVerified": false, "rejected": true})
}

func (h *Handler) ReportSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Reports.Summary(r.Context(), IdentityFrom(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, summary)
}

func (h *Handler) ExportOrders(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.svc.Reports.ExportOrdersCSV(r.Context(), IdentityFrom(r.Context()), &buf); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
