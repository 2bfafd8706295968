package httpapi

import (
	"net/http"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/accounts"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var reg accounts.Registration
	if err := decodeBody(r, &reg); err != nil {
		h.writeError(w, r, err)
		return
	}
	profile, err := h.svc.Accounts.Register(r.Context(), IdentityFrom(r.Context()).UserID, reg)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, UserView{ID: profile.ID, UserProfile: *profile})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.Accounts.Profile(r.Context(), IdentityFrom(r.Context()).UserID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, UserView{ID: profile.ID, UserProfile: *profile})
}
