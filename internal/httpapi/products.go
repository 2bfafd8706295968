package httpapi

import (
	"net/http"

	"github.com/ronnyMakhuddin/PasarKalikatir/internal/catalog"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.Catalog.List(r.Context(), catalog.ListFilter{
		Category: r.URL.Query().Get("category"),
		SellerID: r.URL.Query().Get("seller"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, productViews(products))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.svc.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, productView(*product))
}

func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decodeBody(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	product, err := h.svc.Catalog.Add(r.Context(), IdentityFrom(r.Context()), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, productView(*product))
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var patch catalog.ProductPatch
	if err := decodeBody(r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}
	product, err := h.svc.Catalog.Update(r.Context(), IdentityFrom(r.Context()), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, productView(*product))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.Catalog.Delete(r.Context(), IdentityFrom(r.Context()), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"id": id})
}
