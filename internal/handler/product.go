package handler

import (
	"net/http"

	"github.com/go-faster/jx"

	"github.com/xenking/store-admin/internal/domain/product"
	"github.com/xenking/store-admin/pkg/httpmiddleware"
)

// ListCategories serves GET /api/categories.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.products.ListCategories(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	var e jx.Encoder
	e.ArrStart()
	for _, c := range categories {
		encodeCategory(&e, c)
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

// ListProducts serves GET /api/products, the target of next_url after a
// product is deleted.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListProducts(r.Context())
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	var e jx.Encoder
	e.ArrStart()
	for i := range products {
		h.encodeProduct(&e, &products[i])
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, &e)
}

// CreateProduct serves POST /api/products.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	f, err := h.parseForm(w, r)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	req := product.CreateProductRequest{
		Fields:     f.fields(),
		Variations: f.r.FormValue(product.FieldVariations),
		Image:      f.upload(product.FieldImages),
		FormErrors: f.errs,
	}
	p, err := h.products.CreateProduct(ctx, req)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	var e jx.Encoder
	h.encodeProduct(&e, p)
	writeJSON(w, http.StatusOK, &e)
}

// GetProduct serves GET /api/products/{id} with variations and gallery.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpmiddleware.WriteError(w, http.StatusNotFound, "product not found")
		return
	}

	d, err := h.products.GetProductDetail(r.Context(), id)
	if err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("product")
	h.encodeProduct(&e, d.Product)
	e.FieldStart("variations")
	e.ArrStart()
	for _, v := range d.Variations {
		encodeVariation(&e, v)
	}
	e.ArrEnd()
	e.FieldStart("gallery")
	e.ArrStart()
	for _, g := range d.Gallery {
		h.encodeGalleryImage(&e, g)
	}
	e.ArrEnd()
	e.ObjEnd()
	writeJSON(w, http.StatusOK, &e)
}

// DeleteProduct serves DELETE /api/products/{id}.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpmiddleware.WriteError(w, http.StatusNotFound, "product not found")
		return
	}
	if err := h.products.DeleteProduct(r.Context(), id); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("next_url")
	e.Str("/api/products")
	e.ObjEnd()
	writeJSON(w, http.StatusOK, &e)
}

// DeleteGalleryImage serves DELETE /api/gallery/{id}.
func (h *Handler) DeleteGalleryImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpmiddleware.WriteError(w, http.StatusNotFound, "gallery image not found")
		return
	}
	if err := h.products.DeleteGalleryImage(r.Context(), id); err != nil {
		writeServiceError(r.Context(), w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
