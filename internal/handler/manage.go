package handler

import (
	"fmt"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/store-admin/internal/domain/product"
)

// ErrUnknownOperation is returned for a manage request with an unrecognized
// form discriminant.
var ErrUnknownOperation = errors.New("unknown manage operation")

// ManageKind selects the operation of a manage request.
type ManageKind string

const (
	ManageProductDetails ManageKind = "product_details"
	ManageProductImage   ManageKind = "product_img"
	ManageGalleryImage   ManageKind = "gallery_img"
)

// ManageRequest is one of UpdateDetails, UpdateImage or AddGalleryImage.
type ManageRequest interface {
	Kind() ManageKind
}

// UpdateDetails edits product fields and replaces its variations.
type UpdateDetails struct {
	product.UpdateDetailsRequest
}

// UpdateImage replaces the primary product image.
type UpdateImage struct {
	Image product.ImageUpload
}

// AddGalleryImage appends an image to the product gallery.
type AddGalleryImage struct {
	Image product.ImageUpload
}

func (UpdateDetails) Kind() ManageKind   { return ManageProductDetails }
func (UpdateImage) Kind() ManageKind     { return ManageProductImage }
func (AddGalleryImage) Kind() ManageKind { return ManageGalleryImage }

// decodeManageRequest builds the typed request selected by the "form" field.
// Image variants return the form parsing errors directly, since nothing else
// is validated before the upload itself.
func decodeManageRequest(f *form) (ManageRequest, error) {
	switch kind := ManageKind(f.str("form")); kind {
	case ManageProductDetails:
		return UpdateDetails{product.UpdateDetailsRequest{
			Fields:     f.fields(),
			Variations: f.r.FormValue(product.FieldVariations),
			FormErrors: f.errs,
		}}, nil
	case ManageProductImage:
		img := f.upload(product.FieldImages)
		if err := f.errs.Err(); err != nil {
			return nil, err
		}
		return UpdateImage{Image: img}, nil
	case ManageGalleryImage:
		img := f.upload(product.FieldGalleryImage)
		if err := f.errs.Err(); err != nil {
			return nil, err
		}
		return AddGalleryImage{Image: img}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, kind)
	}
}

// ManageProduct serves POST /api/products/{id}/manage.
func (h *Handler) ManageProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := pathID(r)
	if !ok {
		writeServiceError(ctx, w, product.ErrNotFound)
		return
	}

	f, err := h.parseForm(w, r)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}
	req, err := decodeManageRequest(f)
	if err != nil {
		writeServiceError(ctx, w, err)
		return
	}

	var e jx.Encoder
	switch req := req.(type) {
	case UpdateDetails:
		if _, err := h.products.UpdateProductDetails(ctx, id, req.UpdateDetailsRequest); err != nil {
			writeServiceError(ctx, w, err)
			return
		}
		encodeCallback(&e)
	case UpdateImage:
		p, err := h.products.UpdateProductImage(ctx, id, req.Image)
		if err != nil {
			writeServiceError(ctx, w, err)
			return
		}
		e.ObjStart()
		e.FieldStart("image")
		e.Str(h.imageURL(p.Image))
		e.ObjEnd()
	case AddGalleryImage:
		if _, err := h.products.AddGalleryImage(ctx, id, req.Image); err != nil {
			writeServiceError(ctx, w, err)
			return
		}
		encodeCallback(&e)
	}
	writeJSON(w, http.StatusOK, &e)
}

func encodeCallback(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("callback")
	e.Str("reload")
	e.ObjEnd()
}
