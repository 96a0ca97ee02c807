package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/store-admin/internal/domain/product"
	"github.com/xenking/store-admin/internal/imaging"
	"github.com/xenking/store-admin/pkg/httpmiddleware"
)

var errBadForm = errors.New("malformed form")

func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeServiceError maps domain errors to HTTP responses. Only unexpected
// errors are logged.
func writeServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	var verr *product.ValidationError
	switch {
	case errors.As(err, &verr):
		writeValidationError(w, verr)
	case errors.Is(err, imaging.ErrDecode):
		httpmiddleware.WriteError(w, http.StatusUnprocessableEntity, "failed to process image")
	case errors.Is(err, product.ErrNotFound):
		httpmiddleware.WriteError(w, http.StatusNotFound, "product not found")
	case errors.Is(err, product.ErrGalleryImageNotFound):
		httpmiddleware.WriteError(w, http.StatusNotFound, "gallery image not found")
	case errors.Is(err, ErrUnknownOperation):
		httpmiddleware.WriteError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, errBadForm):
		httpmiddleware.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		zctx.From(ctx).Error("Request failed", zap.Error(err))
		httpmiddleware.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

// writeValidationError renders {"errors":{"field":["msg"]},"message":"..."}.
func writeValidationError(w http.ResponseWriter, verr *product.ValidationError) {
	fields := make([]string, 0, len(verr.Fields))
	for f := range verr.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("errors")
	e.ObjStart()
	for _, f := range fields {
		e.FieldStart(f)
		e.ArrStart()
		for _, msg := range verr.Fields[f] {
			e.Str(msg)
		}
		e.ArrEnd()
	}
	e.ObjEnd()
	e.FieldStart("message")
	e.Str("validation failed")
	e.ObjEnd()

	writeJSON(w, http.StatusBadRequest, &e)
}

func (h *Handler) imageURL(key string) string {
	if key == "" {
		return ""
	}
	return h.imageBaseURL + key
}

func encodeTime(e *jx.Encoder, t time.Time) {
	e.Str(t.UTC().Format(time.RFC3339))
}

func (h *Handler) encodeProduct(e *jx.Encoder, p *product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(p.ID)
	e.FieldStart("product_name")
	e.Str(p.Name)
	e.FieldStart("description")
	e.Str(p.Description)
	e.FieldStart("price")
	e.RawStr(p.Price.StringFixed(2))
	e.FieldStart("stock")
	e.Int(p.Stock)
	e.FieldStart("is_available")
	e.Bool(p.IsAvailable)
	e.FieldStart("category")
	e.Int64(p.CategoryID)
	e.FieldStart("location")
	e.Str(p.Location)
	e.FieldStart("datetime")
	if p.Datetime != nil {
		encodeTime(e, *p.Datetime)
	} else {
		e.Null()
	}
	e.FieldStart("image")
	e.Str(h.imageURL(p.Image))
	e.FieldStart("created_at")
	encodeTime(e, p.CreatedAt)
	e.FieldStart("modified_at")
	encodeTime(e, p.ModifiedAt)
	e.ObjEnd()
}

func (h *Handler) encodeGalleryImage(e *jx.Encoder, g product.GalleryImage) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(g.ID)
	e.FieldStart("image")
	e.Str(h.imageURL(g.Image))
	e.FieldStart("created_at")
	encodeTime(e, g.CreatedAt)
	e.ObjEnd()
}

func encodeVariation(e *jx.Encoder, v product.Variation) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(v.ID)
	e.FieldStart("category")
	e.Str(string(v.Category))
	e.FieldStart("value")
	e.Str(v.Value)
	e.ObjEnd()
}

func encodeCategory(e *jx.Encoder, c product.Category) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(c.ID)
	e.FieldStart("name")
	e.Str(c.Name)
	e.FieldStart("slug")
	e.Str(c.Slug)
	e.ObjEnd()
}
