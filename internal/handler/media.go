package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/store-admin/internal/photostore"
	"github.com/xenking/store-admin/pkg/httpmiddleware"
)

// ServeMedia serves GET /media/{key}. Keys are random and never rewritten,
// so responses are cacheable forever.
func (h *Handler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	rc, mimeType, err := h.media.Get(r.Context(), r.PathValue("key"))
	if err != nil {
		if errors.Is(err, photostore.ErrNotFound) {
			httpmiddleware.WriteError(w, http.StatusNotFound, "image not found")
			return
		}
		zctx.From(r.Context()).Warn("Failed to open image", zap.Error(err))
		httpmiddleware.WriteError(w, http.StatusNotFound, "image not found")
		return
	}
	defer func() { _ = rc.Close() }()

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	if _, err := io.Copy(w, rc); err != nil {
		zctx.From(r.Context()).Debug("Image write interrupted", zap.Error(err))
	}
}
