package handler

import (
	"context"
	"net/http"

	"github.com/xenking/store-admin/internal/domain/product"
	"github.com/xenking/store-admin/internal/photostore"
	"github.com/xenking/store-admin/pkg/httpmiddleware"
)

// ProductService is the product write coordinator as seen by the HTTP layer.
type ProductService interface {
	CreateProduct(ctx context.Context, req product.CreateProductRequest) (*product.Product, error)
	UpdateProductDetails(ctx context.Context, id int64, req product.UpdateDetailsRequest) (*product.Product, error)
	UpdateProductImage(ctx context.Context, id int64, img product.ImageUpload) (*product.Product, error)
	AddGalleryImage(ctx context.Context, productID int64, img product.ImageUpload) (*product.GalleryImage, error)
	DeleteGalleryImage(ctx context.Context, id int64) error
	DeleteProduct(ctx context.Context, id int64) error
	GetProductDetail(ctx context.Context, id int64) (*product.Detail, error)
	ListProducts(ctx context.Context) ([]product.Product, error)
	ListCategories(ctx context.Context) ([]product.Category, error)
}

var _ ProductService = (*product.Service)(nil)

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// ImageBaseURL is prepended to stored image keys in responses.
	ImageBaseURL string
	// MaxUploadSizeMB bounds a single uploaded image.
	MaxUploadSizeMB int
}

// Handler serves the admin product API and stored media.
type Handler struct {
	products     ProductService
	media        photostore.Store
	imageBaseURL string
	maxUploadMB  int
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(cfg HandlerConfig, products ProductService, media photostore.Store) *Handler {
	return &Handler{
		products:     products,
		media:        media,
		imageBaseURL: cfg.ImageBaseURL,
		maxUploadMB:  cfg.MaxUploadSizeMB,
	}
}

// Register adds all routes to mux. API routes are wrapped with protect.
func (h *Handler) Register(mux *http.ServeMux, protect httpmiddleware.Middleware) {
	api := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, protect(fn))
	}

	api("GET /api/categories", h.ListCategories)
	api("GET /api/products", h.ListProducts)
	api("POST /api/products", h.CreateProduct)
	api("GET /api/products/{id}", h.GetProduct)
	api("POST /api/products/{id}/manage", h.ManageProduct)
	api("DELETE /api/products/{id}", h.DeleteProduct)
	api("DELETE /api/gallery/{id}", h.DeleteGalleryImage)

	mux.HandleFunc("GET /media/{key}", h.ServeMedia)
}
