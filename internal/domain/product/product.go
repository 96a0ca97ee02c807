package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/store-admin/internal/imaging"
)

var (
	// ErrNotFound is returned when a requested product does not exist.
	ErrNotFound = errors.New("product not found")
	// ErrGalleryImageNotFound is returned when a gallery image id is unknown.
	ErrGalleryImageNotFound = errors.New("gallery image not found")
)

// ImageSize is the output size of every product and gallery image.
var ImageSize = imaging.Size{Width: 480, Height: 480}

// Product represents a catalog item managed from the admin backend.
type Product struct {
	ID int64
	Fields
	// Image is the storage key of the primary image.
	Image      string
	CreatedAt  time.Time
	ModifiedAt time.Time
}

// Fields holds the admin-editable attributes of a product.
type Fields struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	IsAvailable bool
	CategoryID  int64
	Location    string
	// Datetime is an optional free-form timestamp set by the admin.
	Datetime *time.Time
}

// GalleryImage is an additional product image shown on the product page.
type GalleryImage struct {
	ID        int64
	ProductID int64
	Image     string
	CreatedAt time.Time
}

// Category groups products in the storefront.
type Category struct {
	ID          int64
	Name        string
	Slug        string
	Description string
}

// Detail bundles a product with everything it owns.
type Detail struct {
	Product    *Product
	Variations []Variation
	Gallery    []GalleryImage
}

// Repository defines persistence operations for product rows.
type Repository interface {
	// Create inserts p and fills in ID and timestamps.
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id int64) (*Product, error)
	// List returns every product ordered by ID.
	List(ctx context.Context) ([]Product, error)
	// Update writes the admin-editable fields of p.
	Update(ctx context.Context, p *Product) error
	UpdateImage(ctx context.Context, id int64, image string) error
	Delete(ctx context.Context, id int64) error
}

// VariationRepository persists the variation set owned by a product.
type VariationRepository interface {
	ListByProduct(ctx context.Context, productID int64) ([]Variation, error)
	CreateBatch(ctx context.Context, productID int64, vs []Variation) error
	DeleteByProduct(ctx context.Context, productID int64) error
}

// GalleryRepository persists gallery images.
type GalleryRepository interface {
	ListByProduct(ctx context.Context, productID int64) ([]GalleryImage, error)
	Create(ctx context.Context, g *GalleryImage) error
	// Delete returns ErrGalleryImageNotFound when no row was removed.
	Delete(ctx context.Context, id int64) error
}

// CategoryRepository provides read access to categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

// ImageTransformer turns an uploaded image into a stored, normalized JPEG.
type ImageTransformer interface {
	CheckSize(n int64) error
	Transform(ctx context.Context, src []byte, rect imaging.Rect, size imaging.Size) (string, error)
}
