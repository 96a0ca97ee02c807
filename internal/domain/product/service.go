package product

import (
	"context"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/store-admin/internal/imaging"
)

// Form field names used as ValidationError keys.
const (
	FieldName         = "product_name"
	FieldDescription  = "description"
	FieldPrice        = "price"
	FieldStock        = "stock"
	FieldCategory     = "category"
	FieldLocation     = "location"
	FieldVariations   = "variations"
	FieldImages       = "images"
	FieldGalleryImage = "image"
	FieldImageW       = "image_w"
	FieldImageH       = "image_h"
)

const (
	maxNameLen        = 200
	maxDescriptionLen = 500
	maxLocationLen    = 100
	// Price is NUMERIC(10,2).
	maxPriceDecimals = 2
	maxPriceWhole    = 8

	msgRequired      = "This field is required."
	msgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
	msgEmptyCrop     = "Selected crop area is outside of the image."
)

// ImageUpload is an uploaded image together with the rectangle to keep.
type ImageUpload struct {
	Data []byte
	Crop imaging.Rect
}

// CreateProductRequest holds the input for creating a product.
type CreateProductRequest struct {
	Fields
	// Variations is the raw two-array JSON payload.
	Variations string
	Image      ImageUpload
	// FormErrors carries errors found while parsing the submitted form.
	FormErrors *ValidationError
}

// UpdateDetailsRequest holds the input for editing product fields.
type UpdateDetailsRequest struct {
	Fields
	Variations string
	FormErrors *ValidationError
}

// Service coordinates product writes across the product row, its variation
// set and its images.
type Service struct {
	products   Repository
	variations VariationRepository
	gallery    GalleryRepository
	categories CategoryRepository
	images     ImageTransformer
}

// NewService creates a product Service.
func NewService(
	products Repository,
	variations VariationRepository,
	gallery GalleryRepository,
	categories CategoryRepository,
	images ImageTransformer,
) *Service {
	return &Service{
		products:   products,
		variations: variations,
		gallery:    gallery,
		categories: categories,
		images:     images,
	}
}

// CreateProduct validates the request, stores the cropped primary image,
// inserts the product and then its variations. Nothing is written when
// validation fails.
func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	verr := &ValidationError{}
	verr.Merge(req.FormErrors)

	if err := s.validateFields(ctx, req.Fields, verr); err != nil {
		return nil, err
	}
	variations := decodeInto(req.Variations, verr)
	s.validateImage(req.Image, FieldImages, verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	key, err := s.transform(ctx, req.Image, FieldImages)
	if err != nil {
		return nil, err
	}

	p := &Product{Fields: req.Fields, Image: key}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	if err := s.insertVariations(ctx, p.ID, variations); err != nil {
		return nil, err
	}

	zctx.From(ctx).Info("Product created",
		zap.Int64("product_id", p.ID),
		zap.Int("variations", len(variations)),
	)
	return p, nil
}

// UpdateProductDetails writes new field values and replaces the whole
// variation set of product id.
//
// The replace is a delete followed by an insert without a transaction.
// Concurrent updates of the same product are last-writer-wins and may
// interleave, losing one side's variations.
func (s *Service) UpdateProductDetails(ctx context.Context, id int64, req UpdateDetailsRequest) (*Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	verr.Merge(req.FormErrors)
	if err := s.validateFields(ctx, req.Fields, verr); err != nil {
		return nil, err
	}
	variations := decodeInto(req.Variations, verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	p.Fields = req.Fields
	if err := s.products.Update(ctx, p); err != nil {
		return nil, errors.Wrap(err, "update product")
	}
	if err := s.variations.DeleteByProduct(ctx, p.ID); err != nil {
		return nil, errors.Wrap(err, "delete variations")
	}
	if err := s.insertVariations(ctx, p.ID, variations); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProductImage replaces the primary image of product id. The previous
// stored object is left in place.
func (s *Service) UpdateProductImage(ctx context.Context, id int64, img ImageUpload) (*Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	s.validateImage(img, FieldImages, verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	key, err := s.transform(ctx, img, FieldImages)
	if err != nil {
		return nil, err
	}
	if err := s.products.UpdateImage(ctx, p.ID, key); err != nil {
		return nil, errors.Wrap(err, "update image")
	}
	p.Image = key
	return p, nil
}

// AddGalleryImage stores a cropped image and appends it to the gallery of
// product productID.
func (s *Service) AddGalleryImage(ctx context.Context, productID int64, img ImageUpload) (*GalleryImage, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	s.validateImage(img, FieldGalleryImage, verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	key, err := s.transform(ctx, img, FieldGalleryImage)
	if err != nil {
		return nil, err
	}

	g := &GalleryImage{ProductID: productID, Image: key}
	if err := s.gallery.Create(ctx, g); err != nil {
		return nil, errors.Wrap(err, "create gallery image")
	}
	return g, nil
}

// DeleteGalleryImage removes a gallery image by id.
func (s *Service) DeleteGalleryImage(ctx context.Context, id int64) error {
	return s.gallery.Delete(ctx, id)
}

// DeleteProduct removes a product. Variations and gallery rows go with it.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	return s.products.Delete(ctx, id)
}

// GetProductDetail loads a product with its variations and gallery.
func (s *Service) GetProductDetail(ctx context.Context, id int64) (*Detail, error) {
	var d Detail

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.products.GetByID(gctx, id)
		if err != nil {
			return err
		}
		d.Product = p
		return nil
	})
	g.Go(func() error {
		vs, err := s.variations.ListByProduct(gctx, id)
		if err != nil {
			return errors.Wrap(err, "list variations")
		}
		d.Variations = vs
		return nil
	})
	g.Go(func() error {
		imgs, err := s.gallery.ListByProduct(gctx, id)
		if err != nil {
			return errors.Wrap(err, "list gallery")
		}
		d.Gallery = imgs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ListProducts returns every product without variations or gallery.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return products, nil
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.categories.List(ctx)
}

func (s *Service) validateFields(ctx context.Context, f Fields, verr *ValidationError) error {
	switch n := utf8.RuneCountInString(f.Name); {
	case n == 0 && !verr.Has(FieldName):
		verr.Add(FieldName, msgRequired)
	case n > maxNameLen:
		verr.Add(FieldName, maxLenMessage(maxNameLen, n))
	}
	if n := utf8.RuneCountInString(f.Description); n > maxDescriptionLen {
		verr.Add(FieldDescription, maxLenMessage(maxDescriptionLen, n))
	}
	if n := utf8.RuneCountInString(f.Location); n > maxLocationLen {
		verr.Add(FieldLocation, maxLenMessage(maxLocationLen, n))
	}
	switch {
	case f.Price.IsNegative():
		verr.Add(FieldPrice, "Ensure this value is greater than or equal to 0.")
	case -f.Price.Exponent() > maxPriceDecimals:
		verr.Add(FieldPrice, fmt.Sprintf("Ensure that there are no more than %d decimal places.", maxPriceDecimals))
	case len(f.Price.Truncate(0).String()) > maxPriceWhole:
		verr.Add(FieldPrice, fmt.Sprintf("Ensure that there are no more than %d digits before the decimal point.", maxPriceWhole))
	}
	switch {
	case f.Stock < 0:
		verr.Add(FieldStock, "Ensure this value is greater than or equal to 0.")
	case f.Stock > math.MaxInt32:
		verr.Add(FieldStock, fmt.Sprintf("Ensure this value is less than or equal to %d.", math.MaxInt32))
	}

	if verr.Has(FieldCategory) {
		return nil
	}
	if f.CategoryID == 0 {
		verr.Add(FieldCategory, msgRequired)
		return nil
	}
	ok, err := s.categories.Exists(ctx, f.CategoryID)
	if err != nil {
		return errors.Wrap(err, "check category")
	}
	if !ok {
		verr.Add(FieldCategory, msgInvalidChoice)
	}
	return nil
}

func (s *Service) validateImage(img ImageUpload, field string, verr *ValidationError) {
	if len(img.Data) == 0 {
		if !verr.Has(field) {
			verr.Add(field, msgRequired)
		}
	} else if err := s.images.CheckSize(int64(len(img.Data))); err != nil {
		verr.Add(field, err.Error())
	}
	if img.Crop.W <= 0 && !verr.Has(FieldImageW) {
		verr.Add(FieldImageW, "Ensure this value is greater than 0.")
	}
	if img.Crop.H <= 0 && !verr.Has(FieldImageH) {
		verr.Add(FieldImageH, "Ensure this value is greater than 0.")
	}
}

// transform stores img and maps the user-correctable image failures onto
// field.
func (s *Service) transform(ctx context.Context, img ImageUpload, field string) (string, error) {
	key, err := s.images.Transform(ctx, img.Data, img.Crop, ImageSize)
	if err == nil {
		return key, nil
	}

	var sizeErr *imaging.SizeLimitError
	switch {
	case errors.As(err, &sizeErr):
		verr := &ValidationError{}
		verr.Add(field, sizeErr.Error())
		return "", verr
	case errors.Is(err, imaging.ErrEmptyCrop):
		verr := &ValidationError{}
		verr.Add(field, msgEmptyCrop)
		return "", verr
	case errors.Is(err, imaging.ErrDecode):
		return "", err
	default:
		return "", errors.Wrap(err, "transform image")
	}
}

func (s *Service) insertVariations(ctx context.Context, productID int64, vs []Variation) error {
	if len(vs) == 0 {
		return nil
	}
	for i := range vs {
		vs[i].ProductID = productID
	}
	if err := s.variations.CreateBatch(ctx, productID, vs); err != nil {
		return errors.Wrap(err, "create variations")
	}
	return nil
}

func decodeInto(raw string, verr *ValidationError) []Variation {
	vs, err := DecodeVariations(raw)
	if err != nil {
		var vErr *VariationError
		if errors.As(err, &vErr) {
			verr.Add(FieldVariations, vErr.Message)
		} else {
			verr.Add(FieldVariations, err.Error())
		}
		return nil
	}
	return vs
}

func maxLenMessage(limit, got int) string {
	return fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", limit, got)
}
