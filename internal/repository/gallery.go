package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/store-admin/internal/domain/product"
)

const (
	listGallerySQL = `SELECT id, product_id, image, created_at
		FROM product_gallery WHERE product_id = $1 ORDER BY id`

	createGalleryImageSQL = `INSERT INTO product_gallery (product_id, image)
		VALUES ($1, $2) RETURNING id, created_at`

	deleteGalleryImageSQL = `DELETE FROM product_gallery WHERE id = $1`
)

var _ product.GalleryRepository = (*GalleryRepository)(nil)

// GalleryRepository implements product.GalleryRepository backed by PostgreSQL.
type GalleryRepository struct {
	pool *pgxpool.Pool
}

// NewGalleryRepository returns a GalleryRepository that uses the given pool.
func NewGalleryRepository(pool *pgxpool.Pool) *GalleryRepository {
	return &GalleryRepository{pool: pool}
}

func (r *GalleryRepository) ListByProduct(ctx context.Context, productID int64) ([]product.GalleryImage, error) {
	rows, err := r.pool.Query(ctx, listGallerySQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing gallery of product %d: %w", productID, err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[product.GalleryImage])
}

func (r *GalleryRepository) Create(ctx context.Context, g *product.GalleryImage) error {
	err := r.pool.QueryRow(ctx, createGalleryImageSQL, g.ProductID, g.Image).Scan(&g.ID, &g.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating gallery image: %w", err)
	}
	return nil
}

func (r *GalleryRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteGalleryImageSQL, id)
	if err != nil {
		return fmt.Errorf("deleting gallery image %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrGalleryImageNotFound
	}
	return nil
}
