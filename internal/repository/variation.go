package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/store-admin/internal/domain/product"
)

const (
	listVariationsSQL = `SELECT id, product_id, category, value
		FROM variations WHERE product_id = $1 ORDER BY id`

	deleteVariationsSQL = `DELETE FROM variations WHERE product_id = $1`
)

var _ product.VariationRepository = (*VariationRepository)(nil)

// VariationRepository implements product.VariationRepository backed by PostgreSQL.
type VariationRepository struct {
	pool *pgxpool.Pool
}

// NewVariationRepository returns a VariationRepository that uses the given pool.
func NewVariationRepository(pool *pgxpool.Pool) *VariationRepository {
	return &VariationRepository{pool: pool}
}

// ListByProduct returns the variations of a product in insertion order.
func (r *VariationRepository) ListByProduct(ctx context.Context, productID int64) ([]product.Variation, error) {
	rows, err := r.pool.Query(ctx, listVariationsSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing variations of product %d: %w", productID, err)
	}
	return pgx.CollectRows(rows, scanVariation)
}

// CreateBatch inserts vs for productID with a single COPY.
func (r *VariationRepository) CreateBatch(ctx context.Context, productID int64, vs []product.Variation) error {
	if len(vs) == 0 {
		return nil
	}

	n, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"variations"},
		[]string{"product_id", "category", "value"},
		pgx.CopyFromSlice(len(vs), func(i int) ([]any, error) {
			return []any{productID, string(vs[i].Category), vs[i].Value}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copying variations of product %d: %w", productID, err)
	}
	if int(n) != len(vs) {
		return fmt.Errorf("copied %d of %d variations", n, len(vs))
	}
	return nil
}

// DeleteByProduct removes every variation of productID.
func (r *VariationRepository) DeleteByProduct(ctx context.Context, productID int64) error {
	if _, err := r.pool.Exec(ctx, deleteVariationsSQL, productID); err != nil {
		return fmt.Errorf("deleting variations of product %d: %w", productID, err)
	}
	return nil
}

func scanVariation(row pgx.CollectableRow) (product.Variation, error) {
	var (
		v        product.Variation
		category string
	)
	err := row.Scan(&v.ID, &v.ProductID, &category, &v.Value)
	v.Category = product.VariationCategory(category)
	return v, err
}
