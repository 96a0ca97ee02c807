package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/store-admin/internal/domain/product"
)

const (
	listCategoriesSQL = `SELECT id, name, slug, description FROM categories ORDER BY name`

	categoryExistsSQL = `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`

	upsertCategorySQL = `INSERT INTO categories (name, slug, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description
		RETURNING id`
)

var _ product.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository provides category lookups backed by PostgreSQL.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]product.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[product.Category])
}

// Exists reports whether a category with id exists.
func (r *CategoryRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, categoryExistsSQL, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("checking category %d: %w", id, err)
	}
	return ok, nil
}

// Upsert inserts c, or updates the category with the same slug, and sets c.ID.
func (r *CategoryRepository) Upsert(ctx context.Context, c *product.Category) error {
	if err := r.pool.QueryRow(ctx, upsertCategorySQL, c.Name, c.Slug, c.Description).Scan(&c.ID); err != nil {
		return fmt.Errorf("upserting category %q: %w", c.Slug, err)
	}
	return nil
}
