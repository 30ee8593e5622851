package store

import (
	"context"
	"fmt"

	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/jmoiron/sqlx"
)

const productColumns = `id, name, price, category, stock, image_url, description, created_at, updated_at`

// ProductRepository is the MySQL ProductStore.
type ProductRepository struct {
	db *sqlx.DB
}

func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, `SELECT `+productColumns+` FROM productos ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (models.Product, error) {
	var p models.Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productColumns+` FROM productos WHERE id = ?`, id)
	if err != nil {
		return models.Product{}, notFound(err)
	}
	return p, nil
}

// GetMany returns the products among ids that exist, in id order.
func (r *ProductRepository) GetMany(ctx context.Context, ids []int64) ([]models.Product, error) {
	products := []models.Product{}
	if len(ids) == 0 {
		return products, nil
	}
	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM productos WHERE id IN (?) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("build product query: %w", err)
	}
	if err := r.db.SelectContext(ctx, &products, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	return products, nil
}

func (r *ProductRepository) Create(ctx context.Context, p models.Product) (models.Product, error) {
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO productos (name, price, category, stock, image_url, description)
		VALUES (:name, :price, :category, :stock, :image_url, :description)`, p)
	if err != nil {
		return models.Product{}, fmt.Errorf("create product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Product{}, fmt.Errorf("create product: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *ProductRepository) Update(ctx context.Context, p models.Product) (models.Product, error) {
	if _, err := r.Get(ctx, p.ID); err != nil {
		return models.Product{}, err
	}
	_, err := r.db.NamedExecContext(ctx, `
		UPDATE productos SET name = :name, price = :price, category = :category,
			stock = :stock, image_url = :image_url, description = :description
		WHERE id = :id`, p)
	if err != nil {
		return models.Product{}, fmt.Errorf("update product: %w", err)
	}
	return r.Get(ctx, p.ID)
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM productos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return affected(res)
}

func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "productos")
}
