// Package store holds the MySQL repositories behind the catalog, the users
// and the shipments.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("record not found")

// ProductStore persists catalog products.
type ProductStore interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id int64) (models.Product, error)
	GetMany(ctx context.Context, ids []int64) ([]models.Product, error)
	Create(ctx context.Context, p models.Product) (models.Product, error)
	Update(ctx context.Context, p models.Product) (models.Product, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// RecipeStore persists recipes with their ingredients and steps.
type RecipeStore interface {
	List(ctx context.Context) ([]models.Recipe, error)
	Get(ctx context.Context, id int64) (models.Recipe, error)
	Create(ctx context.Context, r models.Recipe) (models.Recipe, error)
	Update(ctx context.Context, r models.Recipe) (models.Recipe, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// UserFilter narrows the users listing. Empty fields match everything.
type UserFilter struct {
	Name string
	Role string
}

// UserStore reads admin panel accounts.
type UserStore interface {
	List(ctx context.Context, f UserFilter) ([]models.User, error)
	GetByUsername(ctx context.Context, username string) (models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	Count(ctx context.Context) (int, error)
}

// PaqueteStats are the shipment figures shown on the dashboard.
type PaqueteStats struct {
	Total   int     `db:"total"`
	Shipped int     `db:"shipped"`
	Revenue float64 `db:"revenue"`
}

// PaqueteStore persists shipments.
type PaqueteStore interface {
	List(ctx context.Context) ([]models.Paquete, error)
	Get(ctx context.Context, id int64) (models.Paquete, error)
	Create(ctx context.Context, p models.Paquete) (models.Paquete, error)
	Update(ctx context.Context, p models.Paquete) (models.Paquete, error)
	Stats(ctx context.Context) (PaqueteStats, error)
}

// Stores bundles every repository.
type Stores struct {
	Products ProductStore
	Recipes  RecipeStore
	Users    UserStore
	Paquetes PaqueteStore
}

// NewMySQL wires every repository to db.
func NewMySQL(db *sqlx.DB) Stores {
	return Stores{
		Products: &ProductRepository{db: db},
		Recipes:  &RecipeRepository{db: db},
		Users:    &UserRepository{db: db},
		Paquetes: &PaqueteRepository{db: db},
	}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func count(ctx context.Context, db *sqlx.DB, table string) (int, error) {
	var n int
	if err := db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// affected maps a zero-row update or delete to ErrNotFound.
func affected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
