package store

import (
	"context"
	"fmt"

	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/jmoiron/sqlx"
)

const recipeColumns = `id, name, difficulty, time, servings, category, price, image_url, description, created_at, updated_at`

// RecipeRepository is the MySQL RecipeStore. Ingredients and instructions
// are written in the same transaction as the recipe row.
type RecipeRepository struct {
	db *sqlx.DB
}

// List returns recipes without their ingredients or steps.
func (r *RecipeRepository) List(ctx context.Context) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	if err := r.db.SelectContext(ctx, &recipes, `SELECT `+recipeColumns+` FROM recetas ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

func (r *RecipeRepository) Get(ctx context.Context, id int64) (models.Recipe, error) {
	var rec models.Recipe
	if err := r.db.GetContext(ctx, &rec, `SELECT `+recipeColumns+` FROM recetas WHERE id = ?`, id); err != nil {
		return models.Recipe{}, notFound(err)
	}

	rec.Ingredients = []models.Ingredient{}
	if err := r.db.SelectContext(ctx, &rec.Ingredients, `
		SELECT receta_id, producto_id, cantidad_en_receta, conversion_note
		FROM receta_ingredientes WHERE receta_id = ? ORDER BY producto_id`, id); err != nil {
		return models.Recipe{}, fmt.Errorf("get recipe ingredients: %w", err)
	}

	rec.Instructions = []models.Instruction{}
	if err := r.db.SelectContext(ctx, &rec.Instructions, `
		SELECT id, receta_id, paso_numero, descripcion
		FROM receta_instrucciones WHERE receta_id = ? ORDER BY paso_numero, id`, id); err != nil {
		return models.Recipe{}, fmt.Errorf("get recipe instructions: %w", err)
	}
	return rec, nil
}

func (r *RecipeRepository) Create(ctx context.Context, rec models.Recipe) (models.Recipe, error) {
	var id int64
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.NamedExecContext(ctx, `
			INSERT INTO recetas (name, difficulty, time, servings, category, price, image_url, description)
			VALUES (:name, :difficulty, :time, :servings, :category, :price, :image_url, :description)`, rec)
		if err != nil {
			return err
		}
		if id, err = res.LastInsertId(); err != nil {
			return err
		}
		return writeChildren(ctx, tx, id, rec)
	})
	if err != nil {
		return models.Recipe{}, fmt.Errorf("create recipe: %w", err)
	}
	return r.Get(ctx, id)
}

// Update replaces the recipe row and its whole ingredient and step lists.
func (r *RecipeRepository) Update(ctx context.Context, rec models.Recipe) (models.Recipe, error) {
	if _, err := r.Get(ctx, rec.ID); err != nil {
		return models.Recipe{}, err
	}
	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, `
			UPDATE recetas SET name = :name, difficulty = :difficulty, time = :time,
				servings = :servings, category = :category, price = :price,
				image_url = :image_url, description = :description
			WHERE id = :id`, rec); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM receta_ingredientes WHERE receta_id = ?`, rec.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM receta_instrucciones WHERE receta_id = ?`, rec.ID); err != nil {
			return err
		}
		return writeChildren(ctx, tx, rec.ID, rec)
	})
	if err != nil {
		return models.Recipe{}, fmt.Errorf("update recipe: %w", err)
	}
	return r.Get(ctx, rec.ID)
}

func (r *RecipeRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recetas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return affected(res)
}

func (r *RecipeRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "recetas")
}

func (r *RecipeRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func writeChildren(ctx context.Context, tx *sqlx.Tx, recipeID int64, rec models.Recipe) error {
	for _, ing := range rec.Ingredients {
		ing.RecipeID = recipeID
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO receta_ingredientes (receta_id, producto_id, cantidad_en_receta, conversion_note)
			VALUES (:receta_id, :producto_id, :cantidad_en_receta, :conversion_note)`, ing); err != nil {
			return err
		}
	}
	for i, step := range rec.Instructions {
		step.RecipeID = recipeID
		if step.Step == 0 {
			step.Step = i + 1
		}
		if _, err := tx.NamedExecContext(ctx, `
			INSERT INTO receta_instrucciones (receta_id, paso_numero, descripcion)
			VALUES (:receta_id, :paso_numero, :descripcion)`, step); err != nil {
			return err
		}
	}
	return nil
}
