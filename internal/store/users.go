package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/jmoiron/sqlx"
)

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// UserRepository is the MySQL UserStore.
type UserRepository struct {
	db *sqlx.DB
}

// List filters by a name substring (nombre or username) and an exact role.
func (r *UserRepository) List(ctx context.Context, f UserFilter) ([]models.User, error) {
	query := `SELECT id, nombre, username, email, tipo, password_hash, created_at FROM usuarios`
	var where []string
	var args []any
	if name := strings.TrimSpace(f.Name); name != "" {
		where = append(where, `(nombre LIKE ? ESCAPE '\\' OR username LIKE ? ESCAPE '\\')`)
		like := "%" + likeEscaper.Replace(name) + "%"
		args = append(args, like, like)
	}
	if f.Role != "" {
		where = append(where, `tipo = ?`)
		args = append(args, f.Role)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	err := r.db.GetContext(ctx, &u, `
		SELECT id, nombre, username, email, tipo, password_hash, created_at
		FROM usuarios WHERE username = ?`, username)
	if err != nil {
		return models.User{}, notFound(err)
	}
	return u, nil
}

// Create inserts u; PasswordHash must already be set.
func (r *UserRepository) Create(ctx context.Context, u models.User) (models.User, error) {
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO usuarios (nombre, username, email, tipo, password_hash)
		VALUES (:nombre, :username, :email, :tipo, :password_hash)`, u)
	if err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return r.GetByUsername(ctx, u.Username)
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "usuarios")
}
