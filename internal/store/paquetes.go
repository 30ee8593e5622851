package store

import (
	"context"
	"fmt"

	"github.com/01moynul/farinez-golang/internal/models"
	"github.com/jmoiron/sqlx"
)

const paqueteColumns = `id, numero_orden, usuario_id, total, estado, direccion_envio, items, fecha_creacion`

// PaqueteRepository is the MySQL PaqueteStore.
type PaqueteRepository struct {
	db *sqlx.DB
}

// List returns every paquete, newest first.
func (r *PaqueteRepository) List(ctx context.Context) ([]models.Paquete, error) {
	paquetes := []models.Paquete{}
	if err := r.db.SelectContext(ctx, &paquetes, `
		SELECT `+paqueteColumns+` FROM paquetes ORDER BY fecha_creacion DESC, id DESC`); err != nil {
		return nil, fmt.Errorf("list paquetes: %w", err)
	}
	return paquetes, nil
}

func (r *PaqueteRepository) Get(ctx context.Context, id int64) (models.Paquete, error) {
	var p models.Paquete
	if err := r.db.GetContext(ctx, &p, `SELECT `+paqueteColumns+` FROM paquetes WHERE id = ?`, id); err != nil {
		return models.Paquete{}, notFound(err)
	}
	return p, nil
}

func (r *PaqueteRepository) Create(ctx context.Context, p models.Paquete) (models.Paquete, error) {
	if p.Status == "" {
		p.Status = models.StatusPending
	}
	if len(p.Items) == 0 {
		p.Items = []byte("[]")
	}
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO paquetes (numero_orden, usuario_id, total, estado, direccion_envio, items)
		VALUES (:numero_orden, :usuario_id, :total, :estado, :direccion_envio, :items)`, p)
	if err != nil {
		return models.Paquete{}, fmt.Errorf("create paquete: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Paquete{}, fmt.Errorf("create paquete: %w", err)
	}
	return r.Get(ctx, id)
}

// Update writes the full record. The creation date is kept.
func (r *PaqueteRepository) Update(ctx context.Context, p models.Paquete) (models.Paquete, error) {
	if _, err := r.Get(ctx, p.ID); err != nil {
		return models.Paquete{}, err
	}
	if len(p.Items) == 0 {
		p.Items = []byte("[]")
	}
	_, err := r.db.NamedExecContext(ctx, `
		UPDATE paquetes SET numero_orden = :numero_orden, usuario_id = :usuario_id,
			total = :total, estado = :estado, direccion_envio = :direccion_envio, items = :items
		WHERE id = :id`, p)
	if err != nil {
		return models.Paquete{}, fmt.Errorf("update paquete: %w", err)
	}
	return r.Get(ctx, p.ID)
}

// Stats counts shipments, those already shipped or delivered, and the summed
// total of all of them.
func (r *PaqueteRepository) Stats(ctx context.Context) (PaqueteStats, error) {
	var s PaqueteStats
	err := r.db.GetContext(ctx, &s, `
		SELECT COUNT(*) AS total,
			COALESCE(SUM(estado IN ('shipped', 'delivered')), 0) AS shipped,
			COALESCE(SUM(total), 0) AS revenue
		FROM paquetes`)
	if err != nil {
		return PaqueteStats{}, fmt.Errorf("paquete stats: %w", err)
	}
	return s, nil
}
