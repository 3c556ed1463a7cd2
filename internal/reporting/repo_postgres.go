package reporting

import (
	"context"
	"database/sql"
	"time"

	"claims-platform/internal/claims"
)

// PostgresRepo reads summary inputs straight from the reclamos and
// eventos_auditoria tables.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) ListClaims(ctx context.Context) ([]claims.Claim, error) {
	const q = `
SELECT id, asunto, descripcion, nombre_cliente, estado_id, sub_estado_id, prioridad, asignado_a, creado_por, creado_en, actualizado_en
FROM reclamos
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []claims.Claim
	for rows.Next() {
		var c claims.Claim
		if err := rows.Scan(
			&c.ID,
			&c.Asunto,
			&c.Descripcion,
			&c.NombreCliente,
			&c.EstadoID,
			&c.SubEstadoID,
			&c.Prioridad,
			&c.AsignadoA,
			&c.CreadoPor,
			&c.CreadoEn,
			&c.ActualizadoEn,
		); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) CountAuditEvents(ctx context.Context, from, to time.Time) (map[string]int, error) {
	const q = `
SELECT tipo_evento, COUNT(*)
FROM eventos_auditoria
WHERE creado_en >= $1 AND creado_en < $2
GROUP BY tipo_evento
`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, rows.Err()
}
