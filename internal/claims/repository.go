package claims

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// NOTE: This repository assumes the following table exists:
//
// CREATE TABLE reclamos (
//   id             UUID PRIMARY KEY,
//   asunto         TEXT NOT NULL,
//   descripcion    TEXT NOT NULL,
//   nombre_cliente TEXT NOT NULL,
//   estado_id      UUID NOT NULL REFERENCES estados(id),
//   sub_estado_id  UUID REFERENCES sub_estados(id),
//   prioridad      TEXT NOT NULL,
//   asignado_a     TEXT,
//   creado_por     TEXT NOT NULL,
//   creado_en      TIMESTAMPTZ NOT NULL,
//   actualizado_en TIMESTAMPTZ NOT NULL
// );
//
// There is intentionally NO foreign key from eventos_auditoria to reclamos:
// audit rows must survive claim deletion.

const claimColumns = `id, asunto, descripcion, nombre_cliente, estado_id, sub_estado_id, prioridad, asignado_a, creado_por, creado_en, actualizado_en`

func scanClaim(row interface{ Scan(...any) error }) (Claim, error) {
	var c Claim
	err := row.Scan(
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
	)
	return c, err
}

func insertClaim(ctx context.Context, tx *sql.Tx, c Claim) error {
	const q = `
INSERT INTO reclamos (
  id, asunto, descripcion, nombre_cliente, estado_id, sub_estado_id, prioridad, asignado_a, creado_por, creado_en, actualizado_en
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11
)
`
	_, err := tx.ExecContext(ctx, q,
		c.ID,
		c.Asunto,
		c.Descripcion,
		c.NombreCliente,
		c.EstadoID,
		c.SubEstadoID,
		c.Prioridad,
		c.AsignadoA,
		c.CreadoPor,
		c.CreadoEn,
		c.ActualizadoEn,
	)
	return err
}

func getClaim(ctx context.Context, db *sql.DB, id string) (Claim, error) {
	q := `SELECT ` + claimColumns + ` FROM reclamos WHERE id = $1`
	c, err := scanClaim(db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Claim{}, ErrNotFound
		}
		return Claim{}, err
	}
	return c, nil
}

func getClaimForUpdate(ctx context.Context, tx *sql.Tx, id string) (Claim, error) {
	// Row lock serializes concurrent transactions on the same claim; the
	// redis lock above it serializes whole logical updates across instances.
	q := `SELECT ` + claimColumns + ` FROM reclamos WHERE id = $1 FOR UPDATE`
	c, err := scanClaim(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Claim{}, ErrNotFound
		}
		return Claim{}, err
	}
	return c, nil
}

func updateClaim(ctx context.Context, tx *sql.Tx, c Claim) error {
	const q = `
UPDATE reclamos
SET asunto = $2,
    descripcion = $3,
    nombre_cliente = $4,
    estado_id = $5,
    sub_estado_id = $6,
    prioridad = $7,
    asignado_a = $8,
    actualizado_en = $9
WHERE id = $1
`
	res, err := tx.ExecContext(ctx, q,
		c.ID,
		c.Asunto,
		c.Descripcion,
		c.NombreCliente,
		c.EstadoID,
		c.SubEstadoID,
		c.Prioridad,
		c.AsignadoA,
		c.ActualizadoEn,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func deleteClaim(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM reclamos WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func listClaims(ctx context.Context, db *sql.DB, f ListFilter) ([]Claim, error) {
	q := `SELECT ` + claimColumns + ` FROM reclamos WHERE 1=1`
	var args []any

	add := func(cond, val string) {
		args = append(args, val)
		q += fmt.Sprintf(" AND %s = $%d", cond, len(args))
	}
	if f.EstadoID != "" {
		add("estado_id", f.EstadoID)
	}
	if f.Prioridad != "" {
		add("prioridad", f.Prioridad)
	}
	if f.AsignadoA != "" {
		add("asignado_a", f.AsignadoA)
	}
	if f.Busqueda != "" {
		args = append(args, "%"+f.Busqueda+"%")
		q += fmt.Sprintf(" AND (asunto ILIKE $%d OR descripcion ILIKE $%d)", len(args), len(args))
	}

	q += " ORDER BY creado_en DESC, id DESC"
	if f.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", f.Limit)
	}
	if f.Offset > 0 {
		q += fmt.Sprintf(" OFFSET %d", f.Offset)
	}

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
