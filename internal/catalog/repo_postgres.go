package catalog

import (
	"context"
	"database/sql"
	"errors"
)

// NOTE: This repository assumes the following tables exist:
//
// CREATE TABLE estados (
//   id        UUID PRIMARY KEY,
//   nombre    TEXT NOT NULL,
//   orden     INT NOT NULL DEFAULT 0,
//   activo    BOOLEAN NOT NULL DEFAULT TRUE,
//   creado_en TIMESTAMPTZ NOT NULL
// );
// CREATE TABLE sub_estados (
//   id        UUID PRIMARY KEY,
//   estado_id UUID NOT NULL REFERENCES estados(id),
//   nombre    TEXT NOT NULL,
//   activo    BOOLEAN NOT NULL DEFAULT TRUE,
//   creado_en TIMESTAMPTZ NOT NULL
// );
// CREATE TABLE usuarios (
//   id     UUID PRIMARY KEY,
//   nombre TEXT NOT NULL,
//   area   TEXT,
//   rol    TEXT NOT NULL
// );

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) ListEstados(ctx context.Context) ([]Estado, error) {
	const q = `
SELECT id, nombre, orden, activo, creado_en
FROM estados
ORDER BY orden ASC, nombre ASC
`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Estado
	for rows.Next() {
		var e Estado
		if err := rows.Scan(&e.ID, &e.Nombre, &e.Orden, &e.Activo, &e.CreadoEn); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) GetEstado(ctx context.Context, id string) (Estado, error) {
	const q = `
SELECT id, nombre, orden, activo, creado_en
FROM estados
WHERE id = $1
`
	var e Estado
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&e.ID, &e.Nombre, &e.Orden, &e.Activo, &e.CreadoEn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Estado{}, ErrNotFound
		}
		return Estado{}, err
	}
	return e, nil
}

func (r *PostgresRepo) CreateEstado(ctx context.Context, e Estado) error {
	const q = `
INSERT INTO estados (id, nombre, orden, activo, creado_en)
VALUES ($1,$2,$3,$4,$5)
`
	_, err := r.db.ExecContext(ctx, q, e.ID, e.Nombre, e.Orden, e.Activo, e.CreadoEn)
	return err
}

func (r *PostgresRepo) ListSubEstados(ctx context.Context, estadoID string) ([]SubEstado, error) {
	const q = `
SELECT id, estado_id, nombre, activo, creado_en
FROM sub_estados
WHERE estado_id = $1
ORDER BY nombre ASC
`
	rows, err := r.db.QueryContext(ctx, q, estadoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SubEstado
	for rows.Next() {
		var se SubEstado
		if err := rows.Scan(&se.ID, &se.EstadoID, &se.Nombre, &se.Activo, &se.CreadoEn); err != nil {
			return nil, err
		}
		out = append(out, se)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) GetSubEstado(ctx context.Context, id string) (SubEstado, error) {
	const q = `
SELECT id, estado_id, nombre, activo, creado_en
FROM sub_estados
WHERE id = $1
`
	var se SubEstado
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&se.ID, &se.EstadoID, &se.Nombre, &se.Activo, &se.CreadoEn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SubEstado{}, ErrNotFound
		}
		return SubEstado{}, err
	}
	return se, nil
}

func (r *PostgresRepo) CreateSubEstado(ctx context.Context, s SubEstado) error {
	const q = `
INSERT INTO sub_estados (id, estado_id, nombre, activo, creado_en)
VALUES ($1,$2,$3,$4,$5)
`
	_, err := r.db.ExecContext(ctx, q, s.ID, s.EstadoID, s.Nombre, s.Activo, s.CreadoEn)
	return err
}

func (r *PostgresRepo) GetUsuario(ctx context.Context, id string) (Usuario, error) {
	const q = `
SELECT id, nombre, area, rol
FROM usuarios
WHERE id = $1
`
	var u Usuario
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.Nombre, &u.Area, &u.Rol); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Usuario{}, ErrNotFound
		}
		return Usuario{}, err
	}
	return u, nil
}
