package audit

import (
	"context"
	"fmt"

	"claims-platform/pkg/utils"
)

// NOTE: This store assumes the following table exists:
//
// CREATE TABLE eventos_auditoria (
//   seq            BIGSERIAL PRIMARY KEY,
//   id             UUID NOT NULL,
//   reclamo_id     TEXT NOT NULL,
//   tipo_evento    TEXT NOT NULL,
//   usuario_id     TEXT,
//   nombre_usuario TEXT NOT NULL,
//   area_usuario   TEXT,
//   cambios        JSONB NOT NULL,
//   descripcion    TEXT NOT NULL,
//   creado_en      TIMESTAMPTZ NOT NULL
// );
// CREATE INDEX ON eventos_auditoria (reclamo_id, creado_en, seq);
//
// No UPDATE or DELETE is ever issued against it. Rows are not removed when
// the claim they describe is deleted.

// PostgresStore persists audit entries. It runs over utils.DBTX so the
// claims service can append inside the same transaction that mutates the
// claim, making the state change and its audit entry atomic.
type PostgresStore struct {
	db utils.DBTX
}

func NewPostgresStore(db utils.DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, e Entry) error {
	cambios, err := e.Changes.MarshalJSON()
	if err != nil {
		return err
	}
	var usuarioID *string
	if e.Actor.ID != "" {
		usuarioID = &e.Actor.ID
	}

	const q = `
INSERT INTO eventos_auditoria (
  id, reclamo_id, tipo_evento, usuario_id, nombre_usuario, area_usuario, cambios, descripcion, creado_en
) VALUES (
  $1,$2,$3,$4,$5,$6,$7,$8,$9
)
`
	_, err = s.db.ExecContext(ctx, q,
		e.ID,
		e.EntityID,
		string(e.Kind),
		usuarioID,
		e.Actor.Nombre,
		e.Actor.Area,
		cambios,
		e.Descripcion,
		e.CreadoEn,
	)
	return err
}

func (s *PostgresStore) List(ctx context.Context, entityID string, q ListQuery) ([]StoredEntry, error) {
	query := `
SELECT seq, id, reclamo_id, tipo_evento, usuario_id, nombre_usuario, area_usuario, cambios, descripcion, creado_en
FROM eventos_auditoria
WHERE reclamo_id = $1
`
	args := []any{entityID}

	if q.HasAfter {
		// Keyset position on (creado_en, seq), exclusive.
		if q.Order == Ascending {
			query += " AND (creado_en, seq) > ($2, $3)"
		} else {
			query += " AND (creado_en, seq) < ($2, $3)"
		}
		args = append(args, q.After, q.AfterSeq)
	}

	if q.Order == Ascending {
		query += " ORDER BY creado_en ASC, seq ASC"
	} else {
		query += " ORDER BY creado_en DESC, seq DESC"
	}
	if q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredEntry
	for rows.Next() {
		var r StoredEntry
		if err := rows.Scan(
			&r.Seq,
			&r.ID,
			&r.EntityID,
			&r.TipoEvento,
			&r.UsuarioID,
			&r.NombreUsuario,
			&r.AreaUsuario,
			&r.Cambios,
			&r.Descripcion,
			&r.CreadoEn,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
