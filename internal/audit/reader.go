package audit

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidCursor = errors.New("audit: invalid cursor")

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
)

// HistoryQuery is the caller-facing page request.
type HistoryQuery struct {
	Order  Order
	Limit  int
	Cursor string
}

// HistoryPage is one page of an entity's history. NextCursor is empty when
// the sequence is exhausted; otherwise passing it back resumes the read.
type HistoryPage struct {
	Entries    []Entry
	NextCursor string
}

// Reader serves an entity's history, ordered by creado_en with the insertion
// sequence as a deterministic tie-break.
//
// It is strictly read-only and never "fixes up" historical rows:
// - entries written before label enrichment are returned with nil labels
//   (rendering fallback is the consumer's contract, not silent data loss);
// - rows failing structural expectations are skipped with a warning, never
//   aborting the whole read.
type Reader struct {
	store Store
	log   *slog.Logger
}

func NewReader(store Store, log *slog.Logger) *Reader {
	if log == nil {
		log = slog.Default()
	}
	return &Reader{store: store, log: log}
}

func (r *Reader) History(ctx context.Context, entityID string, q HistoryQuery) (HistoryPage, error) {
	if r.store == nil {
		return HistoryPage{}, errors.New("audit: store not configured")
	}
	if entityID == "" {
		return HistoryPage{}, errors.New("audit: entity id required")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	lq := ListQuery{Order: q.Order, Limit: limit}
	if q.Cursor != "" {
		at, seq, err := decodeCursor(q.Cursor)
		if err != nil {
			return HistoryPage{}, err
		}
		lq.After = at
		lq.AfterSeq = seq
		lq.HasAfter = true
	}

	rows, err := r.store.List(ctx, entityID, lq)
	if err != nil {
		return HistoryPage{}, fmt.Errorf("audit: history read failed: %w", err)
	}

	page := HistoryPage{}
	for _, row := range rows {
		e, err := decodeStored(row)
		if err != nil {
			r.log.Warn("skipping malformed audit entry",
				"entry_id", row.ID,
				"entity_id", row.EntityID,
				"err", err,
			)
			continue
		}
		page.Entries = append(page.Entries, e)
	}

	if len(rows) == limit {
		last := rows[len(rows)-1]
		page.NextCursor = encodeCursor(last.CreadoEn, last.Seq)
	}
	return page, nil
}

// decodeStored validates a row's structure and decodes cambios through the
// legacy shim. Label fields absent in old rows come back nil.
func decodeStored(row StoredEntry) (Entry, error) {
	if row.TipoEvento == "" {
		return Entry{}, fmt.Errorf("%w: missing tipo_evento", ErrMalformedEntry)
	}
	if row.NombreUsuario == "" {
		return Entry{}, fmt.Errorf("%w: missing nombre_usuario", ErrMalformedEntry)
	}
	if row.CreadoEn.IsZero() {
		return Entry{}, fmt.Errorf("%w: missing creado_en", ErrMalformedEntry)
	}

	kind := EventKind(row.TipoEvento)
	changes, err := decodeChanges(row.Cambios, kind == EventCreation)
	if err != nil {
		return Entry{}, err
	}

	var actorID string
	if row.UsuarioID != nil {
		actorID = *row.UsuarioID
	}
	return Entry{
		ID:          row.ID,
		EntityID:    row.EntityID,
		Kind:        kind,
		Actor:       Actor{ID: actorID, Nombre: row.NombreUsuario, Area: row.AreaUsuario},
		Changes:     changes,
		Descripcion: row.Descripcion,
		CreadoEn:    row.CreadoEn,
	}, nil
}

// Cursors are opaque to callers: base64("unixnano:seq").
func encodeCursor(at time.Time, seq int64) string {
	raw := strconv.FormatInt(at.UnixNano(), 10) + ":" + strconv.FormatInt(seq, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (time.Time, int64, error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, 0, ErrInvalidCursor
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return time.Time{}, 0, ErrInvalidCursor
	}
	nanos, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, 0, ErrInvalidCursor
	}
	seq, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return time.Time{}, 0, ErrInvalidCursor
	}
	return time.Unix(0, nanos).UTC(), seq, nil
}
