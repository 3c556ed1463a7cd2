package audit

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a simple in-memory append-only store useful for tests.
// It is not intended for production use.
type MemoryStore struct {
	mu   sync.Mutex
	seq  int64
	rows []StoredEntry
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Append(ctx context.Context, e Entry) error {
	cambios, err := e.Changes.MarshalJSON()
	if err != nil {
		return err
	}
	var usuarioID *string
	if e.Actor.ID != "" {
		id := e.Actor.ID
		usuarioID = &id
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.rows = append(s.rows, StoredEntry{
		Seq:           s.seq,
		ID:            e.ID,
		EntityID:      e.EntityID,
		TipoEvento:    string(e.Kind),
		UsuarioID:     usuarioID,
		NombreUsuario: e.Actor.Nombre,
		AreaUsuario:   e.Actor.Area,
		Cambios:       cambios,
		Descripcion:   e.Descripcion,
		CreadoEn:      e.CreadoEn,
	})
	return nil
}

// Seed appends a raw stored row, bypassing entry encoding. Tests use it to
// reproduce legacy and malformed persisted shapes.
func (s *MemoryStore) Seed(row StoredEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	row.Seq = s.seq
	s.rows = append(s.rows, row)
}

func (s *MemoryStore) List(ctx context.Context, entityID string, q ListQuery) ([]StoredEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []StoredEntry
	for _, r := range s.rows {
		if r.EntityID == entityID {
			out = append(out, r)
		}
	}

	asc := q.Order == Ascending
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreadoEn.Equal(b.CreadoEn) {
			if asc {
				return a.CreadoEn.Before(b.CreadoEn)
			}
			return a.CreadoEn.After(b.CreadoEn)
		}
		if asc {
			return a.Seq < b.Seq
		}
		return a.Seq > b.Seq
	})

	if q.HasAfter {
		idx := -1
		for i, r := range out {
			var past bool
			if asc {
				past = r.CreadoEn.After(q.After) || (r.CreadoEn.Equal(q.After) && r.Seq > q.AfterSeq)
			} else {
				past = r.CreadoEn.Before(q.After) || (r.CreadoEn.Equal(q.After) && r.Seq < q.AfterSeq)
			}
			if past {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, nil
		}
		out = out[idx:]
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}

	// Copy to keep internal rows immutable to callers.
	res := make([]StoredEntry, len(out))
	copy(res, out)
	return res, nil
}

// Rows returns a copy of everything appended, in insertion order.
func (s *MemoryStore) Rows() []StoredEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]StoredEntry, len(s.rows))
	copy(out, s.rows)
	return out
}
