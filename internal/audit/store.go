package audit

import (
	"context"
	"time"
)

// Order controls history direction. Descending (newest first) is the default
// and matches what the claim timeline UI renders.
type Order int

const (
	Descending Order = iota
	Ascending
)

// StoredEntry is a persisted row as the store returns it, before shape
// validation. Cambios is kept raw because historical rows may predate the
// canonical shape; decoding and the legacy shim belong to the Reader.
type StoredEntry struct {
	Seq           int64
	ID            string
	EntityID      string
	TipoEvento    string
	UsuarioID     *string
	NombreUsuario string
	AreaUsuario   *string
	Cambios       []byte
	Descripcion   string
	CreadoEn      time.Time
}

// ListQuery is the store-level page request. The (After) position is an
// exclusive keyset cursor on (creado_en, seq); seq breaks creado_en ties
// deterministically.
type ListQuery struct {
	Order    Order
	Limit    int
	After    time.Time
	AfterSeq int64
	HasAfter bool
}

// Store is the persistence contract for audit entries.
//
// It MUST be append-only. There are no update/delete methods; entries are
// the compliance record and outlive the entity they describe.
// Append must be durable before it returns success.
type Store interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context, entityID string, q ListQuery) ([]StoredEntry, error)
}
