package reporting

import (
	"context"
	"sync"
	"time"

	"claims-platform/internal/claims"
)

// MemoryRepo is a simple in-memory reporting repository for tests and early
// development.
type MemoryRepo struct {
	mu sync.Mutex

	Claims []claims.Claim

	// Events are (tipo_evento, creado_en) pairs mimicking audit rows.
	Events []MemoryEvent
}

type MemoryEvent struct {
	TipoEvento string
	CreadoEn   time.Time
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) ListClaims(ctx context.Context) ([]claims.Claim, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]claims.Claim, len(r.Claims))
	copy(out, r.Claims)
	return out, nil
}

func (r *MemoryRepo) CountAuditEvents(ctx context.Context, from, to time.Time) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int{}
	for _, e := range r.Events {
		if e.CreadoEn.Before(from) || !e.CreadoEn.Before(to) {
			continue
		}
		out[e.TipoEvento]++
	}
	return out, nil
}
