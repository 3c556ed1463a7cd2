package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is a simple in-memory repository useful for tests and early
// development.
//
// NOTE: This is not intended for production; replace with Postgres implementation.
type MemoryRepo struct {
	mu         sync.RWMutex
	Estados    []Estado
	SubEstados []SubEstado
	Usuarios   []Usuario
}

func (r *MemoryRepo) ListEstados(ctx context.Context) ([]Estado, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Estado, len(r.Estados))
	copy(out, r.Estados)
	sort.Slice(out, func(i, j int) bool { return out[i].Orden < out[j].Orden })
	return out, nil
}

func (r *MemoryRepo) GetEstado(ctx context.Context, id string) (Estado, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.Estados {
		if e.ID == id {
			return e, nil
		}
	}
	return Estado{}, ErrNotFound
}

func (r *MemoryRepo) CreateEstado(ctx context.Context, e Estado) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Estados = append(r.Estados, e)
	return nil
}

func (r *MemoryRepo) ListSubEstados(ctx context.Context, estadoID string) ([]SubEstado, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []SubEstado
	for _, se := range r.SubEstados {
		if se.EstadoID == estadoID {
			out = append(out, se)
		}
	}
	return out, nil
}

func (r *MemoryRepo) GetSubEstado(ctx context.Context, id string) (SubEstado, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, se := range r.SubEstados {
		if se.ID == id {
			return se, nil
		}
	}
	return SubEstado{}, ErrNotFound
}

func (r *MemoryRepo) CreateSubEstado(ctx context.Context, s SubEstado) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.SubEstados = append(r.SubEstados, s)
	return nil
}

func (r *MemoryRepo) GetUsuario(ctx context.Context, id string) (Usuario, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.Usuarios {
		if u.ID == id {
			return u, nil
		}
	}
	return Usuario{}, ErrNotFound
}
