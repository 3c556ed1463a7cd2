package catalog

import (
	"context"
	"errors"
	"fmt"

	"claims-platform/internal/audit"
)

// Resolver adapts the catalog repository to the audit enricher. Each call
// reflects the catalog state at resolution time; labels are frozen into audit
// entries by the caller, never cached here.
type Resolver struct {
	repo Repository
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

func (r *Resolver) Resolve(ctx context.Context, catalogName, id string) (string, error) {
	var (
		label string
		err   error
	)
	switch catalogName {
	case "estados":
		var e Estado
		e, err = r.repo.GetEstado(ctx, id)
		label = e.Nombre
	case "sub_estados":
		var se SubEstado
		se, err = r.repo.GetSubEstado(ctx, id)
		label = se.Nombre
	case "usuarios":
		var u Usuario
		u, err = r.repo.GetUsuario(ctx, id)
		label = u.Nombre
	default:
		return "", fmt.Errorf("catalog: unknown catalog %q", catalogName)
	}

	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("%s %s: %w", catalogName, id, audit.ErrReferenceNotFound)
		}
		return "", err
	}
	return label, nil
}
