package audit

import (
	"context"
	"errors"
	"fmt"
)

// ErrReferenceNotFound is the typed "identifier no longer exists" result a
// ReferenceResolver must return (possibly wrapped) when a catalog row is gone.
// Any other resolver error is treated as a transient outage and propagated.
var ErrReferenceNotFound = errors.New("audit: reference not found")

// LabelUnresolved is the distinguished marker recorded when a reference could
// not be resolved (catalog row deleted after the value was set).
//
// It is never the empty string and never the raw identifier, so consumers can
// detect the case and render an explicit fallback.
const LabelUnresolved = "[referencia eliminada]"

// ReferenceResolver resolves a catalog identifier to its current human-readable
// label. Implementations must be safe for concurrent use and must reflect the
// catalog state at call time; the enricher assumes no caching contract.
type ReferenceResolver interface {
	Resolve(ctx context.Context, catalog, id string) (string, error)
}

// Enricher attaches point-in-time labels to field deltas at write time.
//
// Labels are resolved once, when the change is recorded, and frozen into the
// audit entry. History stays stable even if catalog rows are later renamed or
// deleted; the raw identifier is always retained alongside the label.
type Enricher struct {
	resolver ReferenceResolver
}

func NewEnricher(resolver ReferenceResolver) *Enricher {
	return &Enricher{resolver: resolver}
}

// Enrich populates old/new labels on each delta.
//
// - Scalar fields: the label is the raw value itself, no lookup.
// - Reference fields: one resolver call per non-absent side. A missing catalog
//   row yields LabelUnresolved. A transient resolver failure aborts the whole
//   call so a permanent record is never written with ambiguous labels.
//
// The input slice is not mutated.
func (e *Enricher) Enrich(ctx context.Context, changes []FieldChange) ([]FieldChange, error) {
	if e.resolver == nil {
		return nil, errors.New("audit: resolver not configured")
	}

	out := make([]FieldChange, len(changes))
	for i, fc := range changes {
		enriched := fc

		field, ok := TrackedFieldByName(fc.Campo)
		if !ok || field.Kind == FieldScalar {
			// Untracked fields are treated as scalars: value is display-ready.
			enriched.NombreAnterior = copyStr(fc.ValorAnterior)
			enriched.NombreNuevo = copyStr(fc.ValorNuevo)
			out[i] = enriched
			continue
		}

		oldLabel, err := e.resolveSide(ctx, field.Catalog, fc.ValorAnterior)
		if err != nil {
			return nil, err
		}
		newLabel, err := e.resolveSide(ctx, field.Catalog, fc.ValorNuevo)
		if err != nil {
			return nil, err
		}
		enriched.NombreAnterior = oldLabel
		enriched.NombreNuevo = newLabel
		out[i] = enriched
	}
	return out, nil
}

func (e *Enricher) resolveSide(ctx context.Context, catalog string, id *string) (*string, error) {
	if id == nil {
		return nil, nil
	}
	label, err := e.resolver.Resolve(ctx, catalog, *id)
	if err != nil {
		if errors.Is(err, ErrReferenceNotFound) {
			l := LabelUnresolved
			return &l, nil
		}
		return nil, fmt.Errorf("audit: resolving %s %q: %w", catalog, *id, err)
	}
	return &label, nil
}

func copyStr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
