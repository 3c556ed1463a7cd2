package audit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidRecord = errors.New("audit: invalid record request")

// RecordRequest is the input for one audit append.
type RecordRequest struct {
	EntityID string
	Kind     EventKind
	Actor    Actor
	Changes  Changes

	// Descripcion overrides the derived description when set.
	Descripcion string
}

// Recorder persists one immutable entry per logical update call.
//
// Policy: a single user action touching multiple fields yields ONE entry
// carrying the full ordered delta list, so it renders as one history item.
//
// Idempotency is intentionally NOT provided: callers must invoke Record at
// most once per logical update (see the claim-update lock in internal/claims).
// Duplicate calls produce duplicate history entries.
type Recorder struct {
	store Store
	clock func() time.Time
	newID func() string
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store, clock: time.Now, newID: uuid.NewString}
}

// Record validates the request, stamps identity and time, derives the
// description, and appends exactly one entry. The append is a single atomic
// write: a failure leaves no partial entry behind, and success means the
// entry is durable.
func (r *Recorder) Record(ctx context.Context, req RecordRequest) (Entry, error) {
	if r.store == nil {
		return Entry{}, errors.New("audit: store not configured")
	}
	if req.EntityID == "" {
		return Entry{}, fmt.Errorf("%w: entity id required", ErrInvalidRecord)
	}
	if req.Actor.ID == "" || req.Actor.Nombre == "" {
		return Entry{}, fmt.Errorf("%w: actor identity required", ErrInvalidRecord)
	}

	switch req.Kind {
	case EventCreation:
		if !req.Changes.IsSnapshot() {
			return Entry{}, fmt.Errorf("%w: creation requires a snapshot payload", ErrInvalidRecord)
		}
	case EventUpdate:
		if req.Changes.IsSnapshot() || req.Changes.Len() == 0 {
			return Entry{}, fmt.Errorf("%w: update requires a non-empty delta list", ErrInvalidRecord)
		}
	default:
		return Entry{}, fmt.Errorf("%w: unknown event kind %q", ErrInvalidRecord, req.Kind)
	}

	desc := req.Descripcion
	if desc == "" {
		desc = describe(req.Kind, req.Changes)
	}

	e := Entry{
		ID:          r.newID(),
		EntityID:    req.EntityID,
		Kind:        req.Kind,
		Actor:       req.Actor,
		Changes:     req.Changes,
		Descripcion: desc,
		CreadoEn:    r.clock().UTC(),
	}

	if err := r.store.Append(ctx, e); err != nil {
		return Entry{}, fmt.Errorf("audit: append failed: %w", err)
	}
	return e, nil
}

// describe renders the human-readable summary shown in the claim timeline.
func describe(kind EventKind, changes Changes) string {
	if kind == EventCreation {
		for _, fc := range changes.Items() {
			if fc.Campo == "estado_id" && displayable(fc.NombreNuevo) {
				return fmt.Sprintf("Reclamo creado en estado '%s'", *fc.NombreNuevo)
			}
		}
		return "Reclamo creado"
	}

	var parts []string
	for _, fc := range changes.Items() {
		switch fc.Campo {
		case "estado_id":
			parts = append(parts, fmt.Sprintf("Estado cambiado a '%s'", sideLabel(fc)))
		case "sub_estado_id":
			if fc.ValorNuevo == nil {
				parts = append(parts, "Sub-estado removido")
			} else {
				parts = append(parts, fmt.Sprintf("Sub-estado cambiado a '%s'", sideLabel(fc)))
			}
		case "prioridad":
			parts = append(parts, fmt.Sprintf("Prioridad cambiada a '%s'", sideLabel(fc)))
		case "asignado_a":
			if fc.ValorNuevo == nil {
				parts = append(parts, "Desasignado")
			} else {
				parts = append(parts, fmt.Sprintf("Asignado a %s", sideLabel(fc)))
			}
		default:
			parts = append(parts, fmt.Sprintf("Campo '%s' actualizado", fc.Campo))
		}
	}
	if len(parts) == 0 {
		return "Reclamo actualizado"
	}
	return strings.Join(parts, ", ")
}

// sideLabel prefers the resolved new label, falls back to the raw value.
func sideLabel(fc FieldChange) string {
	if displayable(fc.NombreNuevo) {
		return *fc.NombreNuevo
	}
	if fc.ValorNuevo != nil {
		return *fc.ValorNuevo
	}
	return "sin valor"
}

func displayable(label *string) bool {
	return label != nil && *label != "" && *label != LabelUnresolved
}
