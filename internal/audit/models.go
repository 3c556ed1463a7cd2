package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// EventKind is the business category of an audit entry.
type EventKind string

const (
	EventCreation EventKind = "creacion"
	EventUpdate   EventKind = "actualizacion"
)

// Actor is the already-authenticated identity stamped into an entry.
// The engine never authenticates; it only records what it is given.
type Actor struct {
	ID     string
	Nombre string
	Area   *string
}

// FieldChange is one field-level delta.
//
// Invariants:
// - ValorAnterior != ValorNuevo (no-op changes are filtered by Detect).
// - Labels are optional even for reference fields: nil means the entry predates
//   label enrichment (legacy). A failed resolution is LabelUnresolved, never nil
//   and never the empty string.
type FieldChange struct {
	Campo          string  `json:"campo"`
	ValorAnterior  *string `json:"valor_anterior"`
	ValorNuevo     *string `json:"valor_nuevo"`
	NombreAnterior *string `json:"nombre_anterior"`
	NombreNuevo    *string `json:"nombre_nuevo"`
}

// Changes is the audit payload: either the full initial snapshot of tracked
// fields (creation entries) or a non-empty ordered list of deltas (updates).
// The two shapes share the FieldChange item; a snapshot item has no old side.
type Changes struct {
	snapshot bool
	items    []FieldChange
}

// SnapshotChanges builds the creation-time payload: every tracked field with
// its initial value/label and no old side.
func SnapshotChanges(items []FieldChange) Changes {
	return Changes{snapshot: true, items: items}
}

// DeltaChanges builds the update payload from an ordered, non-empty delta list.
func DeltaChanges(items []FieldChange) Changes {
	return Changes{items: items}
}

func (c Changes) IsSnapshot() bool     { return c.snapshot }
func (c Changes) Items() []FieldChange { return c.items }
func (c Changes) Len() int             { return len(c.items) }

// Entry is one immutable audit record. It is created exactly once by the
// Recorder and never updated or deleted; entries outlive the claim they
// describe (no cascade on claim deletion).
type Entry struct {
	ID          string
	EntityID    string
	Kind        EventKind
	Actor       Actor
	Changes     Changes
	Descripcion string
	CreadoEn    time.Time
}

// ErrMalformedEntry marks a stored row that fails structural expectations.
// The Reader skips such rows with a warning instead of aborting the read.
var ErrMalformedEntry = errors.New("audit: malformed entry")

// wireEntry is the fixed serialized shape. Field names are part of the
// external contract and must not change.
type wireEntry struct {
	ID            string          `json:"id"`
	ReclamoID     string          `json:"reclamo_id"`
	TipoEvento    string          `json:"tipo_evento"`
	UsuarioID     *string         `json:"usuario_id"`
	NombreUsuario string          `json:"nombre_usuario"`
	AreaUsuario   *string         `json:"area_usuario"`
	Cambios       json.RawMessage `json:"cambios"`
	Descripcion   string          `json:"descripcion"`
	CreadoEn      time.Time       `json:"creado_en"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	cambios, err := e.Changes.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var usuarioID *string
	if e.Actor.ID != "" {
		usuarioID = &e.Actor.ID
	}
	return json.Marshal(wireEntry{
		ID:            e.ID,
		ReclamoID:     e.EntityID,
		TipoEvento:    string(e.Kind),
		UsuarioID:     usuarioID,
		NombreUsuario: e.Actor.Nombre,
		AreaUsuario:   e.Actor.Area,
		Cambios:       cambios,
		Descripcion:   e.Descripcion,
		CreadoEn:      e.CreadoEn,
	})
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var w wireEntry
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	changes, err := decodeChanges(w.Cambios, EventKind(w.TipoEvento) == EventCreation)
	if err != nil {
		return err
	}
	var actorID string
	if w.UsuarioID != nil {
		actorID = *w.UsuarioID
	}
	*e = Entry{
		ID:          w.ID,
		EntityID:    w.ReclamoID,
		Kind:        EventKind(w.TipoEvento),
		Actor:       Actor{ID: actorID, Nombre: w.NombreUsuario, Area: w.AreaUsuario},
		Changes:     changes,
		Descripcion: w.Descripcion,
		CreadoEn:    w.CreadoEn,
	}
	return nil
}

// MarshalJSON writes the canonical shape: a JSON array of change objects.
// Whether the array is a snapshot or a delta list is carried by tipo_evento.
func (c Changes) MarshalJSON() ([]byte, error) {
	if c.items == nil {
		return json.Marshal([]FieldChange{})
	}
	return json.Marshal(c.items)
}

func (c *Changes) UnmarshalJSON(data []byte) error {
	decoded, err := decodeChanges(data, false)
	if err != nil {
		return err
	}
	*c = decoded
	return nil
}

// decodeChanges accepts every historical cambios shape:
//   - null / absent            -> empty
//   - array of change objects  -> canonical
//   - single change object     -> one-item list (early single-field entries)
//   - plain field->value map   -> values become valor_nuevo, labels stay nil
//
// Missing nombre_anterior/nombre_nuevo keys decode to nil, never "": entries
// predating label enrichment are served as-is, rendering fallback is the
// consumer's job. Anything else is ErrMalformedEntry.
func decodeChanges(data []byte, snapshot bool) (Changes, error) {
	trimmed := trimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return Changes{snapshot: snapshot}, nil
	}

	switch trimmed[0] {
	case '[':
		var items []FieldChange
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Changes{}, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
		}
		for _, it := range items {
			if it.Campo == "" {
				return Changes{}, fmt.Errorf("%w: change without campo", ErrMalformedEntry)
			}
		}
		return Changes{snapshot: snapshot, items: items}, nil
	case '{':
		var raw map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return Changes{}, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
		}
		if _, ok := raw["campo"]; ok {
			var item FieldChange
			if err := json.Unmarshal(trimmed, &item); err != nil {
				return Changes{}, fmt.Errorf("%w: %v", ErrMalformedEntry, err)
			}
			if item.Campo == "" {
				return Changes{}, fmt.Errorf("%w: change without campo", ErrMalformedEntry)
			}
			return Changes{snapshot: snapshot, items: []FieldChange{item}}, nil
		}
		return legacyMapChanges(raw, snapshot)
	default:
		return Changes{}, fmt.Errorf("%w: cambios is neither object nor array", ErrMalformedEntry)
	}
}

// legacyMapChanges converts the oldest persisted shape, a bare field->value
// map, into deltas with only the new side populated. Tracked fields come
// first in declared order; unknown keys follow alphabetically.
func legacyMapChanges(raw map[string]json.RawMessage, snapshot bool) (Changes, error) {
	var items []FieldChange

	appendField := func(name string) error {
		v, ok := raw[name]
		if !ok {
			return nil
		}
		fc := FieldChange{Campo: name}
		s, err := stringifyJSON(v)
		if err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrMalformedEntry, name, err)
		}
		fc.ValorNuevo = s
		items = append(items, fc)
		return nil
	}

	seen := make(map[string]bool, len(raw))
	for _, f := range ClaimFields {
		if err := appendField(f.Name); err != nil {
			return Changes{}, err
		}
		seen[f.Name] = true
	}
	var rest []string
	for k := range raw {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		if err := appendField(k); err != nil {
			return Changes{}, err
		}
	}
	return Changes{snapshot: snapshot, items: items}, nil
}

func stringifyJSON(raw json.RawMessage) (*string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return &t, nil
	case float64, bool:
		s := fmt.Sprint(t)
		return &s, nil
	default:
		return nil, errors.New("unsupported value shape")
	}
}

func trimSpace(b []byte) []byte {
	start := 0
	for start < len(b) && isJSONSpace(b[start]) {
		start++
	}
	end := len(b)
	for end > start && isJSONSpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isJSONSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
