package audit

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestEntryJSONRoundTrip(t *testing.T) {
	area := "Soporte"
	e := Entry{
		ID:       "ev-1",
		EntityID: "rec-1",
		Kind:     EventUpdate,
		Actor:    Actor{ID: "u1", Nombre: "Ana Pérez", Area: &area},
		Changes: DeltaChanges([]FieldChange{{
			Campo:         "estado_id",
			ValorAnterior: strPtr("e1"),
			ValorNuevo:    strPtr("e2"),
			NombreNuevo:   strPtr("En proceso"),
		}}),
		Descripcion: "Estado cambiado a 'En proceso'",
		CreadoEn:    time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"reclamo_id"`, `"tipo_evento"`, `"usuario_id"`, `"nombre_usuario"`, `"area_usuario"`, `"cambios"`, `"valor_anterior"`, `"nombre_nuevo"`, `"creado_en"`} {
		if !strings.Contains(string(raw), key) {
			t.Fatalf("wire shape missing %s: %s", key, raw)
		}
	}

	var back Entry
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Kind != EventUpdate || back.EntityID != "rec-1" {
		t.Fatalf("round trip mismatch: %+v", back)
	}
	if back.Actor.ID != "u1" || back.Actor.Area == nil || *back.Actor.Area != "Soporte" {
		t.Fatalf("actor mismatch: %+v", back.Actor)
	}
	items := back.Changes.Items()
	if len(items) != 1 || items[0].Campo != "estado_id" {
		t.Fatalf("changes mismatch: %+v", items)
	}
	// nombre_anterior was never set and must stay nil, not "".
	if items[0].NombreAnterior != nil {
		t.Fatalf("expected nil nombre_anterior, got %q", *items[0].NombreAnterior)
	}
}

func TestDecodeChangesNull(t *testing.T) {
	c, err := decodeChanges([]byte("null"), false)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("expected empty changes, got %d", c.Len())
	}
}

func TestDecodeChangesSingleObject(t *testing.T) {
	raw := []byte(`{"campo":"estado_id","valor_anterior":"e1","valor_nuevo":"e2"}`)
	c, err := decodeChanges(raw, false)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	items := c.Items()
	if len(items) != 1 || items[0].Campo != "estado_id" {
		t.Fatalf("unexpected items %+v", items)
	}
	if items[0].NombreAnterior != nil || items[0].NombreNuevo != nil {
		t.Fatalf("labels absent in the row must decode to nil")
	}
}

func TestDecodeChangesLegacyMap(t *testing.T) {
	// Oldest persisted shape: a bare field->value map. Tracked fields come
	// out first in declared order, unknown keys follow alphabetically.
	raw := []byte(`{"zona":"norte","prioridad":"alta","estado_id":"e2","canal":3}`)
	c, err := decodeChanges(raw, false)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	items := c.Items()
	want := []string{"estado_id", "prioridad", "canal", "zona"}
	if len(items) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(items))
	}
	for i, it := range items {
		if it.Campo != want[i] {
			t.Fatalf("item %d: expected %q, got %q", i, want[i], it.Campo)
		}
		if it.ValorAnterior != nil {
			t.Fatalf("legacy map has no old side, got %v", it.ValorAnterior)
		}
	}
	if items[2].ValorNuevo == nil || *items[2].ValorNuevo != "3" {
		t.Fatalf("numeric value not stringified: %v", items[2].ValorNuevo)
	}
}

func TestDecodeChangesMalformed(t *testing.T) {
	for _, raw := range []string{`"just a string"`, `[{"valor_nuevo":"x"}]`, `42`} {
		if _, err := decodeChanges([]byte(raw), false); !errors.Is(err, ErrMalformedEntry) {
			t.Fatalf("%s: expected ErrMalformedEntry, got %v", raw, err)
		}
	}
}

func TestChangesMarshalEmptyIsArray(t *testing.T) {
	raw, err := SnapshotChanges(nil).MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != "[]" {
		t.Fatalf("expected empty array, got %s", raw)
	}
}
