package audit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestRecorder(store Store) *Recorder {
	r := NewRecorder(store)
	r.clock = func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }
	n := 0
	r.newID = func() string { n++; return "ev-" + string(rune('0'+n)) }
	return r
}

func testActor() Actor {
	area := "Soporte"
	return Actor{ID: "u1", Nombre: "Ana Pérez", Area: &area}
}

func TestRecordCreationWritesSnapshotEntry(t *testing.T) {
	store := NewMemoryStore()
	r := newTestRecorder(store)

	entry, err := r.Record(context.Background(), RecordRequest{
		EntityID: "rec-1",
		Kind:     EventCreation,
		Actor:    testActor(),
		Changes: SnapshotChanges([]FieldChange{
			{Campo: "estado_id", ValorNuevo: strPtr("e1"), NombreNuevo: strPtr("Abierto")},
			{Campo: "prioridad", ValorNuevo: strPtr("media"), NombreNuevo: strPtr("media")},
		}),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if entry.Kind != EventCreation || !entry.Changes.IsSnapshot() {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if entry.Descripcion != "Reclamo creado en estado 'Abierto'" {
		t.Fatalf("unexpected descripcion %q", entry.Descripcion)
	}
	if entry.CreadoEn.Location() != time.UTC {
		t.Fatalf("creado_en must be UTC")
	}

	rows := store.Rows()
	if len(rows) != 1 {
		t.Fatalf("expected 1 stored row, got %d", len(rows))
	}
	if rows[0].TipoEvento != "creacion" {
		t.Fatalf("unexpected tipo_evento %q", rows[0].TipoEvento)
	}
}

func TestRecordUpdateDerivesDescription(t *testing.T) {
	r := newTestRecorder(NewMemoryStore())

	entry, err := r.Record(context.Background(), RecordRequest{
		EntityID: "rec-1",
		Kind:     EventUpdate,
		Actor:    testActor(),
		Changes: DeltaChanges([]FieldChange{
			{Campo: "estado_id", ValorAnterior: strPtr("e1"), ValorNuevo: strPtr("e2"), NombreNuevo: strPtr("En proceso")},
			{Campo: "asignado_a", ValorAnterior: strPtr("u2")},
		}),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	want := "Estado cambiado a 'En proceso', Desasignado"
	if entry.Descripcion != want {
		t.Fatalf("expected %q, got %q", want, entry.Descripcion)
	}
}

func TestRecordValidation(t *testing.T) {
	r := newTestRecorder(NewMemoryStore())
	ctx := context.Background()

	cases := []struct {
		name string
		req  RecordRequest
	}{
		{"missing entity", RecordRequest{Kind: EventCreation, Actor: testActor(), Changes: SnapshotChanges(nil)}},
		{"missing actor", RecordRequest{EntityID: "rec-1", Kind: EventCreation, Changes: SnapshotChanges(nil)}},
		{"creation with deltas", RecordRequest{EntityID: "rec-1", Kind: EventCreation, Actor: testActor(), Changes: DeltaChanges([]FieldChange{{Campo: "prioridad"}})}},
		{"update with empty deltas", RecordRequest{EntityID: "rec-1", Kind: EventUpdate, Actor: testActor(), Changes: DeltaChanges(nil)}},
		{"update with snapshot", RecordRequest{EntityID: "rec-1", Kind: EventUpdate, Actor: testActor(), Changes: SnapshotChanges([]FieldChange{{Campo: "prioridad"}})}},
		{"unknown kind", RecordRequest{EntityID: "rec-1", Kind: "borrado", Actor: testActor(), Changes: DeltaChanges([]FieldChange{{Campo: "prioridad"}})}},
	}
	for _, tc := range cases {
		if _, err := r.Record(ctx, tc.req); !errors.Is(err, ErrInvalidRecord) {
			t.Fatalf("%s: expected ErrInvalidRecord, got %v", tc.name, err)
		}
	}
}

func TestRecordTwiceWritesTwoEntries(t *testing.T) {
	// No idempotency on purpose: callers own call-once semantics.
	store := NewMemoryStore()
	r := newTestRecorder(store)

	req := RecordRequest{
		EntityID: "rec-1",
		Kind:     EventUpdate,
		Actor:    testActor(),
		Changes:  DeltaChanges([]FieldChange{{Campo: "prioridad", ValorAnterior: strPtr("baja"), ValorNuevo: strPtr("alta")}}),
	}
	if _, err := r.Record(context.Background(), req); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if _, err := r.Record(context.Background(), req); err != nil {
		t.Fatalf("second record: %v", err)
	}
	if got := len(store.Rows()); got != 2 {
		t.Fatalf("expected 2 entries, got %d", got)
	}
}

type failingStore struct{}

func (failingStore) Append(ctx context.Context, e Entry) error {
	return errors.New("disk full")
}

func (failingStore) List(ctx context.Context, entityID string, q ListQuery) ([]StoredEntry, error) {
	return nil, nil
}

func TestRecordAppendFailurePropagates(t *testing.T) {
	r := newTestRecorder(failingStore{})

	_, err := r.Record(context.Background(), RecordRequest{
		EntityID: "rec-1",
		Kind:     EventUpdate,
		Actor:    testActor(),
		Changes:  DeltaChanges([]FieldChange{{Campo: "prioridad", ValorNuevo: strPtr("alta")}}),
	})
	if err == nil {
		t.Fatalf("expected append failure to propagate")
	}
}
