package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func seedEntries(t *testing.T, store *MemoryStore, entityID string, n int) {
	t.Helper()
	r := NewRecorder(store)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	i := 0
	r.clock = func() time.Time { i++; return base.Add(time.Duration(i) * time.Minute) }

	for k := 0; k < n; k++ {
		kind := EventUpdate
		changes := DeltaChanges([]FieldChange{{Campo: "prioridad", ValorAnterior: strPtr("baja"), ValorNuevo: strPtr("alta")}})
		if k == 0 {
			kind = EventCreation
			changes = SnapshotChanges([]FieldChange{{Campo: "estado_id", ValorNuevo: strPtr("e1"), NombreNuevo: strPtr("Abierto")}})
		}
		if _, err := r.Record(context.Background(), RecordRequest{
			EntityID: entityID,
			Kind:     kind,
			Actor:    testActor(),
			Changes:  changes,
		}); err != nil {
			t.Fatalf("seed entry %d: %v", k, err)
		}
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHistoryDefaultsToNewestFirst(t *testing.T) {
	store := NewMemoryStore()
	seedEntries(t, store, "rec-1", 3)
	reader := NewReader(store, quietLogger())

	page, err := reader.History(context.Background(), "rec-1", HistoryQuery{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(page.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(page.Entries))
	}
	for i := 1; i < len(page.Entries); i++ {
		if page.Entries[i].CreadoEn.After(page.Entries[i-1].CreadoEn) {
			t.Fatalf("entries not in descending creado_en order")
		}
	}
	// Oldest entry is the creation.
	if page.Entries[2].Kind != EventCreation {
		t.Fatalf("expected creation last, got %q", page.Entries[2].Kind)
	}
	if page.NextCursor != "" {
		t.Fatalf("expected no cursor on an exhausted page")
	}
}

func TestHistoryAscendingOrder(t *testing.T) {
	store := NewMemoryStore()
	seedEntries(t, store, "rec-1", 3)
	reader := NewReader(store, quietLogger())

	page, err := reader.History(context.Background(), "rec-1", HistoryQuery{Order: Ascending})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if page.Entries[0].Kind != EventCreation {
		t.Fatalf("expected creation first in ascending order")
	}
}

func TestHistoryCursorResumesWithoutOverlap(t *testing.T) {
	store := NewMemoryStore()
	seedEntries(t, store, "rec-1", 5)
	reader := NewReader(store, quietLogger())
	ctx := context.Background()

	first, err := reader.History(ctx, "rec-1", HistoryQuery{Limit: 2})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Entries) != 2 || first.NextCursor == "" {
		t.Fatalf("unexpected first page: %d entries, cursor %q", len(first.Entries), first.NextCursor)
	}

	second, err := reader.History(ctx, "rec-1", HistoryQuery{Limit: 2, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}

	seen := map[string]bool{}
	for _, e := range append(first.Entries, second.Entries...) {
		if seen[e.ID] {
			t.Fatalf("entry %s returned on both pages", e.ID)
		}
		seen[e.ID] = true
	}
	if len(seen) != 4 {
		t.Fatalf("expected 4 distinct entries across pages, got %d", len(seen))
	}
}

func TestHistoryTiedTimestampsBreakBySeq(t *testing.T) {
	store := NewMemoryStore()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, id := range []string{"ev-a", "ev-b", "ev-c"} {
		store.Seed(StoredEntry{
			ID:            id,
			EntityID:      "rec-1",
			TipoEvento:    "actualizacion",
			NombreUsuario: "Ana Pérez",
			Cambios:       []byte(`[{"campo":"prioridad","valor_nuevo":"alta"}]`),
			CreadoEn:      at,
		})
	}
	reader := NewReader(store, quietLogger())
	ctx := context.Background()

	first, err := reader.History(ctx, "rec-1", HistoryQuery{Order: Ascending, Limit: 2})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	second, err := reader.History(ctx, "rec-1", HistoryQuery{Order: Ascending, Limit: 2, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	got := []string{}
	for _, e := range append(first.Entries, second.Entries...) {
		got = append(got, e.ID)
	}
	want := []string{"ev-a", "ev-b", "ev-c"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestHistoryServesLegacyRowsAsIs(t *testing.T) {
	store := NewMemoryStore()
	store.Seed(StoredEntry{
		ID:            "ev-legacy",
		EntityID:      "rec-1",
		TipoEvento:    "actualizacion",
		NombreUsuario: "Luis Díaz",
		Cambios:       []byte(`{"estado_id":"e2","prioridad":"alta"}`),
		CreadoEn:      time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC),
	})
	reader := NewReader(store, quietLogger())

	page, err := reader.History(context.Background(), "rec-1", HistoryQuery{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(page.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(page.Entries))
	}
	items := page.Entries[0].Changes.Items()
	if len(items) != 2 || items[0].Campo != "estado_id" {
		t.Fatalf("unexpected legacy decode %+v", items)
	}
	// Labels were never stored; they must come back nil, not patched up.
	if items[0].NombreNuevo != nil {
		t.Fatalf("legacy rows must keep nil labels")
	}
}

func TestHistorySkipsMalformedRows(t *testing.T) {
	store := NewMemoryStore()
	seedEntries(t, store, "rec-1", 1)
	store.Seed(StoredEntry{
		ID:            "ev-bad",
		EntityID:      "rec-1",
		TipoEvento:    "actualizacion",
		NombreUsuario: "Ana Pérez",
		Cambios:       []byte(`"not a change list"`),
		CreadoEn:      time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	})

	reader := NewReader(store, quietLogger())
	page, err := reader.History(context.Background(), "rec-1", HistoryQuery{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(page.Entries) != 1 {
		t.Fatalf("expected the malformed row to be skipped, got %d entries", len(page.Entries))
	}
	if page.Entries[0].ID == "ev-bad" {
		t.Fatalf("malformed row was served")
	}
}

func TestHistoryInvalidCursor(t *testing.T) {
	reader := NewReader(NewMemoryStore(), quietLogger())
	if _, err := reader.History(context.Background(), "rec-1", HistoryQuery{Cursor: "!!not-base64!!"}); !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("expected ErrInvalidCursor, got %v", err)
	}
}

func TestHistoryLimitClamped(t *testing.T) {
	store := NewMemoryStore()
	seedEntries(t, store, "rec-1", 3)
	reader := NewReader(store, quietLogger())

	page, err := reader.History(context.Background(), "rec-1", HistoryQuery{Limit: 10000})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(page.Entries) != 3 {
		t.Fatalf("expected all 3 entries, got %d", len(page.Entries))
	}
}
