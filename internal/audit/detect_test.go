package audit

import "testing"

func strPtr(s string) *string { return &s }

func TestDetectNoChanges(t *testing.T) {
	snap := Snapshot{"estado_id": "e1", "prioridad": "alta"}
	if got := Detect(snap, snap); len(got) != 0 {
		t.Fatalf("expected no deltas, got %d", len(got))
	}
}

func TestDetectOrderFollowsTrackedDeclaration(t *testing.T) {
	before := Snapshot{
		"asignado_a":    "u1",
		"prioridad":     "baja",
		"sub_estado_id": "s1",
		"estado_id":     "e1",
	}
	after := Snapshot{
		"asignado_a":    "u2",
		"prioridad":     "alta",
		"sub_estado_id": "s2",
		"estado_id":     "e2",
	}

	got := Detect(before, after)
	want := []string{"estado_id", "sub_estado_id", "prioridad", "asignado_a"}
	if len(got) != len(want) {
		t.Fatalf("expected %d deltas, got %d", len(want), len(got))
	}
	for i, fc := range got {
		if fc.Campo != want[i] {
			t.Fatalf("delta %d: expected campo %q, got %q", i, want[i], fc.Campo)
		}
	}
}

func TestDetectValueSetAndCleared(t *testing.T) {
	before := Snapshot{"estado_id": "e1"}
	after := Snapshot{"estado_id": "e1", "sub_estado_id": "s1"}

	got := Detect(before, after)
	if len(got) != 1 {
		t.Fatalf("expected 1 delta, got %d", len(got))
	}
	if got[0].Campo != "sub_estado_id" {
		t.Fatalf("unexpected campo %q", got[0].Campo)
	}
	if got[0].ValorAnterior != nil {
		t.Fatalf("expected nil valor_anterior for newly set field")
	}
	if got[0].ValorNuevo == nil || *got[0].ValorNuevo != "s1" {
		t.Fatalf("unexpected valor_nuevo %v", got[0].ValorNuevo)
	}

	// Clearing runs the other way.
	got = Detect(after, before)
	if len(got) != 1 {
		t.Fatalf("expected 1 delta, got %d", len(got))
	}
	if got[0].ValorAnterior == nil || *got[0].ValorAnterior != "s1" {
		t.Fatalf("unexpected valor_anterior %v", got[0].ValorAnterior)
	}
	if got[0].ValorNuevo != nil {
		t.Fatalf("expected nil valor_nuevo for cleared field")
	}
}

func TestDetectSkipsFieldAbsentOnBothSides(t *testing.T) {
	before := Snapshot{"estado_id": "e1"}
	after := Snapshot{"estado_id": "e2"}

	got := Detect(before, after)
	if len(got) != 1 || got[0].Campo != "estado_id" {
		t.Fatalf("expected only estado_id delta, got %+v", got)
	}
}

func TestDetectIgnoresUntrackedKeys(t *testing.T) {
	before := Snapshot{"descripcion": "a"}
	after := Snapshot{"descripcion": "b"}

	if got := Detect(before, after); len(got) != 0 {
		t.Fatalf("untracked keys must not produce deltas, got %+v", got)
	}
}
