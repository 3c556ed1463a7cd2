package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"claims-platform/internal/audit"
)

func newTestService(repo *MemoryRepo) *Service {
	s := NewService(repo)
	s.clock = func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }
	n := 0
	s.newID = func() string { n++; return "cat-" + string(rune('0'+n)) }
	return s
}

func TestCreateEstadoTrimsAndStamps(t *testing.T) {
	repo := &MemoryRepo{}
	s := newTestService(repo)

	e, err := s.CreateEstado(context.Background(), CreateEstadoRequest{Nombre: "  Abierto ", Orden: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.Nombre != "Abierto" || !e.Activo || e.ID == "" {
		t.Fatalf("unexpected estado %+v", e)
	}
	if _, err := s.CreateEstado(context.Background(), CreateEstadoRequest{Nombre: "   "}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for blank nombre, got %v", err)
	}
}

func TestCreateSubEstadoRequiresExistingEstado(t *testing.T) {
	repo := &MemoryRepo{Estados: []Estado{{ID: "e1", Nombre: "Abierto"}}}
	s := newTestService(repo)
	ctx := context.Background()

	if _, err := s.CreateSubEstado(ctx, CreateSubEstadoRequest{EstadoID: "missing", Nombre: "X"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	se, err := s.CreateSubEstado(ctx, CreateSubEstadoRequest{EstadoID: "e1", Nombre: "Esperando repuesto"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if se.EstadoID != "e1" {
		t.Fatalf("unexpected sub-estado %+v", se)
	}
}

func TestSubEstadoBelongsTo(t *testing.T) {
	repo := &MemoryRepo{
		Estados:    []Estado{{ID: "e1"}, {ID: "e2"}},
		SubEstados: []SubEstado{{ID: "s1", EstadoID: "e1"}},
	}
	s := newTestService(repo)
	ctx := context.Background()

	ok, err := s.SubEstadoBelongsTo(ctx, "s1", "e1")
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}
	ok, err = s.SubEstadoBelongsTo(ctx, "s1", "e2")
	if err != nil || ok {
		t.Fatalf("expected mismatch, got ok=%v err=%v", ok, err)
	}
	ok, err = s.SubEstadoBelongsTo(ctx, "missing", "e1")
	if err != nil || ok {
		t.Fatalf("missing sub-estado must be false without error, got ok=%v err=%v", ok, err)
	}
}

func TestResolverResolvesAllCatalogs(t *testing.T) {
	area := "Soporte"
	repo := &MemoryRepo{
		Estados:    []Estado{{ID: "e1", Nombre: "Abierto"}},
		SubEstados: []SubEstado{{ID: "s1", EstadoID: "e1", Nombre: "Esperando repuesto"}},
		Usuarios:   []Usuario{{ID: "u1", Nombre: "Ana Pérez", Area: &area, Rol: "agente"}},
	}
	r := NewResolver(repo)
	ctx := context.Background()

	cases := []struct{ catalog, id, want string }{
		{"estados", "e1", "Abierto"},
		{"sub_estados", "s1", "Esperando repuesto"},
		{"usuarios", "u1", "Ana Pérez"},
	}
	for _, tc := range cases {
		got, err := r.Resolve(ctx, tc.catalog, tc.id)
		if err != nil {
			t.Fatalf("%s/%s: %v", tc.catalog, tc.id, err)
		}
		if got != tc.want {
			t.Fatalf("%s/%s: expected %q, got %q", tc.catalog, tc.id, tc.want, got)
		}
	}
}

func TestResolverMissingRowIsReferenceNotFound(t *testing.T) {
	r := NewResolver(&MemoryRepo{})
	if _, err := r.Resolve(context.Background(), "estados", "gone"); !errors.Is(err, audit.ErrReferenceNotFound) {
		t.Fatalf("expected audit.ErrReferenceNotFound, got %v", err)
	}
}

func TestResolverUnknownCatalog(t *testing.T) {
	r := NewResolver(&MemoryRepo{})
	if _, err := r.Resolve(context.Background(), "colores", "x"); err == nil {
		t.Fatalf("expected error for unknown catalog")
	}
}
