package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("catalog: not found")
	ErrInvalidRequest = errors.New("catalog: invalid request")
)

// Repository abstracts catalog persistence.
type Repository interface {
	ListEstados(ctx context.Context) ([]Estado, error)
	GetEstado(ctx context.Context, id string) (Estado, error)
	CreateEstado(ctx context.Context, e Estado) error

	ListSubEstados(ctx context.Context, estadoID string) ([]SubEstado, error)
	GetSubEstado(ctx context.Context, id string) (SubEstado, error)
	CreateSubEstado(ctx context.Context, s SubEstado) error

	GetUsuario(ctx context.Context, id string) (Usuario, error)
}

// Service manages the estado/sub-estado catalogs.
type Service struct {
	repo  Repository
	clock func() time.Time
	newID func() string
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now, newID: uuid.NewString}
}

func (s *Service) ListEstados(ctx context.Context) ([]Estado, error) {
	return s.repo.ListEstados(ctx)
}

func (s *Service) ListSubEstados(ctx context.Context, estadoID string) ([]SubEstado, error) {
	if estadoID == "" {
		return nil, fmt.Errorf("%w: estado id required", ErrInvalidRequest)
	}
	if _, err := s.repo.GetEstado(ctx, estadoID); err != nil {
		return nil, err
	}
	return s.repo.ListSubEstados(ctx, estadoID)
}

type CreateEstadoRequest struct {
	Nombre string `json:"nombre"`
	Orden  int    `json:"orden"`
}

func (s *Service) CreateEstado(ctx context.Context, req CreateEstadoRequest) (Estado, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		return Estado{}, fmt.Errorf("%w: nombre required", ErrInvalidRequest)
	}
	e := Estado{
		ID:       s.newID(),
		Nombre:   nombre,
		Orden:    req.Orden,
		Activo:   true,
		CreadoEn: s.clock().UTC(),
	}
	if err := s.repo.CreateEstado(ctx, e); err != nil {
		return Estado{}, err
	}
	return e, nil
}

type CreateSubEstadoRequest struct {
	EstadoID string `json:"estado_id"`
	Nombre   string `json:"nombre"`
}

func (s *Service) CreateSubEstado(ctx context.Context, req CreateSubEstadoRequest) (SubEstado, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		return SubEstado{}, fmt.Errorf("%w: nombre required", ErrInvalidRequest)
	}
	if req.EstadoID == "" {
		return SubEstado{}, fmt.Errorf("%w: estado id required", ErrInvalidRequest)
	}
	if _, err := s.repo.GetEstado(ctx, req.EstadoID); err != nil {
		return SubEstado{}, err
	}
	se := SubEstado{
		ID:       s.newID(),
		EstadoID: req.EstadoID,
		Nombre:   nombre,
		Activo:   true,
		CreadoEn: s.clock().UTC(),
	}
	if err := s.repo.CreateSubEstado(ctx, se); err != nil {
		return SubEstado{}, err
	}
	return se, nil
}

// SubEstadoBelongsTo reports whether the sub-estado exists and hangs off the
// given estado. A missing sub-estado is false, not an error.
func (s *Service) SubEstadoBelongsTo(ctx context.Context, subEstadoID, estadoID string) (bool, error) {
	se, err := s.repo.GetSubEstado(ctx, subEstadoID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return se.EstadoID == estadoID, nil
}
