package reporting

import (
	"context"
	"errors"
	"time"

	"claims-platform/internal/claims"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Repository abstracts data access for reporting.
//
// IMPORTANT:
// - Implementations should query immutable sources when possible (the audit
//   trail for activity numbers).
type Repository interface {
	ListClaims(ctx context.Context) ([]claims.Claim, error)

	// CountAuditEvents returns event counts keyed by tipo_evento within
	// [from, to).
	CountAuditEvents(ctx context.Context, from, to time.Time) (map[string]int, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) ClaimsSummary(ctx context.Context) (ClaimsSummary, error) {
	if s.repo == nil {
		return ClaimsSummary{}, errors.New("reporting: repository not configured")
	}

	rows, err := s.repo.ListClaims(ctx)
	if err != nil {
		return ClaimsSummary{}, err
	}

	out := ClaimsSummary{
		PorEstado:    map[string]int{},
		PorPrioridad: map[string]int{},
	}
	for _, c := range rows {
		out.Total++
		out.PorEstado[c.EstadoID]++
		out.PorPrioridad[string(c.Prioridad)]++
		if c.AsignadoA != nil {
			out.Asignados++
		} else {
			out.SinAsignar++
		}
	}
	return out, nil
}

func (s *Service) ActivitySummary(ctx context.Context, req ActivitySummaryRequest) (ActivitySummary, error) {
	if req.Range.From.IsZero() || req.Range.To.IsZero() || !req.Range.To.After(req.Range.From) {
		return ActivitySummary{}, ErrInvalidRequest
	}
	if s.repo == nil {
		return ActivitySummary{}, errors.New("reporting: repository not configured")
	}

	counts, err := s.repo.CountAuditEvents(ctx, req.Range.From, req.Range.To)
	if err != nil {
		return ActivitySummary{}, err
	}

	out := ActivitySummary{Range: req.Range}
	for kind, n := range counts {
		out.TotalEventos += n
		switch kind {
		case "creacion":
			out.Creaciones += n
		case "actualizacion":
			out.Actualizaciones += n
		}
	}
	return out, nil
}
