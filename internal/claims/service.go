package claims

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"claims-platform/internal/audit"
	"claims-platform/internal/auth"
	"claims-platform/internal/catalog"
	"claims-platform/pkg/utils"
)

// Service owns the claim lifecycle and its audit trail.
//
// Invariants:
// - Every creation and every effective update of tracked fields writes exactly
//   one audit entry, in the same DB transaction as the state change.
// - The audit append is fail-closed: if enrichment or the append fails, the
//   claim mutation rolls back too.
// - A per-claim lock serializes logical updates across instances, so Record
//   is called at most once per update and no delta is ever lost to a race.
type Service struct {
	db      *sql.DB
	catalog catalog.Repository
	locker  Locker
	enrich  *audit.Enricher
	reader  *audit.Reader
	log     *slog.Logger

	clock   func() time.Time
	newID   func() string
	lockTTL time.Duration
}

var (
	ErrNotFound        = errors.New("claims: not found")
	ErrInvalidArgument = errors.New("claims: invalid argument")

	// ErrLocked means another update of the same claim is in flight.
	ErrLocked = errors.New("claims: claim is being updated")
)

func NewService(db *sql.DB, catalogRepo catalog.Repository, locker Locker, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		db:      db,
		catalog: catalogRepo,
		locker:  locker,
		enrich:  audit.NewEnricher(catalog.NewResolver(catalogRepo)),
		reader:  audit.NewReader(audit.NewPostgresStore(db), log),
		log:     log,
		clock:   time.Now,
		newID:   uuid.NewString,
		lockTTL: 10 * time.Second,
	}
}

func (s *Service) Create(ctx context.Context, actor auth.Actor, req CreateClaimRequest) (Claim, error) {
	req.Asunto = strings.TrimSpace(req.Asunto)
	if req.Asunto == "" {
		return Claim{}, fmt.Errorf("%w: asunto required", ErrInvalidArgument)
	}
	if req.EstadoID == "" {
		return Claim{}, fmt.Errorf("%w: estado_id required", ErrInvalidArgument)
	}
	if req.Prioridad == "" {
		req.Prioridad = PrioridadMedia
	}
	if !req.Prioridad.Valid() {
		return Claim{}, fmt.Errorf("%w: unknown prioridad %q", ErrInvalidArgument, req.Prioridad)
	}
	if err := s.validateRefs(ctx, req.EstadoID, req.SubEstadoID, req.AsignadoA); err != nil {
		return Claim{}, err
	}

	now := s.clock().UTC()
	c := Claim{
		ID:            s.newID(),
		Asunto:        req.Asunto,
		Descripcion:   req.Descripcion,
		NombreCliente: req.NombreCliente,
		EstadoID:      req.EstadoID,
		SubEstadoID:   req.SubEstadoID,
		Prioridad:     req.Prioridad,
		AsignadoA:     req.AsignadoA,
		CreadoPor:     actor.ID,
		CreadoEn:      now,
		ActualizadoEn: now,
	}

	err := utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		if err := insertClaim(ctx, tx, c); err != nil {
			return err
		}
		enriched, err := s.enrich.Enrich(ctx, snapshotFieldChanges(c))
		if err != nil {
			return err
		}
		recorder := audit.NewRecorder(audit.NewPostgresStore(tx))
		_, err = recorder.Record(ctx, audit.RecordRequest{
			EntityID: c.ID,
			Kind:     audit.EventCreation,
			Actor:    auditActor(actor),
			Changes:  audit.SnapshotChanges(enriched),
		})
		return err
	})
	if err != nil {
		return Claim{}, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id string) (Claim, error) {
	if id == "" {
		return Claim{}, fmt.Errorf("%w: id required", ErrInvalidArgument)
	}
	return getClaim(ctx, s.db, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Claim, error) {
	if f.Limit <= 0 || f.Limit > 200 {
		f.Limit = 50
	}
	return listClaims(ctx, s.db, f)
}

func (s *Service) Update(ctx context.Context, actor auth.Actor, id string, req UpdateClaimRequest) (Claim, error) {
	if id == "" {
		return Claim{}, fmt.Errorf("%w: id required", ErrInvalidArgument)
	}
	if req.Empty() {
		return Claim{}, fmt.Errorf("%w: no fields to update", ErrInvalidArgument)
	}
	if req.Asunto != nil && strings.TrimSpace(*req.Asunto) == "" {
		return Claim{}, fmt.Errorf("%w: asunto cannot be blank", ErrInvalidArgument)
	}
	if req.Prioridad != nil && !Prioridad(*req.Prioridad).Valid() {
		return Claim{}, fmt.Errorf("%w: unknown prioridad %q", ErrInvalidArgument, *req.Prioridad)
	}

	token := s.newID()
	key := lockKey(id)
	ok, err := s.locker.Acquire(ctx, key, token, s.lockTTL)
	if err != nil {
		return Claim{}, fmt.Errorf("claims: acquiring update lock: %w", err)
	}
	if !ok {
		return Claim{}, ErrLocked
	}
	defer func() {
		if err := s.locker.Release(ctx, key, token); err != nil {
			s.log.Warn("releasing claim update lock", "claim_id", id, "err", err)
		}
	}()

	var out Claim
	err = utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		before, err := getClaimForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}

		after := applyUpdate(before, req)
		if err := s.validateChangedRefs(ctx, before, after); err != nil {
			return err
		}

		deltas := audit.Detect(before.TrackedSnapshot(), after.TrackedSnapshot())
		untrackedChanged := before.Asunto != after.Asunto ||
			before.Descripcion != after.Descripcion ||
			before.NombreCliente != after.NombreCliente

		if len(deltas) == 0 && !untrackedChanged {
			// No effective change: no row touch, no audit entry.
			out = before
			return nil
		}

		after.ActualizadoEn = s.clock().UTC()
		if err := updateClaim(ctx, tx, after); err != nil {
			return err
		}

		if len(deltas) > 0 {
			enriched, err := s.enrich.Enrich(ctx, deltas)
			if err != nil {
				return err
			}
			recorder := audit.NewRecorder(audit.NewPostgresStore(tx))
			if _, err := recorder.Record(ctx, audit.RecordRequest{
				EntityID: id,
				Kind:     audit.EventUpdate,
				Actor:    auditActor(actor),
				Changes:  audit.DeltaChanges(enriched),
			}); err != nil {
				return err
			}
		}
		out = after
		return nil
	})
	if err != nil {
		return Claim{}, err
	}
	return out, nil
}

// Assign is a narrowed update touching only asignado_a. A nil assignee
// means desasignar.
func (s *Service) Assign(ctx context.Context, actor auth.Actor, id string, req AssignClaimRequest) (Claim, error) {
	return s.Update(ctx, actor, id, UpdateClaimRequest{
		AsignadoA: OptString{Set: true, Value: req.AsignadoA},
	})
}

// Delete removes the claim row. No audit entry is written for deletion and
// existing audit entries are kept: history outlives the claim.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id required", ErrInvalidArgument)
	}
	return utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		return deleteClaim(ctx, tx, id)
	})
}

// History pages through the claim's audit trail. It deliberately does not
// check claim existence: deleted claims keep a readable history, and an
// unknown id simply yields an empty page.
func (s *Service) History(ctx context.Context, id string, q audit.HistoryQuery) (audit.HistoryPage, error) {
	return s.reader.History(ctx, id, q)
}

func (s *Service) validateRefs(ctx context.Context, estadoID string, subEstadoID, asignadoA *string) error {
	if _, err := s.catalog.GetEstado(ctx, estadoID); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("%w: estado %q does not exist", ErrInvalidArgument, estadoID)
		}
		return err
	}
	if subEstadoID != nil {
		se, err := s.catalog.GetSubEstado(ctx, *subEstadoID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return fmt.Errorf("%w: sub_estado %q does not exist", ErrInvalidArgument, *subEstadoID)
			}
			return err
		}
		if se.EstadoID != estadoID {
			return fmt.Errorf("%w: sub_estado %q does not belong to estado %q", ErrInvalidArgument, *subEstadoID, estadoID)
		}
	}
	if asignadoA != nil {
		if _, err := s.catalog.GetUsuario(ctx, *asignadoA); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				return fmt.Errorf("%w: usuario %q does not exist", ErrInvalidArgument, *asignadoA)
			}
			return err
		}
	}
	return nil
}

// validateChangedRefs re-checks references only when the update touches them.
func (s *Service) validateChangedRefs(ctx context.Context, before, after Claim) error {
	estadoChanged := before.EstadoID != after.EstadoID
	subChanged := !ptrEq(before.SubEstadoID, after.SubEstadoID)
	asigChanged := !ptrEq(before.AsignadoA, after.AsignadoA)

	if !estadoChanged && !subChanged && !asigChanged {
		return nil
	}

	var sub *string
	if after.SubEstadoID != nil && (estadoChanged || subChanged) {
		sub = after.SubEstadoID
	}
	var asig *string
	if after.AsignadoA != nil && asigChanged {
		asig = after.AsignadoA
	}
	if !estadoChanged && sub == nil && asig == nil {
		return nil
	}
	return s.validateRefs(ctx, after.EstadoID, sub, asig)
}

func applyUpdate(c Claim, req UpdateClaimRequest) Claim {
	if req.Asunto != nil {
		c.Asunto = strings.TrimSpace(*req.Asunto)
	}
	if req.Descripcion != nil {
		c.Descripcion = *req.Descripcion
	}
	if req.NombreCliente != nil {
		c.NombreCliente = *req.NombreCliente
	}
	if req.EstadoID != nil {
		c.EstadoID = *req.EstadoID
		// A state change invalidates the old sub-state unless the request
		// sets one explicitly.
		if !req.SubEstadoID.Set {
			c.SubEstadoID = nil
		}
	}
	if req.SubEstadoID.Set {
		c.SubEstadoID = req.SubEstadoID.Value
	}
	if req.Prioridad != nil {
		c.Prioridad = Prioridad(*req.Prioridad)
	}
	if req.AsignadoA.Set {
		c.AsignadoA = req.AsignadoA.Value
	}
	return c
}

// snapshotFieldChanges renders the creation snapshot: every tracked field
// that has a value, new side only, in declared field order.
func snapshotFieldChanges(c Claim) []audit.FieldChange {
	snap := c.TrackedSnapshot()
	var out []audit.FieldChange
	for _, f := range audit.ClaimFields {
		v, ok := snap[f.Name]
		if !ok {
			continue
		}
		val := v
		out = append(out, audit.FieldChange{Campo: f.Name, ValorNuevo: &val})
	}
	return out
}

func auditActor(a auth.Actor) audit.Actor {
	out := audit.Actor{ID: a.ID, Nombre: a.Nombre}
	if a.Area != "" {
		area := a.Area
		out.Area = &area
	}
	return out
}

func lockKey(id string) string { return "reclamos:lock:" + id }

func ptrEq(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
