package claims

import (
	"encoding/json"
	"time"

	"claims-platform/internal/audit"
)

// Prioridad is the claim priority scale. Values are display-ready literals
// and are audited as scalars, no catalog lookup.
type Prioridad string

const (
	PrioridadBaja    Prioridad = "baja"
	PrioridadMedia   Prioridad = "media"
	PrioridadAlta    Prioridad = "alta"
	PrioridadUrgente Prioridad = "urgente"
)

func (p Prioridad) Valid() bool {
	switch p {
	case PrioridadBaja, PrioridadMedia, PrioridadAlta, PrioridadUrgente:
		return true
	}
	return false
}

// Claim is a customer reclamo.
type Claim struct {
	ID            string  `json:"id" db:"id"`
	Asunto        string  `json:"asunto" db:"asunto"`
	Descripcion   string  `json:"descripcion" db:"descripcion"`
	NombreCliente string  `json:"nombre_cliente" db:"nombre_cliente"`
	EstadoID      string  `json:"estado_id" db:"estado_id"`
	SubEstadoID   *string `json:"sub_estado_id,omitempty" db:"sub_estado_id"`

	Prioridad Prioridad `json:"prioridad" db:"prioridad"`
	AsignadoA *string   `json:"asignado_a,omitempty" db:"asignado_a"`

	CreadoPor     string    `json:"creado_por" db:"creado_por"`
	CreadoEn      time.Time `json:"creado_en" db:"creado_en"`
	ActualizadoEn time.Time `json:"actualizado_en" db:"actualizado_en"`
}

// TrackedSnapshot extracts the audited fields as a raw-value snapshot.
// Fields without a value are absent, not empty strings.
func (c Claim) TrackedSnapshot() audit.Snapshot {
	snap := audit.Snapshot{
		"estado_id": c.EstadoID,
		"prioridad": string(c.Prioridad),
	}
	if c.SubEstadoID != nil {
		snap["sub_estado_id"] = *c.SubEstadoID
	}
	if c.AsignadoA != nil {
		snap["asignado_a"] = *c.AsignadoA
	}
	return snap
}

// OptString distinguishes an absent JSON field from one explicitly set to
// null. Update requests use it for the clearable references.
type OptString struct {
	Set   bool
	Value *string
}

func (o *OptString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o OptString) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

type CreateClaimRequest struct {
	Asunto        string    `json:"asunto"`
	Descripcion   string    `json:"descripcion"`
	NombreCliente string    `json:"nombre_cliente"`
	EstadoID      string    `json:"estado_id"`
	SubEstadoID   *string   `json:"sub_estado_id,omitempty"`
	Prioridad     Prioridad `json:"prioridad"`
	AsignadoA     *string   `json:"asignado_a,omitempty"`
}

type UpdateClaimRequest struct {
	Asunto        *string   `json:"asunto,omitempty"`
	Descripcion   *string   `json:"descripcion,omitempty"`
	NombreCliente *string   `json:"nombre_cliente,omitempty"`
	EstadoID      *string   `json:"estado_id,omitempty"`
	SubEstadoID   OptString `json:"sub_estado_id"`
	Prioridad     *string   `json:"prioridad,omitempty"`
	AsignadoA     OptString `json:"asignado_a"`
}

// Empty reports whether the request carries no field at all.
func (r UpdateClaimRequest) Empty() bool {
	return r.Asunto == nil && r.Descripcion == nil && r.NombreCliente == nil &&
		r.EstadoID == nil && !r.SubEstadoID.Set && r.Prioridad == nil && !r.AsignadoA.Set
}

// AssignClaimRequest sets or clears the assignee. A null asignado_a means
// desasignar.
type AssignClaimRequest struct {
	AsignadoA *string `json:"asignado_a"`
}

// ListFilter narrows claim listings. Zero values mean "no filter".
type ListFilter struct {
	EstadoID  string
	Prioridad string
	AsignadoA string

	// Busqueda is a free-text match over asunto and descripcion.
	Busqueda string

	Limit  int
	Offset int
}
