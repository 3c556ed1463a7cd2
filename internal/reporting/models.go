package reporting

import "time"

// Common filtering inputs.

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// ClaimsSummary aggregates the current claim population.
type ClaimsSummary struct {
	Total int `json:"total"`

	PorEstado    map[string]int `json:"por_estado"`
	PorPrioridad map[string]int `json:"por_prioridad"`

	Asignados  int `json:"asignados"`
	SinAsignar int `json:"sin_asignar"`
}

// ActivitySummaryRequest requests audit activity counts over a window.
type ActivitySummaryRequest struct {
	Range TimeRange `json:"range"`
}

// ActivitySummary counts audit events by kind. It is derived from the
// immutable audit trail, so the numbers are stable for a closed window.
type ActivitySummary struct {
	Range TimeRange `json:"range"`

	TotalEventos    int `json:"total_eventos"`
	Creaciones      int `json:"creaciones"`
	Actualizaciones int `json:"actualizaciones"`
}
