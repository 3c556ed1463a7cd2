package catalog

import "time"

// Catalog rows back the reference fields audited on claims. Labels shown in
// history come from here at write time; renaming a row later never rewrites
// already-recorded entries.

// Estado is a top-level claim state (e.g., "Abierto", "En proceso").
type Estado struct {
	ID       string    `json:"id" db:"id"`
	Nombre   string    `json:"nombre" db:"nombre"`
	Orden    int       `json:"orden" db:"orden"`
	Activo   bool      `json:"activo" db:"activo"`
	CreadoEn time.Time `json:"creado_en" db:"creado_en"`
}

// SubEstado refines an Estado (e.g., "En proceso / Esperando repuesto").
type SubEstado struct {
	ID       string    `json:"id" db:"id"`
	EstadoID string    `json:"estado_id" db:"estado_id"`
	Nombre   string    `json:"nombre" db:"nombre"`
	Activo   bool      `json:"activo" db:"activo"`
	CreadoEn time.Time `json:"creado_en" db:"creado_en"`
}

// Usuario is the directory row used to resolve assignee labels.
type Usuario struct {
	ID     string  `json:"id" db:"id"`
	Nombre string  `json:"nombre" db:"nombre"`
	Area   *string `json:"area,omitempty" db:"area"`
	Rol    string  `json:"rol" db:"rol"`
}
