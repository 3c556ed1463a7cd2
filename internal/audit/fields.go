package audit

// FieldKind distinguishes how a tracked field's raw value maps to a display label.
type FieldKind int

const (
	// FieldScalar values are display-ready literals (e.g., a priority enum).
	FieldScalar FieldKind = iota
	// FieldReference values are catalog identifiers requiring label resolution.
	FieldReference
)

// TrackedField is static configuration for one audited claim field.
//
// Invariants:
// - The tracked set is closed and declared in a fixed order; Detect iterates
//   this order, never the entity's own field order.
// - Adding a field requires no migration: old entries simply lack it.
type TrackedField struct {
	Name    string
	Kind    FieldKind
	Catalog string // catalog name for FieldReference, empty for FieldScalar
}

// ClaimFields is the closed, ordered set of audited claim fields.
var ClaimFields = []TrackedField{
	{Name: "estado_id", Kind: FieldReference, Catalog: "estados"},
	{Name: "sub_estado_id", Kind: FieldReference, Catalog: "sub_estados"},
	{Name: "prioridad", Kind: FieldScalar},
	{Name: "asignado_a", Kind: FieldReference, Catalog: "usuarios"},
}

var claimFieldsByName = func() map[string]TrackedField {
	m := make(map[string]TrackedField, len(ClaimFields))
	for _, f := range ClaimFields {
		m[f.Name] = f
	}
	return m
}()

// TrackedFieldByName returns the tracked field configuration, if any.
func TrackedFieldByName(name string) (TrackedField, bool) {
	f, ok := claimFieldsByName[name]
	return f, ok
}

// Snapshot is a point-in-time view of an entity's tracked fields.
// An absent key means the field had no value.
type Snapshot map[string]string
