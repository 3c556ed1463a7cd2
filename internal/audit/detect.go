package audit

// Detect compares two snapshots of an entity's tracked fields and returns the
// ordered field-level deltas.
//
// Contract:
// - Iterates ClaimFields in declared order, so output ordering is deterministic.
// - Compares raw stored values only; label drift without a value change never
//   produces a delta.
// - A field absent in both snapshots is skipped; absent on one side means "no value".
// - No-op changes are filtered: old_value != new_value always holds for emitted deltas.
// - Pure function, no side effects.
func Detect(before, after Snapshot) []FieldChange {
	var out []FieldChange
	for _, f := range ClaimFields {
		oldVal, hadOld := before[f.Name]
		newVal, hasNew := after[f.Name]

		if !hadOld && !hasNew {
			continue
		}
		if hadOld && hasNew && oldVal == newVal {
			continue
		}

		fc := FieldChange{Campo: f.Name}
		if hadOld {
			v := oldVal
			fc.ValorAnterior = &v
		}
		if hasNew {
			v := newVal
			fc.ValorNuevo = &v
		}
		out = append(out, fc)
	}
	return out
}
