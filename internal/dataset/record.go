package dataset

import "strconv"

// Record is one row of a tabular dataset.
//
// A record has no identity beyond its original row position (Index).
// Fields map column names to their raw string values as read from the
// source file. Records are treated as immutable once read: operations
// that change field sets (StripColumn) return copies.
type Record struct {
	// Index is the 0-based position of the row in the source table.
	// It is stable across partitioning and column stripping.
	Index int

	// Fields maps column name to raw value.
	Fields map[string]string
}

// Field returns the value of the named field and whether it exists.
func (r Record) Field(name string) (string, bool) {
	v, ok := r.Fields[name]
	return v, ok
}

// clone returns a deep copy of the record.
func (r Record) clone() Record {
	fields := make(map[string]string, len(r.Fields))
	for k, v := range r.Fields {
		fields[k] = v
	}
	return Record{Index: r.Index, Fields: fields}
}

// StripColumn returns a copy of records with the named column removed
// from every record that has it. Records without the column are copied
// unchanged - dropping an absent column is not an error.
//
// This is the explicit drop-if-present capability: callers that must
// guarantee removal (e.g. stripping a label before replay) should
// verify presence up front with HasColumn.
//
// Relative order is preserved and the input slice is not mutated.
func StripColumn(records []Record, name string) []Record {
	out := make([]Record, len(records))
	for i, rec := range records {
		c := rec.clone()
		delete(c.Fields, name)
		out[i] = c
	}
	return out
}

// HasColumn reports whether every record has the named field.
// Returns true for an empty slice.
func HasColumn(records []Record, name string) bool {
	for _, rec := range records {
		if _, ok := rec.Fields[name]; !ok {
			return false
		}
	}
	return true
}

// compareValues orders two raw field values.
//
// When both values parse as numbers the comparison is numeric, so month
// ordinals like "2" and "10" order correctly. Otherwise the comparison
// is lexicographic, which covers ISO-8601 dates and timestamps.
func compareValues(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
