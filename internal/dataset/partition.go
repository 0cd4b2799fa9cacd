package dataset

import "strconv"

// Partition splits records into a reference subset and a target subset
// on a boundary field.
//
// A record belongs to the reference subset when its boundary field value
// is strictly less than boundary, and to the target subset otherwise.
// Both outputs preserve the relative order of the input, and every input
// record appears in exactly one output. The split is a pure function of
// the boundary field: row position never influences assignment.
//
// A record whose boundary field is missing, or non-numeric when the
// boundary itself is numeric, is rejected with *MalformedRecordError and
// both outputs are nil. The reject policy is deliberate - dropping or
// misfiling rows would silently shift the simulated traffic
// distribution.
func Partition(records []Record, boundaryField, boundary string) (reference, target []Record, err error) {
	_, perr := strconv.ParseFloat(boundary, 64)
	numericBoundary := perr == nil

	reference = []Record{}
	target = []Record{}
	for _, rec := range records {
		v, ok := rec.Field(boundaryField)
		if !ok {
			return nil, nil, &MalformedRecordError{
				Index:  rec.Index,
				Field:  boundaryField,
				Reason: "is missing",
			}
		}
		// A numeric boundary demands numeric field values: comparing
		// "N/A" lexicographically against "7" would misfile the row.
		if numericBoundary {
			if _, verr := strconv.ParseFloat(v, 64); verr != nil {
				return nil, nil, &MalformedRecordError{
					Index:  rec.Index,
					Field:  boundaryField,
					Reason: "is not numeric",
				}
			}
		}
		if compareValues(v, boundary) < 0 {
			reference = append(reference, rec)
		} else {
			target = append(target, rec)
		}
	}
	return reference, target, nil
}
