package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripColumn_RemovesLabel(t *testing.T) {
	records := []Record{
		{Index: 0, Fields: map[string]string{"month": "7", "rentals": "120"}},
		{Index: 1, Fields: map[string]string{"month": "8", "rentals": "95"}},
	}

	stripped := StripColumn(records, "rentals")

	require.Len(t, stripped, 2)
	for _, rec := range stripped {
		_, ok := rec.Field("rentals")
		assert.False(t, ok, "label must be gone from record %d", rec.Index)
		_, ok = rec.Field("month")
		assert.True(t, ok, "feature fields survive")
	}
}

func TestStripColumn_AbsentColumnIsNoop(t *testing.T) {
	records := []Record{
		{Index: 0, Fields: map[string]string{"month": "7"}},
	}

	stripped := StripColumn(records, "rentals")

	require.Len(t, stripped, 1)
	assert.Equal(t, records[0].Fields, stripped[0].Fields)
}

func TestStripColumn_DoesNotMutateInput(t *testing.T) {
	records := []Record{
		{Index: 0, Fields: map[string]string{"month": "7", "rentals": "120"}},
	}

	_ = StripColumn(records, "rentals")

	_, ok := records[0].Field("rentals")
	assert.True(t, ok, "input records are immutable")
}

func TestStripColumn_PreservesOrderAndIndex(t *testing.T) {
	records := []Record{
		{Index: 3, Fields: map[string]string{"a": "1", "b": "2"}},
		{Index: 7, Fields: map[string]string{"a": "3", "b": "4"}},
	}

	stripped := StripColumn(records, "b")

	assert.Equal(t, []int{3, 7}, indexesOf(stripped))
}

func TestHasColumn(t *testing.T) {
	records := []Record{
		{Index: 0, Fields: map[string]string{"a": "1"}},
		{Index: 1, Fields: map[string]string{"a": "2"}},
	}

	assert.True(t, HasColumn(records, "a"))
	assert.False(t, HasColumn(records, "b"))
	assert.True(t, HasColumn(nil, "anything"))
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"numeric less", "2", "10", -1},
		{"numeric greater", "10", "2", 1},
		{"numeric equal", "5", "5.0", 0},
		{"dates", "2023-06-30", "2023-07-01", -1},
		{"strings", "b", "a", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, compareValues(tt.a, tt.b))
		})
	}
}
