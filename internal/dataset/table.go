package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// Table is an ordered tabular dataset read from delimited text.
//
// Header preserves the source column order; Records hold one Record per
// data row, indexed by original position.
type Table struct {
	Header  []string
	Records []Record
}

// Load reads a CSV table with a header row.
//
// Duplicate column names and ragged rows are errors: the reader enforces
// a uniform field count, and field values are mapped by header name.
func Load(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if seen[name] {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = true
	}

	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(records), err)
		}
		fields := make(map[string]string, len(header))
		for i, name := range header {
			fields[name] = row[i]
		}
		records = append(records, Record{Index: len(records), Fields: fields})
	}

	return &Table{Header: header, Records: records}, nil
}

// LoadFile reads a CSV table from a file path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// Save writes records as CSV under the given header. Columns absent from
// a record are written as empty strings; fields outside the header are
// not written.
func Save(w io.Writer, header []string, records []Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(header))
	for _, rec := range records {
		for i, name := range header {
			row[i] = rec.Fields[name]
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", rec.Index, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveFile writes records as CSV to a file path.
func SaveFile(path string, header []string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Save(f, header, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WithoutColumn returns a copy of header with the named column removed.
// The copy preserves column order; an absent name is a no-op.
func WithoutColumn(header []string, name string) []string {
	out := make([]string, 0, len(header))
	for _, h := range header {
		if h != name {
			out = append(out, h)
		}
	}
	return out
}
