package layout

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/go-git/go-billy/v5"

	"github.com/fulmenhq/ncbisort/internal/manifest"
	"github.com/fulmenhq/ncbisort/pkg/safeio"
)

// MetadataSuffix is appended to the accession to name its sidecar file.
const MetadataSuffix = ".info.csv"

// SidecarState describes a sidecar in a sorted tree relative to the manifest.
type SidecarState string

const (
	SidecarPresent SidecarState = "present"
	SidecarMissing SidecarState = "missing"
	SidecarStale   SidecarState = "stale"
)

// MetadataPath is where the sidecar for accession lives under a target tree.
func MetadataPath(target billy.Filesystem, label, accession string) string {
	return target.Join(label, accession, accession+MetadataSuffix)
}

// WriteMetadata writes rows transposed: one CSV line per column holding the
// column name followed by each row's value. No header line is written.
func WriteMetadata(w io.Writer, columns []string, rows []*manifest.Record) error {
	cw := csv.NewWriter(w)
	line := make([]string, len(rows)+1)
	for _, col := range columns {
		line[0] = col
		for i, r := range rows {
			line[i+1] = r.Value(col).String()
		}
		if err := cw.Write(line); err != nil {
			return fmt.Errorf("write metadata field %s: %w", col, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Sidecar is a metadata file transposed back to row orientation.
type Sidecar struct {
	Columns []string
	// Rows[i][j] is the value of Columns[j] for the i-th manifest row.
	Rows [][]string
}

// Field returns the value of column for row i, and whether the column exists.
func (s *Sidecar) Field(i int, column string) (string, bool) {
	for j, c := range s.Columns {
		if c == column {
			return s.Rows[i][j], true
		}
	}
	return "", false
}

// ReadMetadata parses a file written by WriteMetadata.
//
// Quoted values come back with CRLF folded to LF, so a value holding "\r\n"
// does not round-trip byte for byte.
func ReadMetadata(r io.Reader) (*Sidecar, error) {
	cr := csv.NewReader(r)
	lines, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	s := &Sidecar{}
	if len(lines) == 0 {
		return s, nil
	}
	width := len(lines[0]) - 1
	s.Rows = make([][]string, width)
	for i := range s.Rows {
		s.Rows[i] = make([]string, len(lines))
	}
	for j, line := range lines {
		s.Columns = append(s.Columns, line[0])
		for i := 0; i < width; i++ {
			s.Rows[i][j] = line[i+1]
		}
	}
	return s, nil
}

// CheckMetadata compares the sidecar for accession under target with what
// WriteMetadata would produce for columns and rows.
func CheckMetadata(target billy.Filesystem, label, accession string, columns []string, rows []*manifest.Record) (SidecarState, error) {
	for _, c := range []string{label, accession} {
		if _, err := safeio.CleanComponent(c); err != nil {
			return "", err
		}
	}

	f, err := target.Open(MetadataPath(target, label, accession))
	if errors.Is(err, fs.ErrNotExist) {
		return SidecarMissing, nil
	}
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	got, err := ReadMetadata(f)
	if err != nil {
		return SidecarStale, nil
	}

	// Both sides go through the reader so CRLF folding cancels out.
	var buf bytes.Buffer
	if err := WriteMetadata(&buf, columns, rows); err != nil {
		return "", err
	}
	want, err := ReadMetadata(&buf)
	if err != nil {
		return "", err
	}

	if len(got.Columns) != len(want.Columns) || len(got.Rows) != len(want.Rows) {
		return SidecarStale, nil
	}
	for j, col := range want.Columns {
		for i := range want.Rows {
			if v, ok := got.Field(i, col); !ok || v != want.Rows[i][j] {
				return SidecarStale, nil
			}
		}
	}
	return SidecarPresent, nil
}
