package manifest

import (
	"fmt"
)

// Flatten unpacks every nested column into "<column>.<child>" columns.
//
// Only the columns reported by NestedColumns are unpacked, in column order,
// and each is unpacked exactly once. Child mappings are not re-scanned and
// stay as blobs. Rows without an object for a nested column read null in all
// of its child columns. Child columns are appended after the surviving
// columns. The input table is not modified.
func Flatten(t *Table) (*Table, error) {
	nested := t.NestedColumns()
	if len(nested) == 0 {
		return t, nil
	}

	out := t.clone()
	for _, col := range nested {
		children, err := out.unpack(col)
		if err != nil {
			return nil, err
		}
		out.columns = append(without(out.columns, col), children...)
		out.reindex()
	}
	return out, nil
}

func (t *Table) unpack(col string) ([]string, error) {
	var children []string
	added := make(map[string]struct{})
	for _, row := range t.rows {
		v := row.Value(col)
		row.Delete(col)
		rec, ok := v.Object()
		if !ok {
			continue
		}
		for _, k := range rec.keys {
			name := col + "." + k
			if _, ok := added[name]; !ok {
				if _, clash := t.index[name]; clash {
					return nil, fmt.Errorf("%w: flattened column %q already exists", ErrMalformed, name)
				}
				added[name] = struct{}{}
				children = append(children, name)
			}
			row.Set(name, rec.values[k].opaque())
		}
	}
	return children, nil
}

func without(cols []string, drop string) []string {
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if c != drop {
			out = append(out, c)
		}
	}
	return out
}
