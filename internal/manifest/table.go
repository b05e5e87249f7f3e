package manifest

// AccessionField is the manifest column that keys every assembly.
const AccessionField = "accession"

// Table is the ordered set of manifest records and the union of their columns.
type Table struct {
	columns []string
	index   map[string]struct{}
	rows    []*Record
}

// append adds r, extending the columns in first-seen order.
func (t *Table) append(r *Record) {
	if t.index == nil {
		t.index = make(map[string]struct{})
	}
	for _, k := range r.keys {
		if _, ok := t.index[k]; !ok {
			t.columns = append(t.columns, k)
			t.index[k] = struct{}{}
		}
	}
	t.rows = append(t.rows, r)
}

// Columns returns the column names in table order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Rows returns the records in manifest order.
func (t *Table) Rows() []*Record {
	out := make([]*Record, len(t.rows))
	copy(out, t.rows)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Select returns every row whose accession equals accession, in table order.
func (t *Table) Select(accession string) []*Record {
	var out []*Record
	for _, r := range t.rows {
		v := r.Value(AccessionField)
		if v.IsNull() {
			continue
		}
		if v.String() == accession {
			out = append(out, r)
		}
	}
	return out
}

// NestedColumns returns the columns holding at least one object value.
func (t *Table) NestedColumns() []string {
	var out []string
	for _, c := range t.columns {
		for _, r := range t.rows {
			if r.Value(c).Kind() == KindObject {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// clone copies the rows so Flatten can rewrite them.
func (t *Table) clone() *Table {
	out := &Table{
		columns: t.Columns(),
		rows:    make([]*Record, len(t.rows)),
	}
	out.reindex()
	for i, r := range t.rows {
		c := NewRecord()
		for _, k := range r.keys {
			c.Set(k, r.values[k])
		}
		out.rows[i] = c
	}
	return out
}

func (t *Table) reindex() {
	t.index = make(map[string]struct{}, len(t.columns))
	for _, c := range t.columns {
		t.index[c] = struct{}{}
	}
}
