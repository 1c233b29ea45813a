package table

// Column describes one position in the header. Names need not be unique.
type Column struct {
	Name string     `json:"name"`
	Kind ColumnKind `json:"kind"`
}

// Table is a fully materialized upload. Every row has exactly len(Columns)
// cells, in header order.
type Table struct {
	Columns []Column `json:"columns"`
	Rows    [][]Cell `json:"rows"`
}

func (t *Table) NumRows() int { return len(t.Rows) }

func (t *Table) NumColumns() int { return len(t.Columns) }

// Names returns the header in column order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the cells at position i, top to bottom.
func (t *Table) Column(i int) []Cell {
	out := make([]Cell, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// Head returns a table holding at most the first n rows. Rows are shared
// with the receiver.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	return &Table{Columns: t.Columns, Rows: t.Rows[:n]}
}
