package layout

// Cursor advances column-by-column (one cohort per step) over a fixed set
// of named views, giving begin/end detection and the current column's
// values without the caller tracking offsets.
type Cursor struct {
	views []*View
	names []string
	i     int
	n     int
}

// NewCursor builds a cursor over the named views, positioned before the
// first column. n is the number of columns to iterate (normally the
// layout's J).
func NewCursor(vs Views, names []string, n int) (*Cursor, error) {
	views := make([]*View, len(names))
	for k, name := range names {
		v, err := vs.Lookup(name)
		if err != nil {
			return nil, err
		}
		views[k] = v
	}
	return &Cursor{views: views, names: names, i: -1, n: n}, nil
}

// Next advances to the next column, returning false once exhausted.
func (c *Cursor) Next() bool {
	c.i++
	return c.i < c.n
}

// Begin reports whether the cursor is on the first column.
func (c *Cursor) Begin() bool { return c.i == 0 }

// End reports whether the cursor is on the last column.
func (c *Cursor) End() bool { return c.i == c.n-1 }

// Column returns the current column index.
func (c *Cursor) Column() int { return c.i }

// Values returns the current column's value for every named view, in the
// order passed to NewCursor.
func (c *Cursor) Values() []float64 {
	out := make([]float64, len(c.views))
	for k, v := range c.views {
		out[k] = v.Get(c.i)
	}
	return out
}

// Set writes val into the named view's current column. name must be one of
// the names passed to NewCursor.
func (c *Cursor) Set(name string, val float64) {
	for k, n := range c.names {
		if n == name {
			c.views[k].Set(c.i, val)
			return
		}
	}
}
