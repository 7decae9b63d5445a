// Package layout describes how logical per-species variables (size, density,
// extras) map onto offsets inside a species' flat state slice, and gives
// kernels a way to address those variables by name instead of by offset.
package layout

import "fmt"

// Variable is one named block within a species' state slice: either packed
// (stride 1, contiguous run of length blockLength) or interleaved with other
// variables (stride equal to the number of interleaved variables, one value
// per cohort column).
type Variable struct {
	Name        string
	Offset      int
	Stride      int
	BlockLength int
}

// Layout is the ordered descriptor list for one species. J is the column
// count (cohort count) that positional iteration runs over.
type Layout struct {
	J    int
	vars []Variable
	size int
}

// NewPackedLayout builds a layout of purely packed variables, each
// contiguous and of length J (FMU and MMU use this with J as the cell
// count; CM and EBT with J as the cohort count).
func NewPackedLayout(J int, names ...string) *Layout {
	l := &Layout{J: J}
	for _, n := range names {
		l.vars = append(l.vars, Variable{Name: n, Offset: l.size, Stride: 1, BlockLength: J})
		l.size += J
	}
	return l
}

// AddInterleaved appends a block of names interleaved column-major, i.e.
// values for column i sit at consecutive positions, one per name, and the
// stride between successive columns of the same name is len(names).
func (l *Layout) AddInterleaved(names ...string) *Layout {
	stride := len(names)
	base := l.size
	for k, n := range names {
		l.vars = append(l.vars, Variable{Name: n, Offset: base + k, Stride: stride, BlockLength: l.J})
	}
	l.size += stride * l.J
	return l
}

// Size returns the total number of float64 slots this layout describes.
func (l *Layout) Size() int { return l.size }

// Variables returns the ordered descriptor list.
func (l *Layout) Variables() []Variable {
	out := make([]Variable, len(l.vars))
	copy(out, l.vars)
	return out
}

// View is a strided accessor into a variable's values for one species'
// state slice.
type View struct {
	buf    []float64
	offset int
	stride int
	length int
}

func (v *View) Get(i int) float64 { return v.buf[v.offset+i*v.stride] }

func (v *View) Set(i int, val float64) { v.buf[v.offset+i*v.stride] = val }

func (v *View) Len() int { return v.length }

// Raw returns the view's backing values as a plain slice, valid only for
// stride-1 (packed) variables where consecutive columns are contiguous.
// Kernels use this to hand a named block straight to slice-based helpers
// (e.g. quad.Trapz) once they've looked it up by name instead of offset.
func (v *View) Raw() []float64 {
	if v.stride != 1 {
		panic("layout: Raw called on a non-contiguous (interleaved) view")
	}
	return v.buf[v.offset : v.offset+v.length]
}

// Views maps variable names to their [View] over a given buffer.
type Views map[string]*View

// Lookup returns the named view, or an error if the layout declares no such
// variable.
func (vs Views) Lookup(name string) (*View, error) {
	v, ok := vs[name]
	if !ok {
		return nil, fmt.Errorf("layout: no such variable %q", name)
	}
	return v, nil
}

// All returns every variable's view, in descriptor order, so a kernel can
// address "a vector of all variable iterators at the current column".
func (l *Layout) All(buf []float64) []*View {
	out := make([]*View, len(l.vars))
	for i, vr := range l.vars {
		out[i] = &View{buf: buf, offset: vr.Offset, stride: vr.Stride, length: vr.BlockLength}
	}
	return out
}

// ColumnVector returns column col's value from every declared variable, in
// descriptor order, via [Layout.All] - the literal "vector of all variable
// iterators at the current column" spec section 4.2 names.
func (l *Layout) ColumnVector(buf []float64, col int) []float64 {
	views := l.All(buf)
	out := make([]float64, len(views))
	for i, v := range views {
		out[i] = v.Get(col)
	}
	return out
}

// Iterators resolves every declared variable against buf, which must be at
// least Size() long, into a name-indexed lookup table.
func (l *Layout) Iterators(buf []float64) Views {
	vs := make(Views, len(l.vars))
	for _, vr := range l.vars {
		vs[vr.Name] = &View{buf: buf, offset: vr.Offset, stride: vr.Stride, length: vr.BlockLength}
	}
	return vs
}
