package kernels

import (
	"fmt"

	"github.com/jaideep777/pspm/layout"
	"github.com/jaideep777/pspm/model"
)

// Extras fills the derivative of a species' interleaved extra-variable
// block, one cohort column at a time. l is the species' full layout; names
// is the declared extra-variable order; xs holds one size per column (cell
// centers for FMU, cohort sizes for CM/EBT); S and dSdt are the species'
// whole sub-buffers (length l.Size()), not just the extras slice - the
// named interleaved block is located within them via l's IteratorSet
// (spec section 4.3.5: "write into interleaved positions via the
// IteratorSet"), walked column-by-column with a [layout.Cursor] rather
// than by hand-computed offsets. If m does not implement
// model.ExtraRateProvider, every extra derivative is left at zero - a
// model with no extras, or with constant extras, need not implement the
// optional interface.
func Extras(m model.Model, l *layout.Layout, names []string, xs []float64, t float64, S, dSdt []float64) error {
	if len(names) == 0 {
		return nil
	}
	if len(S) != l.Size() || len(dSdt) != l.Size() {
		return fmt.Errorf("%w: extras expected buffer length %d, got S=%d dSdt=%d", ErrDimensionMismatch, l.Size(), len(S), len(dSdt))
	}

	provider, ok := m.(model.ExtraRateProvider)
	if !ok {
		return nil
	}

	sCur, err := layout.NewCursor(l.Iterators(S), names, l.J)
	if err != nil {
		return err
	}
	dCur, err := layout.NewCursor(l.Iterators(dSdt), names, l.J)
	if err != nil {
		return err
	}

	for sCur.Next() && dCur.Next() {
		col := sCur.Column()
		extra := sCur.Values()
		rates := provider.ExtraRates(xs[col], extra, t)
		if len(rates) != len(names) {
			return fmt.Errorf("kernels: ExtraRates returned %d values, want %d", len(rates), len(names))
		}
		for i, name := range names {
			dCur.Set(name, rates[i])
		}
	}
	return nil
}
