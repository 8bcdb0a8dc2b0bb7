// Package motion moves a population of point agents on the plane and keeps
// them inside rectangular bounds or a polygonal region.
//
// Every operation mutates a caller-owned Table in place and holds no state
// between calls. Selections are built as index sets first and then updated in
// bulk, so only the selected rows change and random draws are consumed in row
// order.
package motion

import "fmt"

type Point struct {
	X float64
	Y float64
}

type Interval struct {
	Min float64
	Max float64
}

// Table is the agent table in structure-of-arrays form. All columns have the
// same length; row i across the columns is agent i.
type Table struct {
	X     []float64
	Y     []float64
	HX    []float64
	HY    []float64
	Speed []float64
}

func NewTable(n int) *Table {
	if n < 0 {
		n = 0
	}
	return &Table{
		X:     make([]float64, n),
		Y:     make([]float64, n),
		HX:    make([]float64, n),
		HY:    make([]float64, n),
		Speed: make([]float64, n),
	}
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.X)
}

// Validate reports ErrShapeMismatch when the columns disagree on length.
func (t *Table) Validate() error {
	if t == nil {
		return fmt.Errorf("%w: nil table", ErrShapeMismatch)
	}
	n := len(t.X)
	if len(t.Y) != n || len(t.HX) != n || len(t.HY) != n || len(t.Speed) != n {
		return fmt.Errorf("%w: columns x=%d y=%d hx=%d hy=%d speed=%d",
			ErrShapeMismatch, n, len(t.Y), len(t.HX), len(t.HY), len(t.Speed))
	}
	return nil
}

// Gather copies the given rows into a new table, in the order given.
func (t *Table) Gather(rows []int) (*Table, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := t.checkRows(rows); err != nil {
		return nil, err
	}
	out := NewTable(len(rows))
	for k, i := range rows {
		out.X[k] = t.X[i]
		out.Y[k] = t.Y[i]
		out.HX[k] = t.HX[i]
		out.HY[k] = t.HY[i]
		out.Speed[k] = t.Speed[i]
	}
	return out, nil
}

// Scatter writes sub back into rows; sub row k lands on rows[k].
func (t *Table) Scatter(rows []int, sub *Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := sub.Validate(); err != nil {
		return err
	}
	if sub.Len() != len(rows) {
		return fmt.Errorf("%w: %d rows for a %d-row subset", ErrShapeMismatch, len(rows), sub.Len())
	}
	if err := t.checkRows(rows); err != nil {
		return err
	}
	for k, i := range rows {
		t.X[i] = sub.X[k]
		t.Y[i] = sub.Y[k]
		t.HX[i] = sub.HX[k]
		t.HY[i] = sub.HY[k]
		t.Speed[i] = sub.Speed[k]
	}
	return nil
}

func (t *Table) Clone() *Table {
	out := NewTable(t.Len())
	copy(out.X, t.X)
	copy(out.Y, t.Y)
	copy(out.HX, t.HX)
	copy(out.HY, t.HY)
	copy(out.Speed, t.Speed)
	return out
}

func (t *Table) checkRows(rows []int) error {
	n := t.Len()
	for _, i := range rows {
		if i < 0 || i >= n {
			return fmt.Errorf("%w: row %d out of range [0,%d)", ErrShapeMismatch, i, n)
		}
	}
	return nil
}

// Bounds holds one interval pair per agent row.
type Bounds struct {
	X []Interval
	Y []Interval
}

// UniformBounds repeats a single rectangle for n rows.
func UniformBounds(n int, x, y Interval) Bounds {
	b := Bounds{X: make([]Interval, n), Y: make([]Interval, n)}
	for i := 0; i < n; i++ {
		b.X[i] = x
		b.Y[i] = y
	}
	return b
}

func (b Bounds) check(rows int) error {
	if len(b.X) != rows || len(b.Y) != rows {
		return fmt.Errorf("%w: bounds x=%d y=%d for %d rows", ErrShapeMismatch, len(b.X), len(b.Y), rows)
	}
	return nil
}

// selectRows returns the indices in [0,n) for which keep is true.
func selectRows(n int, keep func(i int) bool) []int {
	var idx []int
	for i := 0; i < n; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return idx
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
