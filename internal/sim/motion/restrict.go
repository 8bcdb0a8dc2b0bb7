package motion

import "fmt"

// Restrict replaces the random walk while movement is restricted. Every
// speed is capped at maxSpeed and rows with halted[i] set stop entirely.
// Headings are left alone. It returns the number of halted rows.
func Restrict(t *Table, halted []bool, maxSpeed float64) (int, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	if len(halted) != t.Len() {
		return 0, fmt.Errorf("%w: %d halt flags for %d rows", ErrShapeMismatch, len(halted), t.Len())
	}
	n := 0
	for i := range t.Speed {
		if halted[i] {
			t.Speed[i] = 0
			n++
			continue
		}
		if t.Speed[i] > maxSpeed {
			t.Speed[i] = maxSpeed
		}
	}
	return n, nil
}
