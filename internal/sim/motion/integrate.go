package motion

// Integrate advances every row by heading * speed, per axis.
func Integrate(t *Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	for i := range t.X {
		t.X[i] += t.HX[i] * t.Speed[i]
		t.Y[i] += t.HY[i] * t.Speed[i]
	}
	return nil
}
