package motion

// MotionParameters returns the center and half extents (wander ranges) of a
// destination rectangle.
func MotionParameters(xmin, ymin, xmax, ymax float64) (xCenter, yCenter, xWander, yWander float64) {
	xCenter = xmin + (xmax-xmin)/2
	yCenter = ymin + (ymax-ymin)/2
	xWander = (xmax - xmin) / 2
	yWander = (ymax - ymin) / 2
	return xCenter, yCenter, xWander, yWander
}
