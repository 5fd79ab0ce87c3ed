package forecast

// trend is an ordinary least-squares fit of values against their index.
type trend struct {
	slope     float64
	intercept float64
	variance  float64
}

func fitTrend(values []float64) trend {
	n := len(values)
	if n == 0 {
		return trend{}
	}

	xMean := float64(n-1) / 2
	var sum float64
	for _, y := range values {
		sum += y
	}
	yMean := sum / float64(n)

	var num, den, sq float64
	for i, y := range values {
		dx := float64(i) - xMean
		dy := y - yMean
		num += dx * dy
		den += dx * dx
		sq += dy * dy
	}

	slope := 0.0
	if den != 0 {
		slope = num / den
	}

	return trend{
		slope:     slope,
		intercept: yMean - slope*xMean,
		variance:  sq / float64(n),
	}
}

func (t trend) at(index float64) float64 {
	return t.intercept + t.slope*index
}

// confidence maps the series variance onto [0.3, 0.95].
func (t trend) confidence() float64 {
	return clamp(1-t.variance/100, 0.3, 0.95)
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
