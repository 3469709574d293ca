package forecast

const fallbackPrice = 100.0

// Baseline extrapolates a least-squares line through the weekly closes for
// horizon weeks past the last observation. With fewer than two closes the last
// close (or 100) is repeated.
func Baseline(closes []float64, horizon int) []float64 {
	if horizon <= 0 {
		return nil
	}
	out := make([]float64, horizon)

	if len(closes) < 2 {
		last := fallbackPrice
		if len(closes) == 1 {
			last = closes[0]
		}
		for i := range out {
			out[i] = last
		}
		return out
	}

	n := float64(len(closes))
	var sumX, sumY, sumXY, sumXX float64
	for i, y := range closes {
		x := float64(i)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	slope := (n*sumXY - sumX*sumY) / (n*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / n

	last := len(closes) - 1
	for week := 1; week <= horizon; week++ {
		out[week-1] = intercept + slope*float64(last+week)
	}
	return out
}
