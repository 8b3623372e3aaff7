package forecast

import "github.com/airwatch/aqcore/internal/domain"

// Summarize derives the aqi-forecast endpoint's rollup over a
// trajectory: current/peak/average AQI, trend direction, and the
// worst (highest-AQI) hour. Trend rule per spec.md §6: last-first > 10
// is increasing, < -10 is decreasing, else stable.
func Summarize(aqiSeq []domain.AqiPrediction) domain.AqiSummary {
	if len(aqiSeq) == 0 {
		return domain.AqiSummary{Trend: domain.TrendStable}
	}

	first := aqiSeq[0]
	last := aqiSeq[len(aqiSeq)-1]
	peak := first
	sum := 0
	for _, p := range aqiSeq {
		sum += p.AQI
		if p.AQI > peak.AQI {
			peak = p
		}
	}

	trend := domain.TrendStable
	delta := last.AQI - first.AQI
	switch {
	case delta > 10:
		trend = domain.TrendIncreasing
	case delta < -10:
		trend = domain.TrendDecreasing
	}

	return domain.AqiSummary{
		Current:   first.AQI,
		Peak:      peak.AQI,
		Average:   float64(sum) / float64(len(aqiSeq)),
		Trend:     trend,
		WorstHour: peak.Hour,
	}
}
