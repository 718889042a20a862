package formulas

import "time"

// Drawdown represents the largest peak-to-trough decline in a value series
type Drawdown struct {
	Value     float64   `json:"value"` // decline as a positive percentage
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Duration  int       `json:"duration"` // days from peak to trough
}

// MaxDrawdown scans a dated value series for the largest peak-to-trough
// decline and reports it with the date range of that decline.
//
// Drawdown = (Peak - Trough) / Peak, as a positive percentage
//
// Fewer than 2 points yields a zero Drawdown.
func MaxDrawdown(dates []time.Time, values []float64) Drawdown {
	if len(values) < 2 || len(dates) != len(values) {
		return Drawdown{}
	}

	var max Drawdown
	peak := values[0]
	peakDate := dates[0]

	for i, value := range values {
		if value > peak {
			peak = value
			peakDate = dates[i]
		}

		if peak > 0 {
			dd := (peak - value) / peak * 100
			if dd > max.Value {
				max = Drawdown{
					Value:     dd,
					StartDate: peakDate,
					EndDate:   dates[i],
					Duration:  int(dates[i].Sub(peakDate).Hours() / 24),
				}
			}
		}
	}

	return max
}
