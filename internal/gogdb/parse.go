package gogdb

import (
	"math"
	"time"
)

// ParsePriceHistory shapes a raw history into a chart series plus derived
// metrics. Pure: identical input and now always produce identical output.
//
// A single-record history becomes a two-point horizontal segment from the
// record's date to the first day of now's month, priced at the lower of the
// record's base and final price. Launch-day discounts would otherwise hide
// the pre-discount reference price, and one point cannot render a trend.
func ParsePriceHistory(raw RawHistory, now time.Time) (Series, Metrics) {
	var history []PriceRecord
	if currencies, ok := raw["US"]; ok {
		history = currencies["USD"]
	}

	if len(history) == 1 {
		rec := history[0]
		base := float64(rec.PriceBase) / 100
		final := float64(rec.PriceFinal) / 100
		low := math.Min(base, final)
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Series{
				Labels: []time.Time{parseDate(rec.Date), monthStart},
				Prices: []float64{low, low},
			}, Metrics{
				LowestPrice:      low,
				HighestBasePrice: base,
			}
	}

	labels := make([]time.Time, 0, len(history))
	prices := make([]float64, 0, len(history))
	lowest := math.Inf(1)
	highestBase := 0.0
	for _, rec := range history {
		if rec.PriceFinal == 0 {
			continue
		}
		price := float64(rec.PriceFinal) / 100
		if price <= 0 {
			continue
		}
		date := parseDate(rec.Date)
		if date.IsZero() {
			continue
		}
		labels = append(labels, date)
		prices = append(prices, price)
		lowest = math.Min(lowest, price)
		highestBase = math.Max(highestBase, float64(rec.PriceBase)/100)
	}
	if math.IsInf(lowest, 1) {
		lowest = 0
	}
	return Series{Labels: labels, Prices: prices}, Metrics{
		LowestPrice:      lowest,
		HighestBasePrice: highestBase,
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07:00",
	"2006-01-02",
}

func parseDate(s string) time.Time {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
