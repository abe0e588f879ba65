package gogdb

import "time"

// PriceRecord is one observed price point from GOGDB, in integer cents.
// A zero PriceFinal means the record carries no usable final price.
type PriceRecord struct {
	Date       string `json:"date"`
	PriceBase  int64  `json:"price_base"`
	PriceFinal int64  `json:"price_final"`
}

// RawHistory mirrors the GOGDB prices.json payload: region -> currency ->
// chronological records. Only the US/USD bucket is read; a payload without
// it is a valid empty history.
type RawHistory map[string]map[string][]PriceRecord

// Series is the chart-ready view of a history: parallel date/price slices,
// equal length, prices in dollars.
type Series struct {
	Labels []time.Time
	Prices []float64
}

// Metrics are derived alongside the series on every parse.
type Metrics struct {
	LowestPrice      float64
	HighestBasePrice float64
}
