package chart

import (
	"errors"

	"github.com/vicanso/go-charts/v2"

	"gogPriceBot/internal/gogdb"
)

// Render draws the price history for a product as a PNG line chart. A
// two-point series (the parser's single-record expansion) gets category
// labels; anything longer gets the chronological axis with thinned ticks.
// Rendered images are cached per product for a short window so repeated
// commands in a chat do not re-render.
func Render(productID string, s gogdb.Series, m gogdb.Metrics) ([]byte, error) {
	if len(s.Labels) == 0 || len(s.Labels) != len(s.Prices) {
		return nil, errors.New("no data points to render")
	}

	if img, ok := cacheGet(productID); ok {
		return img, nil
	}

	var img []byte
	var err error
	if len(s.Labels) == 2 {
		img, err = renderTwoPoint(s)
	} else {
		img, err = renderHistory(s, m)
	}
	if err != nil {
		return nil, err
	}
	cacheSet(productID, img)
	return img, nil
}

func renderHistory(s gogdb.Series, m gogdb.Metrics) ([]byte, error) {
	xAll := make([]string, len(s.Labels))
	yMax := 0.0
	for i, t := range s.Labels {
		xAll[i] = t.Format("Jan 2006")
		if s.Prices[i] > yMax {
			yMax = s.Prices[i]
		}
	}
	// Keep the axis tall enough to show the pre-discount level.
	if m.HighestBasePrice > yMax {
		yMax = m.HighestBasePrice
	}
	yMin := 0.0
	yMax *= 1.05
	split := len(xAll) / 3
	if split < 2 {
		split = 2
	}
	if split > 12 {
		split = 12
	}

	painter, err := charts.LineRender([][]float64{s.Prices},
		charts.TitleTextOptionFunc("Price history"),
		charts.XAxisOptionFunc(charts.XAxisOption{Data: xAll, BoundaryGap: charts.FalseFlag(), SplitNumber: split}),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}

func renderTwoPoint(s gogdb.Series) ([]byte, error) {
	xAxisData := []string{
		s.Labels[0].Format("Jan 2, 2006"),
		s.Labels[1].Format("Jan 2006"),
	}
	yMin := 0.0
	yMax := s.Prices[0] * 1.25
	if yMax == 0 {
		yMax = 1
	}
	painter, err := charts.LineRender([][]float64{s.Prices},
		charts.TitleTextOptionFunc("Price history"),
		charts.XAxisDataOptionFunc(xAxisData),
		charts.YAxisOptionFunc(charts.YAxisOption{Min: &yMin, Max: &yMax, DivideCount: 5}),
		charts.ThemeOptionFunc(charts.ThemeLight),
	)
	if err != nil {
		return nil, err
	}
	return painter.Bytes()
}
