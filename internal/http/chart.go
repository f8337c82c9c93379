package http

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/codingniket/FinApp/internal/core"
)

// Chart geometry in SVG user units.
const (
	chartWidth   = 340
	chartHeight  = 220
	chartPadX    = 28
	chartPadTop  = 16
	chartPadBase = 32
)

type chartPoint struct {
	X, Y  float64
	Value string
}

type chartLabel struct {
	X    float64
	Text string
}

type seriesTab struct {
	Value  string
	Label  string
	Active bool
}

// chartView is the template model of the trend chart.
type chartView struct {
	Width, Height int
	Color         string
	Label         string
	Points        string
	Dots          []chartPoint
	Labels        []chartLabel
	BaselineY     float64
	Tabs          []seriesTab
	Empty         bool
}

func buildChartView(c core.Chart, series core.Series) chartView {
	view := chartView{
		Width:  chartWidth,
		Height: chartHeight,
		Color:  series.Color(),
		Label:  series.Label(),
		Empty:  c.Len() == 0,
	}
	for _, s := range []core.Series{core.SeriesIncome, core.SeriesExpense, core.SeriesBalance} {
		view.Tabs = append(view.Tabs, seriesTab{Value: string(s), Label: s.Label(), Active: s == series})
	}
	if view.Empty {
		return view
	}

	values := c.Values(series)
	lo, hi := decimal.Zero, decimal.Zero
	for _, v := range values {
		lo = decimal.Min(lo, v)
		hi = decimal.Max(hi, v)
	}
	span := hi.Sub(lo).InexactFloat64()
	if span == 0 {
		span = 1
	}
	plotW := float64(chartWidth - 2*chartPadX)
	plotH := float64(chartHeight - chartPadTop - chartPadBase)
	y := func(v decimal.Decimal) float64 {
		return round1(float64(chartPadTop) + (hi.InexactFloat64()-v.InexactFloat64())/span*plotH)
	}

	points := make([]string, 0, len(values))
	for i, v := range values {
		x := float64(chartWidth) / 2
		if len(values) > 1 {
			x = float64(chartPadX) + float64(i)*plotW/float64(len(values)-1)
		}
		x = round1(x)
		py := y(v)
		points = append(points, formatFloat(x)+","+formatFloat(py))
		view.Dots = append(view.Dots, chartPoint{X: x, Y: py, Value: core.FormatCurrency(v)})
		view.Labels = append(view.Labels, chartLabel{X: x, Text: c.Labels[i]})
	}
	view.Points = strings.Join(points, " ")
	view.BaselineY = y(decimal.Zero)
	return view
}

func round1(f float64) float64 {
	return float64(int64(f*10+0.5)) / 10
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
