package http

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/codingniket/FinApp/internal/core"
)

func TestBuildChartViewEmpty(t *testing.T) {
	view := buildChartView(core.DeriveChart(nil, time.UTC), core.SeriesBalance)

	if !view.Empty || view.Points != "" {
		t.Fatalf("view = %+v", view)
	}
	if len(view.Tabs) != 3 || !view.Tabs[2].Active {
		t.Errorf("tabs = %+v", view.Tabs)
	}
}

func TestBuildChartViewSinglePointIsCentered(t *testing.T) {
	txs := []core.Transaction{{Amount: decimal.NewFromInt(10), CreatedAt: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)}}
	view := buildChartView(core.DeriveChart(txs, time.UTC), core.SeriesIncome)

	if len(view.Dots) != 1 || view.Dots[0].X != float64(chartWidth)/2 {
		t.Fatalf("dots = %+v", view.Dots)
	}
	if view.Dots[0].Y != chartPadTop {
		t.Errorf("max value should sit at the top, y = %v", view.Dots[0].Y)
	}
	if view.Labels[0].Text != "5/1" || view.Dots[0].Value != "$10.00" {
		t.Errorf("label = %q value = %q", view.Labels[0].Text, view.Dots[0].Value)
	}
}

func TestBuildChartViewBalanceSpansZero(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2025, 2, d, 0, 0, 0, 0, time.UTC) }
	txs := []core.Transaction{
		{Amount: decimal.NewFromInt(-30), CreatedAt: day(1)},
		{Amount: decimal.NewFromInt(50), CreatedAt: day(2)},
		{Amount: decimal.NewFromInt(-10), CreatedAt: day(3)},
	}
	view := buildChartView(core.DeriveChart(txs, time.UTC), core.SeriesBalance)

	if len(strings.Fields(view.Points)) != 3 {
		t.Fatalf("points = %q", view.Points)
	}
	if view.Dots[0].X != chartPadX || view.Dots[2].X != chartWidth-chartPadX {
		t.Errorf("x range = %v..%v", view.Dots[0].X, view.Dots[2].X)
	}
	bottom := float64(chartHeight - chartPadBase)
	if view.Dots[0].Y != bottom {
		t.Errorf("minimum (-30) should sit at the bottom, y = %v", view.Dots[0].Y)
	}
	if view.BaselineY <= view.Dots[1].Y || view.BaselineY >= view.Dots[0].Y {
		t.Errorf("baseline %v should lie between %v and %v", view.BaselineY, view.Dots[1].Y, view.Dots[0].Y)
	}
	if view.Color != "#2563eb" || view.Label != "Balance" {
		t.Errorf("color=%q label=%q", view.Color, view.Label)
	}
}
