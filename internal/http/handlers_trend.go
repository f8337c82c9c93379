package http

import (
	"net/http"

	"github.com/codingniket/FinApp/internal/core"
	"github.com/codingniket/FinApp/internal/ledger"
	applog "github.com/codingniket/FinApp/internal/log"
)

type trendPage struct {
	layout
	Chart  chartView
	Series string
	Count  int
}

// handleTrend plots the last transactions. ?refresh=1 refetches the window
// the same way the pull-to-refresh gesture does.
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFromContext(ctx)
	series := core.ParseSeries(r.URL.Query().Get("series"))

	recent := ledger.NewRecent(s.wallet, user.ID, applog.FromContext(ctx))
	if r.URL.Query().Get("refresh") == "1" {
		recent.Refetch(ctx)
	} else {
		recent.Fetch(ctx)
	}
	txs := recent.Transactions()

	page := trendPage{
		layout: s.newLayout(w, r, "Trends", "trend"),
		Chart:  buildChartView(core.DeriveChart(txs, nil), series),
		Series: string(series),
		Count:  len(txs),
	}
	s.render(w, r, http.StatusOK, "trend.html", page)
}
