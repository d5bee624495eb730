package apitest

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

// Canned market data keyed by ticker. Tests needing different numbers can
// seed their own via SeedStock.
type stockFixture struct {
	Ticker      string  `json:"ticker"`
	Name        string  `json:"name"`
	Currency    string  `json:"currency"`
	Price       float64 `json:"price"`
	DayChange   float64 `json:"day_change"`
	LastUpdated string  `json:"last_updated"`
}

// SeedStock registers market data for a ticker.
func (s *Server) SeedStock(ticker, name string, price, dayChange float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stocks == nil {
		s.stocks = make(map[string]stockFixture)
	}
	s.stocks[ticker] = stockFixture{
		Ticker:      ticker,
		Name:        name,
		Currency:    "USD",
		Price:       price,
		DayChange:   dayChange,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
	}
}

func (s *Server) stock(ticker string) (stockFixture, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.stocks[ticker]
	return f, ok
}

func (s *Server) etlRoutes() http.Handler {
	r := chi.NewRouter()
	r.Post("/{ticker}/run", s.handleRunETL)
	r.Get("/{ticker}/results", s.handleStockResults)
	r.Get("/{ticker}/history", s.handleStockHistory)
	r.Get("/analytics/summary/", s.handleMarketSummary)
	r.Get("/analytics/correlation/{ticker}", s.handleCorrelation)
	r.Get("/analytics/trends", s.handleTrends)
	r.Get("/analytics/history/{ticker}", s.handleStockHistory)
	r.Get("/analytics/prediction/{ticker}", s.handlePrediction)
	r.Post("/video-generation/{ticker}/run", s.handleVideo)
	return r
}

func (s *Server) handleRunETL(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	s.writeJSON(w, http.StatusOK, map[string]string{"message": "ETL pipeline completed for " + ticker})
}

func (s *Server) handleStockResults(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	f, ok := s.stock(ticker)
	if !ok {
		s.writeDetail(w, http.StatusNotFound, "No data for ticker "+ticker)
		return
	}
	s.writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleStockHistory(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	f, ok := s.stock(ticker)
	if !ok {
		s.writeJSON(w, http.StatusOK, []any{})
		return
	}
	s.writeJSON(w, http.StatusOK, []map[string]any{
		{
			"ticker":     f.Ticker,
			"price":      f.Price,
			"day_change": f.DayChange,
			"timestamp":  f.LastUpdated,
		},
	})
}

func (s *Server) handleMarketSummary(w http.ResponseWriter, r *http.Request) {
	tickers := splitTickers(r.URL.Query().Get("tickers"))

	var sumPrice, sumChange float64
	var top, bottom *stockFixture
	for _, ticker := range tickers {
		f, ok := s.stock(ticker)
		if !ok {
			continue
		}
		sumPrice += f.Price
		sumChange += f.DayChange
		if top == nil || f.DayChange > top.DayChange {
			fc := f
			top = &fc
		}
		if bottom == nil || f.DayChange < bottom.DayChange {
			fc := f
			bottom = &fc
		}
	}

	n := float64(max(len(tickers), 1))
	resp := map[string]any{
		"tickers":            tickers,
		"average_price":      sumPrice / n,
		"average_day_change": sumChange / n,
	}
	if top != nil {
		resp["top_gainer"] = top
		resp["top_loser"] = bottom
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	f, ok := s.stock(ticker)
	if !ok {
		s.writeDetail(w, http.StatusNotFound, "No data for ticker "+ticker)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ticker":      ticker,
		"stock_data":  f,
		"ai_analysis": "No significant correlation detected for " + ticker,
	})
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	tickers := splitTickers(r.URL.Query().Get("tickers"))

	up := []stockFixture{}
	down := []stockFixture{}
	stable := []stockFixture{}
	for _, ticker := range tickers {
		f, ok := s.stock(ticker)
		if !ok {
			continue
		}
		switch {
		case f.DayChange > 0:
			up = append(up, f)
		case f.DayChange < 0:
			down = append(down, f)
		default:
			stable = append(stable, f)
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"total":  len(up) + len(down) + len(stable),
		"up":     up,
		"down":   down,
		"stable": stable,
	})
}

func (s *Server) handlePrediction(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	f, ok := s.stock(ticker)
	if !ok {
		s.writeDetail(w, http.StatusNotFound, "No data for ticker "+ticker)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ticker":     ticker,
		"price":      f.Price,
		"prediction": "hold",
	})
}

func (s *Server) handleVideo(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	w.Header().Set("Content-Type", "video/mp4")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("fake-video-bytes:" + ticker))
}

func splitTickers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
