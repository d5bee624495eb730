package stocks

// Stock is the latest known quote for a ticker.
type Stock struct {
	Ticker      string  `json:"ticker"`
	Name        string  `json:"name"`
	Currency    string  `json:"currency"`
	Price       float64 `json:"price"`
	DayChange   float64 `json:"day_change"`
	LastUpdated string  `json:"last_updated"`
	MongoID     string  `json:"_id,omitempty"`
}

// HistoryPoint is one observation in a ticker's price history.
type HistoryPoint struct {
	Ticker    string  `json:"ticker"`
	Price     float64 `json:"price"`
	DayChange float64 `json:"day_change"`
	Timestamp string  `json:"timestamp"`
	MongoID   string  `json:"_id,omitempty"`
}

// MarketSummary aggregates a set of tickers.
type MarketSummary struct {
	Tickers          []string `json:"tickers"`
	AveragePrice     float64  `json:"average_price"`
	AverageDayChange float64  `json:"average_day_change"`
	TopGainer        *Stock   `json:"top_gainer"`
	TopLoser         *Stock   `json:"top_loser"`
}

// Correlation is the analytics service's narrative for a single ticker. The
// analysis text is opaque to the client.
type Correlation struct {
	Ticker     string `json:"ticker"`
	StockData  Stock  `json:"stock_data"`
	AIAnalysis string `json:"ai_analysis"`
}

// TrendAnalysis buckets tickers by direction.
type TrendAnalysis struct {
	Total  int     `json:"total"`
	Up     []Stock `json:"up"`
	Down   []Stock `json:"down"`
	Stable []Stock `json:"stable"`
}

// Prediction is the analytics service's forward-looking call for a ticker,
// consumed as-is.
type Prediction struct {
	Ticker     string  `json:"ticker"`
	Price      float64 `json:"price"`
	Prediction string  `json:"prediction"`
}
