package main

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dmitrymomot/stockdash/pkg/async"
	"github.com/dmitrymomot/stockdash/pkg/stocks"
)

// defaultWatchlist mirrors the tickers the dashboard tracks out of the box.
var defaultWatchlist = []string{"AAPL", "GOOG", "MSFT", "AMZN", "TSLA"}

func (a *app) cmdDashboard(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	tickerList := flags.String("tickers", strings.Join(defaultWatchlist, ","), "comma-separated watchlist")
	refresh := flags.Bool("refresh", false, "trigger a data refresh for each ticker first")
	if err := flags.Parse(args); err != nil {
		return errUsage
	}

	user, err := a.requireSession()
	if err != nil {
		return err
	}

	// Refresh the profile so the header reflects the backend, not the
	// persisted mirror.
	if fresh, err := a.session.FetchIdentity(ctx, user.ID); err == nil {
		user = fresh
	} else {
		a.log.Warn("profile refresh failed", "error", err)
	}

	fmt.Fprintf(a.stdout, "Dashboard for %s (%s)\n\n", user.Username, user.Role)

	tickers := splitTickers(*tickerList)
	if *refresh {
		for _, ticker := range tickers {
			if err := a.stocks.RunETL(ctx, ticker); err != nil {
				a.log.Warn("refresh failed", "ticker", ticker, "error", err)
			}
		}
	}

	a.printQuotes(ctx, tickers)
	a.printSummary(ctx, tickers)
	a.printTrends(ctx, tickers)
	return nil
}

// printQuotes lists current data per ticker. Fetches run concurrently;
// individual failures degrade to a placeholder row so one bad ticker does
// not blank the dashboard.
func (a *app) printQuotes(ctx context.Context, tickers []string) {
	futures := make([]*async.Future[*stocks.Stock], len(tickers))
	for i, ticker := range tickers {
		futures[i] = async.Async(ctx, ticker, a.stocks.Results)
	}

	w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TICKER\tNAME\tPRICE\tCHANGE")
	for i, ticker := range tickers {
		stock, err := futures[i].Await()
		if err != nil {
			a.log.Warn("quote fetch failed", "ticker", ticker, "error", err)
			fmt.Fprintf(w, "%s\t-\t-\t-\n", ticker)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%+.2f%%\n", stock.Ticker, stock.Name, stock.Price, stock.DayChange)
	}
	w.Flush()
}

func (a *app) printSummary(ctx context.Context, tickers []string) {
	summary, err := a.stocks.MarketSummary(ctx, tickers)
	if err != nil {
		a.log.Warn("market summary failed", "error", err)
		return
	}
	fmt.Fprintf(a.stdout, "\nAverage price: %.2f, average change: %+.2f%%\n",
		summary.AveragePrice, summary.AverageDayChange)
	if summary.TopGainer != nil {
		fmt.Fprintf(a.stdout, "Top gainer: %s (%+.2f%%)\n", summary.TopGainer.Ticker, summary.TopGainer.DayChange)
	}
	if summary.TopLoser != nil {
		fmt.Fprintf(a.stdout, "Top loser:  %s (%+.2f%%)\n", summary.TopLoser.Ticker, summary.TopLoser.DayChange)
	}
}

func (a *app) printTrends(ctx context.Context, tickers []string) {
	trends, err := a.stocks.Trends(ctx, tickers)
	if err != nil {
		a.log.Warn("trend analysis failed", "error", err)
		return
	}
	fmt.Fprintf(a.stdout, "\nTrends: %d up, %d down, %d stable\n",
		len(trends.Up), len(trends.Down), len(trends.Stable))
}

func splitTickers(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.ToUpper(strings.TrimSpace(p)); t != "" {
			out = append(out, t)
		}
	}
	return out
}
