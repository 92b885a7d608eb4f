// cmd/report prints the trade ledger: recent trades and a per-instrument
// profit summary.
//
// Usage:
//
//	go run ./cmd/report --db=data/trades.db --last=20
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"

	"signalbot/internal/ledger"
	"signalbot/internal/model"
)

func main() {
	log.SetFlags(log.LstdFlags)

	dbPath := flag.String("db", "data/trades.db", "Path to the trade ledger database")
	last := flag.Int("last", 20, "Number of recent trades to print")
	flag.Parse()

	journal, err := ledger.Open(*dbPath)
	if err != nil {
		log.Fatalf("[report] open ledger: %v", err)
	}
	defer journal.Close()

	ctx := context.Background()

	trades, err := journal.Trades(ctx, *last)
	if err != nil {
		log.Fatalf("[report] read trades: %v", err)
	}
	sums, err := journal.Summarize(ctx)
	if err != nil {
		log.Fatalf("[report] summarize: %v", err)
	}

	if len(trades) == 0 {
		fmt.Println("ledger is empty")
		return
	}

	fmt.Printf("last %d trades (newest first):\n\n", len(trades))
	fmt.Printf("%-20s  %-14s  %-4s  %9s  %10s  %9s  %9s  %-5s  %s\n",
		"placed at", "figi", "side", "qty", "price", "fee", "profit", "dry", "signals")
	for _, t := range trades {
		fmt.Printf("%-20s  %-14s  %-4s  %9.2f  %10.4f  %9.2f  %9.2f  %-5v  %s\n",
			t.PlacedAt.Format("2006-01-02 15:04:05"),
			t.Figi, t.Side, t.Quantity, t.Price, t.Fee, profitCell(t),
			t.DryRun, strings.Join(t.Signals, ","))
	}

	fmt.Printf("\nper-instrument summary:\n\n")
	fmt.Printf("%-14s  %6s  %6s  %10s  %10s\n", "figi", "buys", "sells", "fees", "profit")
	var totalProfit, totalFees float64
	for _, s := range sums {
		fmt.Printf("%-14s  %6d  %6d  %10.2f  %10.2f\n", s.Figi, s.Buys, s.Sells, s.TotalFees, s.Profit)
		totalProfit += s.Profit
		totalFees += s.TotalFees
	}
	fmt.Printf("%-14s  %6s  %6s  %10.2f  %10.2f\n", "TOTAL", "", "", totalFees, totalProfit)
}

func profitCell(t model.TradeRecord) float64 {
	if t.Side == model.Buy {
		return 0
	}
	return t.Profit
}
