// Package notification delivers trade and incident alerts to external
// channels (Telegram, webhooks) for the bot's operator.
package notification

import (
	"context"
	"fmt"
	"log"
	"strings"

	"signalbot/internal/model"
)

// AlertLevel represents the severity of an alert.
type AlertLevel string

const (
	AlertInfo     AlertLevel = "INFO"
	AlertWarning  AlertLevel = "WARNING"
	AlertCritical AlertLevel = "CRITICAL"
)

// Alert represents a notification to be sent.
type Alert struct {
	Level   AlertLevel `json:"level"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers an alert. Returns error if delivery fails.
	Send(ctx context.Context, alert Alert) error
}

// TradeAlert formats an alert for an executed (or dry-run) trade.
func TradeAlert(rec model.TradeRecord, ticker string) Alert {
	mode := ""
	if rec.DryRun {
		mode = " [dry-run]"
	}
	title := fmt.Sprintf("%s %s%s", rec.Side, ticker, mode)
	msg := fmt.Sprintf("qty %.2f @ %.4f, fee %.4f", rec.Quantity, rec.Price, rec.Fee)
	if rec.Side == model.Sell {
		msg += fmt.Sprintf(", profit %.4f", rec.Profit)
	}
	if len(rec.Signals) > 0 {
		msg += "\nsignals: " + strings.Join(rec.Signals, ", ")
	}
	return Alert{Level: AlertInfo, Title: title, Message: msg}
}

// LogNotifier is a simple notifier that logs alerts (useful for development
// and dry runs).
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(_ context.Context, alert Alert) error {
	log.Printf("[notify] [%s] %s: %s", alert.Level, alert.Title, alert.Message)
	return nil
}

// MultiNotifier fans one alert out to several backends. A delivery failure
// in one backend does not stop the others; the first error is returned.
type MultiNotifier []Notifier

func (m MultiNotifier) Send(ctx context.Context, alert Alert) error {
	var first error
	for _, n := range m {
		if err := n.Send(ctx, alert); err != nil && first == nil {
			first = err
		}
	}
	return first
}
