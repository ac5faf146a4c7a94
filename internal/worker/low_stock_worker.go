package worker

// low_stock_worker.go
// Processes low-stock alert jobs from QueueAlerts: when an out-movement
// leaves a product at or below the configured threshold, an email is sent to
// the configured operations address.

import (
	"context"
	"encoding/json"
	"fmt"

	"stockroom/internal/infra"

	"github.com/rs/zerolog/log"
)

// LowStockAlertPayload is the job envelope sent to QueueAlerts.
type LowStockAlertPayload struct {
	ToEmail     string `json:"to_email"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Stock       int    `json:"stock"`
	Threshold   int    `json:"threshold"`
}

// LowStockWorker sends alert emails via SMTP.
type LowStockWorker struct {
	mailer *infra.Mailer
}

func NewLowStockWorker(mailer *infra.Mailer) *LowStockWorker {
	return &LowStockWorker{mailer: mailer}
}

func (w *LowStockWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload LowStockAlertPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("low_stock_worker: invalid payload: %w", err)
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("low_stock_worker: empty to_email — skipping")
		return nil
	}

	subject := fmt.Sprintf("Low stock: %s (%d left)", payload.ProductName, payload.Stock)
	body := fmt.Sprintf(
		"Product %s (%s) is down to %d units (alert threshold %d).\nRestock via an 'in' stock mutation.",
		payload.ProductName, payload.ProductID, payload.Stock, payload.Threshold,
	)
	if err := w.mailer.Send(payload.ToEmail, subject, body); err != nil {
		return fmt.Errorf("low_stock_worker: send email: %w", err)
	}
	log.Info().Str("product", payload.ProductName).Int("stock", payload.Stock).
		Msg("low_stock_worker: alert sent")
	return nil
}
