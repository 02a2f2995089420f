package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/format"
	"github.com/joao-fontenele/storefront/internal/messaging"
)

// ReceiptHandler turns order.placed events into receipt emails.
type ReceiptHandler struct {
	emailServiceURL string
	httpClient      *http.Client
	logger          *slog.Logger
}

func NewReceiptHandler(emailServiceURL string, client *http.Client, logger *slog.Logger) *ReceiptHandler {
	return &ReceiptHandler{
		emailServiceURL: strings.TrimRight(emailServiceURL, "/"),
		httpClient:      client,
		logger:          logger,
	}
}

type emailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func (h *ReceiptHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderPlacedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return messaging.Skip(fmt.Errorf("unmarshal order placed event: %w", err))
	}
	if event.Email == "" {
		return messaging.Skip(fmt.Errorf("order %d has no recipient", event.OrderID))
	}

	h.logger.Info("processing order placed event", "event_id", event.EventID, "order_id", event.OrderID, "user_id", event.UserID)

	receipt := emailRequest{
		To:      event.Email,
		Subject: fmt.Sprintf("Receipt for order #%d", event.OrderID),
		Body:    RenderReceipt(event),
	}
	if err := h.sendEmail(ctx, receipt); err != nil {
		h.logger.Error("failed to send receipt", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send receipt: %w", err)
	}

	h.logger.Info("receipt sent", "order_id", event.OrderID)
	return nil
}

// RenderReceipt formats the plain-text receipt body.
func RenderReceipt(event domain.OrderPlacedEvent) string {
	var b strings.Builder

	name := event.Name
	if name == "" {
		name = "customer"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", name)
	fmt.Fprintf(&b, "Thank you for your order #%d placed on %s.\n\n", event.OrderID, format.Timestamp(event.Timestamp))

	for _, item := range event.Items {
		fmt.Fprintf(&b, "- %s x%d @ %s\n", item.ProductName, item.Quantity, format.IDR(item.Price))
	}

	fmt.Fprintf(&b, "\nTotal: %s\n", format.IDR(event.Total))
	return b.String()
}

func (h *ReceiptHandler) sendEmail(ctx context.Context, body emailRequest) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	return nil
}
