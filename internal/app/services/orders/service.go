// Package orders fabricates order confirmations. Nothing is persisted; the
// endpoint exists only to return a plausible acknowledgement with a fresh
// correlation id.
package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/brokerdesk/intake/internal/app/domain/application"
	"github.com/brokerdesk/intake/internal/app/domain/order"
	"github.com/brokerdesk/intake/pkg/logger"
)

// Service builds order confirmations.
type Service struct {
	log *logger.Logger
}

// New constructs an orders service.
func New(log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("orders")
	}
	return &Service{log: log}
}

// Confirm returns a fabricated confirmation for the item/qty/address triple.
func (s *Service) Confirm(_ context.Context, item, qty, address string) (order.Confirmation, error) {
	item = strings.TrimSpace(item)
	qty = strings.TrimSpace(qty)
	address = strings.TrimSpace(address)
	if item == "" || qty == "" || address == "" {
		return order.Confirmation{}, &application.ValidationError{Msg: "item, qty and address are required"}
	}

	plural := "s"
	if qty == "1" {
		plural = ""
	}
	orderID := uuid.NewString()

	conf := order.Confirmation{
		OrderID: orderID,
		Item:    item,
		Qty:     qty,
		Address: address,
		Message: fmt.Sprintf("Your order for %s %s%s to be delivered to %s was submitted.  The order number is: %s.",
			qty, item, plural, address, orderID),
	}
	s.log.WithField("order_id", orderID).Info("order confirmed")
	return conf, nil
}
