package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/efitness/internal/domain/calendar"
)

// Receipt renders a plain-text receipt for one of the client's orders.
func (s *Service) Receipt(ctx context.Context, clientID, orderID int64) (string, error) {
	o, err := s.store.GetForClient(ctx, clientID, orderID)
	if err != nil {
		return "", err
	}
	pay, err := s.store.PaymentForOrder(ctx, orderID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return "", errors.Wrap(err, "get payment")
	}
	name, email, err := s.directory.Contact(ctx, clientID)
	if err != nil {
		return "", errors.Wrap(err, "get client")
	}
	return renderReceipt(o, pay, name, email), nil
}

func renderReceipt(o *Order, pay *Payment, name, email string) string {
	method, payDate := "N/A", "N/A"
	if pay != nil {
		method = orNA(pay.Method)
		payDate = calendar.Stamp(pay.PaymentDate)
	}

	var b strings.Builder
	b.WriteString("\n--- E-Fitness Order Receipt ---\n\n")
	b.WriteString("Company Name: E-Fitness\n")
	fmt.Fprintf(&b, "Order ID: %d\n", o.ID)
	fmt.Fprintf(&b, "Client Name: %s\n", orNA(name))
	fmt.Fprintf(&b, "Client Email: %s\n", orNA(email))
	fmt.Fprintf(&b, "Order Date: %s (UTC+6)\n", calendar.Stamp(o.OrderDate))
	fmt.Fprintf(&b, "Total Amount: $%s\n", o.TotalAmount.StringFixed(2))
	fmt.Fprintf(&b, "Order Status: %s\n", o.Status)
	fmt.Fprintf(&b, "Payment Method: %s\n", method)
	fmt.Fprintf(&b, "Payment Date (Product): %s\n", payDate)
	b.WriteString("\n--- Order Items ---\n")
	for _, it := range o.Items {
		fmt.Fprintf(&b, "\nProduct: %s\n", it.ProductName)
		fmt.Fprintf(&b, "Quantity: %d\n", it.Quantity)
		fmt.Fprintf(&b, "Unit Price: $%s\n", it.UnitPrice.StringFixed(2))
		fmt.Fprintf(&b, "Subtotal: $%s\n", it.Subtotal().StringFixed(2))
	}
	b.WriteString("\n-----------------------------\nThank you for your purchase!\n")
	return b.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
