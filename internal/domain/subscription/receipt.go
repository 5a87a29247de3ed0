package subscription

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-faster/errors"

	"github.com/xenking/efitness/internal/domain/calendar"
)

// Receipt renders a plain-text receipt for one of the client's payments.
func (s *Service) Receipt(ctx context.Context, clientID, paymentID int64) (string, error) {
	p, err := s.store.PaymentForClient(ctx, clientID, paymentID)
	if err != nil {
		return "", err
	}
	name, email, err := s.directory.Contact(ctx, clientID)
	if err != nil {
		return "", errors.Wrap(err, "get client")
	}

	subID := "N/A"
	if p.SubscriptionID != 0 {
		subID = strconv.FormatInt(p.SubscriptionID, 10)
	}

	var b strings.Builder
	b.WriteString("\n--- E-Fitness Payment Receipt ---\n\n")
	fmt.Fprintf(&b, "Payment ID: %d\n", p.ID)
	fmt.Fprintf(&b, "Client Name: %s\n", orNA(name))
	fmt.Fprintf(&b, "Client Email: %s\n", orNA(email))
	fmt.Fprintf(&b, "Subscription ID: %s\n", subID)
	fmt.Fprintf(&b, "Amount: $%s\n", p.Amount.StringFixed(2))
	fmt.Fprintf(&b, "Payment Date: %s (UTC+6)\n", calendar.Stamp(p.PaymentDate))
	fmt.Fprintf(&b, "Method: %s\n", orNA(p.Method))
	fmt.Fprintf(&b, "Status: %s\n", orNA(p.Status))
	fmt.Fprintf(&b, "Transaction Reference: %s\n", orNA(p.TransactionRef))
	b.WriteString("\nThank you for your payment!\n-----------------------------\n")
	return b.String(), nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
