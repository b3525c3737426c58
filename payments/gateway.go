package payments

import "context"

// Receipt is what a successful charge returns: the gateway's transaction
// reference plus the settled amount and currency.
type Receipt struct {
	TransactionID string
	Amount        int64
	Currency      string
}

// Gateway authorizes a charge against a payment method reference. Calls are
// synchronous and single-shot; the caller decides what a failure means.
type Gateway interface {
	Charge(ctx context.Context, amount int64, paymentMethodRef string) (*Receipt, error)
}
