package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Currency is fixed for the whole deployment; the clinic bills in one currency.
const Currency = "usd"

// StripeGateway charges payment methods through the Stripe PaymentIntents API
// using plain HTTP form posts.
type StripeGateway struct {
	secretKey  string
	baseURL    string
	apiVersion string
	httpClient *http.Client
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{
		secretKey:  secretKey,
		baseURL:    "https://api.stripe.com",
		apiVersion: "2024-12-18.acacia",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL overrides the Stripe API base URL (for testing).
func (g *StripeGateway) WithBaseURL(baseURL string) *StripeGateway {
	if baseURL != "" {
		g.baseURL = strings.TrimRight(baseURL, "/")
	}
	return g
}

type intentResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Error    *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Charge creates and confirms a PaymentIntent for the given amount.
func (g *StripeGateway) Charge(ctx context.Context, amount int64, paymentMethodRef string) (*Receipt, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", Currency)
	form.Set("payment_method", paymentMethodRef)
	form.Set("confirm", "true")
	form.Set("automatic_payment_methods[enabled]", "true")
	form.Set("automatic_payment_methods[allow_redirects]", "never")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("payments: build stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Stripe-Version", g.apiVersion)
	req.Header.Set("Idempotency-Key", uuid.New().String())

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payments: stripe request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("payments: read stripe response: %w", err)
	}

	var intent intentResponse
	if err := json.Unmarshal(body, &intent); err != nil {
		return nil, fmt.Errorf("payments: decode stripe response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := "charge declined"
		if intent.Error != nil && intent.Error.Message != "" {
			msg = intent.Error.Message
		}
		return nil, fmt.Errorf("payments: %s", msg)
	}

	return &Receipt{
		TransactionID: intent.ID,
		Amount:        intent.Amount,
		Currency:      intent.Currency,
	}, nil
}
