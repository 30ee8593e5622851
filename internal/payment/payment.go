// Package payment creates Mercado Pago checkout preferences.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Currency of every line item.
const Currency = "ARS"

// ShippingTitle is the label of the extra line carrying the shipping cost.
const ShippingTitle = "Envío"

// Installments offered on the hosted checkout.
const Installments = 12

var (
	// ErrMissingRedirect means the gateway answered without any checkout URL.
	ErrMissingRedirect = errors.New("payment preference has no init_point or sandbox_init_point")
	// ErrGateway wraps non-2xx answers from the gateway.
	ErrGateway = errors.New("payment gateway returned an error")
	// ErrPaymentNotFound means the gateway does not know the payment id.
	ErrPaymentNotFound = errors.New("payment not found")
)

// Item is one purchasable line.
type Item struct {
	Title      string  `json:"title" binding:"required"`
	Quantity   int     `json:"quantity" binding:"required,gt=0"`
	UnitPrice  float64 `json:"unit_price" binding:"gte=0"`
	CurrencyID string  `json:"currency_id,omitempty"`
}

// Request is what the storefront sends to create a preference.
type Request struct {
	Items        []Item  `json:"items" binding:"required,min=1,dive"`
	ShippingCost float64 `json:"shipping_cost" binding:"gte=0"`
	Total        float64 `json:"total"`
	// ExternalReference ties the payment back to a session.
	ExternalReference string `json:"external_reference,omitempty"`
}

// BackURLs are the storefront pages the gateway redirects to.
type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type paymentMethods struct {
	ExcludedPaymentMethods []any `json:"excluded_payment_methods"`
	ExcludedPaymentTypes   []any `json:"excluded_payment_types"`
	Installments           int   `json:"installments"`
}

type shipments struct {
	Cost float64 `json:"cost"`
	Mode string  `json:"mode"`
}

// preference is the gateway request body.
type preference struct {
	Items             []Item         `json:"items"`
	BackURLs          BackURLs       `json:"back_urls"`
	PaymentMethods    paymentMethods `json:"payment_methods"`
	Shipments         shipments      `json:"shipments"`
	NotificationURL   string         `json:"notification_url"`
	ExternalReference string         `json:"external_reference,omitempty"`
}

// Preference is the gateway answer the storefront needs.
type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// RedirectURL picks the production checkout URL, falling back to the sandbox
// one.
func (p Preference) RedirectURL() (string, error) {
	if p.InitPoint != "" {
		return p.InitPoint, nil
	}
	if p.SandboxInitPoint != "" {
		return p.SandboxInitPoint, nil
	}
	return "", ErrMissingRedirect
}

// Client talks to the preferences endpoint.
type Client struct {
	baseURL         string
	accessToken     string
	backURLs        BackURLs
	notificationURL string
	http            *http.Client
}

// NewClient builds a client. storefrontURL is the public base of the shop
// (back URLs live under /pago/...); webhookURL receives notifications.
func NewClient(apiURL, accessToken, storefrontURL, webhookURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	base := strings.TrimRight(storefrontURL, "/")
	return &Client{
		baseURL:     strings.TrimRight(apiURL, "/"),
		accessToken: accessToken,
		backURLs: BackURLs{
			Success: base + "/pago/success",
			Failure: base + "/pago/failure",
			Pending: base + "/pago/pending",
		},
		notificationURL: webhookURL,
		http:            hc,
	}
}

// BuildItems converts the request into gateway lines, adding the shipping
// line and forcing the currency.
func BuildItems(req Request) []Item {
	items := make([]Item, 0, len(req.Items)+1)
	for _, it := range req.Items {
		it.CurrencyID = Currency
		items = append(items, it)
	}
	return append(items, Item{
		Title:      ShippingTitle,
		Quantity:   1,
		UnitPrice:  req.ShippingCost,
		CurrencyID: Currency,
	})
}

// CreatePreference registers a checkout with the gateway. The returned
// preference always has a usable redirect URL; otherwise ErrMissingRedirect.
func (c *Client) CreatePreference(ctx context.Context, req Request) (Preference, error) {
	body := preference{
		Items:    BuildItems(req),
		BackURLs: c.backURLs,
		PaymentMethods: paymentMethods{
			ExcludedPaymentMethods: []any{},
			ExcludedPaymentTypes:   []any{},
			Installments:           Installments,
		},
		Shipments:         shipments{Cost: req.ShippingCost, Mode: "not_specified"},
		NotificationURL:   c.notificationURL,
		ExternalReference: req.ExternalReference,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return Preference{}, fmt.Errorf("encode preference: %w", err)
	}

	raw, status, err := c.call(ctx, http.MethodPost, "/checkout/preferences", payload)
	if err != nil {
		return Preference{}, fmt.Errorf("create preference: %w", err)
	}
	if status < 200 || status > 299 {
		return Preference{}, fmt.Errorf("%w: status %d: %s", ErrGateway, status, strings.TrimSpace(string(raw)))
	}

	var pref Preference
	if err := json.Unmarshal(raw, &pref); err != nil {
		return Preference{}, fmt.Errorf("decode preference: %w", err)
	}
	if _, err := pref.RedirectURL(); err != nil {
		return pref, err
	}
	return pref, nil
}

// Payment is the gateway's record of one payment attempt.
type Payment struct {
	ID                int64   `json:"id"`
	Status            string  `json:"status"`
	StatusDetail      string  `json:"status_detail"`
	ExternalReference string  `json:"external_reference"`
	TransactionAmount float64 `json:"transaction_amount"`
}

// GetPayment fetches a payment by id so a redirect can be checked against
// what the gateway actually recorded.
func (c *Client) GetPayment(ctx context.Context, id string) (Payment, error) {
	if strings.TrimSpace(id) == "" {
		return Payment{}, ErrPaymentNotFound
	}
	raw, status, err := c.call(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(id), nil)
	if err != nil {
		return Payment{}, fmt.Errorf("get payment: %w", err)
	}
	switch {
	case status == http.StatusNotFound:
		return Payment{}, ErrPaymentNotFound
	case status < 200 || status > 299:
		return Payment{}, fmt.Errorf("%w: status %d: %s", ErrGateway, status, strings.TrimSpace(string(raw)))
	}

	var p Payment
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payment{}, fmt.Errorf("decode payment: %w", err)
	}
	return p, nil
}

func (c *Client) call(ctx context.Context, method, path string, payload []byte) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, 0, fmt.Errorf("read response: %w", err)
	}
	return raw, resp.StatusCode, nil
}
