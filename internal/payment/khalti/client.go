// Package khalti talks to the Khalti ePayment v2 API.
package khalti

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Skotchmaster/beauty_shop/internal/payment"
)

const (
	DefaultBaseURL  = "https://a.khalti.com/api/v2"
	StatusCompleted = "Completed"
	maxErrorBody    = 64 << 10
)

type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewClient(baseURL, secretKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type customerInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type initiatePayload struct {
	ReturnURL         string        `json:"return_url"`
	WebsiteURL        string        `json:"website_url"`
	Amount            int64         `json:"amount"`
	PurchaseOrderID   string        `json:"purchase_order_id"`
	PurchaseOrderName string        `json:"purchase_order_name"`
	CustomerInfo      *customerInfo `json:"customer_info,omitempty"`
}

type initiateResponse struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
	ExpiresAt  string `json:"expires_at"`
}

type lookupResponse struct {
	Pidx          string `json:"pidx"`
	TotalAmount   int64  `json:"total_amount"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

type errorBody struct {
	Detail   string `json:"detail"`
	ErrorKey string `json:"error_key"`
}

func (c *Client) Initiate(ctx context.Context, req payment.InitiateRequest) (*payment.Session, error) {
	body := initiatePayload{
		ReturnURL:         req.ReturnURL,
		WebsiteURL:        req.WebsiteURL,
		Amount:            payment.MinorUnits(req.Amount),
		PurchaseOrderID:   req.OrderID,
		PurchaseOrderName: req.PurchaseOrderName,
	}
	if req.Customer != (payment.Customer{}) {
		body.CustomerInfo = &customerInfo{Name: req.Customer.Name, Email: req.Customer.Email, Phone: req.Customer.Phone}
	}

	var out initiateResponse
	if err := c.post(ctx, "/epayment/initiate/", body, &out); err != nil {
		return nil, err
	}
	if out.PaymentURL == "" || out.Pidx == "" {
		return nil, &payment.ProviderError{StatusCode: http.StatusBadGateway, Detail: "initiate response without pidx or payment_url"}
	}
	return &payment.Session{PaymentURL: out.PaymentURL, Pidx: out.Pidx, ExpiresAt: out.ExpiresAt}, nil
}

// Verify looks up pidx. A gateway rejection is returned as a ProviderFailure
// outcome; the error is reserved for transport and decoding failures.
func (c *Client) Verify(ctx context.Context, pidx string) (payment.Outcome, error) {
	var out lookupResponse
	err := c.post(ctx, "/epayment/lookup/", map[string]string{"pidx": pidx}, &out)
	if err != nil {
		var pe *payment.ProviderError
		if errors.As(err, &pe) {
			return payment.Outcome{State: payment.ProviderFailure, Err: pe}, nil
		}
		return payment.Outcome{}, err
	}

	o := payment.Outcome{Status: out.Status, TransactionID: out.TransactionID, TotalAmount: out.TotalAmount}
	if out.Status == StatusCompleted {
		o.State = payment.Completed
	} else {
		o.State = payment.NotCompleted
	}
	return o, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		pe := &payment.ProviderError{StatusCode: resp.StatusCode, Raw: raw}
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil {
			pe.Key = eb.ErrorKey
			pe.Detail = eb.Detail
		}
		if pe.Detail == "" {
			pe.Detail = http.StatusText(resp.StatusCode)
		}
		return pe
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
