package paystack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

type Client struct {
	HTTPClient *http.Client
	BaseURL    string
	SecretKey  string
}

func (c Client) doJSON(ctx context.Context, method, path string, reqBody any, respBody any) (int, error) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 20 * time.Second}
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://api.paystack.co"
	}
	if c.SecretKey == "" {
		return 0, fmt.Errorf("missing paystack secret key")
	}

	var buf bytes.Buffer
	if reqBody != nil {
		if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
			return 0, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	b, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return resp.StatusCode, readErr
	}

	// Surface the Paystack error body for non-2xx so callers can see declined
	// reasons, bad keys, etc.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(b) > 0 {
			return resp.StatusCode, fmt.Errorf("paystack api error: status=%d body=%s", resp.StatusCode, string(b))
		}
		return resp.StatusCode, fmt.Errorf("paystack api error: status=%d", resp.StatusCode)
	}

	if respBody != nil && len(b) > 0 {
		if err := json.Unmarshal(b, respBody); err != nil {
			return resp.StatusCode, fmt.Errorf("decode paystack response failed: %w body=%s", err, string(b))
		}
	}

	return resp.StatusCode, nil
}

type initializeRequest struct {
	Email      string `json:"email"`
	AmountKobo int64  `json:"amount"`
	Reference  string `json:"reference,omitempty"`
	Currency   string `json:"currency,omitempty"`
}

type initializeResponse struct {
	Status bool `json:"status"`
	Data   struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// InitializeTransaction opens a checkout session and returns the hosted
// payment page URL plus the reference to reconcile against later.
func (c Client) InitializeTransaction(ctx context.Context, email string, amountKobo int64, reference, currency string) (authorizationURL string, ref string, err error) {
	var resp initializeResponse
	_, err = c.doJSON(ctx, http.MethodPost, "/transaction/initialize", initializeRequest{
		Email:      email,
		AmountKobo: amountKobo,
		Reference:  reference,
		Currency:   currency,
	}, &resp)
	if err != nil {
		return "", "", err
	}
	if !resp.Status || resp.Data.AuthorizationURL == "" {
		return "", "", fmt.Errorf("paystack initialize: unexpected response")
	}
	return resp.Data.AuthorizationURL, resp.Data.Reference, nil
}

// Transaction is the subset of a verified transaction we act on.
type Transaction struct {
	Status     string
	Reference  string
	AmountKobo int64
	Currency   string
	PaidAt     string
}

type verifyResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Status     string `json:"status"`
		Reference  string `json:"reference"`
		AmountKobo int64  `json:"amount"`
		Currency   string `json:"currency"`
		PaidAt     string `json:"paid_at"`
	} `json:"data"`
}

// VerifyTransaction fetches the settled state of a transaction by reference.
// Verification is an idempotent read; webhook retries and UI confirmations
// can both call it safely.
func (c Client) VerifyTransaction(ctx context.Context, reference string) (*Transaction, error) {
	if reference == "" {
		return nil, fmt.Errorf("missing reference")
	}
	var resp verifyResponse
	_, err := c.doJSON(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, fmt.Errorf("paystack verify: unexpected response")
	}
	return &Transaction{
		Status:     resp.Data.Status,
		Reference:  resp.Data.Reference,
		AmountKobo: resp.Data.AmountKobo,
		Currency:   resp.Data.Currency,
		PaidAt:     resp.Data.PaidAt,
	}, nil
}

type refundRequest struct {
	Transaction string `json:"transaction"`
}

type refundResponse struct {
	Status bool `json:"status"`
}

// Refund requests a full refund of a settled transaction.
func (c Client) Refund(ctx context.Context, reference string) error {
	var resp refundResponse
	_, err := c.doJSON(ctx, http.MethodPost, "/refund", refundRequest{Transaction: reference}, &resp)
	if err != nil {
		return err
	}
	if !resp.Status {
		return fmt.Errorf("paystack refund: unexpected response")
	}
	return nil
}
