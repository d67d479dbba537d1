package document

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Generator produces the tenancy agreement document for a booking and
// returns a URL where the signed-off copy can be fetched.
type Generator interface {
	GenerateAgreement(ctx context.Context, bookingID string) (string, error)
}

// HTTPGenerator calls an external document service.
type HTTPGenerator struct {
	HTTPClient *http.Client
	BaseURL    string
}

func (g HTTPGenerator) GenerateAgreement(ctx context.Context, bookingID string) (string, error) {
	if g.HTTPClient == nil {
		g.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if g.BaseURL == "" {
		return "", fmt.Errorf("missing document service base url")
	}

	payload, err := json.Marshal(map[string]string{"bookingId": bookingID, "template": "tenancy_agreement"})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/documents", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	b, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return "", readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("document service error: status=%d body=%s", resp.StatusCode, string(b))
	}

	var out struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return "", fmt.Errorf("decode document response failed: %w body=%s", err, string(b))
	}
	if out.URL == "" {
		return "", fmt.Errorf("document service returned no url")
	}
	return out.URL, nil
}

// StaticGenerator returns deterministic URLs without calling anything.
// Used in dev and tests.
type StaticGenerator struct {
	BaseURL string
}

func (g StaticGenerator) GenerateAgreement(ctx context.Context, bookingID string) (string, error) {
	base := g.BaseURL
	if base == "" {
		base = "https://docs.julaaz.local"
	}
	return fmt.Sprintf("%s/agreements/%s.pdf", base, bookingID), nil
}
