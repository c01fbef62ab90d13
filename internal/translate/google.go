package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultGoogleBaseURL is the public translate endpoint host.
const DefaultGoogleBaseURL = "https://translate.googleapis.com"

// GoogleClient calls the keyless Google Translate "gtx" endpoint.
type GoogleClient struct {
	client *resty.Client
}

// NewGoogleClient creates a client against baseURL (DefaultGoogleBaseURL when
// empty).
func NewGoogleClient(baseURL string, timeout time.Duration) *GoogleClient {
	if baseURL == "" {
		baseURL = DefaultGoogleBaseURL
	}
	client := resty.New().SetBaseURL(strings.TrimRight(baseURL, "/"))
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &GoogleClient{client: client}
}

// Translate implements Translator. The response is a nested array whose first
// element lists translated segments; their first entries are concatenated.
func (c *GoogleClient) Translate(ctx context.Context, text, from, to string) (string, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"client": "gtx",
			"sl":     from,
			"tl":     to,
			"dt":     "t",
			"q":      text,
		}).
		Get("/translate_a/single")
	if err != nil {
		return "", fmt.Errorf("failed to call translate API: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("translate API returned status %d", resp.StatusCode())
	}

	return parseGoogleResponse(resp.Body())
}

func parseGoogleResponse(body []byte) (string, error) {
	var data []json.RawMessage
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("failed to parse translate response: %w", err)
	}
	if len(data) == 0 {
		return "", ErrEmptyTranslation
	}

	var segments [][]json.RawMessage
	if err := json.Unmarshal(data[0], &segments); err != nil {
		return "", fmt.Errorf("failed to parse translate segments: %w", err)
	}

	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		var s string
		if err := json.Unmarshal(seg[0], &s); err != nil {
			continue
		}
		b.WriteString(s)
	}
	if b.Len() == 0 {
		return "", ErrEmptyTranslation
	}
	return b.String(), nil
}
