// Package tools holds the built-in tools a session can register.
package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cadencehq/cadence/core/llms"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultWeatherBaseURL = "https://wttr.in"
	weatherLookupTimeout  = 10 * time.Second
)

type weatherParams struct {
	Location string `json:"location" jsonschema:"description=City or place to look up the weather for"`
}

type weatherConfig struct {
	baseURL string
	client  *http.Client
}

type WeatherOption func(*weatherConfig)

// WithWeatherBaseURL overrides the upstream weather endpoint.
func WithWeatherBaseURL(baseURL string) WeatherOption {
	return func(c *weatherConfig) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithWeatherHTTPClient overrides the HTTP client used for lookups.
func WithWeatherHTTPClient(client *http.Client) WeatherOption {
	return func(c *weatherConfig) {
		c.client = client
	}
}

// NewWeatherTool builds the weather lookup tool. The handler returns a
// short natural-language sentence, or fails with the upstream status
// preserved when the lookup does not succeed.
func NewWeatherTool(opts ...WeatherOption) llms.Tool {
	config := weatherConfig{
		baseURL: defaultWeatherBaseURL,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   weatherLookupTimeout,
		},
	}
	for _, opt := range opts {
		opt(&config)
	}

	return llms.NewToolFor("weather",
		"Look up the current weather for a location",
		func(ctx context.Context, params weatherParams) (string, error) {
			ctx, cancel := context.WithTimeout(ctx, weatherLookupTimeout)
			defer cancel()

			lookupURL := config.baseURL + "/" + url.PathEscape(params.Location) + "?format=3"
			req, err := http.NewRequestWithContext(ctx, "GET", lookupURL, nil)
			if err != nil {
				return "", fmt.Errorf("error creating HTTP request: %w", err)
			}

			resp, err := config.client.Do(req)
			if err != nil {
				return "", fmt.Errorf("weather lookup failed: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				return "", &lookupError{status: resp.StatusCode}
			}

			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return "", fmt.Errorf("error reading weather response: %w", err)
			}

			return strings.TrimSpace(string(body)), nil
		})
}

// lookupError preserves the upstream HTTP status for diagnostics.
type lookupError struct {
	status int
}

func (e *lookupError) Error() string {
	return fmt.Sprintf("weather lookup returned %d %s", e.status, http.StatusText(e.status))
}

func (e *lookupError) StatusCode() int { return e.status }
