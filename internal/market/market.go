// Package market looks up current prices on warframe.market.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Defaults for the public v1 API.
const (
	DefaultBaseURL  = "https://api.warframe.market/v1"
	DefaultPlatform = "pc"
	DefaultTimeout  = 10 * time.Second
)

// NoSellOrders is returned as the price when nobody in game is selling.
const NoSellOrders = "No in-game sell orders"

// ErrStatus is wrapped by errors for non-2xx responses.
var ErrStatus = errors.New("unexpected status")

// Options configures a Client.
type Options struct {
	BaseURL  string
	Platform string
	Timeout  time.Duration

	// HTTPClient replaces the default client. Timeout is ignored when set.
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client queries item orders. It is safe for concurrent use.
type Client struct {
	base     string
	platform string
	http     *http.Client
	log      zerolog.Logger
}

// New creates a Client. Empty options fall back to the defaults.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Platform == "" {
		opts.Platform = DefaultPlatform
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		base:     strings.TrimRight(opts.BaseURL, "/"),
		platform: opts.Platform,
		http:     hc,
		log:      opts.Logger,
	}
}

type ordersResponse struct {
	Payload struct {
		Orders []order `json:"orders"`
	} `json:"payload"`
}

type order struct {
	Platinum  int    `json:"platinum"`
	OrderType string `json:"order_type"`
	User      struct {
		Status string `json:"status"`
	} `json:"user"`
}

// Price returns the cheapest sell order from a seller currently in game,
// formatted as "<platinum>p", or NoSellOrders when there is none.
func (c *Client) Price(ctx context.Context, item string) (string, error) {
	orders, err := c.orders(ctx, URLName(item))
	if err != nil {
		return "", fmt.Errorf("price for %q: %w", item, err)
	}

	best := -1
	for _, o := range orders {
		if o.OrderType != "sell" || o.User.Status != "ingame" {
			continue
		}
		if best < 0 || o.Platinum < best {
			best = o.Platinum
		}
	}
	if best < 0 {
		return NoSellOrders, nil
	}
	return fmt.Sprintf("%dp", best), nil
}

func (c *Client) orders(ctx context.Context, urlName string) ([]order, error) {
	endpoint := fmt.Sprintf("%s/items/%s/orders", c.base, url.PathEscape(urlName))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("platform", c.platform)
	req.Header.Set("language", "en")

	c.log.Debug().Str("url", endpoint).Msg("market request")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}

	var body ordersResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return body.Payload.Orders, nil
}

var urlNameReplacer = strings.NewReplacer(
	"’", "",
	"'", "",
	"&", "and",
	" ", "_",
	"-", "_",
)

// URLName converts a catalog name to the market's item slug,
// e.g. "Lavos Prime Blueprint" to "lavos_prime_blueprint".
func URLName(item string) string {
	return urlNameReplacer.Replace(strings.ToLower(item))
}
