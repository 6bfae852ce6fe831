// Package streetview fetches street-level imagery for a coordinate pair from
// the Google Street View Static API.
package streetview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for response validation
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/roadscan/roadscan-cli/internal/model"
)

const streetViewURL = "https://maps.googleapis.com/maps/api/streetview"

// Client fetches a street-level image for a coordinate pair.
type Client interface {
	Fetch(ctx context.Context, coords model.Coordinates) (*model.Image, error)
}

// Params controls the image request: output size, horizontal field of view,
// and camera heading/pitch.
type Params struct {
	Size    string
	FOV     int
	Heading int
	Pitch   int
}

// DefaultParams returns the fixed request parameters the tool uses.
func DefaultParams() Params {
	return Params{Size: "640x640", FOV: 80, Heading: 0, Pitch: 0}
}

// Option configures the client.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithParams overrides the default image request parameters.
func WithParams(p Params) Option {
	return func(c *client) {
		c.params = p
	}
}

// WithRateLimit sets the requests-per-second limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

type client struct {
	httpClient *http.Client
	apiKey     string
	params     Params
	limiter    *rate.Limiter
}

// NewClient creates an imagery Client with the given API key and options.
func NewClient(apiKey string, opts ...Option) Client {
	c := &client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		params:     DefaultParams(),
		limiter:    rate.NewLimiter(10, 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads the street view image at the given coordinates and decodes
// the response header to validate it is an image.
func (c *client) Fetch(ctx context.Context, coords model.Coordinates) (*model.Image, error) {
	if c.apiKey == "" {
		return nil, eris.New("streetview: api key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "streetview: rate limit")
	}

	params := url.Values{
		"size":     {c.params.Size},
		"location": {fmt.Sprintf("%g,%g", coords.Latitude, coords.Longitude)},
		"fov":      {strconv.Itoa(c.params.FOV)},
		"heading":  {strconv.Itoa(c.params.Heading)},
		"pitch":    {strconv.Itoa(c.params.Pitch)},
		"key":      {c.apiKey},
	}

	reqURL := streetViewURL + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "streetview: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "streetview: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("streetview: google returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "streetview: read body")
	}
	if len(data) == 0 {
		return nil, eris.New("streetview: empty response body")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrap(err, "streetview: decode image")
	}

	return &model.Image{
		Data:   data,
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
	}, nil
}
