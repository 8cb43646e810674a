// Package aladhan fetches daily prayer timings from the Al Adhan API.
package aladhan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/Nixie-Tech-LLC/athan/internal/model"
	"github.com/Nixie-Tech-LLC/athan/internal/timings"
)

const (
	DefaultBaseURL = "https://api.aladhan.com/v1"
	// ISNA
	DefaultMethod = 2
	// 1 = Hanafi, 0 = Shafi
	DefaultSchool = 1

	maxBodySize = 1 << 20
)

var (
	clockPattern      = regexp.MustCompile(`^\d{2}:\d{2}$`)
	clockInTextRegexp = regexp.MustCompile(`(\d{2}:\d{2})`)
)

// Config tunes a Client. Zero values fall back to defaults.
type Config struct {
	BaseURL    string
	Method     int
	School     int
	Zone       *time.Location // calendar the request date is formatted in
	RatePerSec float64
	Burst      int
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	method     int
	school     int
	zone       *time.Location
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
}

var _ timings.Fetcher = (*Client)(nil)

func NewClient(httpClient *http.Client, cfg Config) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Method == 0 {
		cfg.Method = DefaultMethod
	}
	if cfg.Zone == nil {
		cfg.Zone = time.Local
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 3
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "aladhan",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// caller-side problems say nothing about the upstream's health
			return err == nil ||
				errors.Is(err, timings.ErrInvalidRequest) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		method:     cfg.Method,
		school:     cfg.School,
		zone:       cfg.Zone,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		breaker:    breaker,
	}
}

type envelope struct {
	Code   *int   `json:"code"`
	Status string `json:"status"`
	Data   struct {
		Timings map[string]string `json:"timings"`
		Meta    struct {
			Timezone string `json:"timezone"`
		} `json:"meta"`
	} `json:"data"`
}

// FetchTimings requests loc's timings for date's calendar day.
func (c *Client) FetchTimings(ctx context.Context, loc model.Location, date time.Time) (*model.TimingsResponse, error) {
	reqURL, err := c.timingsURL(loc, date)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, reqURL)
	})
	if err != nil {
		return nil, err
	}
	return out.(*model.TimingsResponse), nil
}

func (c *Client) timingsURL(loc model.Location, date time.Time) (string, error) {
	if strings.TrimSpace(loc.Name) == "" || strings.TrimSpace(loc.Country) == "" {
		return "", fmt.Errorf("%w: city and country are required", timings.ErrInvalidRequest)
	}
	u, err := url.Parse(c.baseURL + "/timingsByCity/" + date.In(c.zone).Format("02-01-2006"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", timings.ErrInvalidRequest, err)
	}

	q := u.Query()
	q.Set("city", loc.Name)
	q.Set("country", loc.Country)
	if loc.Admin != "" {
		q.Set("state", loc.Admin)
	}
	q.Set("method", fmt.Sprint(c.method))
	q.Set("school", fmt.Sprint(c.school))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, reqURL string) (*model.TimingsResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", timings.ErrInvalidRequest, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting timings: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", timings.ErrBadResponse, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("reading timings body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", timings.ErrMalformedResponse, err)
	}
	if env.Code != nil && *env.Code != http.StatusOK {
		return nil, fmt.Errorf("%w: envelope code %d (%s)", timings.ErrBadResponse, *env.Code, env.Status)
	}

	items := make(model.RawTiming, len(model.Prayers))
	var missing []string
	for _, p := range model.Prayers {
		raw, ok := env.Data.Timings[p.String()]
		if !ok {
			missing = append(missing, p.String())
			continue
		}
		clean := CleanTimeString(raw)
		if !clockPattern.MatchString(clean) {
			missing = append(missing, p.String())
			continue
		}
		items[p] = clean
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", timings.ErrMissingRequiredTimes, strings.Join(missing, ", "))
	}

	return &model.TimingsResponse{Items: items, TimeZone: env.Data.Meta.Timezone}, nil
}

// CleanTimeString keeps an exact "HH:mm", otherwise extracts the first HH:mm
// inside annotated values such as "05:12 (BST)".
func CleanTimeString(raw string) string {
	if len(raw) == 5 && raw[2] == ':' {
		return raw
	}
	if m := clockInTextRegexp.FindString(raw); m != "" {
		return m
	}
	return strings.TrimSpace(raw)
}
