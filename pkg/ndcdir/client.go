// Package ndcdir looks up drug packaging in the openFDA NDC Directory. It is
// the external catalog collaborator of the dispensing pipeline: the core
// consumes the NdcInfo entries it returns and never performs lookups itself.
package ndcdir

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rxtally/dispense-cli/internal/model"
)

// DefaultBaseURL is the openFDA NDC Directory endpoint.
const DefaultBaseURL = "https://api.fda.gov/drug/ndc.json"

// Client resolves a drug name or NDC to a catalog of candidate packages.
type Client interface {
	// SearchByName returns packaging for products whose generic or brand
	// name matches the query.
	SearchByName(ctx context.Context, name string, limit int) ([]model.NdcInfo, error)

	// SearchByNDC returns packaging for a specific product NDC.
	SearchByNDC(ctx context.Context, productNDC string) ([]model.NdcInfo, error)
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the API endpoint (used by tests).
func WithBaseURL(u string) Option {
	return func(c *client) { c.baseURL = u }
}

// WithAPIKey attaches an openFDA API key for higher rate limits.
func WithAPIKey(key string) Option {
	return func(c *client) { c.apiKey = key }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// WithRateLimit sets the requests-per-second limit for API calls.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMaxRetries sets the total attempt count for transient failures.
func WithMaxRetries(n int) Option {
	return func(c *client) { c.maxRetries = n }
}

type client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
}

// NewClient creates an NDC Directory client.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(4, 4), // unauthenticated openFDA budget
		maxRetries: 3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) SearchByName(ctx context.Context, name string, limit int) ([]model.NdcInfo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, eris.New("ndcdir: drug name is required")
	}
	if limit <= 0 || limit > 100 {
		limit = 25
	}
	query := fmt.Sprintf(`(generic_name:%q+brand_name:%q)`, name, name)
	return c.search(ctx, query, limit)
}

func (c *client) SearchByNDC(ctx context.Context, productNDC string) ([]model.NdcInfo, error) {
	if strings.TrimSpace(productNDC) == "" {
		return nil, eris.New("ndcdir: product NDC is required")
	}
	query := fmt.Sprintf(`product_ndc:%q`, productNDC)
	return c.search(ctx, query, 10)
}

// apiResponse mirrors the subset of the openFDA response the catalog needs.
type apiResponse struct {
	Results []struct {
		ProductNDC   string `json:"product_ndc"`
		GenericName  string `json:"generic_name"`
		BrandName    string `json:"brand_name"`
		LabelerName  string `json:"labeler_name"`
		DosageForm   string `json:"dosage_form"`
		Finished     bool   `json:"finished"`
		MarketingEnd string `json:"marketing_end_date"`
		Packaging    []struct {
			PackageNDC  string `json:"package_ndc"`
			Description string `json:"description"`
		} `json:"packaging"`
	} `json:"results"`
}

func (c *client) search(ctx context.Context, query string, limit int) ([]model.NdcInfo, error) {
	params := url.Values{}
	params.Set("search", query)
	params.Set("limit", fmt.Sprintf("%d", limit))
	if c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	reqURL := c.baseURL + "?" + params.Encode()

	body, err := c.getWithRetry(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "ndcdir: decode response")
	}

	var entries []model.NdcInfo
	for _, r := range resp.Results {
		active := r.Finished && !marketingEnded(r.MarketingEnd)
		form := mapDosageForm(r.DosageForm)
		for _, p := range r.Packaging {
			entries = append(entries, model.NdcInfo{
				Code:         p.PackageNDC,
				Descriptor:   p.Description,
				Manufacturer: r.LabelerName,
				DosageForm:   form,
				Active:       active,
			})
		}
	}

	zap.L().Debug("ndcdir: search complete",
		zap.String("query", query),
		zap.Int("products", len(resp.Results)),
		zap.Int("packages", len(entries)),
	)

	return entries, nil
}

// getWithRetry fetches a URL with rate limiting and bounded exponential
// backoff on transient failures (429, 5xx, network errors).
func (c *client) getWithRetry(ctx context.Context, reqURL string) ([]byte, error) {
	attempts := c.maxRetries
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, attempt); err != nil {
				return nil, err
			}
			zap.L().Debug("ndcdir: retrying request",
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr),
			)
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "ndcdir: rate limit wait")
		}

		body, retryable, err := c.get(ctx, reqURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, eris.Wrapf(lastErr, "ndcdir: giving up after %d attempts", attempts)
}

func (c *client) get(ctx context.Context, reqURL string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, eris.Wrap(err, "ndcdir: build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, eris.Wrap(err, "ndcdir: request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		b, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
		if err != nil {
			return nil, true, eris.Wrap(err, "ndcdir: read body")
		}
		return b, false, nil
	case resp.StatusCode == http.StatusNotFound:
		// openFDA returns 404 for zero matches.
		return []byte(`{"results":[]}`), false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, eris.Errorf("ndcdir: status %d", resp.StatusCode)
	default:
		return nil, false, eris.Errorf("ndcdir: status %d", resp.StatusCode)
	}
}

// sleepBackoff waits 500ms * 2^(attempt-1) with 25% jitter, capped at 10s.
func sleepBackoff(ctx context.Context, attempt int) error {
	backoff := 500 * time.Millisecond * time.Duration(math.Pow(2, float64(attempt-1)))
	if backoff > 10*time.Second {
		backoff = 10 * time.Second
	}
	jitter := time.Duration(rand.Float64() * 0.25 * float64(backoff))
	select {
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "ndcdir: canceled during backoff")
	case <-time.After(backoff + jitter):
		return nil
	}
}

// mapDosageForm reduces an FDA dosage-form string ("TABLET, FILM COATED")
// to the pipeline's coarse classification.
func mapDosageForm(form string) model.DosageForm {
	f := strings.ToUpper(form)
	switch {
	case strings.Contains(f, "TABLET"):
		return model.DosageFormTablet
	case strings.Contains(f, "CAPSULE"):
		return model.DosageFormCapsule
	case strings.Contains(f, "SOLUTION"), strings.Contains(f, "SUSPENSION"),
		strings.Contains(f, "SYRUP"), strings.Contains(f, "ELIXIR"), strings.Contains(f, "LIQUID"):
		return model.DosageFormLiquid
	case strings.Contains(f, "AEROSOL"), strings.Contains(f, "INHALANT"), strings.Contains(f, "INHALATION"):
		return model.DosageFormInhaler
	case strings.Contains(f, "INJECTION") && strings.Contains(f, "INSULIN"):
		return model.DosageFormInsulin
	case form == "":
		return ""
	default:
		return model.DosageFormOther
	}
}

// marketingEnded reports whether an openFDA marketing_end_date (YYYYMMDD)
// is in the past.
func marketingEnded(date string) bool {
	if date == "" {
		return false
	}
	t, err := time.Parse("20060102", date)
	if err != nil {
		return false
	}
	return t.Before(time.Now())
}
