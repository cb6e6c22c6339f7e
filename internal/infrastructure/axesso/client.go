package axesso

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/comparewise/backend/internal/domain"
)

const (
	lookupPath = "/amz/amazon-lookup-product"

	// maxBodySize caps how much of a lookup response is read into memory
	maxBodySize = 10 << 20
)

var errResponseTooLarge = errors.New("response too large")

// Client handles communication with the Axesso Amazon data service on RapidAPI
type Client struct {
	httpClient     *http.Client
	apiKey         string
	apiHost        string
	baseURL        string
	marketplaceURL string
	debug          bool
}

// NewClient creates a new lookup API client
func NewClient(apiKey, apiHost, baseURL, marketplaceURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		apiKey:         apiKey,
		apiHost:        apiHost,
		baseURL:        strings.TrimSuffix(baseURL, "/"),
		marketplaceURL: strings.TrimSuffix(marketplaceURL, "/"),
	}
}

// SetDebug toggles logging of response bodies
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[Axesso][debug] "+format, args...)
	}
}

// ProductURL rebuilds the canonical marketplace URL for a product identifier
func (c *Client) ProductURL(id domain.ProductID) string {
	return fmt.Sprintf("%s/dp/%s/", c.marketplaceURL, id)
}

// LookupProduct fetches the product document for id. It makes exactly one attempt.
// A non-200 answer is logged and reported as domain.ErrLookupFailed; callers treat
// that as an absent record.
func (c *Client) LookupProduct(ctx context.Context, id domain.ProductID) (*domain.ProductRecord, error) {
	params := url.Values{}
	params.Add("url", c.ProductURL(id))
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, lookupPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)
	req.Header.Set("User-Agent", "CompareWise/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Axesso] Request error for %s: %v", id, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrLookupUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := readLimitedBody(resp.Body, maxBodySize)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", domain.ErrLookupUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Axesso] No response or error occurred for %s. Status code: %d", id, resp.StatusCode)
		c.debugLog("body for %s: %s", id, string(body))
		return nil, fmt.Errorf("%w: status %d", domain.ErrLookupFailed, resp.StatusCode)
	}

	if IsEmptyDocument(body) {
		log.Printf("[Axesso] Empty response for %s", id)
		return nil, fmt.Errorf("%w: empty response", domain.ErrLookupFailed)
	}

	record, err := MapToProductRecord(id, body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	log.Printf("[Axesso] Fetched %s (%d details)", id, len(record.Details))
	return record, nil
}

// readLimitedBody reads r in full, failing with errResponseTooLarge when it holds
// more than limit bytes
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", errResponseTooLarge, limit)
	}
	return body, nil
}
