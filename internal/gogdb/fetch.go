package gogdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"gogPriceBot/internal/storage"
)

const (
	// DefaultBaseURL is the GOGDB data root the fetcher appends
	// /products/<id>/prices.json to.
	DefaultBaseURL = "https://www.gogdb.org/data"

	cacheKeyPrefix = "gogdb_price_"
	cacheTTL       = 24 * time.Hour
)

var (
	// ErrNotFound means GOGDB has no price record for the product (404).
	ErrNotFound = errors.New("no historical price data")
	// ErrFetchFailed covers every other non-200 status and transport error.
	ErrFetchFailed = errors.New("price history fetch failed")
	// ErrMalformedPayload means a body (fetched or cached) did not decode
	// as a price history. The cache is never updated with such a body.
	ErrMalformedPayload = errors.New("malformed price history payload")
)

// Client fetches product price histories, serving from the cache store when
// the stored copy is younger than 24 hours and hitting GOGDB otherwise.
type Client struct {
	http    *http.Client
	baseURL string
	cache   storage.KV
	now     func() time.Time
}

func NewClient(httpClient *http.Client, baseURL string, cache storage.KV) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{http: httpClient, baseURL: baseURL, cache: cache, now: time.Now}
}

// FetchHistory returns the raw price history for productID. At most one
// request leaves per call; concurrent calls for the same product may each
// fetch, and the last cache write wins with equivalent bytes.
func (c *Client) FetchHistory(ctx context.Context, productID string) (RawHistory, error) {
	key := cacheKeyPrefix + productID
	if payload, ok := c.cachedFresh(key); ok {
		var raw RawHistory
		if err := json.Unmarshal([]byte(payload), &raw); err != nil {
			return nil, fmt.Errorf("%w: cached entry for %s: %v", ErrMalformedPayload, productID, err)
		}
		return raw, nil
	}

	url := fmt.Sprintf("%s/products/%s/prices.json", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, productID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: gogdb returned %d for %s", ErrFetchFailed, resp.StatusCode, productID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrFetchFailed, err)
	}
	var raw RawHistory
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	// Only text that decoded cleanly ever reaches the cache.
	millis := c.now().UnixMilli()
	if err := c.cache.Set(key, string(body)); err != nil {
		log.Printf("cache: write %s: %v", key, err)
	} else if err := c.cache.Set(key+"_timestamp", strconv.FormatInt(millis, 10)); err != nil {
		log.Printf("cache: write %s_timestamp: %v", key, err)
	}
	return raw, nil
}

// cachedFresh reads the payload and timestamp entries for key; both must be
// present and the stored time within the TTL window.
func (c *Client) cachedFresh(key string) (string, bool) {
	payload, ok := c.cache.Get(key)
	if !ok {
		return "", false
	}
	ts, ok := c.cache.Get(key + "_timestamp")
	if !ok {
		return "", false
	}
	millis, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return "", false
	}
	if c.now().UnixMilli()-millis >= cacheTTL.Milliseconds() {
		return "", false
	}
	return payload, true
}
