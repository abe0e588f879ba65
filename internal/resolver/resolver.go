package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// ErrResolveTimeout means the product id never became resolvable within
// the polling deadline.
var ErrResolveTimeout = errors.New("timed out resolving product id")

const (
	resolveDeadline = 10 * time.Second
	pollInterval    = 500 * time.Millisecond
)

var (
	reNumericID = regexp.MustCompile(`^\d{8,}$`)
	reURL       = regexp.MustCompile(`^https?://`)
	// The storefront embeds the catalog id in a few shapes depending on
	// which render served the page.
	reCardProduct = regexp.MustCompile(`card-product="(\d+)"`)
	reCardDataID  = regexp.MustCompile(`"cardProductId"\s*:\s*"?(\d+)`)
)

// Resolver turns a user-supplied argument (numeric id or store page URL)
// into a GOGDB product id. URL resolution re-polls the page until the id
// appears or the deadline passes, since fresh store pages can briefly serve
// without the product payload embedded.
type Resolver struct {
	http     *http.Client
	deadline time.Duration
	interval time.Duration
}

func New(httpClient *http.Client) *Resolver {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Resolver{http: httpClient, deadline: resolveDeadline, interval: pollInterval}
}

func (r *Resolver) Resolve(ctx context.Context, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if reNumericID.MatchString(arg) {
		return arg, nil
	}
	if !reURL.MatchString(arg) {
		return "", fmt.Errorf("not a store URL or product id: %q", arg)
	}

	ctx, cancel := context.WithTimeout(ctx, r.deadline)
	defer cancel()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		id, err := r.extractFromPage(ctx, arg)
		if err == nil && id != "" {
			return id, nil
		}
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %s", ErrResolveTimeout, arg)
		case <-ticker.C:
		}
	}
}

func (r *Resolver) extractFromPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html")
	resp, err := r.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("store page returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", err
	}
	if g := reCardProduct.FindSubmatch(body); g != nil {
		return string(g[1]), nil
	}
	if g := reCardDataID.FindSubmatch(body); g != nil {
		return string(g[1]), nil
	}
	return "", errors.New("product id not present in page")
}
