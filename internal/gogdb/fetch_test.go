package gogdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"gogPriceBot/internal/storage"
)

const testPayload = `{"US":{"USD":[{"date":"2020-01-01","price_base":2000,"price_final":1500},{"date":"2020-06-01","price_base":2000,"price_final":999}]}}`

// historyServer serves testPayload for the given product and counts hits.
func historyServer(t *testing.T, productID string, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		want := fmt.Sprintf("/products/%s/prices.json", productID)
		if r.URL.Path != want {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, testPayload)
	}))
}

func testClient(srv *httptest.Server, kv storage.KV, now time.Time) *Client {
	c := NewClient(srv.Client(), srv.URL, kv)
	c.now = func() time.Time { return now }
	return c
}

func seedCache(kv storage.KV, productID, payload string, storedAt time.Time) {
	kv.Set(cacheKeyPrefix+productID, payload)
	kv.Set(cacheKeyPrefix+productID+"_timestamp", strconv.FormatInt(storedAt.UnixMilli(), 10))
}

func TestFetchHistory_ServesFreshCacheWithoutRequest(t *testing.T) {
	var hits atomic.Int64
	srv := historyServer(t, "42", &hits)
	defer srv.Close()

	kv := storage.NewMemKV()
	storedAt := time.Now()
	seedCache(kv, "42", testPayload, storedAt)

	// One millisecond inside the 24h window.
	c := testClient(srv, kv, storedAt.Add(24*time.Hour-time.Millisecond))
	raw, err := c.FetchHistory(context.Background(), "42")
	if err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 0 {
		t.Errorf("expected no network call on fresh cache, got %d", hits.Load())
	}
	if len(raw["US"]["USD"]) != 2 {
		t.Errorf("unexpected cached history: %v", raw)
	}
}

func TestFetchHistory_RefetchesExpiredCache(t *testing.T) {
	var hits atomic.Int64
	srv := historyServer(t, "42", &hits)
	defer srv.Close()

	kv := storage.NewMemKV()
	storedAt := time.Now()
	seedCache(kv, "42", `{"US":{"USD":[]}}`, storedAt)

	// One millisecond past the window.
	now := storedAt.Add(24*time.Hour + time.Millisecond)
	c := testClient(srv, kv, now)
	raw, err := c.FetchHistory(context.Background(), "42")
	if err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected exactly one network call, got %d", hits.Load())
	}
	if len(raw["US"]["USD"]) != 2 {
		t.Errorf("expected refetched history, got %v", raw)
	}
	// Cache refreshed with the new payload and timestamp.
	if got, _ := kv.Get(cacheKeyPrefix + "42"); got != testPayload {
		t.Error("cache payload not refreshed")
	}
	if ts, _ := kv.Get(cacheKeyPrefix + "42_timestamp"); ts != strconv.FormatInt(now.UnixMilli(), 10) {
		t.Errorf("cache timestamp = %s, want %d", ts, now.UnixMilli())
	}
}

func TestFetchHistory_MissingTimestampIsAMiss(t *testing.T) {
	var hits atomic.Int64
	srv := historyServer(t, "42", &hits)
	defer srv.Close()

	kv := storage.NewMemKV()
	kv.Set(cacheKeyPrefix+"42", testPayload) // payload without timestamp sibling

	c := testClient(srv, kv, time.Now())
	if _, err := c.FetchHistory(context.Background(), "42"); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Errorf("expected fetch on timestamp-less entry, got %d calls", hits.Load())
	}
}

func TestFetchHistory_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"not found", http.StatusNotFound, ErrNotFound},
		{"server error", http.StatusInternalServerError, ErrFetchFailed},
		{"rate limited", http.StatusTooManyRequests, ErrFetchFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			kv := storage.NewMemKV()
			c := testClient(srv, kv, time.Now())
			_, err := c.FetchHistory(context.Background(), "42")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if _, ok := kv.Get(cacheKeyPrefix + "42"); ok {
				t.Error("cache must not be written on failure")
			}
		})
	}
}

func TestFetchHistory_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(nil, srv.URL, storage.NewMemKV())
	_, err := c.FetchHistory(context.Background(), "42")
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("err = %v, want ErrFetchFailed", err)
	}
}

func TestFetchHistory_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>not json</html>`)
	}))
	defer srv.Close()

	kv := storage.NewMemKV()
	c := testClient(srv, kv, time.Now())
	_, err := c.FetchHistory(context.Background(), "42")
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("err = %v, want ErrMalformedPayload", err)
	}
	if _, ok := kv.Get(cacheKeyPrefix + "42"); ok {
		t.Error("undecodable body must not reach the cache")
	}
}

func TestFetchHistory_MalformedCachedPayload(t *testing.T) {
	var hits atomic.Int64
	srv := historyServer(t, "42", &hits)
	defer srv.Close()

	kv := storage.NewMemKV()
	storedAt := time.Now()
	seedCache(kv, "42", `{"US":`, storedAt)

	c := testClient(srv, kv, storedAt.Add(time.Hour))
	_, err := c.FetchHistory(context.Background(), "42")
	if !errors.Is(err, ErrMalformedPayload) {
		t.Fatalf("err = %v, want ErrMalformedPayload", err)
	}
	if hits.Load() != 0 {
		t.Errorf("fresh-but-broken cache entry must not trigger a fetch, got %d calls", hits.Load())
	}
}
