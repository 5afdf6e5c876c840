package inspection

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dtnitsch/gsc-inspect/models"
)

func TestInspect(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != inspectPath {
			t.Errorf("path = %s, want %s", r.URL.Path, inspectPath)
		}
		var req models.InspectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.InspectionURL != "https://example.com/a" || req.SiteURL != "sc-domain:example.com" {
			t.Errorf("request = %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "inspectionResult": {
    "inspectionResultLink": "https://search.google.com/search-console/inspect?x",
    "indexStatusResult": {
      "verdict": "PASS",
      "coverageState": "Submitted and indexed",
      "robotsTxtState": "ALLOWED",
      "indexingState": "INDEXING_ALLOWED",
      "lastCrawlTime": "2026-09-30T10:00:00Z",
      "pageFetchState": "SUCCESSFUL",
      "googleCanonical": "https://example.com/a",
      "userCanonical": "https://example.com/a",
      "referringUrls": ["https://example.com/"],
      "crawledAs": "MOBILE"
    }
  }
}`))
	}))
	defer ts.Close()

	c := NewClient(ts.Client()).WithBaseURL(ts.URL + "/")
	resp, err := c.Inspect(context.Background(), "sc-domain:example.com", "https://example.com/a")
	if err != nil {
		t.Fatalf("Inspect() error = %v", err)
	}

	idx := resp.InspectionResult.IndexStatusResult
	if idx.Verdict != "PASS" || idx.PageFetchState != "SUCCESSFUL" || idx.CrawledAs != "MOBILE" {
		t.Errorf("unexpected index status: %+v", idx)
	}
	if len(idx.ReferringURLs) != 1 {
		t.Errorf("ReferringURLs = %v", idx.ReferringURLs)
	}
}

func TestInspect_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Quota exceeded for quota metric","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer ts.Close()

	_, err := NewClient(ts.Client()).WithBaseURL(ts.URL).Inspect(context.Background(), "https://example.com/", "https://example.com/a")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Inspect() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || apiErr.Status != "RESOURCE_EXHAUSTED" {
		t.Errorf("APIError = %+v", apiErr)
	}
	if !strings.Contains(err.Error(), "Quota exceeded") {
		t.Errorf("Error() = %q, want API message", err.Error())
	}
}

func TestInspect_NonJSONError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := NewClient(ts.Client()).WithBaseURL(ts.URL).Inspect(context.Background(), "s", "u")
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("Inspect() error = %v, want 502", err)
	}
}

func TestInspect_BadBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{"))
	}))
	defer ts.Close()

	if _, err := NewClient(ts.Client()).WithBaseURL(ts.URL).Inspect(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestInspect_BodyIsCapped(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"status":"INTERNAL","message":"`))
		_, _ = w.Write([]byte(strings.Repeat("x", MaxResponseBytes)))
		_, _ = w.Write([]byte(`"}}`))
	}))
	defer ts.Close()

	_, err := NewClient(ts.Client()).WithBaseURL(ts.URL).Inspect(context.Background(), "s", "u")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Inspect() error = %v, want *APIError", err)
	}
	// The truncated body no longer parses, so only the status code survives.
	if apiErr.StatusCode != http.StatusInternalServerError || apiErr.Message != "" {
		t.Errorf("APIError = {%d %q %d bytes of message}", apiErr.StatusCode, apiErr.Status, len(apiErr.Message))
	}
}

func TestInspect_Quota(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"inspectionResult":{"indexStatusResult":{"verdict":"PASS"}}}`))
	}))
	defer ts.Close()

	// 600 per minute is one call every 100ms.
	c := NewClient(ts.Client()).WithBaseURL(ts.URL).WithQuota(600)
	start := time.Now()
	for i := 0; i < 2; i++ {
		if _, err := c.Inspect(context.Background(), "s", "u"); err != nil {
			t.Fatalf("Inspect() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 90*time.Millisecond {
		t.Errorf("2 calls took %v, want at least ~100ms under the quota", elapsed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := c.Inspect(ctx, "s", "u"); err == nil {
		t.Error("Inspect() with cancelled context waiting for quota should fail")
	}
	if got := hits.Load(); got != 2 {
		t.Errorf("server hit %d times, want 2", got)
	}

	if c.WithQuota(0).limiter != nil {
		t.Error("WithQuota(0) should remove the limit")
	}
}
