package availability

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	apperrors "github.com/edupricing/availability-go/internal/errors"
	"github.com/edupricing/availability-go/internal/ingest"
	"github.com/edupricing/availability-go/internal/logger"
	"github.com/edupricing/availability-go/internal/metrics"
)

func newTestRouter(t *testing.T, fetcher Fetcher, ttl time.Duration) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service, _ := newTestService(t, fetcher, ttl)
	handler := NewHandler(service, metrics.New(prometheus.NewRegistry()), logger.NewWithWriter("error", io.Discard))

	router := gin.New()
	router.GET("/availability", handler.GetAvailability)
	router.GET("/availability/history", handler.GetHistory)
	return router, service
}

func doRequest(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestHandlerRequiresSlug(t *testing.T) {
	router, _ := newTestRouter(t, standardFetcher(), 10*time.Minute)

	w := doRequest(router, "/availability")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandlerServesPayload(t *testing.T) {
	router, _ := newTestRouter(t, standardFetcher(), 10*time.Minute)

	w := doRequest(router, "/availability?slug=uvm")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var body struct {
		Availability []ingest.Entry      `json:"availability"`
		Debug        []ingest.SheetDebug `json:"debug"`
		UpdatedAt    string              `json:"updatedAt"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Availability) != 1 {
		t.Errorf("got %d entries, want 1", len(body.Availability))
	}
	if body.UpdatedAt == "" {
		t.Error("missing updatedAt")
	}
	// Debug trace only appears when requested.
	if body.Debug != nil {
		t.Errorf("debug present without debug=1: %+v", body.Debug)
	}
}

func TestHandlerDebugIncludesTrace(t *testing.T) {
	router, _ := newTestRouter(t, standardFetcher(), 10*time.Minute)

	w := doRequest(router, "/availability?slug=uvm&debug=1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Debug []ingest.SheetDebug `json:"debug"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Debug) != 1 {
		t.Fatalf("got %d debug records, want 1", len(body.Debug))
	}
	if body.Debug[0].Plantel != "Plantel Norte" {
		t.Errorf("debug plantel = %q", body.Debug[0].Plantel)
	}
}

func TestHandlerCacheOnlyWithoutCache(t *testing.T) {
	router, _ := newTestRouter(t, standardFetcher(), 10*time.Minute)

	w := doRequest(router, "/availability?slug=uvm&cache=1")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestHandlerQuotaWithoutCache(t *testing.T) {
	fetcher := standardFetcher()
	fetcher.err = apperrors.NewUpstreamError("https://sheets", 429, nil)
	router, _ := newTestRouter(t, fetcher, 10*time.Minute)

	w := doRequest(router, "/availability?slug=uvm")
	if w.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429: %s", w.Code, w.Body.String())
	}
}

func TestHandlerQuotaWithStaleCache(t *testing.T) {
	fetcher := standardFetcher()
	router, service := newTestRouter(t, fetcher, time.Nanosecond)

	// Seed the cache through a working ingestion, then break the fetcher.
	if _, err := service.Get(context.Background(), Request{Slug: "uvm"}); err != nil {
		t.Fatalf("seed ingestion failed: %v", err)
	}
	fetcher.err = apperrors.NewUpstreamError("https://sheets", 429, nil)

	w := doRequest(router, "/availability?slug=uvm")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var body struct {
		Stale   bool   `json:"stale"`
		Warning string `json:"warning"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Stale || body.Warning == "" {
		t.Errorf("stale = %v, warning = %q", body.Stale, body.Warning)
	}
}

func TestHandlerIngestionFailure(t *testing.T) {
	fetcher := standardFetcher()
	fetcher.err = apperrors.NewUpstreamError("https://sheets", 500, nil)
	router, _ := newTestRouter(t, fetcher, 10*time.Minute)

	w := doRequest(router, "/availability?slug=uvm")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	// Error details are only exposed under debug=1.
	if _, ok := body["details"]; ok {
		t.Error("details leaked without debug=1")
	}

	w = doRequest(router, "/availability?slug=uvm&debug=1")
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := body["details"]; !ok {
		t.Error("details missing under debug=1")
	}
}

func TestHandlerHistory(t *testing.T) {
	router, service := newTestRouter(t, standardFetcher(), 10*time.Minute)

	if _, err := service.Get(context.Background(), Request{Slug: "uvm"}); err != nil {
		t.Fatalf("seed ingestion failed: %v", err)
	}

	w := doRequest(router, "/availability/history?slug=uvm")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var body struct {
		Slug    string `json:"slug"`
		History []struct {
			CreatedAt string `json:"createdAt"`
		} `json:"history"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Slug != "uvm" || len(body.History) != 1 {
		t.Errorf("history = %+v", body)
	}
}

func TestHandlerHistoryRequiresSlug(t *testing.T) {
	router, _ := newTestRouter(t, standardFetcher(), 10*time.Minute)

	w := doRequest(router, "/availability/history")
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
