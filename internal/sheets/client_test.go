package sheets

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/oauth2"

	"github.com/edupricing/availability-go/internal/config"
	apperrors "github.com/edupricing/availability-go/internal/errors"
	"github.com/edupricing/availability-go/internal/logger"
	"github.com/edupricing/availability-go/internal/metrics"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{
		SheetsTimeout:  5 * time.Second,
		SheetsMinDelay: 0,
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token"})
	client := NewClient(cfg, ts, metrics.New(prometheus.NewRegistry()), logger.NewWithWriter("error", io.Discard))
	client.SetBaseURL(server.URL)
	return client
}

func TestAccessToken(t *testing.T) {
	client := newTestClient(t, http.NotFoundHandler())

	token, err := client.AccessToken(context.Background())
	if err != nil {
		t.Fatalf("AccessToken() error = %v", err)
	}
	if token != "test-token" {
		t.Errorf("token = %q, want test-token", token)
	}
}

func TestListTabNames(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"sheets":[
			{"properties":{"title":"Plantel Norte"}},
			{"properties":{"title":"Oferta General"}},
			{"properties":{"title":"Online"}}
		]}`))
	})

	client := newTestClient(t, handler)
	tabs, err := client.ListTabNames(context.Background(), "test-token", "sheet-id")
	if err != nil {
		t.Fatalf("ListTabNames() error = %v", err)
	}

	want := []string{"Plantel Norte", "Oferta General", "Online"}
	if len(tabs) != len(want) {
		t.Fatalf("got %d tabs, want %d", len(tabs), len(want))
	}
	for i := range want {
		if tabs[i] != want[i] {
			t.Errorf("tabs[%d] = %q, want %q", i, tabs[i], want[i])
		}
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestGetTabValues(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("valueRenderOption"); got != "UNFORMATTED_VALUE" {
			t.Errorf("valueRenderOption = %q", got)
		}
		_, _ = w.Write([]byte(`{"values":[
			["Programa","C1",2026],
			["Enfermería",true,false],
			[]
		]}`))
	})

	client := newTestClient(t, handler)
	values, err := client.GetTabValues(context.Background(), "test-token", "sheet-id", "Plantel Norte")
	if err != nil {
		t.Fatalf("GetTabValues() error = %v", err)
	}

	if len(values) != 3 {
		t.Fatalf("got %d rows, want 3", len(values))
	}
	// Numbers and booleans are rendered as canonical text.
	if values[0][2] != "2026" {
		t.Errorf("values[0][2] = %q, want 2026", values[0][2])
	}
	if values[1][1] != "true" || values[1][2] != "false" {
		t.Errorf("boolean cells = %q, %q", values[1][1], values[1][2])
	}
	if len(values[2]) != 0 {
		t.Errorf("empty row has %d cells", len(values[2]))
	}
}

func TestGetTabLinks(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("includeGridData"); got != "true" {
			t.Errorf("includeGridData = %q", got)
		}
		_, _ = w.Write([]byte(`{"sheets":[{"data":[{
			"rowData":[
				{"values":[
					{"formattedValue":"Psicología","hyperlink":"https://plans/psicologia"},
					{"formattedValue":"Derecho","userEnteredValue":{"formulaValue":"=HYPERLINK(\"https://plans/derecho\", \"plan\")"}},
					{"formattedValue":"Nutrición","textFormatRuns":[{"format":{"link":{"uri":"https://plans/nutricion"}}}]}
				]}
			],
			"rowMetadata":[{"hiddenByUser":true},{}]
		}]}]}`))
	})

	client := newTestClient(t, handler)
	grid, err := client.GetTabLinks(context.Background(), "test-token", "sheet-id", "Online")
	if err != nil {
		t.Fatalf("GetTabLinks() error = %v", err)
	}

	if len(grid.Rows) != 1 || len(grid.Rows[0]) != 3 {
		t.Fatalf("grid shape = %d rows", len(grid.Rows))
	}
	if grid.Rows[0][0].Hyperlink != "https://plans/psicologia" {
		t.Errorf("hyperlink = %q", grid.Rows[0][0].Hyperlink)
	}
	if grid.Rows[0][1].Formula != `=HYPERLINK("https://plans/derecho", "plan")` {
		t.Errorf("formula = %q", grid.Rows[0][1].Formula)
	}
	if len(grid.Rows[0][2].Runs) != 1 || grid.Rows[0][2].Runs[0].LinkURI != "https://plans/nutricion" {
		t.Errorf("runs = %+v", grid.Rows[0][2].Runs)
	}
	if len(grid.RowMeta) != 2 || !grid.RowMeta[0].HiddenByUser || grid.RowMeta[1].HiddenByUser {
		t.Errorf("rowMeta = %+v", grid.RowMeta)
	}
}

func TestGetTabLinksEmptySheet(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"sheets":[]}`))
	})

	client := newTestClient(t, handler)
	grid, err := client.GetTabLinks(context.Background(), "test-token", "sheet-id", "Empty")
	if err != nil {
		t.Fatalf("GetTabLinks() error = %v", err)
	}
	if len(grid.Rows) != 0 || len(grid.RowMeta) != 0 {
		t.Errorf("grid not empty: %+v", grid)
	}
}

func TestUpstreamErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"Quota exceeded", http.StatusTooManyRequests},
		{"Server error", http.StatusInternalServerError},
		{"Unauthorized", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})

			client := newTestClient(t, handler)
			_, err := client.ListTabNames(context.Background(), "test-token", "sheet-id")
			if err == nil {
				t.Fatal("expected error")
			}

			var ue *apperrors.UpstreamError
			if !errors.As(err, &ue) {
				t.Fatalf("error type = %T", err)
			}
			if ue.Status != tt.status {
				t.Errorf("status = %d, want %d", ue.Status, tt.status)
			}
			if tt.status == http.StatusTooManyRequests && !apperrors.IsQuotaExceeded(err) {
				t.Error("IsQuotaExceeded = false for 429")
			}
		})
	}
}

func TestLimiterSpacesRequests(t *testing.T) {
	limiter := NewLimiter(20 * time.Millisecond)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("three waits took %v, want at least 40ms", elapsed)
	}
}

func TestLimiterContextCanceled(t *testing.T) {
	limiter := NewLimiter(time.Minute)
	// First slot is immediate, second must wait a minute.
	if err := limiter.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want deadline exceeded", err)
	}
}
