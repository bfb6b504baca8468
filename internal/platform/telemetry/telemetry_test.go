package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestCounters(t *testing.T) {
	p := NewProvider(Config{})

	p.ChatMessageCounter("basic")
	p.ChatMessageCounter("basic")
	p.ChatMessageCounter("pro")
	p.DiagnosisCounter("matched")

	if got := p.GetCounter("chat.messages.count", "basic"); got != 2 {
		t.Errorf("basic chat counter = %d, want 2", got)
	}
	if got := p.GetCounter("chat.messages.count", "pro"); got != 1 {
		t.Errorf("pro chat counter = %d, want 1", got)
	}
	if got := p.GetCounter("diagnosis.matches.count", "matched"); got != 1 {
		t.Errorf("matched counter = %d, want 1", got)
	}
	if got := p.GetCounter("diagnosis.matches.count", "unmatched"); got != 0 {
		t.Errorf("unmatched counter = %d, want 0", got)
	}
}

func TestGauges(t *testing.T) {
	p := NewProvider(Config{})

	p.SetDBPoolActive(5)
	p.SetDBPoolIdle(3)

	if got := p.GetGauge("db.pool.active_connections"); got != 5 {
		t.Errorf("active connections = %d, want 5", got)
	}
	if got := p.GetGauge("db.pool.idle_connections"); got != 3 {
		t.Errorf("idle connections = %d, want 3", got)
	}
}

func TestHistogramObserve(t *testing.T) {
	h := newHistogram([]float64{0.1, 1.0})

	h.Observe(0.05)
	h.Observe(0.5)
	h.Observe(5.0)

	if h.Count() != 3 {
		t.Errorf("count = %d, want 3", h.Count())
	}
	if h.Sum() != 5.55 {
		t.Errorf("sum = %g, want 5.55", h.Sum())
	}

	cum := h.cumulativeBuckets()
	if cum[0] != 1 || cum[1] != 2 {
		t.Errorf("cumulative buckets = %v, want [1 2]", cum)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	p := NewProvider(Config{})
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := p.MetricsMiddleware()(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.durationHist.Count() != 1 {
		t.Errorf("expected one duration observation, got %d", p.durationHist.Count())
	}
	if got := p.GetGauge("http.server.active_requests"); got != 0 {
		t.Errorf("active requests = %d, want 0 after completion", got)
	}
}

func TestPrometheusHandler(t *testing.T) {
	p := NewProvider(Config{ServiceName: "medibot-server"})
	p.ChatMessageCounter("deluxe")
	p.DiagnosisCounter("unmatched")
	p.SetDBPoolActive(2)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := p.PrometheusHandler()(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`chat_messages_total{plan="deluxe"} 1`,
		`diagnosis_matches_total{outcome="unmatched"} 1`,
		"db_pool_active_connections 2",
		"# TYPE http_server_request_duration_seconds histogram",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
