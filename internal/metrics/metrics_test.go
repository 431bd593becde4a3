package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordCommandBoundsLabels(t *testing.T) {
	before := testutil.ToFloat64(terminalCommandsTotal.WithLabelValues("unknown"))
	RecordCommand("foobar")
	RecordCommand("rm-rf-everything")
	RecordCommand("")
	after := testutil.ToFloat64(terminalCommandsTotal.WithLabelValues("unknown"))
	if after-before != 2 {
		t.Errorf("unknown commands counted %v times, want 2", after-before)
	}

	before = testutil.ToFloat64(terminalCommandsTotal.WithLabelValues("ls"))
	RecordCommand("ls")
	if got := testutil.ToFloat64(terminalCommandsTotal.WithLabelValues("ls")) - before; got != 1 {
		t.Errorf("ls counted %v times, want 1", got)
	}
}

func TestSessionGauge(t *testing.T) {
	base := testutil.ToFloat64(terminalSessionsActive)
	SessionOpened()
	SessionOpened()
	SessionClosed()
	if got := testutil.ToFloat64(terminalSessionsActive) - base; got != 1 {
		t.Errorf("active sessions delta = %v, want 1", got)
	}
	SessionClosed()
}

func TestRecordRound(t *testing.T) {
	before := testutil.ToFloat64(hacktypeRoundsTotal)
	RecordRound(72)
	if got := testutil.ToFloat64(hacktypeRoundsTotal) - before; got != 1 {
		t.Errorf("rounds delta = %v, want 1", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	r.GET("/metrics", gin.WrapH(Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ping", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `portfolio_http_requests_total{method="GET",path="/ping",status="200"}`) {
		t.Error("metrics output missing /ping request counter")
	}
}
