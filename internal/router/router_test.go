package router_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"orderscan/internal/config"
	"orderscan/internal/domain"
	"orderscan/internal/handler"
	"orderscan/internal/metrics"
	"orderscan/internal/router"
	"orderscan/mocks"
)

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

func newEngine(t *testing.T, metricsEnabled bool) (*gin.Engine, *mocks.MockOrderService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		CORS:    config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		Metrics: config.MetricsConfig{Enabled: metricsEnabled, Path: "/metrics"},
	}
	orders := new(mocks.MockOrderService)
	orderH := handler.NewOrderHandler(new(mocks.MockUploadService), orders, 1)
	engine := router.Setup(cfg, zap.NewNop(), metrics.NewRegistry(), orderH, handler.NewHealthHandler(okPinger{}))
	return engine, orders
}

func TestSetup_RoutesOrderEndpoints(t *testing.T) {
	engine, orders := newEngine(t, true)
	orders.On("Get", mock.Anything, int64(5)).Return(nil, domain.ErrOrderNotFound)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/sales_order/5", http.NoBody))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ORDER_NOT_FOUND")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	orders.AssertExpectations(t)
}

func TestSetup_UnknownRoute(t *testing.T) {
	engine, _ := newEngine(t, true)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nope", http.NoBody))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "route not found")
}

func TestSetup_MetricsEndpoint(t *testing.T) {
	engine, _ := newEngine(t, true)
	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `orderscan_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestSetup_MetricsDisabled(t *testing.T) {
	engine, _ := newEngine(t, false)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSetup_EveryRouteCarriesRouterAnnotation(t *testing.T) {
	engine, _ := newEngine(t, false)

	files, err := filepath.Glob(filepath.Join("..", "handler", "*_handler.go"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	var sources strings.Builder
	for _, f := range files {
		b, err := os.ReadFile(f)
		require.NoError(t, err)
		sources.Write(b)
	}

	routes := engine.Routes()
	require.NotEmpty(t, routes)
	for _, r := range routes {
		path := strings.ReplaceAll(r.Path, ":id", "{id}")
		line := fmt.Sprintf("// @Router %s [%s]", path, strings.ToLower(r.Method))
		assert.Contains(t, sources.String(), line, "route %s %s", r.Method, r.Path)
	}
}
