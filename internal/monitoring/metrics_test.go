package monitoring

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roboburger/internal/models"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}).ServeHTTP(w, req)
	require.Equal(t, 200, w.Code)
	return w.Body.String()
}

func TestBridgeForwardsAreScrapeable(t *testing.T) {
	m := NewMetrics()
	m.BridgeForwarded("order")
	m.BridgeForwarded("order")
	m.BridgeForwarded("stop")

	body := scrape(t, m)
	assert.Contains(t, body, `bridge_forwards_total{kind="order"} 2`)
	assert.Contains(t, body, `bridge_forwards_total{kind="stop"} 1`)
}

func TestKioskCountersAreScrapeable(t *testing.T) {
	m := NewMetrics()
	m.OrderPlaced(models.Burger{Name: "클래식 치즈버거", Price: 8500})
	m.EmergencyStop()
	m.RobotStatus(models.RobotStatusCooking)

	body := scrape(t, m)
	assert.Contains(t, body, `kiosk_orders_placed_total{menu="클래식 치즈버거"} 1`)
	assert.Contains(t, body, `kiosk_order_revenue_won_total 8500`)
	assert.Contains(t, body, `kiosk_emergency_stops_total 1`)
	assert.Contains(t, body, `kiosk_robot_status{status="cooking"} 1`)
}

func TestRobotStatusGaugeTracksSingleValue(t *testing.T) {
	m := NewMetrics()
	m.RobotStatus(models.RobotStatusCooking)
	m.RobotStatus(models.RobotStatusPaused)

	body := scrape(t, m)
	assert.Contains(t, body, `kiosk_robot_status{status="paused"} 1`)
	assert.NotContains(t, body, `kiosk_robot_status{status="cooking"}`)
}
