// Package monitoring exposes the kiosk's operational metrics on a
// dedicated Prometheus registry served by the metrics endpoint.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"

	"roboburger/internal/models"
)

// Metrics bundles the kiosk's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	ordersPlaced      *prometheus.CounterVec
	orderRevenue      prometheus.Counter
	statusTransitions *prometheus.CounterVec
	robotStatus       *prometheus.GaugeVec
	emergencyStops    prometheus.Counter
	recoveryCommands  *prometheus.CounterVec
	jogPublishes      *prometheus.CounterVec
	wsClients         prometheus.Gauge
	bridgeForwards    *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kiosk_orders_placed_total",
			Help: "Orders placed, by menu item",
		}, []string{"menu"}),
		orderRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_order_revenue_won_total",
			Help: "Cumulative order revenue in won",
		}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kiosk_order_status_transitions_total",
			Help: "Order status overwrites, by target status",
		}, []string{"status"}),
		robotStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "kiosk_robot_status",
			Help: "1 for the currently observed robot status, 0 otherwise",
		}, []string{"status"}),
		emergencyStops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kiosk_emergency_stops_total",
			Help: "Emergency stop commands written to the store",
		}),
		recoveryCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kiosk_recovery_commands_total",
			Help: "Recovery commands written, by action",
		}, []string{"action"}),
		jogPublishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kiosk_jog_publishes_total",
			Help: "Jog commands published on the control channel, by type",
		}, []string{"type"}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "kiosk_websocket_clients",
			Help: "Browsers currently attached to the snapshot websocket",
		}),
		bridgeForwards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bridge_forwards_total",
			Help: "Records forwarded to ROS2 by the bridge, by kind",
		}, []string{"kind"}),
	}

	m.registry.MustRegister(
		m.ordersPlaced, m.orderRevenue, m.statusTransitions, m.robotStatus,
		m.emergencyStops, m.recoveryCommands, m.jogPublishes, m.wsClients,
		m.bridgeForwards,
	)
	return m
}

// Registry returns the registry for the metrics HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// OrderPlaced records one placed order.
func (m *Metrics) OrderPlaced(b models.Burger) {
	m.ordersPlaced.WithLabelValues(b.Name).Inc()
	m.orderRevenue.Add(float64(b.Price))
}

// StatusTransition records a status overwrite.
func (m *Metrics) StatusTransition(status models.OrderStatus) {
	m.statusTransitions.WithLabelValues(string(status)).Inc()
}

// RobotStatus pins the status gauge to the observed value.
func (m *Metrics) RobotStatus(status models.RobotStatus) {
	m.robotStatus.Reset()
	m.robotStatus.WithLabelValues(string(status)).Set(1)
}

// EmergencyStop records a stop command write.
func (m *Metrics) EmergencyStop() { m.emergencyStops.Inc() }

// RecoveryCommand records a recovery command write.
func (m *Metrics) RecoveryCommand(action string) {
	m.recoveryCommands.WithLabelValues(action).Inc()
}

// JogPublished records a jog command publish.
func (m *Metrics) JogPublished(cmdType string) {
	m.jogPublishes.WithLabelValues(cmdType).Inc()
}

// WSClientConnected / WSClientGone track the snapshot websocket clients.
func (m *Metrics) WSClientConnected() { m.wsClients.Inc() }
func (m *Metrics) WSClientGone()      { m.wsClients.Dec() }

// BridgeForwarded records a bridge forward of the given kind
// (order, stop, recovery, status).
func (m *Metrics) BridgeForwarded(kind string) {
	m.bridgeForwards.WithLabelValues(kind).Inc()
}
