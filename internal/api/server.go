// Package api is the kiosk's HTTP surface: the customer and admin views
// as a JSON API plus a websocket pushing application-state snapshots to
// attached browsers.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"roboburger/internal/admin"
	"roboburger/internal/app"
	"roboburger/internal/jog"
	"roboburger/internal/monitoring"
	"roboburger/internal/orders"
	"roboburger/internal/robot"
	"roboburger/internal/stats"
)

// Server bundles the router with the controllers behind it.
type Server struct {
	Router *gin.Engine

	hub     *app.Hub
	orders  *orders.Controller
	robot   *robot.Controller
	stats   *stats.Aggregator
	gate    *admin.Gate
	panel   *jog.Panel // nil when the control channel could not be dialed
	metrics *monitoring.Metrics
}

// NewServer creates the API server and configures its routes.
func NewServer(hub *app.Hub, oc *orders.Controller, rc *robot.Controller,
	agg *stats.Aggregator, gate *admin.Gate, panel *jog.Panel, m *monitoring.Metrics) *Server {

	s := &Server{
		Router:  gin.Default(),
		hub:     hub,
		orders:  oc,
		robot:   rc,
		stats:   agg,
		gate:    gate,
		panel:   panel,
		metrics: m,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API endpoints.
func (s *Server) setupRoutes() {
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Robo Burger kiosk API is running"})
	})
	s.Router.GET("/ws", s.handleWebSocket)

	v1 := s.Router.Group("/api/v1")
	{
		// Customer surface
		v1.GET("/menu", s.GetMenu)
		v1.POST("/orders", s.PlaceOrder)
		v1.GET("/orders", s.GetOrders)
		v1.GET("/robot/status", s.GetRobotStatus)
		v1.POST("/view", s.SelectView)

		// Admin gate
		v1.POST("/admin/login", s.AdminLogin)

		// Admin surface
		authed := v1.Group("", s.requireAdmin)
		{
			authed.POST("/admin/logout", s.AdminLogout)
			authed.PUT("/orders/:id/status", s.UpdateOrderStatus)
			authed.GET("/statistics/today", s.GetTodayStatistics)
			authed.POST("/robot/stop", s.EmergencyStop)
			authed.POST("/robot/recovery", s.Recover)
			authed.POST("/jog", s.Jog)
		}
	}
}

// requireAdmin rejects requests without a valid admin session token.
func (s *Server) requireAdmin(c *gin.Context) {
	token := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(token) > len(prefix) && token[:len(prefix)] == prefix {
		token = token[len(prefix):]
	}
	if err := s.gate.Verify(token); err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin session required"})
		return
	}
	c.Next()
}
