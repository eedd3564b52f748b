package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"roboburger/internal/admin"
	"roboburger/internal/app"
	"roboburger/internal/jog"
	"roboburger/internal/menu"
	"roboburger/internal/models"
	"roboburger/internal/orders"
	"roboburger/internal/robot"
	"roboburger/internal/rosbridge"
)

// GetMenu returns the fixed burger catalog with display prices.
func (s *Server) GetMenu(c *gin.Context) {
	type item struct {
		models.Burger
		PriceDisplay string `json:"priceDisplay"`
	}
	items := make([]item, 0, len(menu.Burgers))
	for _, b := range menu.Burgers {
		items = append(items, item{Burger: b, PriceDisplay: menu.Won(int64(b.Price))})
	}
	c.JSON(http.StatusOK, gin.H{"burgers": items})
}

// PlaceOrder places an order for a catalog burger. A store rejection is a
// customer-facing failure; there is no retry.
func (s *Server) PlaceOrder(c *gin.Context) {
	var req struct {
		BurgerID int `json:"burger_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	burger, err := menu.ByID(req.BurgerID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := s.orders.Place(c.Request.Context(), burger)
	if err != nil {
		log.Printf("api: order placement failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "주문에 실패했습니다. 다시 시도해주세요."})
		return
	}

	s.metrics.OrderPlaced(burger)
	c.JSON(http.StatusCreated, gin.H{
		"order":   order,
		"message": fmt.Sprintf("%s 주문이 접수되었습니다! 🍔", burger.Name),
	})
}

// GetOrders returns the sorted order list together with its three
// lifecycle buckets.
func (s *Server) GetOrders(c *gin.Context) {
	list, err := s.orders.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":  list,
		"buckets": orders.Bucketize(list),
	})
}

// UpdateOrderStatus overwrites an order's status. Failures are logged but
// deliberately not detailed to the admin screen.
func (s *Server) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown status %q", req.Status)})
		return
	}

	if err := s.orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		log.Printf("api: status update failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "status update failed"})
		return
	}

	s.metrics.StatusTransition(req.Status)
	c.JSON(http.StatusOK, gin.H{"message": "status updated"})
}

// GetTodayStatistics returns today's aggregated order statistics.
func (s *Server) GetTodayStatistics(c *gin.Context) {
	ds, err := s.stats.Today(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":                s.stats.TodayKey(),
		"stats":               ds,
		"totalRevenueDisplay": menu.Won(ds.TotalRevenue),
	})
}

// GetRobotStatus returns the observed robot status with its display
// triple, the modal it demands and the stop-button policy.
func (s *Server) GetRobotStatus(c *gin.Context) {
	status := s.robot.Status()
	c.JSON(http.StatusOK, gin.H{
		"status":       status,
		"display":      robot.Display(status),
		"prompt":       robot.PromptFor(status),
		"stopDisabled": robot.StopDisabled(status),
		"attached":     s.robot.Attached(),
	})
}

// EmergencyStop writes a stop command after the client confirms. Refused
// without a write while the robot is idle.
func (s *Server) EmergencyStop(c *gin.Context) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Confirm {
		c.JSON(http.StatusBadRequest, gin.H{"error": "confirmation required"})
		return
	}

	err := s.robot.EmergencyStop(c.Request.Context())
	switch {
	case errors.Is(err, robot.ErrRobotIdle):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case err != nil:
		log.Printf("api: emergency stop failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "긴급 정지 명령 전송에 실패했습니다."})
	default:
		s.metrics.EmergencyStop()
		c.JSON(http.StatusOK, gin.H{"message": "🛑 긴급 정지 명령이 전송되었습니다!"})
	}
}

// Recover writes a recovery command, home or resume.
func (s *Server) Recover(c *gin.Context) {
	var req struct {
		Action string `json:"action" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.robot.Recover(c.Request.Context(), req.Action)
	switch {
	case errors.Is(err, robot.ErrBadRecoveryAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case err != nil:
		log.Printf("api: recovery command failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "명령 전송에 실패했습니다."})
	default:
		s.metrics.RecoveryCommand(req.Action)
		msg := "🏠 초기화 중... 홈 위치로 이동합니다."
		if req.Action == models.RecoveryActionResume {
			msg = "▶️ 작업을 다시 시작합니다."
		}
		c.JSON(http.StatusOK, gin.H{"message": msg})
	}
}

// Jog validates and publishes a manual jog command on the control
// channel. Refused when the channel is down; nothing is queued.
func (s *Server) Jog(c *gin.Context) {
	if s.panel == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": rosbridge.ErrNotConnected.Error()})
		return
	}

	var cmd jog.Command
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.panel.Send(cmd)
	switch {
	case errors.Is(err, jog.ErrInvalidCommand):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, rosbridge.ErrNotConnected):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		s.metrics.JogPublished(cmd.Type)
		c.JSON(http.StatusOK, gin.H{"message": "jog command published", "connected": s.panel.Connected()})
	}
}

// AdminLogin checks the shared password and issues a session token.
func (s *Server) AdminLogin(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := s.gate.Login(req.Password)
	if errors.Is(err, admin.ErrWrongPassword) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	s.hub.Dispatch(app.LoggedIn{})
	c.JSON(http.StatusOK, gin.H{"token": token, "view": app.ViewAdmin})
}

// AdminLogout drops the session flag and returns to the customer view.
// The token itself simply ages out.
func (s *Server) AdminLogout(c *gin.Context) {
	s.hub.Dispatch(app.LoggedOut{})
	c.JSON(http.StatusOK, gin.H{"view": app.ViewCustomer})
}

// SelectView switches the top-level view; switching to admin without an
// authenticated session is ignored by the reducer.
func (s *Server) SelectView(c *gin.Context) {
	var req struct {
		View app.View `json:"view" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.hub.Dispatch(app.ViewSelected{View: req.View})
	c.JSON(http.StatusOK, gin.H{"view": s.hub.State().View})
}
