package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"roboburger/internal/admin"
	"roboburger/internal/api"
	"roboburger/internal/app"
	"roboburger/internal/config"
	"roboburger/internal/jog"
	"roboburger/internal/models"
	"roboburger/internal/monitoring"
	"roboburger/internal/orders"
	"roboburger/internal/robot"
	"roboburger/internal/rosbridge"
	"roboburger/internal/stats"
	"roboburger/internal/store"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *metricsPort != 0 {
		cfg.Server.MetricsPort = *metricsPort
	}

	st, err := store.NewRedis(cfg.Store.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to realtime store: %v", err)
	}
	defer st.Close()

	metrics := monitoring.NewMetrics()
	aggregator := stats.NewAggregator(st)
	orderCtl := orders.NewController(st, aggregator)
	robotCtl := robot.NewController(st)
	gate := admin.NewGate(cfg.Admin.Password)

	// The manual jog panel is best-effort: a dead rosbridge leaves the
	// kiosk fully usable, jog requests just get refused.
	var panel *jog.Panel
	if ros, err := rosbridge.Dial(cfg.Robot.BridgeURL); err != nil {
		log.Printf("Jog control channel unavailable: %v", err)
	} else {
		defer ros.Close()
		if err := ros.Advertise(jog.Topic); err != nil {
			log.Printf("Jog topic advertise failed: %v", err)
		}
		panel = jog.NewPanel(ros)
	}

	statusSub, err := robotCtl.Watch(func(status models.RobotStatus, _ bool) {
		metrics.RobotStatus(status)
	})
	if err != nil {
		log.Fatalf("Failed to watch robot status: %v", err)
	}
	defer statusSub.Unsubscribe()

	hub := app.NewHub()
	defer hub.Close()
	if err := hub.Attach(st, orderCtl, robotCtl, aggregator); err != nil {
		log.Fatalf("Failed to subscribe store paths: %v", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewServer(hub, orderCtl, robotCtl, aggregator, gate, panel, metrics).Router,
	}

	go startMetricsServer(cfg.Server.MetricsPort, metrics)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down servers...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("API server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting kiosk API server on port %d", cfg.Server.Port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("API server error: %v", err)
	}
}

func startMetricsServer(port int, metrics *monitoring.Metrics) {
	metricsRouter := gin.Default()
	metricsRouter.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
		metrics.Registry(), promhttp.HandlerOpts{})))

	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: metricsRouter,
	}

	log.Printf("Starting metrics server on port %d", port)
	if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Printf("Metrics server error: %v", err)
	}
}
