package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"roboburger/internal/bridge"
	"roboburger/internal/config"
	"roboburger/internal/monitoring"
	"roboburger/internal/rosbridge"
	"roboburger/internal/store"
)

var (
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config; pick a free one when the kiosk runs on the same host)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *metricsPort != 0 {
		cfg.Server.MetricsPort = *metricsPort
	}

	st, err := store.NewRedis(cfg.Store.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to realtime store: %v", err)
	}
	defer st.Close()

	ros, err := rosbridge.Dial(cfg.Robot.BridgeURL)
	if err != nil {
		log.Fatalf("Failed to connect to rosbridge: %v", err)
	}
	defer ros.Close()

	for _, topic := range []string{bridge.TopicOrder, bridge.TopicStop, bridge.TopicRecovery} {
		if err := ros.Advertise(topic); err != nil {
			log.Fatalf("Failed to advertise %s: %v", topic, err)
		}
	}

	metrics := monitoring.NewMetrics()
	go startMetricsServer(cfg.Server.MetricsPort, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b := bridge.New(st, ros, metrics, cfg.PollInterval())
	log.Println("Store-to-ROS2 bridge running; new orders are forwarded automatically")
	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Bridge error: %v", err)
	}
	log.Println("Bridge shut down")
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
