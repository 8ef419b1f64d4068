package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/dan13ram/mtoken-bridge/app"
	"github.com/dan13ram/mtoken-bridge/governance"
	"github.com/dan13ram/mtoken-bridge/metrics"
	"github.com/dan13ram/mtoken-bridge/models"
	"github.com/dan13ram/mtoken-bridge/node"
	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	var configPath string
	var envPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&envPath, "env", "", "path to env file")
	flag.Parse()

	var absConfigPath = ""
	var err error
	if configPath != "" {
		absConfigPath, err = filepath.Abs(configPath)
		if err != nil {
			log.Fatal("[MAIN] Could not get absolute path for config file: ", err)
		}
	}

	var absEnvPath = ""
	if envPath != "" {
		absEnvPath, err = filepath.Abs(envPath)
		if err != nil {
			log.Fatal("[MAIN] Could not get absolute path for env file: ", err)
		}
	}

	if absConfigPath == "" && absEnvPath == "" {
		log.Debug("[MAIN] No config or env file provided, reading from the environment")
	}

	app.InitConfig(absConfigPath, absEnvPath)
	app.InitLogger()
	app.InitDB()

	signer, err := app.NewSigner()
	if err != nil {
		log.Fatal("[MAIN] Error creating signer: ", err)
	}
	defer signer.Destroy()

	clock := governance.SystemClock{}
	chains, err := node.NewChains(app.Config, clock, signer.EthAddress(), node.JournalSinks(app.Config, clock))
	if err != nil {
		log.Fatal("[MAIN] Error building chains: ", err)
	}

	healthcheck := app.NewHealthCheck(signer)

	var lastHealth models.Health
	if app.Config.HealthCheck.ReadLastHealth {
		if lastHealth, err = healthcheck.FindLastHealth(); err != nil {
			log.Warn("[MAIN] Error getting last health: ", err)
		}
	}

	var wg sync.WaitGroup

	services := node.CreateServices(chains, &wg, lastHealth)

	healthService := app.NewHealthService(healthcheck, &wg)
	healthcheck.SetServices(services)
	services = append(services, healthService)

	wg.Add(len(services))

	for _, service := range services {
		go service.Start()
	}

	var metricsServer *http.Server
	if app.Config.Metrics.Enabled {
		metricsServer = startMetricsServer(app.Config.Metrics.ListenAddr)
	}

	log.Info("[MAIN] Server started")

	gracefulStop := make(chan os.Signal, 1)
	done := make(chan bool, 1)
	signal.Notify(gracefulStop, syscall.SIGINT, syscall.SIGTERM)
	go waitForExitSignals(gracefulStop, done)
	<-done

	log.Debug("[MAIN] Stopping server gracefully")

	for _, service := range services {
		service.Stop()
	}

	wg.Wait()

	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(ctx); err != nil {
			log.Error("[MAIN] Error stopping metrics server: ", err)
		}
		cancel()
	}

	if err := app.DB.Disconnect(); err != nil {
		log.Error("[MAIN] Error disconnecting from database: ", err)
	}
	log.Info("[MAIN] Server stopped")
}

func waitForExitSignals(gracefulStop chan os.Signal, done chan bool) {
	sig := <-gracefulStop
	log.Debug("[MAIN] Caught signal: ", sig)
	done <- true
}

func startMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("[MAIN] Serving metrics on ", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("[MAIN] Metrics server failed: ", err)
		}
	}()

	return server
}
