package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mchsuite/billingd/config"
	"github.com/mchsuite/billingd/internal/adminapi"
	"github.com/mchsuite/billingd/internal/app"
)

var configFile = flag.String("c", "/etc/billingd.yml", "config file path")

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	if err := application.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "init error: %v\n", err)
		os.Exit(1)
	}
	defer application.Release()

	api := adminapi.NewServer(application.Engine(), application.Cache(), application.Cart())

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
		if err := api.Start(addr); err != nil && err != http.ErrServerClosed {
			zap.S().Fatalf("admin api error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := api.Shutdown(ctx); err != nil {
		zap.S().Errorf("admin api shutdown error: %v", err)
	}
}
