// Package app wires the catalog engine, blob store, cache, cart and
// scheduler together and owns their lifecycle.
package app

import (
	"os"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mchsuite/billingd/config"
	"github.com/mchsuite/billingd/internal/billing"
	"github.com/mchsuite/billingd/internal/registry"
	"github.com/mchsuite/billingd/internal/store"
)

type Application struct {
	appConfig *config.AppConfig
	blobs     *store.BlobStore
	engine    *registry.Engine
	cache     *registry.Cache
	cart      *billing.Cart
	sched     *cron.Cron
}

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) Engine() *registry.Engine {
	return a.engine
}

func (a *Application) Cache() *registry.Cache {
	return a.cache
}

func (a *Application) Cart() *billing.Cart {
	return a.cart
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

func (a *Application) Init(cfg *config.AppConfig) error {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	if err := os.MkdirAll(cfg.System.Workdir, 0o755); err != nil {
		return err
	}

	a.blobs, err = store.Open(cfg.BlobStorePath())
	if err != nil {
		return err
	}

	flushDelay := time.Duration(cfg.Registry.FlushDelaySec) * time.Second
	if flushDelay <= 0 {
		flushDelay = registry.DefaultFlushDelay
	}
	a.engine, err = registry.Open(cfg.System.Workdir, a.blobs, flushDelay)
	if err != nil {
		return err
	}
	zap.S().Infof("catalog engine ready, workdir: %s", cfg.System.Workdir)

	a.cache, err = registry.NewCache(a.engine)
	if err != nil {
		return err
	}

	a.cart = billing.NewCart()

	a.initJob()
	return nil
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}

	if a.engine != nil {
		if err := a.engine.Close(); err != nil {
			zap.S().Errorf("engine close error: %v", err)
		}
	}

	if a.blobs != nil {
		_ = a.blobs.Close()
	}

	_ = zap.L().Sync()
}
