package main

import (
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	reporthttp "github.com/reportkit/go-report-export/adapters/http"
	reportpdf "github.com/reportkit/go-report-export/adapters/pdf"
	"github.com/reportkit/go-report-export/pkg/logger"
)

func main() {
	cfg := FromEnv()

	lg, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer lg.Sync()

	engine := &reportpdf.ChromiumEngine{
		BrowserPath: cfg.Chromium.Path,
		Headless:    cfg.Chromium.Headless,
		Args:        cfg.Chromium.Args,
		Timeout:     time.Duration(cfg.Export.TimeoutSeconds) * time.Second,
		Logger:      lg,
	}
	defer engine.Close()

	app := reporthttp.New(reporthttp.Config{
		Engine:       engine,
		Logger:       lg,
		MaxBodyBytes: cfg.Export.MaxBodyBytes,
		AllowOrigins: cfg.Export.AllowOrigins,
	})

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		lg.Infof("report export server listening on %s", addr)
		errCh <- app.Listen(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			lg.Errorf("server error: %v", err)
			os.Exit(1)
		}
	case sig := <-stop:
		lg.Infof("received %s, shutting down", sig)
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			lg.Errorf("shutdown error: %v", err)
		}
		if err := engine.Close(); err != nil {
			lg.Errorf("failed to close chromium: %v", err)
		}
	}
}
