package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/boldserve/adminconsole/config"
	"github.com/boldserve/adminconsole/internal/app"
	"github.com/boldserve/adminconsole/internal/webserver"
)

var (
	h       = flag.Bool("h", false, "help usage")
	cfile   = flag.String("c", "adminconsole.yml", "config yaml file")
	printv  = flag.Bool("v", false, "print build mode and backend url")
	migrate = flag.Bool("migrate", false, "migrate the operator log database and exit")
)

func main() {
	flag.Parse()
	if *h {
		flag.Usage()
		return
	}

	cfg, err := config.LoadConfig(*cfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *printv {
		fmt.Printf("%s %s\n", config.BuildMode, cfg.BaseURL())
		return
	}

	application := app.NewApplication(cfg)
	if err := application.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer application.Release()

	if *migrate {
		if application.DB() == nil {
			zap.S().Error("migrate requires database.dsn")
			return
		}
		if err := application.MigrateDB(true); err != nil {
			zap.S().Errorf("migrate failed: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	console, err := application.Console(ctx)
	if err != nil {
		zap.S().Errorf("console init failed: %v", err)
		return
	}
	srv := webserver.New(cfg, console)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			zap.S().Errorf("server failed: %v", err)
		}
	case <-ctx.Done():
		zap.L().Info("shutting down admin console")
		if err := srv.Shutdown(10 * time.Second); err != nil {
			zap.S().Errorf("server forced to shutdown: %v", err)
		}
	}
}
