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
	"golang.org/x/sync/errgroup"

	"github.com/talkincode/productapi/config"
	"github.com/talkincode/productapi/internal/adminapi"
	"github.com/talkincode/productapi/internal/app"
	"github.com/talkincode/productapi/internal/webserver"
)

var (
	version   = "develop"
	conffile  = flag.String("c", "", "config yaml file")
	showVer   = flag.Bool("v", false, "show version")
	stopGrace = 10 * time.Second
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println(version)
		return
	}

	cfg, err := config.LoadConfig(*conffile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	webserver.Init(application)
	adminapi.Init()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		zap.L().Info("server running", zap.String("addr", cfg.Web.Addr()))
		return webserver.Listen(cfg.Web.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		zap.L().Info("shutting down server")
		sctx, cancel := context.WithTimeout(context.Background(), stopGrace)
		defer cancel()
		return webserver.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		zap.L().Error("server stopped", zap.Error(err))
	}
}
