package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/boardlink/internal/admin"
	"github.com/udisondev/boardlink/internal/config"
	"github.com/udisondev/boardlink/internal/listener"
	"github.com/udisondev/boardlink/internal/lobby"
	"github.com/udisondev/boardlink/internal/sessions"
	"github.com/udisondev/boardlink/internal/statuspage"
)

const ConfigPath = "config/boardserver.xml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	slog.Info("boardlink server starting")

	cfgPath := ConfigPath
	if p := os.Getenv("BOARDLINK_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg.ApplyEnvOverrides()
	slog.Info("config loaded", "port", cfg.Port, "numConnsPerIP", cfg.NumConnectionsPerIP)

	var nextGUID int64
	guidGen := func() string {
		nextGUID++
		return fmt.Sprintf("%08x-0000-0000-0000-%012x", time.Now().UnixNano()&0xFFFFFFFF, nextGUID)
	}

	lobbyMgr := lobby.New(bool(cfg.SkipLevelMatching), bool(cfg.AllowSinglePlayer), sessions.NewFactory(), guidGen)
	lsn := listener.New(&cfg, cfg.NumConnectionsPerIP, lobbyMgr)

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
		if err != nil {
			return fmt.Errorf("listening on port %d: %w", cfg.Port, err)
		}
		slog.Info("listening", "port", cfg.Port)
		return lsn.Serve(gctx, ln)
	})

	group.Go(func() error {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				lobbyMgr.Tick()
			}
		}
	})

	group.Go(func() error {
		statusPort := config.DefaultStatusPort
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", statusPort))
		if err != nil {
			statusPort = cfg.Port + 1
			slog.Warn("status page: binding documented default port failed, falling back",
				"defaultPort", config.DefaultStatusPort, "fallbackPort", statusPort, "err", err)
			ln, err = net.Listen("tcp", fmt.Sprintf(":%d", statusPort))
			if err != nil {
				return fmt.Errorf("status page: listening on fallback port %d: %w", statusPort, err)
			}
		}
		slog.Info("status page listening", "port", statusPort)

		srv := statuspage.New("", statusPort, bool(cfg.DisableXPAdBanner), lobbyMgr)
		go func() {
			<-gctx.Done()
			srv.Close()
		}()
		if err := statuspage.Serve(gctx, srv, ln); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	group.Go(func() error {
		console := admin.New(lsn, &cfg, lobbyMgr, os.Stdout)
		errCh := make(chan error, 1)
		go func() { errCh <- console.Run(os.Stdin) }()
		select {
		case <-gctx.Done():
			return nil
		case err := <-errCh:
			return err
		}
	})

	return group.Wait()
}
