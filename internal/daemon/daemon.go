// Package daemon runs the desktop shell: the window manager, its HTTP and
// IPC surfaces, the action journal, and live config reload.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nosyt/nosytos/internal/api"
	"github.com/nosyt/nosytos/internal/config"
	"github.com/nosyt/nosytos/internal/desktop"
	"github.com/nosyt/nosytos/internal/events"
	"github.com/nosyt/nosytos/internal/gesture"
	"github.com/nosyt/nosytos/internal/ipc"
	"github.com/nosyt/nosytos/internal/journal"
	"github.com/nosyt/nosytos/internal/runtimepath"
	"github.com/nosyt/nosytos/internal/sse"
	"github.com/nosyt/nosytos/internal/x11"
)

// Options configure Run. Empty fields fall back to the config file and the
// runtime directory.
type Options struct {
	ConfigPath  string
	SocketPath  string
	PIDPath     string
	HTTPAddress string
	Stderr      io.Writer

	// Ready, if set, receives the bound HTTP address once every listener is up.
	Ready func(httpAddr string)
}

// Run starts the daemon and blocks until ctx is cancelled or SIGINT/SIGTERM
// arrives. SIGHUP reloads the config.
func Run(ctx context.Context, opts Options) error {
	configPath := opts.ConfigPath
	if configPath == "" {
		p, err := config.DefaultConfigPath()
		if err != nil {
			return err
		}
		configPath = p
	}
	res, err := config.LoadFromPath(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := res.Config

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	level := new(slog.LevelVar)
	level.Set(cfg.SlogLevel())
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	logger.Info("configuration loaded",
		slog.String("path", configPath),
		slog.Int("windows", len(cfg.Windows)),
		slog.Int("apps", len(cfg.Apps)),
		slog.String("log_level", level.Level().String()))

	if cfg.DetectViewport {
		vp, err := x11.ProbeViewport(cfg.Display)
		if err != nil {
			logger.Warn("viewport detection failed, using configured size", slog.String("error", err.Error()))
		} else {
			cfg.Viewport = config.Size{Width: vp.Bounds.Width, Height: vp.Bounds.Height}
			logger.Info("viewport detected", slog.String("monitor", vp.Monitor), slog.String("bounds", vp.Bounds.String()))
		}
	}

	broker := sse.NewBroker()
	defer broker.Close()

	managerOpts := []desktop.Option{
		desktop.WithLogger(logger),
		desktop.WithRenderer(broker),
		desktop.WithObserver(broker),
	}

	var jrnl *journal.Journal
	if cfg.Journal.Enabled {
		jrnl, err = journal.Open(cfg.Journal.Path, logger)
		if err != nil {
			return err
		}
		defer jrnl.Close()
		managerOpts = append(managerOpts, desktop.WithObserver(jrnl))
	}

	manager := desktop.New(cfg, managerOpts...)
	gestures := gesture.NewController(manager, logger)
	if jrnl != nil {
		gestures.OnSessionEnd = jrnl.GestureEnded
	}
	dispatcher := events.NewDispatcher(manager, gestures, logger)

	reloader := NewReloader(configPath, manager, level, logger)
	reloader.setFiles(res.Files)

	httpAddr := opts.HTTPAddress
	if httpAddr == "" {
		httpAddr = cfg.HTTP.Address
	}
	listener, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", httpAddr, err)
	}
	httpAddr = listener.Addr().String()

	ipcServer, err := ipc.NewServer(manager, dispatcher, ipc.ServerOptions{
		SocketPath:  opts.SocketPath,
		HTTPAddress: httpAddr,
		Reload:      reloader.Reload,
		Logger:      logger,
	})
	if err != nil {
		listener.Close()
		return err
	}
	if err := ipcServer.Start(); err != nil {
		listener.Close()
		return err
	}
	defer ipcServer.Stop()

	pidPath := opts.PIDPath
	if pidPath == "" {
		if pidPath, err = runtimepath.PIDPath(); err != nil {
			logger.Warn("pid path unavailable", slog.String("error", err.Error()))
		}
	}
	if pidPath != "" {
		if err := writePIDFile(pidPath); err != nil {
			logger.Warn("pid file not written", slog.String("error", err.Error()))
		} else {
			defer os.Remove(pidPath)
		}
	}

	deps := api.Deps{Desktop: manager, Dispatcher: dispatcher, Stream: broker}
	if jrnl != nil {
		deps.Journal = jrnl
	}
	httpServer := &http.Server{
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting HTTP server", slog.String("address", httpAddr))
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return Watch(gCtx, reloader, logger)
	})

	if jrnl != nil {
		g.Go(func() error {
			return jrnl.Run(gCtx)
		})
	}

	g.Go(func() error {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(sigCh)

	loop:
		for {
			select {
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					logger.Info("received SIGHUP, reloading config")
					_ = reloader.Reload()
					continue
				}
				logger.Info("received shutdown signal", slog.String("signal", sig.String()))
				break loop
			case <-gCtx.Done():
				break loop
			}
		}

		cancel()
		// Open event streams end when their broker channel closes.
		broker.Close()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if opts.Ready != nil {
		opts.Ready(httpAddr)
	}

	if err := g.Wait(); err != nil {
		logger.Error("daemon error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("daemon stopped")
	return nil
}
