package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/matrixforge/ledhost/internal/api"
	"github.com/matrixforge/ledhost/internal/apps/dashboard"
	"github.com/matrixforge/ledhost/internal/apps/habridge"
	"github.com/matrixforge/ledhost/internal/apps/pong"
	"github.com/matrixforge/ledhost/internal/apps/snake"
	"github.com/matrixforge/ledhost/internal/domain/app"
	"github.com/matrixforge/ledhost/internal/domain/launcher"
	"github.com/matrixforge/ledhost/internal/domain/registry"
	"github.com/matrixforge/ledhost/internal/domain/sched"
	"github.com/matrixforge/ledhost/internal/infrastructure/config"
	"github.com/matrixforge/ledhost/internal/infrastructure/logging"
	"github.com/matrixforge/ledhost/internal/infrastructure/monitoring"
	"github.com/matrixforge/ledhost/internal/input"
	"github.com/matrixforge/ledhost/internal/menu"
	"github.com/matrixforge/ledhost/internal/rescue"
	"github.com/matrixforge/ledhost/internal/surface"
)

const (
	exitClean   = 0
	exitError   = 1
	exitRescue  = 2
	exitRestart = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	httpAddr := flag.String("http", "", "HTTP listen address (overrides HTTP_ADDR)")
	driverName := flag.String("driver", "memory", "display driver (memory)")
	dev := flag.Bool("dev", false, "development logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ledhost: %v\n", err)
		return exitError
	}

	logger := logging.NewAt(cfg.Logging.Level, *dev || cfg.Logging.Development)
	defer logger.Sync()

	logger.Info("ledhost starting",
		zap.String("driver", *driverName),
		zap.Int("frame_rate", cfg.Loop.FrameRate))

	promReg := prometheus.NewRegistry()
	metrics := monitoring.New(promReg)

	res := surface.Resolution{
		PanelWidth:  cfg.Matrix.PanelWidth,
		PanelHeight: cfg.Matrix.PanelHeight,
		ChainLength: cfg.Matrix.ChainLength,
		Parallel:    cfg.Matrix.Parallel,
	}
	driver, err := buildDriver(*driverName)
	if err != nil {
		logger.Error("driver init failed", zap.Error(err))
		return exitError
	}
	surf := surface.New(res, driver)
	defer surf.Close()
	surf.SetBrightness(cfg.Matrix.Brightness)

	router := input.NewRouter(cfg.Input.Debounce)
	machine := launcher.NewMachine()

	reg := registry.New()
	if err := registerApps(reg); err != nil {
		logger.Error("app registration failed", zap.Error(err))
		return bootRescue(machine, surf, router, cfg, logger, err)
	}
	seeder := registry.NewSeeder(reg, cfg.Apps.ManifestDir, logger)
	if err := seeder.Seed(); err != nil {
		logger.Warn("manifest seeding failed", zap.Error(err))
	}

	mn, err := menu.New(reg, res, cfg.Input.NavRepeat)
	if err != nil {
		logger.Error("menu init failed", zap.Error(err))
		return bootRescue(machine, surf, router, cfg, logger, err)
	}
	mn.AttachDimmer(surf)

	apps := app.NewManager(app.Config{
		HangThreshold: cfg.Loop.HangThreshold,
		StopGrace:     cfg.Loop.StopGrace,
	}, logger)

	loop := sched.New(sched.Config{FramePeriod: cfg.FramePeriod()},
		surf, router, mn, apps, machine, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var srv *api.Server
	if cfg.HTTP.Enabled {
		addr := cfg.HTTP.Addr
		if *httpAddr != "" {
			addr = *httpAddr
		}
		srv = api.NewServer(api.Config{Addr: addr, Development: *dev},
			loop, apps, reg, router, metrics, promReg, logger)
		go func() {
			if err := srv.Start(); err != nil {
				logger.Error("http server failed", zap.Error(err))
			}
		}()
		defer func() {
			shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := srv.Shutdown(shCtx); err != nil {
				logger.Warn("http shutdown failed", zap.Error(err))
			}
		}()
	}

	err = loop.Run(ctx)
	switch {
	case err == nil:
		logger.Info("clean shutdown")
		return exitClean
	case errors.Is(err, sched.ErrRescue):
		return runRescue(ctx, machine, surf, router, cfg, logger)
	default:
		logger.Error("scheduler failed", zap.Error(err))
		return exitError
	}
}

// bootRescue reports a boot failure on the panel instead of dying
// silently; the box is often mounted without a console.
func bootRescue(machine *launcher.Machine, surf *surface.Surface, router *input.Router, cfg *config.Config, logger *logging.Logger, cause error) int {
	machine.RecordFault(launcher.Fault{Reason: "boot failed", Err: cause})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runRescue(ctx, machine, surf, router, cfg, logger)
}

func runRescue(ctx context.Context, machine *launcher.Machine, surf *surface.Surface, router *input.Router, cfg *config.Config, logger *logging.Logger) int {
	reason := "unknown fault"
	if f := machine.LastFault(); f != nil {
		reason = f.String()
	}

	mode := rescue.New(surf, router, rescue.Config{
		HoldTime:      cfg.Rescue.HoldTime,
		DropTolerance: cfg.Rescue.DropTolerance,
		Cooldown:      cfg.Rescue.Cooldown,
	}, reason, logger)

	if err := mode.Run(ctx); errors.Is(err, rescue.ErrRestartRequested) {
		return exitRestart
	}
	return exitRescue
}

func buildDriver(name string) (surface.Driver, error) {
	switch name {
	case "memory":
		return surface.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown display driver %q", name)
	}
}

// registerApps wires the built-ins. Network apps read their endpoints
// from the environment so a bare box still boots into working apps.
func registerApps(reg *registry.Registry) error {
	dashCfg := dashboard.DefaultConfig()
	dashCfg.WeatherURL = os.Getenv("WEATHER_URL")
	if err := reg.Register(dashboard.Descriptor(dashCfg)); err != nil {
		return err
	}

	if base := os.Getenv("HA_URL"); base != "" {
		haCfg := habridge.DefaultConfig()
		haCfg.BaseURL = base
		haCfg.Token = os.Getenv("HA_TOKEN")
		if list := os.Getenv("HA_ENTITIES"); list != "" {
			haCfg.Entities = strings.Split(list, ",")
		}
		if err := reg.Register(habridge.Descriptor(haCfg)); err != nil {
			return err
		}
	}

	if err := reg.Register(snake.Descriptor()); err != nil {
		return err
	}
	return reg.Register(pong.Descriptor())
}
