package main

import (
	"context"
	"embed"
	"os"
	goruntime "runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
	"github.com/wailsapp/wails/v2"
	wailsLogger "github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"

	"github.com/hackerai/hackerai-desktop/internal/config"
	"github.com/hackerai/hackerai-desktop/internal/desktop"
	"github.com/hackerai/hackerai-desktop/internal/logging"
)

//go:embed all:frontend/dist
var assets embed.FS

const restartWaitTimeout = 10 * time.Second

func main() {
	cmd := &cli.Command{
		Name:    "hackerai-desktop",
		Usage:   "HackerAI desktop app",
		Version: desktop.Version,
		Flags:   config.Flags(),
		Action:  run,
	}

	if err := cmd.Run(context.Background(), launchArgs(os.Args)); err != nil {
		println("Error:", err.Error())
		os.Exit(1)
	}
}

// launchArgs drops the process serial number macOS passes to apps
// started from Finder.
func launchArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if strings.HasPrefix(arg, "-psn_") {
			continue
		}
		out = append(out, arg)
	}
	return out
}

// instanceID is stable per app identifier so every build shares one lock.
func instanceID() string {
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(config.AppIdentifier)).String()
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.NewFromCLI(cmd)
	if err != nil {
		return err
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if cfg.RestartWaitPID > 0 {
		if !desktop.WaitForExit(cfg.RestartWaitPID, restartWaitTimeout) {
			logger.Warn("previous instance still running after restart", "pid", cfg.RestartWaitPID)
		}
	}
	if cfg.DataDir == "" {
		logger.Warn("could not determine app data directory, update checks are not throttled")
	}

	app := desktop.NewApp(desktop.Options{Config: cfg, Logger: logger})

	// Detect development mode
	isDev := os.Getenv("WAILS_DEV") != "" || desktop.Version == "0.1.0-dev"

	return wails.Run(&options.App{
		Title:     config.AppName,
		Width:     1280,
		Height:    800,
		MinWidth:  800,
		MinHeight: 600,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 13, G: 13, B: 13, A: 1},
		Menu:             app.Menu(goruntime.GOOS == "darwin"),
		OnStartup:        app.Startup,
		OnDomReady:       app.DomReady,
		OnShutdown:       app.Shutdown,
		Bind: []interface{}{
			app.Bindings(),
		},
		SingleInstanceLock: &options.SingleInstanceLock{
			UniqueId:               instanceID(),
			OnSecondInstanceLaunch: app.OnSecondInstanceLaunch,
		},
		Mac: &mac.Options{
			OnUrlOpen: app.OnURLOpen,
		},
		Logger:             logging.NewWailsLogger(logger),
		LogLevel:           logging.WailsLevel(cfg.Log.Level),
		LogLevelProduction: wailsLogger.ERROR,
		// Enable DevTools in development mode
		Debug: options.Debug{
			OpenInspectorOnStartup: isDev,
		},
	})
}
