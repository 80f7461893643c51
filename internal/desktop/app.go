// Package desktop provides the native desktop shell for HackerAI: deep-link
// routing, update checks and the Wails lifecycle hooks that drive them.
package desktop

import (
	"context"
	"log/slog"
	"net/url"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/options"

	"github.com/hackerai/hackerai-desktop/internal/config"
	"github.com/hackerai/hackerai-desktop/internal/deeplink"
	"github.com/hackerai/hackerai-desktop/internal/update"
)

// Version is set at build time via ldflags
var Version = "0.1.0-dev"

// Window brings the main window to the front.
type Window interface {
	Focus(ctx context.Context) error
}

// Options wires an App. Nil collaborators default to the Wails runtime.
type Options struct {
	Config    *config.Config
	Logger    *slog.Logger
	Service   update.Service
	Navigator deeplink.Navigator
	Dialogs   update.Dialogs
	Window    Window
	Restarter update.Restarter
}

// App struct holds the application state
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	cfg       *config.Config
	log       *slog.Logger
	nav       deeplink.Navigator
	window    Window
	handler   *deeplink.Handler
	updater   *update.Updater
	scheduler *update.Scheduler

	// register installs the URL scheme with the OS.
	register func(scheme, appName string) error

	mu      sync.Mutex
	ready   bool
	pending []string
}

// NewApp creates a new App application struct
func NewApp(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	rt := &runtimeBridge{}
	nav := opts.Navigator
	if nav == nil {
		nav = rt
	}
	dialogs := opts.Dialogs
	if dialogs == nil {
		dialogs = rt
	}
	window := opts.Window
	if window == nil {
		window = rt
	}
	handler := deeplink.NewHandler(deeplink.Options{
		Scheme:           cfg.DeepLink.Scheme,
		ProductionOrigin: cfg.DeepLink.ProductionOrigin,
		AllowedHosts:     cfg.DeepLink.AllowedHosts,
		Navigator:        nav,
		Logger:           log,
	})
	restarter := opts.Restarter
	if restarter == nil {
		restarter = newSelfRestarter(rt, handler.Scheme(), log)
	}
	svc := opts.Service
	if svc == nil {
		svc = update.NewHTTPService(update.ServiceOptions{
			Endpoint:       cfg.Updates.Endpoint,
			CurrentVersion: Version,
			Timeout:        cfg.Updates.Timeout.Duration,
			PublicKey:      cfg.Updates.PublicKey,
			Logger:         log,
		})
	}

	updater := update.NewUpdater(svc, dialogs, restarter, log)
	throttle := update.NewThrottle(cfg.DataDir, cfg.Updates.CheckInterval.Duration, log)

	return &App{
		ctx:    context.Background(),
		cancel: func() {},
		cfg:    cfg,
		log:    log.With("component", "app"),
		nav:    nav,
		window: window,
		handler:   handler,
		updater:   updater,
		scheduler: update.NewScheduler(throttle, updater, cfg.Updates.PollInterval.Duration, log),
		register:  deeplink.Register,
		pending:   append([]string(nil), cfg.Links...),
	}
}

// Startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) Startup(ctx context.Context) {
	a.ctx, a.cancel = context.WithCancel(ctx)

	if a.cfg.DeepLink.Register {
		if err := a.register(a.cfg.DeepLink.Scheme, config.AppName); err != nil {
			a.log.Warn("failed to register deep links", "error", err)
		} else {
			a.log.Info("deep links registered", "scheme", a.cfg.DeepLink.Scheme)
		}
	}

	if a.cfg.Updates.Enabled {
		go a.scheduler.Run(a.ctx)
	} else {
		a.log.Info("background update checks disabled")
	}

	a.log.Info("HackerAI Desktop initialized", "version", Version)
}

// DomReady is called once the bundled page has loaded. Queued deep links
// are replayed; without one the view is sent to the production origin.
func (a *App) DomReady(ctx context.Context) {
	a.mu.Lock()
	if a.ready {
		a.mu.Unlock()
		return
	}
	a.ready = true
	links := a.pending
	a.pending = nil
	a.mu.Unlock()

	navigated := false
	for _, raw := range links {
		if res, err := a.handle(raw); err == nil && res.Target != "" {
			navigated = true
		}
	}
	if navigated {
		return
	}

	if err := a.nav.Navigate(a.ctx, a.cfg.DeepLink.ProductionOrigin); err != nil {
		a.log.Error("failed to open home page", "error", err)
	}
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	a.cancel()
}

// HandleURL routes a deep link, queueing it until the view is ready.
func (a *App) HandleURL(raw string) {
	a.mu.Lock()
	if !a.ready {
		a.pending = append(a.pending, raw)
		a.mu.Unlock()
		a.log.Debug("deep link queued until the view is ready")
		return
	}
	a.mu.Unlock()

	_, _ = a.handle(raw)
}

func (a *App) handle(raw string) (deeplink.Result, error) {
	u, err := url.Parse(raw)
	if err != nil {
		a.log.Warn("unparseable deep link", "error", err)
		return deeplink.Result{}, err
	}
	return a.handler.Handle(a.ctx, u)
}

// OnURLOpen receives links the OS delivers to the running app (macOS).
func (a *App) OnURLOpen(raw string) {
	a.log.Info("deep link received")
	a.HandleURL(raw)
}

// OnSecondInstanceLaunch receives the arguments of a second launch.
// On Linux and Windows this is how deep links reach a running app.
func (a *App) OnSecondInstanceLaunch(data options.SecondInstanceData) {
	a.log.Info("single instance callback", "args", len(data.Args))
	for _, arg := range data.Args {
		if a.handler.IsDeepLink(arg) {
			a.log.Info("processing deep link from arguments")
			a.HandleURL(arg)
		}
	}

	if err := a.window.Focus(a.ctx); err != nil {
		a.log.Warn("failed to focus main window", "error", err)
	}
}

// CheckForUpdates runs an interactive check and returns its outcome.
func (a *App) CheckForUpdates() string {
	return a.updater.Check(a.ctx, update.Interactive).String()
}

// GetVersion returns the application version
func (a *App) GetVersion() string {
	return Version
}

// Menu builds the application menu.
func (a *App) Menu(macOS bool) *menu.Menu {
	appMenu := menu.NewMenu()
	if macOS {
		appMenu.Append(menu.AppMenu())
		appMenu.Append(menu.EditMenu())
	}
	help := appMenu.AddSubmenu("Help")
	help.AddText("Check for Updates…", nil, func(_ *menu.CallbackData) {
		// Menu callbacks run on the UI thread; dialogs must not block it.
		go a.CheckForUpdates()
	})
	return appMenu
}

// Bindings is the API exposed to the bundled frontend.
type Bindings struct {
	app *App
}

// Bindings returns the frontend-facing methods of the app.
func (a *App) Bindings() *Bindings {
	return &Bindings{app: a}
}

// CheckForUpdates runs an interactive update check.
func (b *Bindings) CheckForUpdates() string {
	return b.app.CheckForUpdates()
}

// GetVersion returns the application version.
func (b *Bindings) GetVersion() string {
	return b.app.GetVersion()
}
