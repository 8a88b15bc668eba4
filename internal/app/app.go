package app

import (
	"context"
	"fmt"
	"time"

	"github.com/five82/hoard/internal/bridge"
	"github.com/five82/hoard/internal/config"
	"github.com/five82/hoard/internal/hoarder"
	"github.com/five82/hoard/internal/logger"
	"github.com/five82/hoard/internal/prefs"
	"github.com/five82/hoard/internal/session"
	"github.com/five82/hoard/internal/ui"
)

// Mode selects the front end Run starts.
type Mode int

const (
	// ModeTUI runs the interactive terminal UI.
	ModeTUI Mode = iota
	// ModeServe runs the loopback command bridge.
	ModeServe
)

// Options configure the hoard application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/hoard/prefs.toml
	Mode       Mode
	Addr       string // bridge listen address; empty uses config
	Version    string // reported in the User-Agent header
}

const shutdownTimeout = 5 * time.Second

// Run boots hoard until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.PrettyLog,
		Dir:    cfg.LogDir,
		Quiet:  opts.Mode == ModeTUI,
	})
	defer func() { _ = log.Sync() }()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		log.Warn("preferences unavailable", logger.Error(err))
	}

	store := newStore(cfg, userPrefs, opts.Version, log)

	switch opts.Mode {
	case ModeServe:
		addr := opts.Addr
		if addr == "" {
			addr = cfg.BridgeAddr
		}
		return serve(ctx, bridge.New(addr, bridge.Deps{
			Store:  store,
			Logger: log,
			LogDir: cfg.LogDir,
		}), log)
	default:
		return ui.Run(ui.Options{
			Context:   ctx,
			Store:     store,
			Logger:    log,
			PageSize:  cfg.PageSize,
			ThemeName: userPrefs.Theme,
			PrefsPath: opts.PrefsPath,
			ServerURL: initialServerURL(cfg, userPrefs),
		})
	}
}

// newStore builds the credential store and seeds its origin from config,
// falling back to the last server URL the user entered. A bad URL is
// logged and left for the user to correct.
func newStore(cfg config.Config, p prefs.Prefs, version string, log logger.Logger) *session.Store {
	opts := []hoarder.Option{
		hoarder.WithTimeout(cfg.Timeout),
		hoarder.WithAuthScheme(cfg.AuthScheme),
		hoarder.WithLogger(log),
	}
	if version != "" {
		opts = append(opts, hoarder.WithUserAgent("hoard/"+version))
	}
	factory := session.DefaultFactory(opts...)
	store := session.New(factory, log)
	if raw := initialServerURL(cfg, p); raw != "" {
		if _, err := store.SetOrigin(raw); err != nil {
			log.Warn("ignoring configured server URL", logger.Error(err))
		}
	}
	return store
}

func initialServerURL(cfg config.Config, p prefs.Prefs) string {
	if cfg.ServerURL != "" {
		return cfg.ServerURL
	}
	return p.ServerURL
}

// serve runs the bridge until ctx is done, then shuts it down.
func serve(ctx context.Context, srv *bridge.Server, log logger.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("bridge: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(stopCtx); err != nil {
		log.Error("bridge shutdown failed", logger.Error(err))
		return fmt.Errorf("stop bridge: %w", err)
	}
	return <-errCh
}
