package main

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/bmgr/internal/bookmarks"
	"github.com/nikbrunner/bmgr/internal/command"
	"github.com/nikbrunner/bmgr/internal/config"
	"github.com/nikbrunner/bmgr/internal/dnd"
	"github.com/nikbrunner/bmgr/internal/listener"
	"github.com/nikbrunner/bmgr/internal/logging"
	"github.com/nikbrunner/bmgr/internal/state"
	"github.com/nikbrunner/bmgr/internal/storage"
	"github.com/nikbrunner/bmgr/internal/tui"
)

// env is everything a subcommand needs, wired together.
type env struct {
	cfg      config.Config
	log      *logrus.Logger
	backend  *storage.Backend
	service  *bookmarks.Service
	store    *state.Store
	listener *listener.Listener
	drag     *dnd.Manager
	commands *command.Manager

	closers []func() error
}

// openEnv loads the config, opens storage and starts the listener. With a
// bridge the store and drag manager report to the TUI and preference
// changes in the config file are applied live.
func openEnv(path string, bridge *tui.Bridge) (*env, error) {
	manager, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg, err := manager.Config()
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: logger, closers: []func() error{closeLog}}

	e.backend, err = storage.Open(cfg.Storage)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.closers = append(e.closers, e.backend.Close)

	e.service, err = bookmarks.New(bookmarks.Params{
		Storage: e.backend,
		Logger:  logger.WithField("component", "bookmarks"),
	})
	if err != nil {
		e.Close()
		return nil, err
	}
	e.closers = append(e.closers, e.service.Close)

	openState, err := tui.LoadFolderOpenState(e.backend)
	if err != nil {
		logger.WithError(err).Warn("ignoring saved folder state")
	}
	e.store = state.NewStore(state.StoreParams{Logger: logger.WithField("component", "store")})
	e.store.Init(state.NewInitialState(e.service.GetTree(), openState))

	var highlight func([]string)
	if bridge != nil {
		e.store.AddObserver(bridge)
		highlight = bridge.Highlight
	}
	e.listener = listener.New(listener.Params{
		Store:       e.store,
		Source:      e.service,
		QuietPeriod: cfg.Listener.QuietPeriod,
		Highlight:   highlight,
		Logger:      logger,
	})
	e.listener.Start()
	e.listener.OnPrefsChanged(cfg.Prefs)
	e.closers = append(e.closers, func() error { e.listener.Close(); return nil })

	dndParams := dnd.Params{
		Store:          e.store,
		Service:        e.service,
		Tracker:        e.listener,
		ExpandDelay:    cfg.DnD.ExpandDelay,
		IndicatorDelay: cfg.DnD.IndicatorDelay,
		Logger:         logger,
	}
	if bridge != nil {
		dndParams.OnIndicator = bridge.OnIndicator
	}
	e.drag = dnd.New(dndParams)
	e.drag.Start()
	e.closers = append(e.closers, func() error { e.drag.Close(); return nil })

	e.commands = command.New(command.Params{
		Store:   e.store,
		Service: e.service,
		Tracker: e.listener,
		Open:    command.NewOpener(cfg.Open.Browser),
		Logger:  logger,
	})

	if bridge != nil {
		manager.Watch(func(c config.Config) {
			logger.WithField("path", manager.Path()).Info("config changed")
			e.listener.OnPrefsChanged(c.Prefs)
		})
	}
	return e, nil
}

// Close stops everything openEnv started, newest first.
func (e *env) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}
