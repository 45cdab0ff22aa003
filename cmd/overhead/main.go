package main

import (
	"flag"
	"log/slog"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"overhead/internal/api"
	"overhead/internal/config"
	"overhead/internal/notify"
	"overhead/internal/session"
	"overhead/internal/view"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults apply when omitted)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			slog.Error("config load failed", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger := newLogger(cfg.Log.Level)

	mainApp := app.NewWithID("io.overhead.client")
	window := mainApp.NewWindow("Overhead")
	window.Resize(fyne.NewSize(1000, 800))

	popups := notify.New()
	store := session.New(newPrefsStorage(mainApp.Preferences()), logger)
	views := view.NewSelector(store.IsAdmin)
	store.AttachViews(views)

	client := api.New(cfg.API, logger)
	client.TokenFunc = store.Token
	client.OnUnauthorized = func() {
		popups.Show(api.MsgSessionExpired)
		store.Logout()
	}
	store.AttachApartmentSource(client)

	ui := &appUI{
		win:     window,
		logger:  logger,
		client:  client,
		session: store,
		views:   views,
		popups:  popups,
		errs:    &api.Translator{Popups: popups, Logger: logger},
	}

	if store.Restore() {
		logger.Info("session restored", "admin", store.IsAdmin())
	}
	ui.start()

	window.ShowAndRun()
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
