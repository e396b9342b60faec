package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/glabrego/snoo-cli/internal/app"
	"github.com/glabrego/snoo-cli/internal/config"
	"github.com/glabrego/snoo-cli/internal/feed"
	"github.com/glabrego/snoo-cli/internal/logging"
	"github.com/glabrego/snoo-cli/internal/netquality"
	"github.com/glabrego/snoo-cli/internal/reddit"
	"github.com/glabrego/snoo-cli/internal/storage"
	"github.com/glabrego/snoo-cli/internal/tui"
)

var version = "dev"

type cliMode int

const (
	cliRun cliMode = iota
	cliVersion
	cliHelp
	cliInvalid
)

func parseCLIArgs(args []string) (cliMode, string) {
	if len(args) == 0 {
		return cliRun, ""
	}

	switch args[0] {
	case "--version", "-version", "-v":
		return cliVersion, ""
	case "--help", "-h", "help":
		return cliHelp, ""
	default:
		return cliInvalid, fmt.Sprintf("unexpected argument: %s", strings.Join(args, " "))
	}
}

func usage() string {
	return "Usage: snoo [--version|-version|-v] [--help|-h]"
}

// startFeed picks the feed to open: an explicit SNOO_FEED wins over the one
// remembered from the last session.
func startFeed(cfg config.Config, feedSet bool, prefs storage.UIPreferences) string {
	if feedSet || prefs.LastFeed == "" {
		return cfg.Feed
	}
	return prefs.LastFeed
}

func toUIPreferences(prefs storage.UIPreferences) tui.Preferences {
	out := tui.Preferences{HideRead: prefs.HideRead, Feed: prefs.LastFeed}
	if s, ok := feed.ParseSort(prefs.Sort); ok {
		out.Sort = s
	}
	return out
}

func toStoredPreferences(p tui.Preferences) storage.UIPreferences {
	return storage.UIPreferences{
		Sort:     string(p.Sort),
		HideRead: p.HideRead,
		LastFeed: p.Feed,
	}
}

func main() {
	mode, msg := parseCLIArgs(os.Args[1:])
	switch mode {
	case cliVersion:
		fmt.Printf("snoo %s\n", version)
		return
	case cliHelp:
		fmt.Println(usage())
		return
	case cliInvalid:
		fmt.Fprintf(os.Stderr, "%s\n%s\n", msg, usage())
		os.Exit(2)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, logCloser, err := logging.New(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		log.Fatalf("logging error: %v", err)
	}
	defer logCloser.Close()

	repo, err := storage.NewRepository(cfg.DBPath)
	if err != nil {
		log.Fatalf("storage init error: %v", err)
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := repo.Init(ctx); err != nil {
		log.Fatalf("storage schema error: %v", err)
	}
	if err := repo.CheckWritable(ctx); err != nil {
		log.Fatalf("storage write check failed (%v). Verify SNOO_DB_PATH is writable: %s", err, cfg.DBPath)
	}

	monitor := netquality.NewMonitor(netquality.DefaultFastThreshold)
	client := reddit.NewClient(cfg.APIBaseURL, cfg.UserAgent, cfg.AccessToken, nil)
	client.ObserveLatency(monitor)
	service := app.NewService(client, repo, monitor, logger)

	if cfg.AccessToken != "" {
		user, err := service.CheckAuth(ctx)
		if err != nil {
			log.Fatalf("auth error: %v", err)
		}
		logger.WithField("user", user.Name).Info("authenticated")
	}

	prefCtx, prefCancel := context.WithTimeout(context.Background(), 5*time.Second)
	prefs, prefErr := service.LoadUIPreferences(prefCtx)
	prefCancel()

	_, feedSet := os.LookupEnv("SNOO_FEED")
	sort, _ := feed.ParseSort(cfg.Sort)
	model := tui.NewModel(service, tui.Options{
		Feed:             startFeed(cfg, feedSet, prefs),
		Sort:             sort,
		ChunkSize:        cfg.ChunkSize,
		HideRead:         cfg.HideRead,
		MarkReadOnScroll: cfg.MarkReadOnScroll,
		Logger:           logger,
	})

	if prefErr != nil {
		fmt.Fprintf(os.Stderr, "warning: could not load UI preferences (%v), using defaults\n", prefErr)
	} else {
		ui := toUIPreferences(prefs)
		ui.HideRead = ui.HideRead || cfg.HideRead
		model.ApplyPreferences(ui)
	}

	model.SetPreferencesSaver(func(p tui.Preferences) error {
		saveCtx, saveCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer saveCancel()
		return service.SaveUIPreferences(saveCtx, toStoredPreferences(p))
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatalf("tui error: %v", err)
	}
}
