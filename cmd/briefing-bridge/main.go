// cmd/briefing-bridge/main.go
//
// Headless counterpart to the briefing TUI: it wires the same interview
// controller and exposes it over HTTP so editors, scripts, and web
// frontends can drive an interview without a terminal.

package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/kingrea/The-Briefing/internal/agent"
	"github.com/kingrea/The-Briefing/internal/brief"
	"github.com/kingrea/The-Briefing/internal/config"
	"github.com/kingrea/The-Briefing/internal/httpbridge"
	"github.com/kingrea/The-Briefing/internal/interview"
	"github.com/kingrea/The-Briefing/internal/logbook"
	"github.com/kingrea/The-Briefing/internal/logging"
	"github.com/kingrea/The-Briefing/internal/notify"
	"github.com/kingrea/The-Briefing/internal/provider"
	"github.com/kingrea/The-Briefing/internal/session"
	"github.com/kingrea/The-Briefing/plugins"
)

func main() {
	projectDir := flag.String("project", "", "path to the project directory (defaults to cwd)")
	addr := flag.String("addr", "", "listen address override (host:port)")
	resume := flag.Bool("resume", true, "adopt a saved in-progress session on startup")
	flag.Parse()

	_ = godotenv.Load()

	project := *projectDir
	if project == "" {
		var err error
		project, err = os.Getwd()
		if err != nil {
			die("determine working directory: %v", err)
		}
	}
	absoluteProject, err := filepath.Abs(project)
	if err != nil {
		die("resolve project dir: %v", err)
	}
	if err := config.InitBriefingDir(absoluteProject); err != nil {
		die("init .briefing: %v", err)
	}
	cfg, err := config.New(absoluteProject)
	if err != nil {
		die("load config: %v", err)
	}

	serverLog, err := logging.New(absoluteProject)
	if err != nil {
		die("open server log: %v", err)
	}
	defer serverLog.Close()

	book, err := logbook.New(cfg.JourneyLogPath())
	if err != nil {
		die("open journey log: %v", err)
	}
	book.Info("Bridge starting · provider %s · store %s", cfg.ProviderMode(), cfg.StoreBackend())

	catalog := agent.NewCatalog()
	agent.RegisterBuiltins(catalog)
	if err := plugins.RegisterAgentPacks(catalog, cfg); err != nil {
		die("load agent packs: %v", err)
	}

	prov, err := buildProvider(cfg)
	if err != nil {
		die("configure provider: %v", err)
	}
	store, err := buildStore(cfg)
	if err != nil {
		die("open session store: %v", err)
	}
	defer closeStore(store)

	opts := []interview.Option{
		interview.WithLogbook(book),
		interview.WithExporter(brief.NewExporter(cfg.ExportDir())),
	}
	if meta, err := brief.LoadProjectMeta(cfg.ProjectMetaPath()); err == nil && !meta.IsZero() {
		opts = append(opts, interview.WithProjectMeta(meta))
	}
	notifiers := notify.List{notify.NewLogbookNotifier(book)}
	if channel := cfg.SlackChannel(); channel != "" && cfg.SlackToken() != "" {
		slack, err := notify.NewSlackNotifier(cfg.SlackToken(), channel)
		if err != nil {
			die("configure slack notifier: %v", err)
		}
		notifiers = append(notifiers, slack)
	}
	opts = append(opts, interview.WithNotifier(notifiers))

	ctrl, err := interview.New(catalog, prov, store, opts...)
	if err != nil {
		die("build interview controller: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *resume {
		if stored, ok, err := ctrl.ResumeCandidate(ctx); err != nil {
			serverLog.Printf("resume candidate unreadable, starting fresh: %v", err)
		} else if ok {
			if err := ctrl.Resume(ctx); err != nil {
				serverLog.Printf("resume failed, starting fresh: %v", err)
			} else {
				fmt.Printf("Resumed session %s at %s\n", stored.ID, stored.Phase.FriendlyName())
			}
		}
	}

	settings := httpbridge.SettingsFromConfig(cfg)
	if *addr != "" {
		host, port, err := splitListenAddr(*addr)
		if err != nil {
			die("parse --addr: %v", err)
		}
		settings.Host = host
		settings.Port = port
	}

	srv := httpbridge.NewServer(settings, ctrl, httpbridge.WithLogger(serverLog))
	if err := srv.Start(ctx); err != nil {
		die("start bridge: %v", err)
	}
	fmt.Printf("briefing bridge listening on %s\n", srv.BaseURL())
	fmt.Println("Press Ctrl+C to stop.")

	<-ctx.Done()
	fmt.Println("\nShutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		serverLog.Printf("shutdown: %v", err)
	}
	book.Info("Bridge stopped")
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func buildProvider(cfg *config.Config) (provider.Provider, error) {
	switch cfg.ProviderMode() {
	case config.ProviderHTTP:
		return provider.NewHTTP(provider.HTTPConfig{
			Endpoint: cfg.Project.Provider.Endpoint,
			Model:    cfg.Project.Provider.Model,
			APIKey:   cfg.APIKey(),
		})
	default:
		return provider.NewStatic(), nil
	}
}

func buildStore(cfg *config.Config) (session.Store, error) {
	switch cfg.StoreBackend() {
	case config.StoreSQLite:
		return session.OpenSQLiteStore(cfg.SQLitePath())
	case config.StorePostgres:
		return session.OpenPostgresStore(context.Background(), cfg.PostgresDSN(), cfg.ProjectDir)
	default:
		return session.NewFileStore(cfg.SessionFilePath()), nil
	}
}

func closeStore(store session.Store) {
	switch s := store.(type) {
	case *session.SQLiteStore:
		_ = s.Close()
	case *session.PostgresStore:
		s.Close()
	}
}

func splitListenAddr(value string) (string, int, error) {
	host, portText, err := net.SplitHostPort(strings.TrimSpace(value))
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.Atoi(portText)
	if err != nil || port <= 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid port %q", portText)
	}
	if host == "" {
		host = httpbridge.DefaultHost
	}
	return host, port, nil
}
