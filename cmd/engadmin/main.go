// cmd/engadmin/main.go
//
// This is the entry point for the engineer admin dashboard.
//
// Flow:
// 1. Resolve and initialize the home directory (config, logs, state)
// 2. Optionally start the mock backend in-process
// 3. Launch the TUI against the configured API

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/engadmin/internal/config"
	"github.com/kingrea/engadmin/internal/logging"
	"github.com/kingrea/engadmin/internal/mockapi"
	"github.com/kingrea/engadmin/internal/tui"
)

func main() {
	homeFlag := flag.String("home", "", "home directory (defaults to $ENGADMIN_HOME or ~/.engadmin)")
	apiFlag := flag.String("api", "", "API base URL for this run (overrides config)")
	mockFlag := flag.Bool("mock", false, "serve the built-in mock backend and point the dashboard at it")
	flag.Parse()

	home, err := config.ResolveHome(*homeFlag)
	if err != nil {
		die("%v", err)
	}
	if err := config.InitHome(home); err != nil {
		die("init home: %v", err)
	}
	cfg, err := config.Load(home)
	if err != nil {
		die("load config: %v", err)
	}
	logger, err := logging.New(cfg.LogsDir())
	if err != nil {
		die("open log: %v", err)
	}
	defer logger.Close()

	if *apiFlag != "" {
		if err := cfg.SetBaseURL(*apiFlag); err != nil {
			die("--api: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *mockFlag {
		settings := mockapi.SettingsFromConfig(cfg)
		settings.Port = 0
		srv := mockapi.NewServer(settings, mockapi.WithLogger(logger))
		if err := srv.Start(ctx); err != nil {
			die("start mock backend: %v", err)
		}
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 2*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
		if err := cfg.SetBaseURL(srv.BaseURL()); err != nil {
			die("mock backend url: %v", err)
		}
		fmt.Printf("Mock backend on %s, OTP %s\n", srv.BaseURL(), settings.OTP)
	}

	app, err := tui.NewApp(cfg, tui.WithDebugLogger(logger), tui.WithContext(ctx))
	if err != nil {
		die("%v", err)
	}
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		die("run TUI: %v", err)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "engadmin: "+format+"\n", args...)
	os.Exit(1)
}
