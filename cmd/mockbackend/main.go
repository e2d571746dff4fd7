// cmd/mockbackend/main.go
//
// Serves the mock admin API on its own so the dashboard (or curl) can be
// pointed at it with --api.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kingrea/engadmin/internal/config"
	"github.com/kingrea/engadmin/internal/mockapi"
)

type stderrLogger struct{}

func (stderrLogger) Printf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, time.Now().Format("15:04:05")+" "+format+"\n", args...)
}

func main() {
	homeFlag := flag.String("home", "", "home directory (defaults to $ENGADMIN_HOME or ~/.engadmin)")
	host := flag.String("host", "", "bind host (overrides config)")
	port := flag.Int("port", -1, "bind port (overrides config)")
	otp := flag.String("otp", "", "one-time code accepted at login (overrides config)")
	flag.Parse()

	home, err := config.ResolveHome(*homeFlag)
	if err != nil {
		die("%v", err)
	}
	cfg, err := config.Load(home)
	if err != nil {
		die("load config: %v", err)
	}
	settings := mockapi.SettingsFromConfig(cfg)
	if *host != "" {
		settings.Host = *host
	}
	if *port >= 0 {
		settings.Port = *port
	}
	if *otp != "" {
		settings.OTP = *otp
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := mockapi.NewServer(settings, mockapi.WithLogger(stderrLogger{}))
	if err := srv.Start(ctx); err != nil {
		die("%v", err)
	}
	fmt.Printf("Mock backend listening on %s (OTP %s)\n", srv.BaseURL(), settings.OTP)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		die("shutdown: %v", err)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "mockbackend: "+format+"\n", args...)
	os.Exit(1)
}
