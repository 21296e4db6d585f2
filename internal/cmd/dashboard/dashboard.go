// Package dashboard parses dashboard service flags and launches the service.
package dashboard

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/donde/ticketdesk/internal/platform/cmd"
	"github.com/donde/ticketdesk/internal/services/dashboard"
)

// Config holds the dashboard command configuration.
type Config struct {
	HTTPAddr          string  `env:"TICKETDESK_DASHBOARD_ADDR" envDefault:":8082"`
	BackendURL        string  `env:"TICKETDESK_BACKEND_URL" envDefault:"http://localhost:8081"`
	AttachmentBaseURL string  `env:"TICKETDESK_ATTACHMENT_BASE_URL"`
	DBPath            string  `env:"TICKETDESK_DASHBOARD_DB_PATH" envDefault:"data/dashboard.db"`
	SecureCookies     bool    `env:"TICKETDESK_SECURE_COOKIES" envDefault:"false"`
	LoginRate         float64 `env:"TICKETDESK_LOGIN_RATE" envDefault:"1"`
	LoginBurst        int     `env:"TICKETDESK_LOGIN_BURST" envDefault:"5"`
}

// ParseConfig parses environment and flags into Config. Flags win over the
// environment only when they are set.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	fs.StringVar(&cfg.HTTPAddr, "http-addr", "", "HTTP listen address (env TICKETDESK_DASHBOARD_ADDR, default :8082)")
	fs.StringVar(&cfg.BackendURL, "backend-url", "", "Ticket backend base URL (env TICKETDESK_BACKEND_URL)")
	fs.StringVar(&cfg.AttachmentBaseURL, "attachment-base-url", "", "Browser-facing attachment base URL (default: backend URL)")
	fs.StringVar(&cfg.DBPath, "db-path", "", "Session database path (env TICKETDESK_DASHBOARD_DB_PATH)")
	if err := entrypoint.ParseConfigFromArgs(&cfg, fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the dashboard server.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceDashboard, func(ctx context.Context) error {
		server, err := dashboard.NewServer(ctx, dashboard.Config{
			HTTPAddr:          cfg.HTTPAddr,
			BackendURL:        cfg.BackendURL,
			AttachmentBaseURL: cfg.AttachmentBaseURL,
			DBPath:            cfg.DBPath,
			SecureCookies:     cfg.SecureCookies,
			LoginRate:         cfg.LoginRate,
			LoginBurst:        cfg.LoginBurst,
		})
		if err != nil {
			return fmt.Errorf("init dashboard server: %w", err)
		}
		defer server.Close()

		if err := server.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve dashboard: %w", err)
		}
		return nil
	})
}
