package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/pennywise/internal/api"
	"github.com/Veraticus/pennywise/internal/certs"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func init() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the JSON API used by web and mobile clients.

When redis.addr is configured, ledger reads are cached in Redis and
invalidated on every write.

With --tls a self-signed certificate is created under server.cert_dir. It
covers localhost plus server.tls_hosts; install the .crt on your devices.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	serveCmd.Flags().Int("port", 0, "Port to listen on (default from config)")
	serveCmd.Flags().Bool("tls", false, "Serve HTTPS with a self-signed certificate (server.tls)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	port, _ := cmd.Flags().GetInt("port")
	useTLS, _ := cmd.Flags().GetBool("tls")

	ctx := cmd.Context()
	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := api.DefaultConfig()
	cfg.Locale = a.cfg.Locale
	cfg.AllowedOrigins = a.cfg.Server.AllowedOrigins
	cfg.CacheTTL = a.cfg.Redis.TTL
	cfg.Port = a.cfg.Server.Port
	if port > 0 {
		cfg.Port = port
	}

	var cache api.Cache
	if a.cfg.Redis.Addr != "" {
		redisCache, err := api.NewRedisCache(ctx, a.cfg.Redis.Addr, a.cfg.Redis.Password, a.cfg.Redis.DB)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer func() {
			if closeErr := redisCache.Close(); closeErr != nil {
				slog.Warn("Failed to close redis", "error", closeErr)
			}
		}()
		cache = redisCache
	}

	server := api.NewServer(cfg, a.store, a.processor, a.categorizer, cache, slog.Default())

	start := server.Start
	if useTLS || a.cfg.Server.TLS {
		manager := certs.NewFileManager(a.cfg.Server.CertDir, a.cfg.Server.TLSHosts...)
		cert, err := manager.GetOrCreateCertificate()
		if err != nil {
			return fmt.Errorf("failed to prepare TLS certificate: %w", err)
		}
		slog.Info("Using self-signed certificate", "cert", manager.CertFile())
		start = func() error { return server.StartTLS(cert) }
	}

	errCh := make(chan error, 1)
	go func() { errCh <- start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return <-errCh
}
