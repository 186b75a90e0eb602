package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"licensepanel/config"
	_ "licensepanel/docs" // Swagger 문서
	"licensepanel/handlers"
	"licensepanel/logger"
	"licensepanel/metrics"
	"licensepanel/middleware"
	"licensepanel/models"
	"licensepanel/scheduler"
	"licensepanel/services"
	"licensepanel/utils"
)

// @title License Panel API
// @version 1.0
// @description 라이선스 검증 및 디바이스 한도 관리 서버

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT 토큰을 입력하세요. 형식: Bearer {token}

const usage = `Usage: licensepanel [flags] [command]

Commands:
  serve                 start the HTTP server (default)
  token                 print an admin API token (--subject, --role, --ttl)
  reconcile <licenseId> recount registrations and overwrite the device count

Flags:
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := pflag.NewFlagSet("licensepanel", pflag.ContinueOnError)
	flags := config.RegisterFlags(fs)
	subject := fs.String("subject", "admin", "token subject (token command)")
	role := fs.String("role", models.RoleAdmin, "token role: admin, user or viewer (token command)")
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime (token command)")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(fs, flags)
	if err != nil {
		logger.Error("%v", err)
		return 1
	}
	if err := utils.SetLocation(cfg.Timezone); err != nil {
		logger.Error("%v", err)
		return 1
	}

	command, rest := "serve", fs.Args()
	if len(rest) > 0 {
		command, rest = rest[0], rest[1:]
	}

	switch command {
	case "serve":
		if err := logger.Initialize(cfg.LoggerConfig()); err != nil {
			logger.Error("Failed to initialize logger: %v", err)
			return 1
		}
		defer logger.Sync()
		if err := serve(cfg); err != nil {
			logger.Error("%v", err)
			return 1
		}
		return 0
	case "token":
		return printToken(cfg, *subject, *role, *ttl)
	case "reconcile":
		if len(rest) != 1 {
			fs.Usage()
			return 2
		}
		return reconcile(cfg, rest[0])
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		fs.Usage()
		return 2
	}
}

func serve(cfg config.Config) error {
	logger.Info("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Info("🚀 License Panel Server Starting")
	logger.Info("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Error("Failed to close store: %v", err)
		}
	}()

	m := metrics.New()
	b.stores.Quotas = m.InstrumentQuotaStore(b.quotaBackend, b.stores.Quotas)

	verifier := services.NewVerificationService(b.stores.Licenses, b.stores.Quotas, nil)
	devices := services.NewDeviceService(verifier, b.stores.Quotas, b.stores.Devices, nil)

	limiter := middleware.NewRateLimiter(cfg.Verify.RateLimit, cfg.Verify.Burst)
	if err := limiter.TrustProxies(cfg.Verify.TrustedProxies); err != nil {
		return err
	}

	var issuer *utils.TokenIssuer
	if cfg.Auth.Disabled {
		logger.Warn("Admin authentication is DISABLED, every admin request runs as local admin")
	} else {
		issuer = utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	}

	mux := handlers.NewRouter(handlers.Dependencies{
		Verifier:    verifier,
		Devices:     devices,
		Licenses:    services.NewLicenseService(b.stores.Licenses, b.stores.Activity, nil),
		Profiles:    services.NewProfileService(b.stores.Profiles, nil),
		Issuer:      issuer,
		Metrics:     m,
		RateLimiter: limiter,
		Health:      handlers.NewHealthHandler(b.checks),
	})

	scheduler.StartQuotaAudit(ctx, devices, cfg.Audit.Interval)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening on %s (store=%s, quota=%s)", cfg.Server.Addr, cfg.Store.Backend, b.quotaBackend)
		logger.Info("Swagger UI: http://localhost%s/swagger/index.html", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	logger.Warn("Received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

func printToken(cfg config.Config, subject, role string, ttl time.Duration) int {
	if !models.IsValidRole(role) {
		logger.Error("unknown role %q", role)
		return 2
	}
	issuer := utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	token, expiresAt, err := issuer.GenerateToken(subject, role, ttl)
	if err != nil {
		logger.Error("Failed to generate token: %v", err)
		return 1
	}
	fmt.Println(token)
	logger.Info("Token for %s (%s) expires at %s", subject, role, utils.FormatTimestamp(expiresAt))
	return 0
}

func reconcile(cfg config.Config, licenseID string) int {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize store: %v", err)
		return 1
	}
	defer b.Close()

	verifier := services.NewVerificationService(b.stores.Licenses, b.stores.Quotas, nil)
	devices := services.NewDeviceService(verifier, b.stores.Quotas, b.stores.Devices, nil)
	quota, err := devices.ReconcileQuota(ctx, licenseID)
	if err != nil {
		logger.Error("Failed to reconcile %s: %v", licenseID, err)
		return 1
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(quota)
	return 0
}
