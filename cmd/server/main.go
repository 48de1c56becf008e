package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"cleverspace/internal/config"
	"cleverspace/internal/domain"
	"cleverspace/internal/identity"
	"cleverspace/internal/mail"
	"cleverspace/internal/observability/logging"
	"cleverspace/internal/observability/metrics"
	"cleverspace/internal/observability/middleware"
	impl "cleverspace/internal/service/impl"
	"cleverspace/internal/store"
	httpx "cleverspace/internal/transport/http"
	"cleverspace/pkg/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "dev"
	}

	logger := logging.NewLogger(logging.Config{
		ServiceName: "cleverspace",
		Environment: env,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	slog.SetDefault(logger)

	logger.Info("starting service")

	cfg := config.Load()
	metrics.MustRegister("cleverspace")

	gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.LogSQL})
	if err != nil {
		logger.Error("gorm open", "error", err)
		os.Exit(1)
	}
	if err := gdb.AutoMigrate(
		&domain.User{},
		&domain.PasswordCredential{},
		&domain.OTP{},
		&domain.Session{},
		&domain.Task{},
	); err != nil {
		logger.Error("automigrate", "error", err)
		os.Exit(1)
	}

	st := store.New(gdb)

	pw := impl.NewPasswordServiceArgon2id()
	ts := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer:     cfg.Issuer,
		Audience:   cfg.Audience,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
		SigningKey: []byte(cfg.SigningKey),
	}, st)

	mailer := mail.NewSMTPMailer(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
	idp := identity.NewClient(cfg.IdentityBaseURL, cfg.ResendTimeout)

	as := impl.NewAuthServiceImpl(st, pw, ts, idp)
	otps := impl.NewOTPServiceImpl(st, mailer)
	tsk := impl.NewTaskServiceImpl(st)

	mux := httpx.NewRouter(httpx.Config{CORSOrigins: cfg.CORSOrigins}, as, otps, ts, tsk)
	handler := middleware.WithRequestID(middleware.WithMetrics(mux))

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("listening", "addr", srv.Addr, "issuer", cfg.Issuer)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
