package main

import (
	"context"
	"expvar"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"
	_ "time/tzdata"

	"tourney/internal/db"
	"tourney/internal/domain/registrations"
	"tourney/internal/domain/storage"
	"tourney/internal/mailer"
	"tourney/internal/payments"
	"tourney/internal/ratelimiter"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	return ratelimiter.Config{
		RequestsPerTimeFrame: getEnvInt("RATELIMITER_REQUESTS_COUNT", 200),
		TimeFrame:            getEnvDuration("RATELIMITER_TIME_FRAME", 5*time.Second),
		Enabled:              getEnvBool("RATE_LIMITER_ENABLED", false),
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		fmt.Printf("Invalid %s, defaulting to %d\n", key, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		fmt.Printf("Invalid %s, defaulting to %t\n", key, fallback)
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		fmt.Printf("Invalid %s, defaulting to %s\n", key, fallback)
		return fallback
	}
	return d
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel)

	return zap.New(core).Sugar(), nil
}

// newMailer returns the SMTP mailer, or nil when SMTP_HOST is unset so the
// service still runs without confirmation emails.
func newMailer(cfg mailConfig, logger *zap.SugaredLogger) (mailer.Client, error) {
	if cfg.smtp.host == "" {
		logger.Warnw("SMTP_HOST not set, confirmation emails are disabled")
		return nil, nil
	}
	m, err := mailer.NewSMTPMailer(
		cfg.smtp.host,
		cfg.smtp.port,
		cfg.smtp.username,
		cfg.smtp.password,
		cfg.fromEmail,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

var version = "1.0.0"

//	@title			Tourney API
//	@description	Tournament registration and PayU payment hand-off.

//	@contact.name	API Support
//	@contact.email	support@tourney.local

//	@BasePath					/
//	@securityDefinitions.basic	BasicAuth

func main() {
	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Warnw("no .env file loaded, using process environment", "error", err)
	}

	cfg := config{
		addr:        getEnv("ADDR", ":8080"),
		env:         getEnv("ENV", "development"),
		frontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		apiURL:      getEnv("EXTERNAL_URL", "http://localhost:8080"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    int32(getEnvInt("DB_MAX_OPEN_CONNS", 30)),
			maxIdleTime: getEnv("DB_MAX_IDLE_TIME", "15m"),
		},
		mail: mailConfig{
			fromEmail: os.Getenv("MAIL_FROM_EMAIL"),
			smtp: smtpConfig{
				host:     os.Getenv("SMTP_HOST"),
				port:     getEnvInt("SMTP_PORT", 587),
				username: os.Getenv("SMTP_USERNAME"),
				password: os.Getenv("SMTP_PASSWORD"),
			},
		},
		auth: authConfig{
			basic: basicConfig{
				user:     os.Getenv("AUTH_BASIC_USER"),
				passHash: os.Getenv("AUTH_BASIC_PASS_HASH"),
			},
		},
		payu: payuConfig{
			key:        os.Getenv("PAYU_MERCHANT_KEY"),
			salt:       os.Getenv("PAYU_MERCHANT_SALT"),
			production: getEnv("PAYU_ENV", "test") == "prod",
		},
		bookingSalt: getEnv("BOOKING_ID_SALT", "tourney"),
		rateLimiter: LoadRateLimiterConfig(),
		reconcile: reconcileConfig{
			enabled:    getEnvBool("RECONCILE_ENABLED", true),
			interval:   getEnvDuration("RECONCILE_INTERVAL", 10*time.Minute),
			staleAfter: getEnvDuration("RECONCILE_STALE_AFTER", 15*time.Minute),
		},
	}

	if cfg.payu.key == "" || cfg.payu.salt == "" {
		logger.Warnw("PAYU_MERCHANT_KEY or PAYU_MERCHANT_SALT not set, payment initiation will fail")
	}

	// Database
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.New(ctx, cfg.db.addr, cfg.db.maxConns, cfg.db.maxIdleTime)
	cancel()
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	store := storage.NewContainer(pool)

	// Payments
	payu := payments.NewPayUAdapter(cfg.payu.key, cfg.payu.salt, cfg.payu.production)

	bookingIDs, err := registrations.NewBookingIDGenerator(cfg.bookingSalt)
	if err != nil {
		logger.Fatal(err)
	}

	mailClient, err := newMailer(cfg.mail, logger)
	if err != nil {
		logger.Fatal(err)
	}

	rateLimiter := ratelimiter.NewTokenBucketLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)
	defer rateLimiter.Close()

	app := &application{
		config:      cfg,
		logger:      logger,
		store:       store,
		mailer:      mailClient,
		initiator:   payments.NewInitiator(payu, cfg.apiURL),
		verifier:    payments.NewVerifier(payu, cfg.frontendURL),
		bookingIDs:  bookingIDs,
		rateLimiter: rateLimiter,
		now:         time.Now,
	}

	if cfg.reconcile.enabled {
		scheduler, err := app.startReconciler()
		if err != nil {
			logger.Fatal(err)
		}
		defer func() {
			if err := scheduler.Shutdown(); err != nil {
				logger.Errorw("scheduler shutdown", "error", err)
			}
		}()
	}

	// Metrics collected at /v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		s := pool.Stat()
		return map[string]any{
			"total_conns":    s.TotalConns(),
			"idle_conns":     s.IdleConns(),
			"acquired_conns": s.AcquiredConns(),
			"max_conns":      s.MaxConns(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))
	expvar.Publish("payu_breaker", expvar.Func(func() any {
		return payu.BreakerState()
	}))

	mux := app.mount()

	if err := app.run(mux); err != nil {
		logger.Errorw("server stopped", "error", err)
	}
}
