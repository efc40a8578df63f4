package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"tourney/docs"
	"tourney/internal/domain/registrations"
	"tourney/internal/domain/storage"
	"tourney/internal/mailer"
	"tourney/internal/payments"
	"tourney/internal/ratelimiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config      config
	store       *storage.Container
	logger      *zap.SugaredLogger
	mailer      mailer.Client
	initiator   *payments.Initiator
	verifier    *payments.Verifier
	bookingIDs  *registrations.BookingIDGenerator
	rateLimiter ratelimiter.Limiter
	now         func() time.Time
	wg          sync.WaitGroup
}

type config struct {
	addr        string
	env         string
	apiURL      string
	frontendURL string
	db          dbConfig
	mail        mailConfig
	auth        authConfig
	payu        payuConfig
	bookingSalt string
	rateLimiter ratelimiter.Config
	reconcile   reconcileConfig
}

type authConfig struct {
	basic basicConfig
}

type basicConfig struct {
	user     string
	passHash string // bcrypt
}

type mailConfig struct {
	fromEmail string
	smtp      smtpConfig
}

type smtpConfig struct {
	host     string
	port     int
	username string
	password string
}

type dbConfig struct {
	addr        string
	maxConns    int32
	maxIdleTime string
}

type payuConfig struct {
	key        string
	salt       string
	production bool
}

type reconcileConfig struct {
	enabled    bool
	interval   time.Duration
	staleAfter time.Duration
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	allowedOrigins := []string{"https://*", "http://*"}
	if app.config.frontendURL != "" {
		allowedOrigins = []string{app.config.frontendURL}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(app.RateLimiterMiddleware)

	// Signals through ctx.Done() that the request has timed out and processing should stop.
	r.Use(middleware.Timeout(60 * time.Second))

	// Payment hand-off. Paths are fixed by the frontend and the gateway callback.
	r.Post("/get-payment", app.getPaymentHandler)
	r.Post("/verify/{txnid}", app.verifyRedirectHandler)
	r.Post("/api/payment/verify/{txnid}", app.verifyRedirectHandler)
	r.Get("/api/payment/verify/{txnid}", app.verifyStatusHandler)

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		docsURL := fmt.Sprintf("%s/v1/swagger/doc.json", app.config.apiURL)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.Get("/categories", app.listCategoriesHandler)

		r.Route("/events", func(r chi.Router) {
			r.Get("/", app.listEventsHandler)
			r.Route("/{eventID}", func(r chi.Router) {
				r.Get("/", app.getEventHandler)
				r.Post("/registrations", app.createRegistrationHandler)
			})
		})

		r.Get("/registrations/{bookingID}", app.getRegistrationHandler)
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		err := srv.Shutdown(ctx)

		app.logger.Infow("waiting for background tasks")
		app.wg.Wait()

		shutdown <- err
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}

// background runs fn on its own goroutine, tracked for graceful shutdown.
func (app *application) background(fn func()) {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		defer func() {
			if err := recover(); err != nil {
				app.logger.Errorw("background task panicked", "error", err)
			}
		}()
		fn()
	}()
}
