package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Beka01247/restaurant-orders/docs"
	"github.com/Beka01247/restaurant-orders/internal/auth"
	"github.com/Beka01247/restaurant-orders/internal/notify"
	"github.com/Beka01247/restaurant-orders/internal/queue"
	"github.com/Beka01247/restaurant-orders/internal/ratelimiter"
	"github.com/Beka01247/restaurant-orders/internal/repo"
	"github.com/Beka01247/restaurant-orders/internal/service"
	"github.com/Beka01247/restaurant-orders/internal/worker"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config          config
	logger          *zap.SugaredLogger
	rateLimiter     ratelimiter.Limiter
	storage         repo.Storage
	broker          queue.Broker
	auth            *auth.Authenticator
	hub             *notify.Hub
	menuService     *service.MenuService
	orderService    *service.OrderService
	sessionService  *service.SessionService
	settingsService *service.SettingsService
	importService   *service.ImportService
	importWorker    *worker.MenuImportWorker
	statusWorker    *worker.OrderStatusWorker

	// closed on shutdown to end open event streams
	streamsDone chan struct{}
}

type config struct {
	addr        string
	env         string
	apiURL      string
	storeDriver string
	timezone    string
	corsOrigins []string
	rateLimiter ratelimiter.Config
	mongo       mongoConfig
	postgres    postgresConfig
	rabbitMQ    rabbitMQConfig
	auth        authConfig
	googleCreds string
}

type mongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type postgresConfig struct {
	DSN        string
	Timeout    time.Duration
	MaxRetries int
}

type rabbitMQConfig struct {
	URL           string
	MaxRetries    int
	RetryDelay    time.Duration
	PrefetchCount int
}

type authConfig struct {
	secret       string
	passwordHash string
	ttl          time.Duration
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.config.corsOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(app.rateLimiterMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)

		r.Post("/auth/login", app.loginHandler)

		r.Get("/menu", app.listMenuHandler)
		r.Get("/menu/stream", app.menuStreamHandler)
		r.Get("/settings", app.getSettingsHandler)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", app.createOrderHandler)
			r.Get("/{token}", app.getOrderHandler)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(app.staffAuthMiddleware)

			r.Route("/menu", func(r chi.Router) {
				r.Get("/", app.listAllMenuHandler)
				r.Post("/", app.createMenuItemHandler)
				r.Post("/import", app.createMenuImportHandler)
				r.Get("/import/{task_id}", app.getMenuImportHandler)

				r.Route("/{id}", func(r chi.Router) {
					r.Patch("/", app.updateMenuItemHandler)
					r.Patch("/status", app.updateMenuItemStatusHandler)
					r.Delete("/", app.deleteMenuItemHandler)
				})
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", app.boardHandler)
				r.Get("/stream", app.boardStreamHandler)
				r.Post("/{token}/prepared", app.markPreparedHandler)
				r.Post("/{token}/received", app.markReceivedHandler)
				r.Get("/{token}/history", app.orderHistoryHandler)
			})

			r.Route("/bills", func(r chi.Router) {
				r.Get("/", app.listOpenBillsHandler)
				r.Get("/{session_id}", app.getBillHandler)
				r.Post("/{session_id}/close", app.closeSessionHandler)
			})

			r.Get("/revenue", app.revenueHandler)
			r.Put("/settings", app.updateSettingsHandler)
		})

		docsURL := fmt.Sprintf("http://%s/api/v1/swagger/doc.json", app.config.apiURL)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	// docs
	docs.SwaggerInfo.Title = "Restaurant Orders"
	docs.SwaggerInfo.Description = "Menu, ordering and kitchen API"
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/api/v1"

	app.streamsDone = make(chan struct{})

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	if err := app.hub.Start(hubCtx); err != nil {
		return err
	}

	// workers
	if err := app.statusWorker.Start(); err != nil {
		return fmt.Errorf("failed to start order status worker: %w", err)
	}
	if err := app.importWorker.Start(); err != nil {
		return fmt.Errorf("failed to start menu import worker: %w", err)
	}

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

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		close(app.streamsDone)
		stopHub()
		app.importWorker.Stop()
		app.statusWorker.Stop()

		err := srv.Shutdown(ctx)

		if err := app.storage.Close(ctx); err != nil {
			app.logger.Errorw("error closing storage", "driver", app.config.storeDriver, "error", err)
		} else {
			app.logger.Infow("storage closed gracefully", "driver", app.config.storeDriver)
		}

		if err := app.broker.Close(); err != nil {
			app.logger.Errorw("error closing broker", "error", err)
		} else {
			app.logger.Info("broker closed gracefully")
		}

		shutdown <- err
	}()

	app.logger.Infow("server have started", "addr", app.config.addr, "env", app.config.env)

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
