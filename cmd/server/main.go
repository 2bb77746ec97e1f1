package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/vivekyarra/moviesbyvivek/internal/config"
	"github.com/vivekyarra/moviesbyvivek/internal/database"
	"github.com/vivekyarra/moviesbyvivek/internal/gateway"
	"github.com/vivekyarra/moviesbyvivek/internal/handler"
	"github.com/vivekyarra/moviesbyvivek/internal/logger"
	"github.com/vivekyarra/moviesbyvivek/internal/middleware"
	"github.com/vivekyarra/moviesbyvivek/internal/queue"
	"github.com/vivekyarra/moviesbyvivek/internal/repository"
	"github.com/vivekyarra/moviesbyvivek/internal/repository/memory"
	"github.com/vivekyarra/moviesbyvivek/internal/router"
	"github.com/vivekyarra/moviesbyvivek/internal/service"
)

// stores groups the ports the services depend on, backed either by
// MySQL or by the in-memory store.
type stores struct {
	showtimes service.ShowtimeStore
	ledger    service.Ledger
	settler   service.Settler
	orders    service.OrderStore
	bookings  service.BookingStore
	close     func() error
}

func main() {
	config.LoadDotEnv()
	cfg := config.Load()

	log := logger.New(cfg.Env, cfg.LogLevel)
	logger.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *logger.Logger) error {
	st, err := openStores(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = st.close() }()

	rdb, err := config.NewRedisClient(config.LoadRedisConfig())
	if err != nil {
		log.Warn("redis unavailable, running without caching and rate limiting", "error", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}

	events := openPublisher(cfg.Events, log)
	defer func() { _ = events.Close() }()

	gw := paymentGateway(cfg.Payment, log)
	signer := gateway.NewSigner(cfg.Payment.KeySecret)

	schedule := service.NewSchedule(st.showtimes)
	occupancy := service.NewOccupancyView(st.showtimes, st.bookings, rdb, cfg.Booking.OccupancyCacheTTL, log)
	coord := service.NewOrderCoordinator(st.showtimes, st.ledger, st.orders, gw, cfg.Booking.ClaimTTL, cfg.Payment.Currency, log)
	verifier := service.NewPaymentVerifier(signer, st.orders, st.bookings, st.settler, service.NewBookingFactory(), occupancy, events, log)

	e := newEcho(log)
	router.Register(e, router.Handlers{
		Showtimes: &handler.ShowtimeHandler{Schedule: schedule, Occupancy: occupancy, Log: log},
		Orders:    &handler.OrderHandler{Orders: coord, Payments: verifier, KeyID: cfg.Payment.KeyID, Log: log},
		Bookings:  &handler.BookingHandler{Bookings: st.bookings, Log: log},
		Admin:     &handler.AdminHandler{Schedule: schedule, Log: log},
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Redis:     rdb,
		Log:       log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr, "env", cfg.Env, "store", cfg.StoreDriver,
			"gateway", cfg.Payment.Gateway, "broker", cfg.Events.Broker, "claim_ttl", cfg.Booking.ClaimTTL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	case err := <-errCh:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func newEcho(log *logger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	return e
}

func openStores(cfg config.Config, log *logger.Logger) (*stores, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn("using in-memory store; data is lost on restart")
		m := memory.New()
		if cfg.SeedDemo {
			for _, mv := range database.DemoMovies {
				m.AddMovie(mv.Title)
			}
			for _, th := range database.DemoTheatres {
				m.AddTheatre(th.Name, th.City, th.ShowTimes)
			}
		}
		return &stores{showtimes: m, ledger: m, settler: m, orders: m, bookings: m, close: func() error { return nil }}, nil
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := prepare(db, cfg); err != nil {
		_ = db.Close()
		return nil, err
	}
	ledger := repository.NewLedgerRepo(db)
	return &stores{
		showtimes: repository.NewShowtimeRepo(db),
		ledger:    ledger,
		settler:   ledger,
		orders:    repository.NewOrderRepo(db),
		bookings:  repository.NewBookingRepo(db),
		close:     db.Close,
	}, nil
}

func prepare(db *sql.DB, cfg config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if cfg.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}
	if cfg.SeedDemo {
		if err := database.Seed(ctx, db); err != nil {
			return err
		}
	}
	return nil
}

func paymentGateway(cfg config.PaymentConfig, log *logger.Logger) service.PaymentGateway {
	if cfg.Gateway == config.GatewaySandbox {
		log.Warn("using sandbox payment gateway; orders are not real")
		return gateway.SandboxClient{}
	}
	return gateway.NewRazorpayClient(cfg)
}

func openPublisher(cfg config.EventsConfig, log *logger.Logger) queue.Publisher {
	switch cfg.Broker {
	case config.BrokerKafka:
		p, err := queue.DialKafka(cfg.KafkaBrokers, cfg.Topic)
		if err != nil {
			log.Warn("kafka unavailable, booking events disabled", "error", err)
			return queue.NopPublisher{}
		}
		return p
	case config.BrokerRabbitMQ:
		return queue.NewRabbitPublisher(cfg.RabbitURL, cfg.Topic)
	}
	return queue.NopPublisher{}
}
