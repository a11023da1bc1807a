package appServer

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/mathmusci/optivenue/config"
	"github.com/mathmusci/optivenue/internal/availability"
	"github.com/mathmusci/optivenue/internal/clock"
	"github.com/mathmusci/optivenue/internal/database"
	"github.com/mathmusci/optivenue/internal/database/memory"
	"github.com/mathmusci/optivenue/internal/database/sqldb"
	"github.com/mathmusci/optivenue/internal/lock"
	"github.com/mathmusci/optivenue/internal/service"
	"github.com/mathmusci/optivenue/internal/transport"
	"github.com/mathmusci/optivenue/pkg/postgres"
	"github.com/mathmusci/optivenue/pkg/redis"
	"github.com/mathmusci/optivenue/pkg/retry"
	"github.com/mathmusci/optivenue/pkg/sqlite"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 3 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// OpenStore connects the configured database driver. SQL stores are not
// migrated here. PostgreSQL connections are retried with backoff.
func OpenStore(ctx context.Context, cfg *config.DatabaseConfig) (database.Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := dialPostgres(ctx, cfg, postgres.NewPostgresDB)
		if err != nil {
			return nil, err
		}
		return sqldb.New(db, sqldb.Postgres()), nil
	case config.DriverSQLite:
		db, err := sqlite.NewSQLiteDB(cfg.Path)
		if err != nil {
			return nil, err
		}
		return sqldb.New(db, sqldb.SQLite()), nil
	case config.DriverMemory:
		logrus.Warn("Using in-memory store, data is lost on exit")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func dialPostgres(ctx context.Context, cfg *config.DatabaseConfig, open func(*config.DatabaseConfig) (*sql.DB, error)) (*sql.DB, error) {
	var db *sql.DB
	err := retry.New(cfg.ConnectRetries, cfg.ConnectBackoff).Do(ctx, "postgres", func(context.Context) error {
		var err error
		db, err = open(cfg)
		if postgres.IsAuthError(err) {
			return retry.Permanent(err)
		}
		return err
	})
	return db, err
}

// App holds the wired services of one process.
type App struct {
	Store    database.Store
	Bookings service.BookingService
	Venues   service.VenueService
	Imports  service.ImportService
	Calendar service.CalendarService

	redisClient *goredis.Client
}

// NewApp opens the store, picks the booking lock and wires the services.
// Redis, when enabled, makes the lock shared by every replica.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	loc, err := clock.LoadLocation(cfg.Booking.Timezone)
	if err != nil {
		return nil, fmt.Errorf("booking timezone: %w", err)
	}

	store, err := OpenStore(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}
	app := &App{Store: store}

	var locker lock.Locker = lock.NewMutex()
	if cfg.Redis.Enabled {
		var client *goredis.Client
		err := retry.New(cfg.Database.ConnectRetries, cfg.Database.ConnectBackoff).Do(ctx, "redis", func(ctx context.Context) error {
			var err error
			client, err = redis.NewRedisClient(ctx, &cfg.Redis)
			return err
		})
		if err != nil {
			store.Close()
			return nil, err
		}
		app.redisClient = client
		locker = lock.NewRedisLock(client, cfg.Redis.LockKey, cfg.Redis.LockTTL, cfg.Redis.LockRetry)
		logrus.WithField("key", cfg.Redis.LockKey).Info("Using Redis booking lock")
	}

	checker := availability.NewChecker(cfg.Booking.SampleStep)
	clk := clock.NewSystem(loc)

	app.Bookings = service.NewBookingService(store, locker, checker, clk, cfg.Booking.LockWait)
	app.Venues = service.NewVenueService(store, checker)
	app.Imports = service.NewImportService(store)
	app.Calendar = service.NewCalendarService(store, clk, cfg.Server.Host)
	return app, nil
}

func (a *App) Router(cfg *config.Config) *gin.Engine {
	return transport.InitRoutes(transport.Handlers{
		Booking: transport.NewBookingHandler(a.Bookings),
		Venue:   transport.NewVenueHandler(a.Venues),
		Event:   transport.NewEventHandler(a.Venues, a.Calendar),
		Import:  transport.NewImportHandler(a.Imports),
	}, cfg.Server.RequestTimeout)
}

func (a *App) Close() error {
	var errs []error
	if a.redisClient != nil {
		errs = append(errs, a.redisClient.Close())
	}
	errs = append(errs, a.Store.Close())
	return errors.Join(errs...)
}

// NewServer migrates the store, serves the API and blocks until SIGINT or
// SIGTERM.
func NewServer(ctx context.Context, cfg *config.Config) error {
	app, err := NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Store.Migrate(ctx); err != nil {
		return err
	}

	if cfg.IsProduction() || cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Run(cfg, app.Router(cfg)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	logrus.WithField("addr", cfg.GetServerAddress()).Info("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(quit)

	select {
	case <-quit:
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	logrus.Info("App Shutting Down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
		return err
	}
	return nil
}
