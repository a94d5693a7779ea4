package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/room-reservation/api"
	"github.com/frahmantamala/room-reservation/internal"
	"github.com/frahmantamala/room-reservation/internal/auth"
	authPostgres "github.com/frahmantamala/room-reservation/internal/auth/postgres"
	"github.com/frahmantamala/room-reservation/internal/core/events"
	"github.com/frahmantamala/room-reservation/internal/messaging"
	"github.com/frahmantamala/room-reservation/internal/page"
	"github.com/frahmantamala/room-reservation/internal/permission"
	permissionPostgres "github.com/frahmantamala/room-reservation/internal/permission/postgres"
	"github.com/frahmantamala/room-reservation/internal/reservation"
	reservationPostgres "github.com/frahmantamala/room-reservation/internal/reservation/postgres"
	"github.com/frahmantamala/room-reservation/internal/room"
	roomPostgres "github.com/frahmantamala/room-reservation/internal/room/postgres"
	"github.com/frahmantamala/room-reservation/internal/transport"
	"github.com/frahmantamala/room-reservation/internal/transport/middleware"
	"github.com/frahmantamala/room-reservation/internal/transport/rest"
	"github.com/frahmantamala/room-reservation/internal/user"
	userPostgres "github.com/frahmantamala/room-reservation/internal/user/postgres"
	"github.com/frahmantamala/room-reservation/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config    *internal.Config
	DB        *sqlx.DB
	Redis     *redis.Client
	EventBus  *events.EventBus
	Publisher *messaging.Publisher
	Router    *chi.Mux
	Logger    *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "environment", deps.Config.Environment)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("Server failed", "error", err)
			deps.close(context.Background())
			os.Exit(1)
		}
	}

	timeout := deps.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		deps.Logger.Error("Server shutdown error", "error", err)
	}
	deps.close(ctx)

	deps.Logger.Info("Server stopped")
}

// close drains event handlers before tearing down the connections they use.
func (d *Dependencies) close(ctx context.Context) {
	if err := d.EventBus.Drain(ctx); err != nil {
		d.Logger.Warn("event handlers still running at shutdown", "error", err)
	}
	if d.Publisher != nil {
		if err := d.Publisher.Close(); err != nil {
			d.Logger.Warn("amqp publisher close error", "error", err)
		}
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Warn("redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Format, config.Observability.Logging.Level)
	lg := logger.LoggerWrapper()

	if _, err := api.Load(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	gdb, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	rdb := initRedis(config.Redis)

	bus := events.NewEventBus(lg)
	var publisher *messaging.Publisher
	if config.Messaging.AMQPURL != "" {
		publisher = messaging.NewPublisher(config.Messaging.AMQPURL, config.Messaging.QueueName(), lg)
		publisher.Subscribe(bus)
		lg.Info("relaying domain events to amqp", "queue", config.Messaging.QueueName())
	}

	base := transport.NewBaseHandler(lg)

	permRepo := permissionPostgres.NewPermissionRepository(gdb)
	gate := permission.NewGate(permRepo, lg)
	userRepo := userPostgres.NewUserRepository(gdb)

	sessions := auth.NewSessionManager(config.Security.SessionSecret, config.Security.SessionTTL)
	authService := auth.NewService(authPostgres.NewRepository(gdb), sessions, lg)
	authHandler := auth.NewHandler(base, authService, auth.CookieOptions{
		Name:   config.Security.SessionCookieName(),
		Secure: config.Security.CookieSecure,
	})

	userService := user.NewService(userRepo, gate, bus, config.Security.BCryptCost, lg)
	permissionService := permission.NewService(permRepo, gate, userRepo, bus, lg)
	roomService := room.NewService(roomPostgres.NewRoomRepository(gdb), lg)
	reservationService := reservation.NewService(reservationPostgres.NewReservationRepository(gdb), gate, bus, lg)

	loader, err := page.NewLoader(gate)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}

	routerDeps := rest.RouterDeps{
		Logger:             lg,
		Health:             rest.NewHealthHandler(db.DB, rdb),
		Gate:               gate,
		RateLimit:          config.RateLimit,
		AuthHandler:        authHandler,
		UserHandler:        user.NewHandler(base, userService),
		PermissionHandler:  permission.NewHandler(base, permissionService),
		PageHandler:        page.NewHandler(base, loader),
		RoomHandler:        room.NewHandler(base, roomService),
		ReservationHandler: reservation.NewHandler(base, reservationService),
	}
	if rdb != nil {
		routerDeps.Redis = rdb
	}
	if config.Observability.Metrics.Enabled {
		routerDeps.Metrics = middleware.NewMetrics()
		routerDeps.MetricsPath = config.Observability.Metrics.Path
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, routerDeps)

	return &Dependencies{
		Config:    config,
		DB:        db,
		Redis:     rdb,
		EventBus:  bus,
		Publisher: publisher,
		Router:    router,
		Logger:    lg,
	}, nil
}
