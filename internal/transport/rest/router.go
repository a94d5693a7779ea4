package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/room-reservation/api"
	"github.com/frahmantamala/room-reservation/internal"
	"github.com/frahmantamala/room-reservation/internal/auth"
	"github.com/frahmantamala/room-reservation/internal/page"
	"github.com/frahmantamala/room-reservation/internal/permission"
	"github.com/frahmantamala/room-reservation/internal/reservation"
	"github.com/frahmantamala/room-reservation/internal/room"
	"github.com/frahmantamala/room-reservation/internal/transport"
	"github.com/frahmantamala/room-reservation/internal/transport/middleware"
	"github.com/frahmantamala/room-reservation/internal/transport/swagger"
	"github.com/frahmantamala/room-reservation/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/redis/go-redis/v9"
)

// RouterDeps carries everything RegisterAllRoutes mounts. Nil handlers leave
// their routes unmounted.
type RouterDeps struct {
	Logger  *slog.Logger
	Health  *HealthHandler
	Gate    middleware.CapabilityChecker
	Metrics *middleware.Metrics
	// MetricsPath defaults to /metrics.
	MetricsPath string

	RateLimit internal.RateLimitConfig
	Redis     redis.Scripter

	AuthHandler        *auth.Handler
	UserHandler        *user.Handler
	PermissionHandler  *permission.Handler
	PageHandler        *page.Handler
	RoomHandler        *room.Handler
	ReservationHandler *reservation.Handler
}

func RegisterAllRoutes(router chi.Router, deps RouterDeps) {
	base := transport.NewBaseHandler(deps.Logger)

	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery)
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware)
	}
	router.Use(middleware.RequestLogger)

	if deps.Metrics != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		router.Method(http.MethodGet, path, deps.Metrics.Handler())
	}

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(api.Document())
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		if deps.Health != nil {
			r.Get("/health", deps.Health.healthCheckHandler)
			r.Get("/ping", deps.Health.pingHandler)
		}

		if deps.AuthHandler == nil {
			return
		}

		r.Route("/auth", func(ar chi.Router) {
			ar.With(middleware.RateLimit(deps.RateLimit, deps.Redis, "login", base)).
				Post("/login", deps.AuthHandler.Login)
			ar.Post("/logout", deps.AuthHandler.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(deps.AuthHandler.SessionMiddleware)

			if deps.UserHandler != nil {
				pr.Get("/users/me", deps.UserHandler.GetCurrentUser)
				pr.Post("/users/verify", deps.UserHandler.Verify)
				pr.Post("/users/update-profile", deps.UserHandler.UpdateProfile)
			}

			if deps.PermissionHandler != nil {
				pr.Post("/permissions/update", deps.PermissionHandler.UpdatePermissions)
			}

			if deps.PageHandler != nil {
				pr.Post("/navigation/load-page", deps.PageHandler.LoadPage)
			}

			if deps.RoomHandler != nil {
				pr.Route("/rooms", func(rr chi.Router) {
					rr.Get("/", deps.RoomHandler.ListRooms)
					rr.Get("/{id}", deps.RoomHandler.GetRoom)

					rr.Group(func(mr chi.Router) {
						mr.Use(middleware.RequireCapability(deps.Gate, permission.CanManageRooms, base))
						mr.Post("/", deps.RoomHandler.CreateRoom)
						mr.Put("/{id}", deps.RoomHandler.UpdateRoom)
						mr.Delete("/{id}", deps.RoomHandler.DeleteRoom)
					})
				})
			}

			if deps.ReservationHandler != nil {
				pr.Route("/reservations", func(rr chi.Router) {
					rr.Post("/", deps.ReservationHandler.CreateReservation)
					rr.Get("/", deps.ReservationHandler.ListReservations)
					rr.Get("/{id}", deps.ReservationHandler.GetReservation)
					rr.Post("/{id}/cancel", deps.ReservationHandler.CancelReservation)
				})
			}
		})
	})
}
