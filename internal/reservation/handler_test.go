package reservation_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/room-reservation/internal"
	"github.com/frahmantamala/room-reservation/internal/permission"
	permissionPostgres "github.com/frahmantamala/room-reservation/internal/permission/postgres"
	"github.com/frahmantamala/room-reservation/internal/reservation"
	reservationPostgres "github.com/frahmantamala/room-reservation/internal/reservation/postgres"
	"github.com/frahmantamala/room-reservation/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Reservation Handler", func() {
	var router chi.Router

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		db := newTestDB()
		gate := permission.NewGate(permissionPostgres.NewPermissionRepository(db), lg)
		service := reservation.NewService(reservationPostgres.NewReservationRepository(db), gate, nil, lg).
			WithClock(func() time.Time { return fixedNow })
		handler := reservation.NewHandler(transport.NewBaseHandler(lg), service)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				uid, _ := strconv.ParseInt(r.Header.Get("X-Test-User"), 10, 64)
				next.ServeHTTP(w, r.WithContext(internal.ContextWithUserID(r.Context(), uid)))
			})
		})
		router.Get("/reservations", handler.ListReservations)
		router.Post("/reservations", handler.CreateReservation)
		router.Get("/reservations/{id}", handler.GetReservation)
		router.Post("/reservations/{id}/cancel", handler.CancelReservation)
	})

	do := func(userID, method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("X-Test-User", userID)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	const booking = `{"room_id":1,"title":"Planning","starts_at":"2030-01-07T10:00:00Z","ends_at":"2030-01-07T11:00:00Z"}`

	It("should book, conflict and cancel over HTTP", func() {
		rec := do("5", http.MethodPost, "/reservations", booking)
		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(rec.Body.String()).To(ContainSubstring(`"status":"confirmed"`))

		rec = do("6", http.MethodPost, "/reservations", booking)
		Expect(rec.Code).To(Equal(http.StatusConflict))

		rec = do("6", http.MethodGet, "/reservations/1", "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))

		rec = do("5", http.MethodPost, "/reservations/1/cancel", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"status":"cancelled"`))

		rec = do("5", http.MethodPost, "/reservations/1/cancel", "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("should forbid ?all=true without the capability", func() {
		Expect(do("5", http.MethodGet, "/reservations?all=true", "").Code).To(Equal(http.StatusForbidden))
		Expect(do("5", http.MethodGet, "/reservations?all=maybe", "").Code).To(Equal(http.StatusBadRequest))
		Expect(do("5", http.MethodGet, "/reservations", "").Code).To(Equal(http.StatusOK))
	})

	It("should answer 401 without a session", func() {
		Expect(do("", http.MethodGet, "/reservations", "").Code).To(Equal(http.StatusUnauthorized))
	})
})
