package room_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/room-reservation/internal"
	roomDatamodel "github.com/frahmantamala/room-reservation/internal/core/datamodel/room"
	"github.com/frahmantamala/room-reservation/internal/room"
	roomPostgres "github.com/frahmantamala/room-reservation/internal/room/postgres"
	"github.com/frahmantamala/room-reservation/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Room Handler Integration", func() {
	var router chi.Router

	BeforeEach(func() {
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Silent),
			TranslateError: true,
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&roomDatamodel.Room{})).To(Succeed())

		repo := roomPostgres.NewRoomRepository(db)
		service := room.NewService(repo, slogger)
		handler := room.NewHandler(transport.NewBaseHandler(slogger), service)

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(internal.ContextWithUserID(r.Context(), 1)))
			})
		})
		router.Get("/rooms", handler.ListRooms)
		router.Post("/rooms", handler.CreateRoom)
		router.Get("/rooms/{id}", handler.GetRoom)
		router.Put("/rooms/{id}", handler.UpdateRoom)
		router.Delete("/rooms/{id}", handler.DeleteRoom)
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("should create, read, update and soft delete a room", func() {
		rec := do(http.MethodPost, "/rooms", `{"name":"Orion","capacity":6,"location":"2F"}`)
		Expect(rec.Code).To(Equal(http.StatusCreated))

		var created room.Room
		Expect(json.Unmarshal(rec.Body.Bytes(), &created)).To(Succeed())
		Expect(created.ID).To(BeNumerically(">", 0))

		rec = do(http.MethodPut, "/rooms/1", `{"capacity":10}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"capacity":10`))

		rec = do(http.MethodDelete, "/rooms/1", "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		rec = do(http.MethodGet, "/rooms", "")
		var list room.RoomsResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &list)).To(Succeed())
		Expect(list.Rooms).To(BeEmpty())

		rec = do(http.MethodGet, "/rooms/1", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"is_active":false`))
	})

	It("should answer 409 for a duplicate name", func() {
		Expect(do(http.MethodPost, "/rooms", `{"name":"Orion","capacity":6}`).Code).To(Equal(http.StatusCreated))

		rec := do(http.MethodPost, "/rooms", `{"name":"Orion","capacity":2}`)

		Expect(rec.Code).To(Equal(http.StatusConflict))
		Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeRoomNameTaken)))
	})

	It("should answer 404 for a missing room and 400 for a bad id", func() {
		Expect(do(http.MethodGet, "/rooms/42", "").Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodGet, "/rooms/abc", "").Code).To(Equal(http.StatusBadRequest))
	})
})
