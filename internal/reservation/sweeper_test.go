package reservation_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	reservationDatamodel "github.com/frahmantamala/room-reservation/internal/core/datamodel/reservation"
	"github.com/frahmantamala/room-reservation/internal/reservation"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var _ = Describe("Sweeper", func() {
	var (
		db      *gorm.DB
		sweeper *reservation.Sweeper
	)

	BeforeEach(func() {
		db = newTestDB()
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sweeper = reservation.NewSweeper(sqlx.NewDb(sqlDB, "sqlite3"), slog.New(slog.NewTextHandler(io.Discard, nil)))

		rows := []*reservationDatamodel.Reservation{
			{RoomID: 1, UserID: 1, Title: "ended", StartsAt: at(8, 0), EndsAt: at(9, 0), Status: "confirmed"},
			{RoomID: 1, UserID: 1, Title: "ends now", StartsAt: at(9, 0), EndsAt: at(10, 0), Status: "confirmed"},
			{RoomID: 1, UserID: 1, Title: "running", StartsAt: at(9, 30), EndsAt: at(11, 0), Status: "confirmed"},
			{RoomID: 2, UserID: 1, Title: "cancelled", StartsAt: at(8, 0), EndsAt: at(9, 0), Status: "cancelled"},
		}
		for _, row := range rows {
			Expect(db.Create(row).Error).To(Succeed())
		}
	})

	It("should complete confirmed reservations that have ended", func() {
		n, err := sweeper.Run(context.Background(), at(10, 0))

		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(2)))

		statuses := map[string]string{}
		var rows []reservationDatamodel.Reservation
		Expect(db.Find(&rows).Error).To(Succeed())
		for _, row := range rows {
			statuses[row.Title] = row.Status
		}
		Expect(statuses).To(Equal(map[string]string{
			"ended":     "completed",
			"ends now":  "completed",
			"running":   "confirmed",
			"cancelled": "cancelled",
		}))
	})

	It("should be a no-op on a second run", func() {
		_, err := sweeper.Run(context.Background(), at(10, 0))
		Expect(err).NotTo(HaveOccurred())

		n, err := sweeper.Run(context.Background(), at(10, 0).Add(time.Minute))
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(BeZero())
	})
})
