package room_test

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/frahmantamala/room-reservation/internal"
	roomDatamodel "github.com/frahmantamala/room-reservation/internal/core/datamodel/room"
	"github.com/frahmantamala/room-reservation/internal/room"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestRoom(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Room Suite")
}

type MockRepository struct {
	rooms      map[int64]*roomDatamodel.Room
	nextID     int64
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{rooms: make(map[int64]*roomDatamodel.Room), nextID: 1}
}

func (m *MockRepository) ListActive(ctx context.Context) ([]*roomDatamodel.Room, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var out []*roomDatamodel.Room
	for _, r := range m.rooms {
		if r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*roomDatamodel.Room, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	r, ok := m.rooms[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *MockRepository) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	if m.shouldFail {
		return false, m.failError
	}
	for id, r := range m.rooms {
		if id != excludeID && strings.EqualFold(r.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockRepository) Create(ctx context.Context, r *roomDatamodel.Room) error {
	if m.shouldFail {
		return m.failError
	}
	r.ID = m.nextID
	m.nextID++
	m.rooms[r.ID] = r
	return nil
}

func (m *MockRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	if m.shouldFail {
		return m.failError
	}
	r := m.rooms[id]
	for k, v := range fields {
		switch k {
		case "name":
			r.Name = v.(string)
		case "location":
			r.Location = v.(string)
		case "capacity":
			r.Capacity = v.(int)
		case "description":
			r.Description = v.(string)
		}
	}
	return nil
}

func (m *MockRepository) Deactivate(ctx context.Context, id int64) error {
	if m.shouldFail {
		return m.failError
	}
	m.rooms[id].IsActive = false
	return nil
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

var _ = Describe("Room Service", func() {
	var (
		repo    *MockRepository
		service *room.Service
		ctx     context.Context
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		service = room.NewService(repo, slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
		ctx = context.Background()
	})

	Describe("Create", func() {
		It("should create an active room", func() {
			r, err := service.Create(ctx, 1, room.CreateRoomDTO{Name: "  Orion ", Capacity: 8, Location: "Floor 2"})

			Expect(err).NotTo(HaveOccurred())
			Expect(r.ID).To(Equal(int64(1)))
			Expect(r.Name).To(Equal("Orion"))
			Expect(r.IsActive).To(BeTrue())
		})

		It("should reject a non-positive capacity", func() {
			_, err := service.Create(ctx, 1, room.CreateRoomDTO{Name: "Orion", Capacity: 0})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
			Expect(repo.rooms).To(BeEmpty())
		})

		It("should reject a capacity the integer column cannot hold", func() {
			_, err := service.Create(ctx, 1, room.CreateRoomDTO{Name: "Orion", Capacity: math.MaxInt32 + 1})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
			Expect(repo.rooms).To(BeEmpty())
		})

		It("should reject a duplicate name with a conflict", func() {
			_, err := service.Create(ctx, 1, room.CreateRoomDTO{Name: "Orion", Capacity: 4})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(ctx, 1, room.CreateRoomDTO{Name: "orion", Capacity: 6})

			Expect(errors.Is(err, room.ErrNameTaken)).To(BeTrue())
			appErr, _ := internal.IsAppError(err)
			Expect(appErr.StatusCode).To(Equal(409))
		})
	})

	Describe("Update", func() {
		BeforeEach(func() {
			_, err := service.Create(ctx, 1, room.CreateRoomDTO{Name: "Orion", Capacity: 4})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Create(ctx, 1, room.CreateRoomDTO{Name: "Lyra", Capacity: 10})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should change only the supplied fields", func() {
			r, err := service.Update(ctx, 1, 1, room.UpdateRoomDTO{Capacity: intPtr(12)})

			Expect(err).NotTo(HaveOccurred())
			Expect(r.Capacity).To(Equal(12))
			Expect(r.Name).To(Equal("Orion"))
		})

		It("should refuse a name owned by another room", func() {
			_, err := service.Update(ctx, 1, 1, room.UpdateRoomDTO{Name: strPtr("Lyra")})

			Expect(errors.Is(err, room.ErrNameTaken)).To(BeTrue())
		})

		It("should reject an oversized capacity without touching the room", func() {
			_, err := service.Update(ctx, 1, 1, room.UpdateRoomDTO{Capacity: intPtr(math.MaxInt32 + 1)})

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(400))
			r, err := service.GetByID(ctx, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Capacity).To(Equal(4))
		})

		It("should return not found for an unknown room", func() {
			_, err := service.Update(ctx, 1, 99, room.UpdateRoomDTO{Capacity: intPtr(3)})

			Expect(errors.Is(err, internal.ErrRoomNotFound)).To(BeTrue())
		})
	})

	Describe("Delete", func() {
		It("should hide the room from the list", func() {
			_, err := service.Create(ctx, 1, room.CreateRoomDTO{Name: "Orion", Capacity: 4})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(ctx, 1, 1)).To(Succeed())

			rooms, err := service.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(rooms).To(BeEmpty())
			Expect(repo.rooms[1].IsActive).To(BeFalse())
		})
	})

	It("should hide store errors", func() {
		repo.shouldFail = true
		repo.failError = errors.New("dial tcp: connection refused")

		_, err := service.List(ctx)

		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.StatusCode).To(Equal(500))
	})
})
