package permission_test

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/frahmantamala/room-reservation/internal/permission"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Gate", func() {
	var (
		repo *MockRepository
		gate *permission.Gate
		ctx  context.Context
	)

	BeforeEach(func() {
		repo = NewMockRepository()
		gate = permission.NewGate(repo, slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError})))
		ctx = context.Background()
	})

	It("should deny every capability to a user without a row", func() {
		for _, c := range permission.All() {
			allowed, err := gate.Allowed(ctx, 42, c)
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(BeFalse())
			Expect(gate.CanPerform(ctx, 42, c)).To(BeFalse())
		}
	})

	It("should return the stored flag", func() {
		repo.Grant(5, permission.CanManageRooms)

		Expect(gate.CanPerform(ctx, 5, permission.CanManageRooms)).To(BeTrue())
		Expect(gate.CanPerform(ctx, 5, permission.CanEditUsers)).To(BeFalse())
		Expect(gate.CanEditUsers(ctx, 5)).To(BeFalse())
	})

	It("should deny unknown capabilities without reading the store", func() {
		repo.Grant(5, permission.All()...)

		Expect(gate.CanPerform(ctx, 5, permission.Capability("is_admin"))).To(BeFalse())
		Expect(repo.reads).To(BeZero())
	})

	It("should deny and surface the error when the store fails", func() {
		repo.Grant(5, permission.All()...)
		repo.SetShouldFail(true, errors.New("timeout"))

		allowed, err := gate.Allowed(ctx, 5, permission.CanEditUsers)
		Expect(err).To(HaveOccurred())
		Expect(allowed).To(BeFalse())
		Expect(gate.CanEditUsers(ctx, 5)).To(BeFalse())
	})

	It("should read the store on every check", func() {
		repo.Grant(5, permission.CanEditUsers)
		Expect(gate.CanEditUsers(ctx, 5)).To(BeTrue())

		repo.Grant(5)
		Expect(gate.CanEditUsers(ctx, 5)).To(BeFalse())
		Expect(repo.reads).To(Equal(2))
	})

	It("should list all capabilities as false for a user without a row", func() {
		caps, err := gate.Capabilities(ctx, 9)
		Expect(err).NotTo(HaveOccurred())
		Expect(caps).To(Equal(map[string]bool{
			"can_edit_users":          false,
			"can_manage_rooms":        false,
			"can_manage_reservations": false,
		}))
	})
})

var _ = Describe("Capability", func() {
	It("should accept only canonical names", func() {
		c, ok := permission.Parse("can_edit_users")
		Expect(ok).To(BeTrue())
		Expect(c).To(Equal(permission.CanEditUsers))

		_, ok = permission.Parse("can_edit_users; DROP TABLE users")
		Expect(ok).To(BeFalse())
		_, ok = permission.Parse("")
		Expect(ok).To(BeFalse())
	})

	It("should map every capability onto a column", func() {
		for _, c := range permission.All() {
			col, ok := c.Column()
			Expect(ok).To(BeTrue())
			Expect(col).To(Equal(string(c)))
		}
		Expect(permission.Columns()).To(HaveLen(len(permission.All())))
	})

	It("should parse bulk actions", func() {
		a, ok := permission.ParseBulkAction("grant_all")
		Expect(ok).To(BeTrue())
		Expect(a.Value()).To(BeTrue())

		a, ok = permission.ParseBulkAction("revoke_all")
		Expect(ok).To(BeTrue())
		Expect(a.Value()).To(BeFalse())

		_, ok = permission.ParseBulkAction("GRANT_ALL")
		Expect(ok).To(BeFalse())
	})
})
