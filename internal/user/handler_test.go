package user_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/frahmantamala/room-reservation/internal"
	"github.com/frahmantamala/room-reservation/internal/transport"
	"github.com/frahmantamala/room-reservation/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type MockService struct {
	verifyDTO  user.VerifyUserDTO
	shouldFail bool
	failError  error
}

func (m *MockService) GetProfile(ctx context.Context, userID int64) (*user.ProfileResponse, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return &user.ProfileResponse{
		User:         &user.User{ID: userID, Email: "ada@example.com", PasswordHash: "secret-hash"},
		Capabilities: map[string]bool{"can_edit_users": true},
	}, nil
}

func (m *MockService) Verify(ctx context.Context, actorID int64, dto user.VerifyUserDTO) (*user.ChangeResponse, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	m.verifyDTO = dto
	return &user.ChangeResponse{Success: true, Changed: true, Message: "User 2 verified"}, nil
}

func (m *MockService) UpdateProfile(ctx context.Context, userID int64, dto user.UpdateProfileDTO) (*user.ChangeResponse, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return &user.ChangeResponse{Success: true, Changed: false, Message: "No changes made"}, nil
}

var _ = Describe("User Handler", func() {
	var (
		svc     *MockService
		handler *user.Handler
	)

	BeforeEach(func() {
		svc = &MockService{}
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler = user.NewHandler(transport.NewBaseHandler(lg), svc)
	})

	authed := func(req *http.Request) *http.Request {
		return req.WithContext(internal.ContextWithUserID(req.Context(), 1))
	}

	It("should return 401 without a session", func() {
		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		rec := httptest.NewRecorder()

		handler.GetCurrentUser(rec, req)

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should never serialise the password hash", func() {
		req := authed(httptest.NewRequest(http.MethodGet, "/users/me", nil))
		rec := httptest.NewRecorder()

		handler.GetCurrentUser(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).NotTo(ContainSubstring("secret-hash"))

		var body map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body).To(HaveKey("capabilities"))
		Expect(body["email"]).To(Equal("ada@example.com"))
	})

	It("should reject a malformed verify body", func() {
		req := authed(httptest.NewRequest(http.MethodPost, "/users/verify", strings.NewReader("{")))
		rec := httptest.NewRecorder()

		handler.Verify(rec, req)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeInvalidBody)))
	})

	It("should pass the decoded body to the service", func() {
		req := authed(httptest.NewRequest(http.MethodPost, "/users/verify", strings.NewReader(`{"user_id":2,"verified":true}`)))
		rec := httptest.NewRecorder()

		handler.Verify(rec, req)

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(svc.verifyDTO.UserID).To(Equal(int64(2)))
		Expect(*svc.verifyDTO.Verified).To(BeTrue())
		Expect(rec.Body.String()).To(ContainSubstring(`"changed":true`))
	})

	It("should answer 500 with a correlation id and no internal text", func() {
		svc.shouldFail = true
		svc.failError = internal.NewInternalError("failed to update profile", errors.New("pq: deadlock detected"))
		req := authed(httptest.NewRequest(http.MethodPost, "/users/update-profile", strings.NewReader(`{"name":"Ada"}`)))
		rec := httptest.NewRecorder()

		handler.UpdateProfile(rec, req)

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).NotTo(ContainSubstring("deadlock"))

		var body map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body["error"]).To(Equal("internal server error"))
		Expect(body["correlation_id"]).NotTo(BeEmpty())
	})

	It("should pass client errors through with their status", func() {
		svc.shouldFail = true
		svc.failError = internal.ErrForbidden
		req := authed(httptest.NewRequest(http.MethodPost, "/users/verify", strings.NewReader(`{"user_id":2,"verified":true}`)))
		rec := httptest.NewRecorder()

		handler.Verify(rec, req)

		Expect(rec.Code).To(Equal(http.StatusForbidden))
	})
})
