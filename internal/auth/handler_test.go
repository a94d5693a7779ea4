package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/frahmantamala/room-reservation/internal"
	"github.com/frahmantamala/room-reservation/internal/transport"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("AuthHandler", func() {
	var (
		handler  *Handler
		sessions *SessionManager
	)

	ginkgo.BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		sessions = NewSessionManager("test-session-secret-that-is-long-enough", time.Hour)
		service := NewService(newMockCredentialRepository(), sessions, lg)
		handler = NewHandler(transport.NewBaseHandler(lg), service, CookieOptions{Name: "session"})
	})

	ginkgo.It("should set an HttpOnly session cookie on login", func() {
		body := strings.NewReader(`{"email":"user@example.com","password":"correct_password"}`)
		rec := httptest.NewRecorder()

		handler.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", body))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring(`"user_id":1`))
		cookies := rec.Result().Cookies()
		gomega.Expect(cookies).To(gomega.HaveLen(1))
		gomega.Expect(cookies[0].Name).To(gomega.Equal("session"))
		gomega.Expect(cookies[0].HttpOnly).To(gomega.BeTrue())
	})

	ginkgo.It("should answer 401 for bad credentials", func() {
		body := strings.NewReader(`{"email":"user@example.com","password":"nope"}`)
		rec := httptest.NewRecorder()

		handler.Login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", body))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		gomega.Expect(rec.Result().Cookies()).To(gomega.BeEmpty())
	})

	ginkgo.It("should expire the cookie on logout", func() {
		rec := httptest.NewRecorder()

		handler.Logout(rec, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		cookies := rec.Result().Cookies()
		gomega.Expect(cookies).To(gomega.HaveLen(1))
		gomega.Expect(cookies[0].MaxAge).To(gomega.BeNumerically("<", 0))
	})

	ginkgo.Describe("SessionMiddleware", func() {
		var seen int64
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = internal.UserIDFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		})

		ginkgo.BeforeEach(func() {
			seen = 0
		})

		ginkgo.It("should accept a session cookie", func() {
			session, err := sessions.Issue(7)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req.AddCookie(&http.Cookie{Name: "session", Value: session.Token})
			rec := httptest.NewRecorder()

			handler.SessionMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNoContent))
			gomega.Expect(seen).To(gomega.Equal(int64(7)))
		})

		ginkgo.It("should accept a bearer token", func() {
			session, err := sessions.Issue(8)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req.Header.Set("Authorization", "Bearer "+session.Token)
			rec := httptest.NewRecorder()

			handler.SessionMiddleware(next).ServeHTTP(rec, req.WithContext(context.Background()))

			gomega.Expect(seen).To(gomega.Equal(int64(8)))
		})

		ginkgo.It("should reject requests without a session", func() {
			rec := httptest.NewRecorder()

			handler.SessionMiddleware(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(seen).To(gomega.BeZero())
		})
	})
})
