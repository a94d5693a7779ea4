package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/frahmantamala/room-reservation/internal"
	"github.com/frahmantamala/room-reservation/internal/permission"
	"github.com/frahmantamala/room-reservation/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
)

func TestMiddleware(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Suite")
}

type MockChecker struct {
	allowed    map[permission.Capability]bool
	shouldFail bool
}

func (m *MockChecker) Allowed(ctx context.Context, userID int64, capability permission.Capability) (bool, error) {
	if m.shouldFail {
		return false, errors.New("pq: relation user_permissions does not exist")
	}
	return m.allowed[capability], nil
}

func quietBase() *transport.BaseHandler {
	return transport.NewBaseHandler(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
}

func withUser(userID int64, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(internal.ContextWithUserID(r.Context(), userID)))
	})
}

var _ = Describe("RequestID", func() {
	It("should mint a trace id and expose it on the context and response", func() {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = internal.TraceIDFromContext(r.Context())
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		Expect(seen).NotTo(BeEmpty())
		Expect(rec.Header().Get(TraceHeader)).To(Equal(seen))
	})

	It("should keep an incoming trace id", func() {
		var seen string
		h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = internal.TraceIDFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TraceHeader, "trace-abc")
		h.ServeHTTP(httptest.NewRecorder(), req)

		Expect(seen).To(Equal("trace-abc"))
	})
})

var _ = Describe("Recovery", func() {
	It("should answer 500 with the trace id and without the panic text", func() {
		h := RequestID(Recovery(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("dial tcp 10.0.0.5:5432: secret-host unreachable")
		})))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(TraceHeader, "trace-panic")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).NotTo(ContainSubstring("secret-host"))

		var body map[string]string
		Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
		Expect(body["correlation_id"]).To(Equal("trace-panic"))
		Expect(body["code"]).To(Equal(string(internal.ErrCodeInternal)))
	})
})

var _ = Describe("RequireCapability", func() {
	var checker *MockChecker

	BeforeEach(func() {
		checker = &MockChecker{allowed: map[permission.Capability]bool{}}
	})

	serve := func(h http.Handler) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rooms", nil))
		return rec
	}

	It("should return 401 without a session user", func() {
		h := RequireCapability(checker, permission.CanManageRooms, quietBase())(okHandler())
		Expect(serve(h).Code).To(Equal(http.StatusUnauthorized))
	})

	It("should return 403 when the capability is missing", func() {
		h := withUser(3, RequireCapability(checker, permission.CanManageRooms, quietBase())(okHandler()))
		rec := serve(h)
		Expect(rec.Code).To(Equal(http.StatusForbidden))
		Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeInsufficientPerms)))
	})

	It("should pass through when the capability is held", func() {
		checker.allowed[permission.CanManageRooms] = true
		h := withUser(3, RequireCapability(checker, permission.CanManageRooms, quietBase())(okHandler()))
		Expect(serve(h).Code).To(Equal(http.StatusOK))
	})

	It("should hide store failures behind a correlation id", func() {
		checker.shouldFail = true
		h := withUser(3, RequireCapability(checker, permission.CanManageRooms, quietBase())(okHandler()))
		rec := serve(h)
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).NotTo(ContainSubstring("user_permissions"))
		Expect(rec.Body.String()).To(ContainSubstring("correlation_id"))
	})
})

var _ = Describe("Metrics", func() {
	It("should count requests by route pattern", func() {
		m := NewMetrics()
		r := chi.NewRouter()
		r.Use(m.Middleware)
		r.Get("/rooms/{id}", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		for _, id := range []string{"1", "2", "3"} {
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/rooms/"+id, nil))
		}

		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		Expect(rec.Body.String()).To(ContainSubstring(`room_reservation_http_requests_total{method="GET",route="/rooms/{id}",status="204"} 3`))
	})

	It("should serve the registry in the exposition format", func() {
		m := NewMetrics()
		m.RequestsTotal.WithLabelValues("GET", "/ping", "200").Inc()

		rec := httptest.NewRecorder()
		m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("room_reservation_http_requests_total"))
	})
})

var _ = Describe("RateLimit", func() {
	cfg := internal.RateLimitConfig{
		Enabled:        true,
		Capacity:       1,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            time.Minute,
		Prefix:         "rl",
	}

	It("should pass through when disabled", func() {
		disabled := cfg
		disabled.Enabled = false
		h := RateLimit(disabled, nil, "login", quietBase())(okHandler())

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("X-RateLimit-Limit")).To(BeEmpty())
	})

	It("should fail open when redis cannot be reached", func() {
		rdb := redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 50 * time.Millisecond,
			MaxRetries:  -1,
		})
		DeferCleanup(rdb.Close)

		h := RateLimit(cfg, rdb, "login", quietBase())(okHandler())

		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil))
			Expect(rec.Code).To(Equal(http.StatusOK))
		}
	})

	It("should read the client ip without the port", func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.0.2.10:53122"
		Expect(clientIP(req)).To(Equal("192.0.2.10"))
	})
})

var _ = Describe("RequestLogger", func() {
	It("should pass the request body through untouched", func() {
		var got string
		h := RequestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			got = string(b)
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/auth/login",
			strings.NewReader(`{"email":"a@b.io","password":"hunter22"}`)))

		Expect(got).To(Equal(`{"email":"a@b.io","password":"hunter22"}`))
	})

	It("should mask sensitive JSON keys at any depth", func() {
		out := filterSensitiveBody("application/json",
			[]byte(`{"email":"a@b.io","password":"hunter22","nested":{"current_password":"x","name":"Ada"}}`))

		Expect(out).NotTo(ContainSubstring("hunter22"))
		Expect(out).To(ContainSubstring(`"current_password":"[FILTERED]"`))
		Expect(out).To(ContainSubstring(`"name":"Ada"`))
	})

	It("should mask cookie and authorization headers", func() {
		h := http.Header{}
		h.Set("Cookie", "session=abc")
		h.Set("Authorization", "Bearer abc")
		h.Set("Accept", "application/json")

		filtered := filterSensitiveHeaders(h)
		Expect(filtered["Cookie"]).To(Equal("[FILTERED]"))
		Expect(filtered["Authorization"]).To(Equal("[FILTERED]"))
		Expect(filtered["Accept"]).To(Equal("application/json"))
	})
})
