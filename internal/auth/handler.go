package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/frahmantamala/room-reservation/internal"
	"github.com/frahmantamala/room-reservation/internal/transport"
	"github.com/frahmantamala/room-reservation/pkg/logger"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, dto LoginDTO) (*Session, error)
	ValidateSession(tokenString string) (int64, error)
}

// CookieOptions controls the session cookie written on login.
type CookieOptions struct {
	Name   string
	Secure bool
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
	Cookie  CookieOptions
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI, cookie CookieOptions) *Handler {
	if cookie.Name == "" {
		cookie.Name = "session"
	}
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
		Cookie:      cookie,
	}
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	session, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	h.WriteJSON(w, http.StatusOK, LoginResponse{Success: true, UserID: session.UserID})
}

// Logout handles POST /auth/logout. It always succeeds.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	h.WriteJSON(w, http.StatusOK, LogoutResponse{Success: true, Message: "Logged out"})
}

func (h *Handler) tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(h.Cookie.Name); err == nil && c.Value != "" {
		return c.Value
	}
	return h.ExtractTokenFromHeader(r)
}

// SessionMiddleware rejects requests without a valid session and stores the
// user id in the request context and its logger.
func (h *Handler) SessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := h.Service.ValidateSession(h.tokenFromRequest(r))
		if err != nil {
			logger.From(r.Context()).Debug("session rejected", "error", err)
			h.HandleServiceError(w, r, err)
			return
		}

		ctx := internal.ContextWithUserID(r.Context(), userID)
		ctx = logger.With(ctx, "user_id", userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
