// Package httpapi serves the backend's HTTP surface: liveness, Prometheus
// metrics and the landing endpoint of emailed verification links.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/rentable/internal/common"
	"github.com/dmitrijs2005/rentable/internal/logging"
	"github.com/dmitrijs2005/rentable/internal/server/metrics"
	"github.com/dmitrijs2005/rentable/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Verifier consumes an emailed code.
type Verifier interface {
	VerifyOTP(ctx context.Context, email, token, otpType string) (*services.Session, error)
}

// Handler holds the dependencies of the HTTP routes.
type Handler struct {
	verifier    Verifier
	metrics     *metrics.Metrics
	logger      logging.Logger
	redirectURL string
}

func NewHandler(v Verifier, m *metrics.Metrics, redirectURL string, l logging.Logger) *Handler {
	return &Handler{verifier: v, metrics: m, redirectURL: redirectURL, logger: l.With("module", "http")}
}

// Router builds the chi router.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)

	r.Get("/healthz", h.healthz)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}
	r.Route("/auth/v1", func(r chi.Router) {
		r.Get("/verify", h.verify)
	})
	return r
}

func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		if h.metrics == nil {
			return
		}
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.metrics.ObserveHTTP(route, status)
	})
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// verify checks the code from an emailed link and redirects to the app.
// Tokens travel in the fragment; the verification type stays in the query
// so the app can route the callback before reading them.
func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	otpType := q.Get("type")
	target := h.redirectTarget(q.Get("redirect_to"))

	session, err := h.verifier.VerifyOTP(r.Context(), q.Get("email"), q.Get("token"), otpType)
	if err != nil {
		desc := "Email link is invalid or has expired"
		code := "otp_expired"
		if !errors.Is(err, services.ErrOTPInvalid) && !errors.Is(err, common.ErrorValidation) {
			h.logger.Error(r.Context(), "link verification failed", "error", err)
			desc = "Unable to verify email link"
			code = "unexpected_failure"
		}
		errQ := url.Values{}
		errQ.Set("error", "access_denied")
		errQ.Set("error_code", code)
		errQ.Set("error_description", desc)
		http.Redirect(w, r, withQuery(target, errQ, nil), http.StatusFound)
		return
	}

	frag := url.Values{}
	frag.Set("access_token", session.AccessToken)
	frag.Set("refresh_token", session.RefreshToken)
	frag.Set("expires_in", strconv.FormatInt(int64(session.ExpiresIn/time.Second), 10))
	frag.Set("expires_at", strconv.FormatInt(session.ExpiresAt.Unix(), 10))
	frag.Set("token_type", "bearer")
	frag.Set("type", otpType)

	typeQ := url.Values{}
	typeQ.Set("type", otpType)
	http.Redirect(w, r, withQuery(target, typeQ, frag), http.StatusFound)
}

// redirectTarget accepts a requested redirect only into the app's own
// scheme or under the configured default.
func (h *Handler) redirectTarget(requested string) string {
	if requested == "" {
		return h.redirectURL
	}
	u, err := url.Parse(requested)
	if err != nil {
		return h.redirectURL
	}
	if u.Scheme == common.DeepLinkScheme || strings.HasPrefix(requested, h.redirectURL) {
		return requested
	}
	return h.redirectURL
}

func withQuery(base string, q, frag url.Values) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	merged := u.Query()
	for k, vs := range q {
		merged[k] = vs
	}
	u.RawQuery = merged.Encode()
	if frag != nil {
		u.Fragment = ""
		u.RawFragment = ""
		return u.String() + "#" + frag.Encode()
	}
	return u.String()
}
