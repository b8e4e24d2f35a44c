package adapthttp

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"musify/internal/app"
	"musify/internal/auth"
	"musify/internal/domain"
	"musify/internal/observability"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	stateContextKey contextKey = "request_state"
)

const requestIDHeader = "X-Request-ID"

var tracer = otel.Tracer("musify/http")

var errUnauthenticated = errors.New("authentication required")

func principalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(userContextKey).(domain.Principal)
	return p, ok
}

// requestState is shared by the middleware chain of one request.
type requestState struct {
	id        string
	accountID int64
}

func stateFrom(ctx context.Context) *requestState {
	st, _ := ctx.Value(stateContextKey).(*requestState)
	return st
}

func requestIDFrom(ctx context.Context) string {
	if st := stateFrom(ctx); st != nil {
		return st.id
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// requestID tags each request with an id, reusing the caller's when present.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), stateContextKey, &requestState{id: id})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// logging records one line per request and opens its trace span.
func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, span := tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			),
		)
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		r = r.WithContext(ctx)
		next.ServeHTTP(rec, r)

		span.SetAttributes(attribute.Int("http.status_code", rec.status))
		kv := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"request_id", requestIDFrom(r.Context()),
		}
		if st := stateFrom(r.Context()); st != nil && st.accountID != 0 {
			kv = append(kv, "account_id", st.accountID)
		}
		if sc := span.SpanContext(); sc.HasTraceID() {
			kv = append(kv, "trace_id", sc.TraceID().String())
		}
		s.logger.Info("request", kv...)
	})
}

// unmatchedRoute labels requests no route accepts, such as 404 and 405 responses.
const unmatchedRoute = "unmatched"

// metricsMiddleware records request counts by the route template router
// matches. It wraps the whole chain so rejected and unrouted requests are
// counted too.
func (s *Server) metricsMiddleware(router *mux.Router, next http.Handler) http.Handler {
	if s.metrics == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		route := unmatchedRoute
		var match mux.RouteMatch
		if router.Match(r, &match) && match.MatchErr == nil && match.Route != nil {
			if tpl, err := match.Route.GetPathTemplate(); err == nil {
				route = tpl
			}
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.metrics.ObserveRequest(route, r.Method, rec.status, time.Since(start))
	})
}

// authenticate resolves the request principal from its bearer token. Requests
// without a usable token continue anonymously; authorize decides whether they
// may proceed.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		p, err := s.svc.Authenticator.Authenticate(r.Context(), header)
		switch {
		case err == nil:
			s.observeAuth(observability.AuthAuthenticated)
			if st := stateFrom(r.Context()); st != nil {
				st.accountID = p.AccountID
			}
			r = r.WithContext(context.WithValue(r.Context(), userContextKey, p))
		case errors.Is(err, app.ErrNoCredentials):
			s.observeAuth(observability.AuthAnonymous)
		case errors.Is(err, auth.ErrInvalidToken):
			s.observeAuth(observability.AuthInvalidToken)
			s.logger.Debug("rejected token", "path", r.URL.Path, "err", err)
		case errors.Is(err, app.ErrAccountGone):
			s.observeAuth(observability.AuthAccountGone)
		default:
			s.observeAuth(observability.AuthError)
			s.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) observeAuth(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveAuth(outcome)
	}
}

// authorize rejects anonymous requests for paths outside the public set.
func (s *Server) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := principalFrom(r.Context()); !ok && !s.public.Match(r.URL.Path) {
			w.Header().Set("WWW-Authenticate", `Bearer realm="musify"`)
			writeError(w, http.StatusUnauthorized, errUnauthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withPrincipal adapts a handler that needs the caller's identity.
func (s *Server) withPrincipal(h func(http.ResponseWriter, *http.Request, domain.Principal)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := principalFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, errUnauthenticated)
			return
		}
		h(w, r, p)
	}
}

// rateLimited bounds requests per client address.
func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientAddr(r)) {
			if s.metrics != nil {
				s.metrics.RateLimited.Inc()
			}
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, errors.New("too many requests"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
