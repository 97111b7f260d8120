// Package api serves a Book over HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/cleared-dev/voucherbook/internal/book"
	"github.com/cleared-dev/voucherbook/internal/buildinfo"
	"github.com/cleared-dev/voucherbook/internal/metrics"
	"github.com/cleared-dev/voucherbook/internal/money"
)

// Server holds the dependencies shared by all handlers.
type Server struct {
	book    *book.Book
	log     *zap.Logger
	metrics *metrics.Metrics
	money   money.Formatter
	persist func() error
}

// NewServer creates a Server. A nil logger discards logs; a nil Metrics
// disables /metrics and request counting.
func NewServer(b *book.Book, log *zap.Logger, m *metrics.Metrics, f money.Formatter) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{book: b, log: log, metrics: m, money: f}
}

// PersistWith makes every successful mutating request call save before it
// responds. A failed save is reported to the client instead of the result.
func (s *Server) PersistWith(save func() error) *Server {
	s.persist = save
	return s
}

// saved persists a mutation that has already been applied to the book. It
// writes an error response and returns false when persisting fails.
func (s *Server) saved(w http.ResponseWriter) bool {
	if s.persist == nil {
		return true
	}
	if err := s.persist(); err != nil {
		s.log.Error("saving book", zap.Error(err))
		s.writeError(w, err)
		return false
	}
	return true
}

// Routes returns the HTTP handler for the API.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", s.health)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/accounts", func(r chi.Router) {
		r.Get("/", s.listAccounts)
		r.Post("/", s.createAccount)
		r.Route("/{account}", func(r chi.Router) {
			r.Delete("/", s.deleteAccount)
			r.Get("/balance", s.getBalance)
			r.Get("/statement", s.getStatement)
		})
	})

	r.Route("/vouchers", func(r chi.Router) {
		r.Get("/", s.listVouchers)
		r.Post("/", s.createVoucher)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getVoucher)
			r.Patch("/", s.editVoucher)
			r.Delete("/", s.deleteVoucher)
			r.Post("/approve", s.approveVoucher)
			r.Post("/reject", s.rejectVoucher)
		})
	})

	return r
}

// requestLogger logs each request with zap and counts it by route pattern.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		if s.metrics != nil {
			s.metrics.ObserveRequest(r.Method, route, strconv.Itoa(status))
		}
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("route", route),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.ModuleVersion()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// accountParam returns the {account} path segment decoded. chi matches on
// the escaped path when the request carried one, so names like "A/R"
// arrive as "A%2FR".
func accountParam(r *http.Request) (string, error) {
	v := chi.URLParam(r, "account")
	if r.URL.RawPath == "" {
		return v, nil
	}
	name, err := url.PathUnescape(v)
	if err != nil {
		return "", fmt.Errorf("invalid account %q in path", v)
	}
	return name, nil
}

func confirmed(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return ok
}
