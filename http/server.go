package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fwojciec/adscan"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ShutdownTimeout bounds graceful shutdown of the Server.
const ShutdownTimeout = 5 * time.Second

// Server receives ad messages over HTTP and serves the stored ads.
//
//	POST /messages    hand a {what, ad} message to the Notifier
//	GET  /ads         list ads, filtered by ?page=, ?target=, ?offset=, ?limit=
//	GET  /ads/count   count ads with the same filters
//	GET  /ads/{id}    fetch one ad
type Server struct {
	Notifier  adscan.Notifier
	AdService adscan.AdService
	Logger    *slog.Logger

	router chi.Router
}

// NewServer creates a Server delivering received messages to notifier and
// reading ads from ads.
func NewServer(notifier adscan.Notifier, ads adscan.AdService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		Notifier:  notifier,
		AdService: ads,
		Logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Post("/messages", s.handleMessage)
	r.Get("/ads", s.handleAdList)
	r.Get("/ads/count", s.handleAdCount)
	r.Get("/ads/{id}", s.handleAdView)
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(ln)
	}()
	s.Logger.Info("server listening", "addr", ln.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg adscan.Message
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&msg); err != nil {
		s.Error(w, r, adscan.Errorf(adscan.EINVALID, "invalid message body"))
		return
	}
	if msg.What != adscan.MessageRegisterAd {
		s.Error(w, r, adscan.Errorf(adscan.EINVALID, "unknown message %q", msg.What))
		return
	}
	if msg.Ad == nil {
		s.Error(w, r, adscan.Errorf(adscan.EINVALID, "message carries no ad"))
		return
	}
	if err := msg.Ad.Validate(); err != nil {
		s.Error(w, r, err)
		return
	}

	if err := s.Notifier.Notify(r.Context(), &msg); err != nil {
		s.Error(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleAdList(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAdFilter(r)
	if err != nil {
		s.Error(w, r, err)
		return
	}

	ads, err := s.AdService.FindAds(r.Context(), filter)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	if ads == nil {
		ads = []*adscan.Ad{}
	}
	s.writeJSON(w, http.StatusOK, ads)
}

func (s *Server) handleAdCount(w http.ResponseWriter, r *http.Request) {
	filter, err := parseAdFilter(r)
	if err != nil {
		s.Error(w, r, err)
		return
	}

	n, err := s.AdService.CountAds(r.Context(), filter)
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (s *Server) handleAdView(w http.ResponseWriter, r *http.Request) {
	ad, err := s.AdService.FindAdByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.Error(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ad)
}

func parseAdFilter(r *http.Request) (adscan.AdFilter, error) {
	var filter adscan.AdFilter
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		filter.PageURL = &v
	}
	if v := q.Get("target"); v != "" {
		filter.TargetURL = &v
	}
	for name, dst := range map[string]*int{"offset": &filter.Offset, "limit": &filter.Limit} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filter, adscan.Errorf(adscan.EINVALID, "invalid %s %q", name, v)
		}
		*dst = n
	}
	return filter, nil
}

// codes maps application error codes to HTTP statuses.
var codes = map[string]int{
	adscan.EINVALID:     http.StatusBadRequest,
	adscan.EIGNORED:     http.StatusUnprocessableEntity,
	adscan.ENOTFOUND:    http.StatusNotFound,
	adscan.EFORBIDDEN:   http.StatusForbidden,
	adscan.EUNAVAILABLE: http.StatusServiceUnavailable,
	adscan.EINTERNAL:    http.StatusInternalServerError,
}

// Error writes err as a JSON error response. Internal errors are logged
// and their details hidden from the client.
func (s *Server) Error(w http.ResponseWriter, r *http.Request, err error) {
	code, message := adscan.ErrorCode(err), adscan.ErrorMessage(err)
	if code == adscan.EINTERNAL {
		s.Logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"err", err,
		)
	}

	status, ok := codes[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Warn("encoding response", "err", err)
	}
}
