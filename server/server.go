// Package server exposes the verification pipeline and the edit-log risk
// scorer over HTTP.
//
// Routes:
//   - POST /verify — multipart form with payload_canonical, sig_b64,
//     x5c_der_b64 (JSON array of base64 DER certificates, leaf first), and a
//     media file part. Responds 200 on success, 403 on policy rejection, 400
//     on every other rejection.
//   - POST /judge — JSON edit log, responds with the rule-based risk judgment.
//   - GET /health — liveness.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/attestedmedia/mediaverifier/verify"
)

// formMemoryLimit caps the in-memory portion of multipart parsing; larger
// parts spill to temp files.
const formMemoryLimit = 8 << 20

// Server binds the verification service to HTTP.
type Server struct {
	svc           *verify.Service
	log           *logrus.Logger
	maxMediaBytes int64
}

// New creates a Server. maxMediaBytes bounds the whole /verify request body.
func New(svc *verify.Service, logger *logrus.Logger, maxMediaBytes int64) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	return &Server{svc: svc, log: logger, maxMediaBytes: maxMediaBytes}
}

// Handler returns the route mux wrapped with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /verify", s.handleVerify)
	mux.HandleFunc("POST /judge", s.handleJudge)
	mux.HandleFunc("GET /health", s.handleHealth)
	return s.withRequestLog(mux)
}

// statusRecorder captures the response code for the request log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     rec.status,
			"duration":   time.Since(start).String(),
		}).Info("request handled")
	})
}

// ListenAndServe runs the server on addr until it fails.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.WithField("addr", addr).Info("verifier listening")
	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}
