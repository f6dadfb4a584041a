// Package handler exposes the receipt service over HTTP.
package handler

import (
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/mtavares/receiptwise/internal/domain/merchant"
	"github.com/mtavares/receiptwise/internal/domain/receipts"
)

// Server handles HTTP requests for receipts.
type Server struct {
	service   *receipts.Service
	merchants *merchant.Identifier
	basicAuth BasicAuth
	logger    *slog.Logger
	mux       *http.ServeMux
}

// BasicAuth holds basic authentication credentials. PasswordHash, when
// set, takes precedence over Password and is compared with bcrypt.
type BasicAuth struct {
	Username     string
	Password     string
	PasswordHash string
}

// NewServer creates a new Server with a default mux.
func NewServer(service *receipts.Service, merchants *merchant.Identifier, basicAuth BasicAuth, logger *slog.Logger) *Server {
	return NewServerWithMux(service, merchants, basicAuth, logger, http.NewServeMux())
}

// NewServerWithMux creates a new Server with a custom mux for testing.
func NewServerWithMux(service *receipts.Service, merchants *merchant.Identifier, basicAuth BasicAuth, logger *slog.Logger, mux *http.ServeMux) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		service:   service,
		merchants: merchants,
		basicAuth: basicAuth,
		logger:    logger,
		mux:       mux,
	}
	s.registerRoutes()
	return s
}

// authenticate checks basic auth credentials.
func (s *Server) authenticate(r *http.Request) bool {
	if s.basicAuth.Username == "" && s.basicAuth.Password == "" && s.basicAuth.PasswordHash == "" {
		return true // No auth required if not configured
	}

	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Basic ") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}
	if credentials[0] != s.basicAuth.Username {
		return false
	}

	if s.basicAuth.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.basicAuth.PasswordHash), []byte(credentials[1])) == nil
	}
	return credentials[1] == s.basicAuth.Password
}

// requireAuth middleware
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticate(r) {
			w.Header().Set("WWW-Authenticate", `Basic realm="ReceiptWise"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

// registerRoutes registers all API routes on the server's mux.
// Routes must be registered from most specific to least specific.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("POST /v1/receipts/parse", s.requireAuth(s.handleParse))
	s.mux.HandleFunc("GET /v1/receipts/search", s.requireAuth(s.handleSearch))
	s.mux.HandleFunc("GET /v1/receipts/summary", s.requireAuth(s.handleSummary))
	s.mux.HandleFunc("GET /v1/receipts/export", s.requireAuth(s.handleExport))
	s.mux.HandleFunc("GET /v1/receipts/{id}/speakable", s.requireAuth(s.handleSpeakable))
	s.mux.HandleFunc("GET /v1/receipts/{id}", s.requireAuth(s.handleGetReceipt))
	s.mux.HandleFunc("DELETE /v1/receipts/{id}", s.requireAuth(s.handleDeleteReceipt))
	s.mux.HandleFunc("GET /v1/receipts", s.requireAuth(s.handleListReceipts))
	s.mux.HandleFunc("POST /v1/receipts", s.requireAuth(s.handleIngest))

	s.mux.HandleFunc("GET /v1/merchants/suggest", s.requireAuth(s.handleSuggestMerchants))

	s.mux.HandleFunc("GET /healthz", s.handleHealth)
}

// ServeHTTP implements http.Handler so tests can drive the server
// through httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
