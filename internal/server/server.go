package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"charpix/internal/blobstore"
	"charpix/internal/gallery"
	"charpix/internal/store"
)

const (
	apiTokenEnvKey    = "CHARPIX_API_TOKEN"
	allowRemoteEnvKey = "CHARPIX_ALLOW_REMOTE"
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second

	loginMaxFailures = 5
	loginWindow      = time.Minute
	loginBlockedFor  = 5 * time.Minute

	defaultUploadConcurrency  = 4
	defaultMultipartMaxMemory = 1 << 20 // 1 MiB
)

// Options configures a Server.
type Options struct {
	ProjectPrefix      string
	PublicBaseURL      string
	MaxUploadBytes     int64
	MultipartMaxMemory int64
	AllowedFormats     []string
	UploadConcurrency  int
}

// Server wraps HTTP handlers for the charpix API.
type Server struct {
	addr               string
	store              *store.Store
	service            *GalleryService
	authService        *AuthService
	logger             *slog.Logger
	apiToken           string
	projectPrefix      string
	multipartMaxMemory int64
	maxUploadBytes     int64
	loginLimiter       *loginRateLimiter
	uploadLimiter      chan struct{}
}

// New creates a new server instance.
func New(addr string, st *store.Store, blobs blobstore.BlobStore, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	manager := gallery.NewBlobManager(blobs, opts.MaxUploadBytes, opts.AllowedFormats)
	galleryStore := gallery.NewStore(st, mediaBaseURL(opts.PublicBaseURL))
	service := NewGalleryService(st, galleryStore, manager, logger)

	concurrency := opts.UploadConcurrency
	if concurrency <= 0 {
		concurrency = defaultUploadConcurrency
	}
	multipartMemory := opts.MultipartMaxMemory
	if multipartMemory <= 0 {
		multipartMemory = defaultMultipartMaxMemory
	}

	return &Server{
		addr:               addr,
		store:              st,
		service:            service,
		authService:        NewAuthService(st),
		logger:             logger,
		apiToken:           strings.TrimSpace(os.Getenv(apiTokenEnvKey)),
		projectPrefix:      opts.ProjectPrefix,
		multipartMaxMemory: multipartMemory,
		maxUploadBytes:     manager.MaxBytes(),
		loginLimiter:       newLoginRateLimiter(loginMaxFailures, loginWindow, loginBlockedFor),
		uploadLimiter:      make(chan struct{}, concurrency),
	}
}

// Service exposes the gallery service, primarily for tests.
func (s *Server) Service() *GalleryService {
	return s.service
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.log().Info("starting server", "addr", s.addr)
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	return server.ListenAndServe()
}

// ListenAddr converts a base API URL into a listen address.
func ListenAddr(apiURL string) (string, error) {
	if apiURL == "" {
		return "", fmt.Errorf("api url is required")
	}
	if u, err := url.Parse(apiURL); err == nil && u.Host != "" {
		host := u.Hostname()
		if !isAllowedListenHost(host) {
			return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
		}
		return u.Host, nil
	}

	host, _, err := net.SplitHostPort(apiURL)
	if err == nil && !isAllowedListenHost(host) {
		return "", fmt.Errorf("remote listen host %q requires %s=true", host, allowRemoteEnvKey)
	}

	return apiURL, nil
}

func isAllowedListenHost(host string) bool {
	if host == "" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(allowRemoteEnvKey)), "true") {
		return true
	}
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func mediaBaseURL(publicBaseURL string) string {
	base := strings.TrimRight(strings.TrimSpace(publicBaseURL), "/")
	return base + "/media"
}

func (s *Server) acquireLimiter(limiter chan struct{}, w http.ResponseWriter, r *http.Request, name string) bool {
	if limiter == nil {
		return true
	}
	select {
	case limiter <- struct{}{}:
		return true
	default:
		err := apiError{
			status:  http.StatusTooManyRequests,
			code:    "resource_exhausted",
			errCode: ErrCodeResourceExhausted,
			err:     fmt.Errorf("too many concurrent %s requests", name),
		}
		s.writeErrorReq(w, r, http.StatusTooManyRequests, err)
		return false
	}
}

func (s *Server) releaseLimiter(limiter chan struct{}) {
	if limiter == nil {
		return
	}
	select {
	case <-limiter:
	default:
	}
}

func (s *Server) log() *slog.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return slog.Default()
}
