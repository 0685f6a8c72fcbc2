package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/learnloop/lumen/pkg/usecase"
	"github.com/learnloop/lumen/pkg/utils/errutil"
	"github.com/learnloop/lumen/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// DefaultMaxUploadSize limits the multipart body of an upload request
const DefaultMaxUploadSize int64 = 10 << 20

type AskUseCase interface {
	Answer(ctx context.Context, in usecase.AnswerInput) (*model.Answer, error)
	AnswerViaSQL(ctx context.Context, in usecase.AnswerInput) (*model.Answer, error)
}

type ContentUseCase interface {
	Upload(ctx context.Context, in usecase.UploadInput) (*model.Content, error)
	Topics(ctx context.Context, filter model.ContentFilter) ([]*model.Content, error)
	Metrics(ctx context.Context) (*model.Metrics, error)
	QueryLogs(ctx context.Context) ([]*model.QueryLog, error)
}

type Server struct {
	router        *chi.Mux
	askUC         AskUseCase
	contentUC     ContentUseCase
	maxUploadSize int64
}

type Options func(*Server)

// WithMaxUploadSize overrides DefaultMaxUploadSize
func WithMaxUploadSize(size int64) Options {
	return func(s *Server) {
		if size > 0 {
			s.maxUploadSize = size
		}
	}
}

func New(askUC AskUseCase, contentUC ContentUseCase, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router:        r,
		askUC:         askUC,
		contentUC:     contentUC,
		maxUploadSize: DefaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Middleware
	r.Use(requestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/upload-content", s.uploadContentHandler)
		r.Get("/topics", s.topicsHandler)
		r.Get("/metrix", s.metrixHandler)
		r.Post("/ask", s.askHandler)
		r.Get("/query-log", s.queryLogHandler)
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError, "internal server error")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.From(ctx).Warn("Failed to write response", "error", err.Error())
	}
}
