package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/learnloop/lumen/pkg/usecase"
	"github.com/learnloop/lumen/pkg/utils/errutil"
	"github.com/learnloop/lumen/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

type uploadResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type topicResponse struct {
	ID    int64  `json:"id"`
	Topic string `json:"topic"`
	Grade string `json:"grade"`
	Title string `json:"title"`
}

type metrixResponse struct {
	TotalTopics       int `json:"total_topics"`
	TotalFileUploaded int `json:"total_file_uploaded"`
	TotalQueries      int `json:"total_queries"`
}

type queryLogResponse struct {
	ID           int64     `json:"id"`
	UserQuestion string    `json:"user_question"`
	Persona      string    `json:"persona"`
	AIResponse   string    `json:"ai_response"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *Server) uploadContentHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)

	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse multipart form"), http.StatusBadRequest, "invalid upload request")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "file is required"), http.StatusBadRequest, "file is required")
		return
	}
	defer safe.Close(ctx, file)

	body, err := io.ReadAll(file)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read uploaded file"), http.StatusBadRequest, "invalid upload request")
		return
	}

	created, err := s.contentUC.Upload(ctx, usecase.UploadInput{
		Title:    r.FormValue("title"),
		Topic:    r.FormValue("topic"),
		Grade:    r.FormValue("grade"),
		FileName: header.Filename,
		Body:     body,
	})
	switch {
	case errors.Is(err, usecase.ErrInvalidContent):
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest, "title, topic, grade and a non-empty UTF-8 text file are required")
		return
	case errors.Is(err, usecase.ErrIndexingFailed):
		// already reported by the usecase
		errutil.WriteError(w, http.StatusInternalServerError, "failed to upload content")
		return
	case err != nil:
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, "failed to upload content")
		return
	}

	writeJSON(ctx, w, http.StatusOK, uploadResponse{
		Message: "Content uploaded successfully",
		ID:      created.ID,
	})
}

func (s *Server) topicsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	contents, err := s.contentUC.Topics(ctx, model.ContentFilter{
		Grade:         q.Get("grade"),
		TitleContains: q.Get("title"),
	})
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, "failed to get topics")
		return
	}

	resp := make([]topicResponse, len(contents))
	for i, c := range contents {
		resp[i] = topicResponse{
			ID:    c.ID,
			Topic: c.Topic,
			Grade: c.Grade,
			Title: c.Title,
		}
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

func (s *Server) metrixHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	m, err := s.contentUC.Metrics(ctx)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, "failed to get metrix")
		return
	}

	writeJSON(ctx, w, http.StatusOK, metrixResponse{
		TotalTopics:       m.TotalTopics,
		TotalFileUploaded: m.TotalFilesUploaded,
		TotalQueries:      m.TotalQueries,
	})
}

func (s *Server) queryLogHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	logs, err := s.contentUC.QueryLogs(ctx)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, "failed to get query log")
		return
	}

	resp := make([]queryLogResponse, len(logs))
	for i, l := range logs {
		resp[i] = queryLogResponse{
			ID:           l.ID,
			UserQuestion: l.UserQuestion,
			Persona:      l.Persona,
			AIResponse:   l.AIResponse,
			CreatedAt:    l.CreatedAt,
		}
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}
