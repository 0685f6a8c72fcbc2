package http

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/learnloop/lumen/pkg/usecase"
	"github.com/learnloop/lumen/pkg/utils/errutil"
	"github.com/m-mizutani/goerr/v2"
)

// askRequest is read from query parameters, or from a JSON body when the
// request carries one
type askRequest struct {
	Question  string `json:"question"`
	Persona   string `json:"persona"`
	NLSQL     bool   `json:"nl_sql"`
	ContextID *int64 `json:"context_id"`
}

type askResponse struct {
	Persona string `json:"persona"`
	Answer  string `json:"answer"`
}

func parseAskRequest(r *http.Request) (*askRequest, error) {
	var req askRequest

	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, goerr.Wrap(err, "failed to decode ask request")
		}
		return &req, nil
	}

	q := r.URL.Query()
	req.Question = q.Get("question")
	req.Persona = q.Get("persona")

	if v := q.Get("nl_sql"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid nl_sql", goerr.V("nl_sql", v))
		}
		req.NLSQL = b
	}

	if v := q.Get("context_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid context_id", goerr.V("context_id", v))
		}
		req.ContextID = &id
	}

	return &req, nil
}

func (s *Server) askHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := parseAskRequest(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest, "invalid ask request")
		return
	}

	in := usecase.AnswerInput{
		Question:  req.Question,
		Persona:   req.Persona,
		ContextID: req.ContextID,
	}

	var answer *model.Answer
	failMsg := "failed to give answer"
	if req.NLSQL {
		failMsg = "Failed to process NL query"
		answer, err = s.askUC.AnswerViaSQL(ctx, in)
	} else {
		answer, err = s.askUC.Answer(ctx, in)
	}

	switch {
	case errors.Is(err, usecase.ErrEmptyQuestion):
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest, "question is required")
		return
	case errors.Is(err, usecase.ErrAnswerFailed):
		// already reported by the usecase
		errutil.WriteError(w, http.StatusInternalServerError, failMsg)
		return
	case err != nil:
		errutil.HandleHTTP(ctx, w, err, http.StatusInternalServerError, failMsg)
		return
	}

	writeJSON(ctx, w, http.StatusOK, askResponse{
		Persona: answer.Persona,
		Answer:  answer.Text,
	})
}
