package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/learnloop/lumen/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Handle logs the error with goerr values and stacks and reports it to Sentry
// when a Sentry client is configured.
func Handle(ctx context.Context, err error, msg string) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	if hub := sentry.CurrentHub(); hub != nil && hub.Client() != nil {
		hub.CaptureException(err)
	}
}

// HandleHTTP logs err and writes a JSON error response carrying only the
// public message. Internal details never reach the client.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int, publicMsg string) {
	if err == nil {
		return
	}

	if statusCode >= http.StatusInternalServerError {
		Handle(ctx, err, "HTTP error")
	} else {
		logging.From(ctx).Warn("HTTP client error",
			"status", statusCode,
			"error", err.Error(),
		)
	}

	WriteError(w, statusCode, publicMsg)
}

// WriteError writes a JSON error response without logging. Use it for errors
// already reported by a lower layer.
func WriteError(w http.ResponseWriter, statusCode int, publicMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": publicMsg})
}
