package safe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/learnloop/lumen/pkg/utils/logging"
)

// Close safely closes an io.Closer and logs any errors.
// It handles nil closers gracefully.
func Close(ctx context.Context, closer io.Closer) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.From(ctx).Error("Failed to close", slog.Any("error", err))
	}
}

// Remove deletes path and logs any error other than the file being already gone.
func Remove(ctx context.Context, path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.From(ctx).Error("Failed to remove", slog.String("path", path), slog.Any("error", err))
	}
}
