package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"

	httpctrl "github.com/learnloop/lumen/pkg/controller/http"
	"github.com/learnloop/lumen/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var maxUploadSize int64
	var rc runtimeConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("LUMEN_ADDR"),
			Destination: &addr,
		},
		&cli.Int64Flag{
			Name:        "max-upload-size",
			Usage:       "Maximum upload request size in bytes",
			Value:       httpctrl.DefaultMaxUploadSize,
			Sources:     cli.EnvVars("LUMEN_MAX_UPLOAD_SIZE"),
			Destination: &maxUploadSize,
		},
	}

	// Add shared config flags
	flags = append(flags, rc.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			// A corrupt index aborts startup here
			rt, err := rc.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(rt.uc.Ask, rt.uc.Content, httpctrl.WithMaxUploadSize(maxUploadSize)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
