package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/learnloop/lumen/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdUpload() *cli.Command {
	var title, topic, grade string
	var rc runtimeConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "title",
			Usage:       "Title of the content",
			Required:    true,
			Destination: &title,
		},
		&cli.StringFlag{
			Name:        "topic",
			Usage:       "Topic of the content",
			Required:    true,
			Destination: &topic,
		},
		&cli.StringFlag{
			Name:        "grade",
			Usage:       "Grade of the content (e.g. \"Grade 5\")",
			Required:    true,
			Destination: &grade,
		},
	}
	flags = append(flags, rc.Flags()...)

	return &cli.Command{
		Name:      "upload",
		Aliases:   []string{"u"},
		Usage:     "Store a UTF-8 text file and add it to the vector index",
		ArgsUsage: "<file>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 1 {
				return goerr.New("exactly one file path is required")
			}
			path := c.Args().First()

			// #nosec G304 - path is provided by CLI argument
			body, err := os.ReadFile(path)
			if err != nil {
				return goerr.Wrap(err, "failed to read file", goerr.V("path", path))
			}

			rt, err := rc.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			created, err := rt.uc.Content.Upload(ctx, usecase.UploadInput{
				Title:    title,
				Topic:    topic,
				Grade:    grade,
				FileName: filepath.Base(path),
				Body:     body,
			})
			if errors.Is(err, usecase.ErrIndexingFailed) {
				color.Yellow("Content %d stored but not indexed", created.ID)
				return err
			}
			if err != nil {
				return err
			}

			fmt.Printf("%s content %d (%d chunks)\n", color.GreenString("Uploaded"), created.ID, created.ChunkCount)
			return nil
		},
	}
}
