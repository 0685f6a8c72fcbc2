package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/learnloop/lumen/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdAsk() *cli.Command {
	var persona string
	var nlSQL bool
	var contextID int64
	var rc runtimeConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "persona",
			Aliases:     []string{"p"},
			Usage:       "Tutor persona [friendly|strict|humorous]",
			Value:       "friendly",
			Destination: &persona,
		},
		&cli.BoolFlag{
			Name:        "nl-sql",
			Usage:       "Answer by querying the database instead of retrieved content",
			Destination: &nlSQL,
		},
		&cli.Int64Flag{
			Name:        "context-id",
			Usage:       "Use this content as the only context",
			Destination: &contextID,
		},
	}
	flags = append(flags, rc.Flags()...)

	return &cli.Command{
		Name:      "ask",
		Aliases:   []string{"a"},
		Usage:     "Ask a question from the command line",
		ArgsUsage: "<question>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			question := strings.Join(c.Args().Slice(), " ")
			if strings.TrimSpace(question) == "" {
				return goerr.New("question is required")
			}

			rt, err := rc.setup(ctx)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			in := usecase.AnswerInput{Question: question, Persona: persona}
			if c.IsSet("context-id") {
				in.ContextID = &contextID
			}

			var answer *model.Answer
			if nlSQL {
				answer, err = rt.uc.Ask.AnswerViaSQL(ctx, in)
			} else {
				answer, err = rt.uc.Ask.Answer(ctx, in)
			}
			if err != nil {
				return err
			}

			fmt.Printf("%s %s\n", color.CyanString("[%s]", answer.Persona), answer.Text)
			return nil
		},
	}
}
