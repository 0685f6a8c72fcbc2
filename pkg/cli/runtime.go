package cli

import (
	"context"

	"github.com/learnloop/lumen/pkg/cli/config"
	"github.com/learnloop/lumen/pkg/domain/interfaces"
	"github.com/learnloop/lumen/pkg/service/embedding"
	"github.com/learnloop/lumen/pkg/service/llm"
	"github.com/learnloop/lumen/pkg/service/retrieval"
	"github.com/learnloop/lumen/pkg/service/vectorindex"
	"github.com/learnloop/lumen/pkg/usecase"
	"github.com/learnloop/lumen/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// runtimeConfig is the flag set shared by commands that answer questions or
// accept uploads
type runtimeConfig struct {
	app   config.AppConfig
	repo  config.Repository
	llm   config.LLM
	index config.Index
}

func (rc *runtimeConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, rc.app.Flags()...)
	flags = append(flags, rc.repo.Flags()...)
	flags = append(flags, rc.llm.Flags()...)
	flags = append(flags, rc.index.Flags()...)
	return flags
}

// runtime holds the long-lived components of one process
type runtime struct {
	repo  interfaces.Repository
	index *vectorindex.Index
	uc    *usecase.UseCases
}

func (r *runtime) Close(ctx context.Context) {
	if err := r.repo.Close(); err != nil {
		logging.From(ctx).Error("failed to close repository", "error", err.Error())
	}
}

// setup builds the repository, language model, vector index and use cases.
// Without LLM credentials the use cases run without generator and index, so
// answering and uploading fail with usecase.ErrNotConfigured.
func (rc *runtimeConfig) setup(ctx context.Context) (*runtime, error) {
	if err := rc.app.Configure(); err != nil {
		return nil, goerr.Wrap(err, "failed to load configuration")
	}

	repo, err := rc.repo.Configure(ctx, &rc.app)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize repository")
	}
	rt := &runtime{repo: repo}

	attrs := rc.llm.LogAttrs()
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}
	logging.From(ctx).Info("Runtime configuration", append(args, "app", &rc.app, "repository", &rc.repo, "index", &rc.index)...)

	client, err := rc.llm.Configure(ctx)
	if err != nil {
		rt.Close(ctx)
		return nil, goerr.Wrap(err, "failed to initialize LLM client")
	}
	if client == nil {
		logging.From(ctx).Warn("LLM is not configured, question answering and uploads are disabled")
		rt.uc = usecase.New(repo, usecase.WithTopK(rc.app.Retrieval.TopK))
		return rt, nil
	}

	embedder, err := embedding.New(client, embedding.WithDimension(rc.app.Index.Dimension))
	if err != nil {
		rt.Close(ctx)
		return nil, goerr.Wrap(err, "failed to initialize embedding client")
	}
	generator, err := llm.New(client)
	if err != nil {
		rt.Close(ctx)
		return nil, goerr.Wrap(err, "failed to initialize language model")
	}

	idx, err := rc.index.Configure(ctx, &rc.app, embedder)
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}
	rt.index = idx

	retriever, err := retrieval.New(idx, retrieval.WithDefaultTopK(rc.app.Retrieval.TopK))
	if err != nil {
		rt.Close(ctx)
		return nil, goerr.Wrap(err, "failed to initialize retriever")
	}

	rt.uc = usecase.New(repo,
		usecase.WithGenerator(generator),
		usecase.WithRetriever(retriever),
		usecase.WithVectorIndex(idx),
		usecase.WithTopK(rc.app.Retrieval.TopK),
	)
	return rt, nil
}
