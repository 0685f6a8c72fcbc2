package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/learnloop/lumen/pkg/domain/interfaces"
	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/learnloop/lumen/pkg/domain/types"
	"github.com/learnloop/lumen/pkg/service/prompt"
	"github.com/learnloop/lumen/pkg/service/sqlguard"
	"github.com/learnloop/lumen/pkg/utils/errutil"
	"github.com/learnloop/lumen/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// ContextPolicy selects where a context-grounded answer takes its context from
type ContextPolicy int

const (
	// ContextPolicyRetrieved uses the top-k contents closest to the question
	ContextPolicyRetrieved ContextPolicy = iota
	// ContextPolicyPinned uses exactly the content named by AnswerInput.ContextID
	ContextPolicyPinned
)

func (p ContextPolicy) String() string {
	switch p {
	case ContextPolicyPinned:
		return "pinned"
	default:
		return "retrieved"
	}
}

// AnswerInput is the request of both answering modes. ContextID is only
// used by Answer.
type AnswerInput struct {
	Question  string
	Persona   string
	ContextID *int64
}

// Policy returns the context policy implied by the input
func (in AnswerInput) Policy() ContextPolicy {
	if in.ContextID != nil {
		return ContextPolicyPinned
	}
	return ContextPolicyRetrieved
}

// requestedPersona is echoed back and logged. Prompt tone uses the resolved
// persona instead.
func (in AnswerInput) requestedPersona() string {
	if p := strings.TrimSpace(in.Persona); p != "" {
		return p
	}
	return types.PersonaFriendly.String()
}

type AskUseCase struct {
	repo      interfaces.Repository
	generator interfaces.Generator
	retriever interfaces.Retriever
	topK      int
}

func NewAskUseCase(repo interfaces.Repository, generator interfaces.Generator, retriever interfaces.Retriever, topK int) *AskUseCase {
	return &AskUseCase{
		repo:      repo,
		generator: generator,
		retriever: retriever,
		topK:      topK,
	}
}

// fail logs the cause and returns the opaque ErrAnswerFailed
func (uc *AskUseCase) fail(ctx context.Context, err error, msg string) error {
	errutil.Handle(ctx, err, msg)
	return goerr.Wrap(ErrAnswerFailed, msg)
}

// Answer generates an answer grounded in stored content
func (uc *AskUseCase) Answer(ctx context.Context, in AnswerInput) (*model.Answer, error) {
	if strings.TrimSpace(in.Question) == "" {
		return nil, goerr.Wrap(ErrEmptyQuestion, "question is required")
	}
	if uc.generator == nil || (in.Policy() == ContextPolicyRetrieved && uc.retriever == nil) {
		return nil, uc.fail(ctx, goerr.Wrap(ErrNotConfigured, "language model or retriever is not configured"), "failed to give answer")
	}

	persona := in.requestedPersona()
	logger := logging.From(ctx).With("policy", in.Policy().String(), PersonaKey, persona)

	contextText, err := uc.buildContext(ctx, in)
	if err != nil {
		return nil, uc.fail(ctx, err, "failed to build context")
	}

	p, err := prompt.BuildContextPrompt(in.Question, prompt.ResolvePersona(persona), contextText)
	if err != nil {
		return nil, uc.fail(ctx, err, "failed to build context prompt")
	}

	text, err := uc.generator.Generate(ctx, p)
	if err != nil {
		return nil, uc.fail(ctx, err, "failed to generate answer")
	}

	if _, err := uc.repo.QueryLog().Create(ctx, &model.QueryLog{
		UserQuestion: in.Question,
		Persona:      persona,
		AIResponse:   text,
	}); err != nil {
		return nil, uc.fail(ctx, err, "failed to save query log")
	}

	logger.Info("Question answered", "context_length", len(contextText))
	return &model.Answer{Persona: persona, Text: text}, nil
}

func (uc *AskUseCase) buildContext(ctx context.Context, in AnswerInput) (string, error) {
	switch in.Policy() {
	case ContextPolicyPinned:
		content, err := uc.repo.Content().Get(ctx, *in.ContextID)
		if errors.Is(err, model.ErrContentNotFound) {
			logging.From(ctx).Warn("Pinned context not found", ContentIDKey, *in.ContextID)
			return "", nil
		}
		if err != nil {
			return "", goerr.Wrap(err, "failed to get pinned content", goerr.V(ContentIDKey, *in.ContextID))
		}
		return content.Body, nil

	default:
		ids, err := uc.retriever.Retrieve(ctx, in.Question, uc.topK)
		if err != nil {
			return "", goerr.Wrap(err, "failed to retrieve contents")
		}
		if len(ids) == 0 {
			return "", nil
		}

		contents, err := uc.repo.Content().GetMany(ctx, ids)
		if err != nil {
			return "", goerr.Wrap(err, "failed to get retrieved contents", goerr.V("ids", ids))
		}

		bodies := make([]string, 0, len(ids))
		for _, id := range ids {
			content, ok := contents[id]
			if !ok {
				logging.From(ctx).Warn("Index references missing content", ContentIDKey, id)
				continue
			}
			bodies = append(bodies, content.Body)
		}
		return strings.Join(bodies, "\n"), nil
	}
}

// AnswerViaSQL translates the question into a read query, runs it and
// explains the rows. A failed explanation degrades to a row count message.
func (uc *AskUseCase) AnswerViaSQL(ctx context.Context, in AnswerInput) (*model.Answer, error) {
	if strings.TrimSpace(in.Question) == "" {
		return nil, goerr.Wrap(ErrEmptyQuestion, "question is required")
	}
	if uc.generator == nil {
		return nil, uc.fail(ctx, goerr.Wrap(ErrNotConfigured, "language model is not configured"), "failed to process NL query")
	}

	persona := in.requestedPersona()
	logger := logging.From(ctx).With(PersonaKey, persona)

	sqlPrompt, err := prompt.BuildSQLGenerationPrompt(in.Question, prompt.SchemaDescription)
	if err != nil {
		return nil, uc.fail(ctx, err, "failed to build SQL prompt")
	}

	raw, err := uc.generator.Generate(ctx, sqlPrompt)
	if err != nil {
		return nil, uc.fail(ctx, err, "failed to generate SQL")
	}

	statement, err := sqlguard.Validate(sqlguard.Extract(raw))
	if err != nil {
		return nil, uc.fail(ctx, goerr.Wrap(err, "rejected generated SQL", goerr.V("raw", raw)), "failed to process NL query")
	}
	logger.Info("Generated SQL query", "sql", statement)

	rows, err := uc.repo.RawQuery().Query(ctx, statement)
	if err != nil {
		return nil, uc.fail(ctx, err, "failed to execute generated SQL")
	}

	text := uc.summarize(ctx, in.Question, statement, rows, persona)

	if _, err := uc.repo.QueryLog().Create(ctx, &model.QueryLog{
		UserQuestion: in.Question,
		Persona:      persona,
		AIResponse:   text,
	}); err != nil {
		return nil, uc.fail(ctx, err, "failed to save query log")
	}

	logger.Info("Question answered via SQL", "rows", len(rows))
	return &model.Answer{Persona: persona, Text: text}, nil
}

func fallbackSummary(rows []model.Row) string {
	return fmt.Sprintf("Found %d results for your query.", len(rows))
}

func (uc *AskUseCase) summarize(ctx context.Context, question, statement string, rows []model.Row, persona string) string {
	p, err := prompt.BuildSummarizationPrompt(question, statement, rows, prompt.ResolvePersona(persona))
	if err != nil {
		logging.From(ctx).Warn("Failed to build summarization prompt", "error", err.Error())
		return fallbackSummary(rows)
	}

	text, err := uc.generator.Generate(ctx, p)
	if err != nil {
		logging.From(ctx).Warn("Failed to summarize query result, using fallback", "error", err.Error(), "rows", len(rows))
		return fallbackSummary(rows)
	}
	return text
}
