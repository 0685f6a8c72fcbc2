package memory

import (
	"context"

	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type rawQueryExecutor struct{}

func (x *rawQueryExecutor) Query(ctx context.Context, statement string) ([]model.Row, error) {
	return nil, goerr.Wrap(ErrRawQueryUnsupported, "memory repository cannot execute SQL",
		goerr.T(model.ErrTagStore))
}
