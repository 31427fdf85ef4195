package provider

import (
	"context"
	"fmt"

	"github.com/promptgate/promptgate/server/metrics"
	"go.uber.org/zap"
)

// Invoker wraps a Completer and folds every failure into placeholder text
// of the form "[OpenAI error: <message>]". The placeholder is relayed to
// the caller as if it were a successful completion; callers can only
// distinguish it by string-matching the prefix. The underlying error is
// logged and counted so operators still see failures.
type Invoker struct {
	completer Completer
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// NewInvoker creates an invoker. The metrics parameter may be nil.
func NewInvoker(completer Completer, logger *zap.Logger, m *metrics.Metrics) *Invoker {
	return &Invoker{
		completer: completer,
		logger:    logger,
		metrics:   m,
	}
}

// Invoke obtains a completion for the composite input. It never returns
// an error: failures come back as placeholder text.
func (i *Invoker) Invoke(ctx context.Context, role, input string) string {
	output, err := i.completer.Complete(ctx, role, input)
	if err != nil {
		i.logger.Error("completion failed, returning placeholder",
			zap.Error(err),
		)
		if i.metrics != nil {
			i.metrics.UpstreamErrors.WithLabelValues("completion").Inc()
		}
		return fmt.Sprintf("[OpenAI error: %s]", err.Error())
	}
	return output
}
