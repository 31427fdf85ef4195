package processing

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// Assembler produces the composite input string submitted to the
// completion service: the non-empty members of [guardrail directive,
// context block, caller prompt] joined with Separator. Resource failures
// degrade to "prompt only" without ever reaching the caller.
type Assembler struct {
	resources *ResourceLoader
	logger    *zap.Logger
	encoder   *tiktoken.Tiktoken
}

// NewAssembler creates an assembler over the given resource loader.
// The token encoder is used only for diagnostic logging; if it cannot be
// initialized the assembler works without token estimates.
func NewAssembler(resources *ResourceLoader, logger *zap.Logger) *Assembler {
	encoder, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		logger.Warn("token encoder unavailable, skipping token estimates", zap.Error(err))
		encoder = nil
	}
	return &Assembler{
		resources: resources,
		logger:    logger,
		encoder:   encoder,
	}
}

// Assemble builds the composite input for a caller prompt. The guardrail
// and context resources are loaded fresh for each call; an empty guardrail
// or empty context contributes no separator.
func (a *Assembler) Assemble(prompt string) string {
	guardrail := a.resources.Guardrail()
	entries := a.resources.Context()

	infos := make([]string, 0, len(entries))
	for _, entry := range entries {
		infos = append(infos, entry.Info)
	}
	contextBlock := strings.Join(infos, "\n")

	parts := make([]string, 0, 3)
	for _, part := range []string{guardrail, contextBlock, prompt} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	composite := strings.Join(parts, Separator)

	fields := []zap.Field{
		zap.Int("context_entries", len(entries)),
		zap.Bool("guardrail_present", guardrail != ""),
		zap.Int("composite_length", len(composite)),
	}
	if a.encoder != nil {
		fields = append(fields, zap.Int("token_estimate", len(a.encoder.Encode(composite, nil, nil))))
	}
	a.logger.Debug("assembled composite input", fields...)

	return composite
}
