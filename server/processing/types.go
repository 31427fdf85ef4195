// Package processing implements prompt assembly for the gateway: loading
// the externally-owned context and guardrail resources and composing them
// with the caller's prompt into the single input submitted upstream.
package processing

// ContextEntry is a static text snippet injected into every prompt to give
// the model background information. Entries have no identity beyond their
// position in the file.
type ContextEntry struct {
	Info string `json:"info"`
}

// GuardrailDirective is a static instruction prepended to steer model
// behavior.
type GuardrailDirective struct {
	Prompt string `json:"prompt"`
}

// Separator joins the non-empty members of [guardrail, context block,
// prompt] into the composite input.
const Separator = "\n---\n"

const (
	contextFile   = "context.json"
	guardrailFile = "guardrail.json"
)
