// Package provider implements the completion backend for the gateway:
// a client for the OpenAI Responses API and the invoker that folds
// upstream failures into placeholder text.
package provider

import "context"

// Completer submits a composite input to a completion backend and returns
// the extracted text. Implementations return an error for transport or
// API failures; the Invoker decides how errors surface to callers.
type Completer interface {
	Complete(ctx context.Context, role, input string) (string, error)
}
