// Package mocks provides test doubles for the gateway.
package mocks

import (
	"context"
)

// Completer implements provider.Completer for testing. It records the last
// role and input it was called with and delegates to CompleteFunc.
//
// Example usage:
//
//	mock := &mocks.Completer{CompleteFunc: func(ctx context.Context, role, input string) (string, error) {
//	    return "mocked completion", nil
//	}}
type Completer struct {
	CompleteFunc func(ctx context.Context, role, input string) (string, error)

	LastRole  string
	LastInput string
	Calls     int
}

// Complete implements provider.Completer.
func (m *Completer) Complete(ctx context.Context, role, input string) (string, error) {
	m.Calls++
	m.LastRole = role
	m.LastInput = input
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, role, input)
	}
	return "", nil
}
