// Package mock provides an in-memory llm.Provider for tests.
package mock

import (
	"context"
	"sync"

	"github.com/kkarklins/balss/pkg/provider/llm"
)

// Provider is a configurable test double for [llm.Provider].
// It records every request and replies with a scripted response.
type Provider struct {
	mu       sync.Mutex
	requests []llm.CompletionRequest

	// Response is returned by Complete when Err is nil.
	Response llm.CompletionResponse

	// Err, when non-nil, is returned by Complete instead of Response.
	Err error

	// Delay, when set, makes Complete block until the context is done or
	// the delay channel is closed. Used for timeout tests.
	Delay <-chan struct{}
}

// Compile-time interface check.
var _ llm.Provider = (*Provider)(nil)

// Complete implements llm.Provider.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	p.mu.Unlock()

	if p.Delay != nil {
		select {
		case <-p.Delay:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if p.Err != nil {
		return nil, p.Err
	}
	resp := p.Response
	return &resp, nil
}

// Capabilities implements llm.Provider.
func (p *Provider) Capabilities() llm.ModelCapabilities {
	return llm.ModelCapabilities{ContextWindow: 128_000, MaxOutputTokens: 4_096}
}

// Requests returns a copy of all recorded requests.
func (p *Provider) Requests() []llm.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]llm.CompletionRequest, len(p.requests))
	copy(out, p.requests)
	return out
}
