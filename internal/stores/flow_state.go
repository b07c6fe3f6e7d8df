package stores

import (
	"context"
	"errors"
	"fmt"
)

// ErrFlowStateMissing is returned when neither the ephemeral token nor the
// server session yields a flow email. The gated step must not proceed.
var ErrFlowStateMissing = errors.New("no flow state for this step")

// FlowSource identifies which of the two sources resolved a flow email.
type FlowSource string

const (
	// SourceToken means the ephemeral client-side token resolved the email.
	SourceToken FlowSource = "token"
	// SourceServer means the server-session mirror resolved the email.
	SourceServer FlowSource = "server"
)

// TokenConsumer consumes a single-use flow token and returns the email it
// carries. Implemented by flowtoken.Manager.
type TokenConsumer interface {
	Consume(token, purpose string) (string, error)
}

// FlowStateResolver performs the two-source lookup for multi-step flows:
// the ephemeral in-memory token wins when present; otherwise the
// authoritative server-session mirror is consulted.
type FlowStateResolver struct {
	tokens   TokenConsumer
	fallback func(ctx context.Context, key string) (string, error)
}

// NewFlowStateResolver wires the resolver. fallback may be nil, in which
// case only tokens resolve.
func NewFlowStateResolver(tokens TokenConsumer, fallback func(ctx context.Context, key string) (string, error)) *FlowStateResolver {
	return &FlowStateResolver{tokens: tokens, fallback: fallback}
}

// Resolve returns the email authorizing the next flow step. A non-empty
// token is always tried first and, being single-use, is consumed by the
// attempt whether or not the caller completes the step.
func (r *FlowStateResolver) Resolve(ctx context.Context, token, purpose string) (string, FlowSource, error) {
	if token != "" && r.tokens != nil {
		email, err := r.tokens.Consume(token, purpose)
		if err == nil {
			return email, SourceToken, nil
		}
		// Fall through: an expired or replayed token still allows the
		// server mirror to authorize the step.
	}

	if r.fallback == nil {
		return "", "", ErrFlowStateMissing
	}
	email, err := r.fallback(ctx, purpose)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrFlowStateMissing, err)
	}
	if email == "" {
		return "", "", ErrFlowStateMissing
	}
	return email, SourceServer, nil
}
