package service

import (
	"context"
	"crypto/subtle"
)

// Operation names a gated planning action.
type Operation string

const (
	OpForecast Operation = "forecast"
	OpOptimize Operation = "optimize"
	OpBatch    Operation = "batch"
	OpABC      Operation = "abc"
	OpPlan     Operation = "plan"
)

// Gate decides whether the caller in ctx may run an operation. Authentication
// happens upstream; the service only consumes the verdict.
type Gate interface {
	Allow(ctx context.Context, op Operation) bool
}

// AllowAll permits every operation.
type AllowAll struct{}

func (AllowAll) Allow(context.Context, Operation) bool { return true }

type apiKeyContextKey struct{}

// WithAPIKey attaches the key presented by the caller.
func WithAPIKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, apiKeyContextKey{}, key)
}

// APIKeyFromContext returns the presented key, if any.
func APIKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(apiKeyContextKey{}).(string)
	return key
}

// APIKeyGate permits operations whose context carries the configured key.
// ReadOnly operations are permitted without a key.
type APIKeyGate struct {
	Key      string
	ReadOnly map[Operation]bool
}

func NewAPIKeyGate(key string, readOnly ...Operation) *APIKeyGate {
	g := &APIKeyGate{Key: key, ReadOnly: make(map[Operation]bool, len(readOnly))}
	for _, op := range readOnly {
		g.ReadOnly[op] = true
	}
	return g
}

func (g *APIKeyGate) Allow(ctx context.Context, op Operation) bool {
	if g.Key == "" || g.ReadOnly[op] {
		return true
	}
	presented := APIKeyFromContext(ctx)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(g.Key)) == 1
}
