package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIKeyGate(t *testing.T) {
	gate := NewAPIKeyGate("secret", OpForecast)
	ctx := context.Background()

	assert.True(t, gate.Allow(ctx, OpForecast))
	assert.False(t, gate.Allow(ctx, OpPlan))
	assert.False(t, gate.Allow(WithAPIKey(ctx, "wrong"), OpPlan))
	assert.True(t, gate.Allow(WithAPIKey(ctx, "secret"), OpPlan))
}

func TestAPIKeyGate_NoKeyConfigured(t *testing.T) {
	assert.True(t, NewAPIKeyGate("").Allow(context.Background(), OpPlan))
	assert.True(t, AllowAll{}.Allow(context.Background(), OpBatch))
}
