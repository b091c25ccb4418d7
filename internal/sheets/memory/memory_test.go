package memory

import (
	"context"
	"testing"

	"finanzas/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirrorReplacesOwnerSet(t *testing.T) {
	m := New()
	ctx := context.Background()

	_, ok := m.Owner("alice")
	assert.False(t, ok)

	require.NoError(t, m.ReplaceOwner(ctx, "alice", []core.Transaction{{ID: "1"}, {ID: "2"}}))
	require.NoError(t, m.ReplaceOwner(ctx, "alice", []core.Transaction{{ID: "3"}}))

	got, ok := m.Owner("alice")
	require.True(t, ok)
	assert.Equal(t, []core.Transaction{{ID: "3"}}, got)
	assert.Equal(t, 2, m.Writes())
}

func TestMirrorHonoursCancelledContext(t *testing.T) {
	m := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.ReplaceOwner(ctx, "alice", nil), context.Canceled)
	assert.Zero(t, m.Writes())
}
