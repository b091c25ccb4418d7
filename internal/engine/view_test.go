package engine

import (
	"context"
	"testing"
	"time"

	"finanzas/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	now := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	v, err := Compute(context.Background(), 7, marchSnapshot(), Options{Now: now, Mode: ModeThisMonth})
	require.NoError(t, err)

	assert.Equal(t, uint64(7), v.Version)
	assert.True(t, v.Balance.Equal(dec("50")))
	assert.Equal(t, "+$50,00", v.Display)
	assert.Len(t, v.Filtered, 2)
	assert.Len(t, v.Groups.Expenses, 2)
	assert.Len(t, v.Monthly, 2)
	assert.Len(t, v.Recent, 3)
	assert.Equal(t, 3, v.Total)

	page, pages, err := v.Page(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	assert.Equal(t, v.Filtered[1:], page)
}

func TestComputeDefaultsToAll(t *testing.T) {
	v, err := Compute(context.Background(), 1, marchSnapshot(), Options{})
	require.NoError(t, err)
	assert.Equal(t, ModeAll, v.Mode)
	assert.Len(t, v.Filtered, 3)
}

func TestComputeRejectsUnknownMode(t *testing.T) {
	_, err := Compute(context.Background(), 1, marchSnapshot(), Options{Mode: "weekly"})
	assert.ErrorIs(t, err, core.ErrInvalidFilterMode)
}

func TestComputeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Compute(ctx, 1, marchSnapshot(), Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
