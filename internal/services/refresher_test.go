package services

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingLoader struct{ n atomic.Int32 }

func (c *countingLoader) Load(context.Context) error {
	c.n.Add(1)
	return nil
}

func TestRefresher_ReloadsOnTick(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	loader := &countingLoader{}
	r := NewRefresher(loader, time.Minute, clock)

	require.NoError(t, r.Start(ctx))
	assert.True(t, r.IsRunning())

	waitCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))

	clock.Advance(time.Minute)
	assert.Eventually(t, func() bool { return loader.n.Load() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, r.Stop(ctx))
	assert.False(t, r.IsRunning())
}

func TestRefresher_StartTwice(t *testing.T) {
	ctx := context.Background()
	r := NewRefresher(&countingLoader{}, time.Minute, clockwork.NewFakeClock())

	require.NoError(t, r.Start(ctx))
	defer r.Stop(ctx)
	assert.Error(t, r.Start(ctx))
}

func TestRefresher_InvalidInterval(t *testing.T) {
	r := NewRefresher(&countingLoader{}, 0, nil)
	assert.Error(t, r.Start(context.Background()))
	assert.False(t, r.IsRunning())
}

func TestRefresher_StopWithoutStart(t *testing.T) {
	r := NewRefresher(&countingLoader{}, time.Minute, nil)
	assert.NoError(t, r.Stop(context.Background()))
}
