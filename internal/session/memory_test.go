package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGet(t *testing.T) {
	s := NewMemoryStore(time.Minute, time.Minute)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, Session{UserID: 1, Action: ActionEnhance}))

	got, err := s.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, ActionEnhance, got.Action)
	require.False(t, got.CreatedAt.IsZero())
}

func TestMemoryStoreMiss(t *testing.T) {
	s := NewMemoryStore(time.Minute, time.Minute)
	defer s.Close()

	_, err := s.Get(context.Background(), 42)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryStore(20*time.Millisecond, time.Hour)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, Session{UserID: 7, Action: ActionAnalyze}))

	time.Sleep(40 * time.Millisecond)

	_, err := s.Get(ctx, 7)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreGetRefreshesTTL(t *testing.T) {
	s := NewMemoryStore(60*time.Millisecond, time.Hour)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, Session{UserID: 9, Action: ActionFull}))

	// Keep touching the session more often than the TTL.
	for i := 0; i < 4; i++ {
		time.Sleep(30 * time.Millisecond)
		_, err := s.Get(ctx, 9)
		require.NoError(t, err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryStore(time.Minute, time.Minute)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Put(ctx, Session{UserID: 3, Action: ActionStereo}))
	require.NoError(t, s.Delete(ctx, 3))

	_, err := s.Get(ctx, 3)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreSweep(t *testing.T) {
	s := NewMemoryStore(10*time.Millisecond, time.Hour)
	defer s.Close()

	ctx := context.Background()
	for i := int64(1); i <= 5; i++ {
		require.NoError(t, s.Put(ctx, Session{UserID: i, Action: ActionAnalyze}))
	}

	removed := s.sweep(time.Now().Add(time.Second))
	require.Equal(t, 5, removed)
	require.Zero(t, s.Len())
}

func TestValidAction(t *testing.T) {
	for _, a := range []string{"analyze", "enhance", "stereo", "full"} {
		require.True(t, ValidAction(a), a)
	}
	require.False(t, ValidAction("remix"))
	require.False(t, ValidAction(""))
}
