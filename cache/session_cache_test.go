package cache

import (
	"testing"
	"time"

	"github.com/mohitkumar/checkin/generator"
	"github.com/mohitkumar/checkin/wizard"
	"github.com/stretchr/testify/require"
)

func TestSessionCache(t *testing.T) {
	ch := NewSessionCache(time.Minute)
	w := wizard.New(generator.New())
	ch.SaveSession(w)
	require.Equal(t, 1, ch.Count())

	got, ok := ch.GetSession(w.Id())
	require.True(t, ok)
	require.Same(t, w, got)

	ch.DeleteSession(w.Id())
	_, ok = ch.GetSession(w.Id())
	require.False(t, ok)
}

func TestSessionCacheExpiry(t *testing.T) {
	ch := NewSessionCache(20 * time.Millisecond)
	w := wizard.New(generator.New())
	ch.SaveSession(w)
	require.Eventually(t, func() bool {
		_, ok := ch.GetSession(w.Id())
		return !ok
	}, time.Second, 30*time.Millisecond)
}
