package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndRecentMessages(t *testing.T) {
	st := NewStore(time.Hour)
	sess := st.Create("s1", "u1")

	for i := 0; i < 15; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		sess.AppendMessage(role, fmt.Sprintf("message %d", i))
	}

	t.Run("default limit returns last 10 oldest first", func(t *testing.T) {
		turns := sess.RecentMessages(0)
		require.Len(t, turns, 10)
		assert.Equal(t, "message 5", turns[0].Content)
		assert.Equal(t, "message 14", turns[9].Content)
	})

	t.Run("limit larger than log returns everything", func(t *testing.T) {
		turns := sess.RecentMessages(100)
		assert.Len(t, turns, 15)
	})

	t.Run("full history keeps timestamps and order", func(t *testing.T) {
		history := sess.History()
		require.Len(t, history, 15)
		assert.Equal(t, RoleUser, history[0].Role)
		assert.False(t, history[0].Timestamp.IsZero())
	})
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	st := NewStore(time.Hour)

	a := st.GetOrCreate("shared", "u1")
	a.AppendMessage(RoleUser, "hello")

	b := st.GetOrCreate("shared", "u2")
	assert.Same(t, a, b)
	assert.Equal(t, 1, b.MessageCount())
	// The original creator's user id wins.
	assert.Equal(t, "u1", b.UserID)
}

func TestGetNeverCreates(t *testing.T) {
	st := NewStore(time.Hour)

	_, ok := st.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 0, st.Len())
}

func TestCreateGeneratesID(t *testing.T) {
	st := NewStore(time.Hour)

	sess := st.Create("", "u1")
	assert.NotEmpty(t, sess.ID)
}

func TestSweepExpired(t *testing.T) {
	st := NewStore(time.Minute)

	stale := st.Create("stale", "u1")
	stale.AppendMessage(RoleUser, "old news")
	fresh := st.Create("fresh", "u1")

	// A sweep well past the timeout removes the stale session only if its
	// last activity is old enough; both are fresh here.
	removed := st.SweepExpired(time.Now())
	assert.Equal(t, 0, removed)
	assert.Equal(t, 2, st.Len())

	removed = st.SweepExpired(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 2, removed)
	assert.Equal(t, 0, st.Len())

	_ = fresh
}

func TestMetadataRoundTrip(t *testing.T) {
	st := NewStore(time.Hour)
	sess := st.Create("s1", "")

	assert.Equal(t, "fallback", sess.GetMetadata("missing", "fallback"))

	sess.SetMetadata("last_analysis", map[string]any{"test_type": "iv_curve"})
	got := sess.GetMetadata("last_analysis", nil)
	require.NotNil(t, got)
	assert.Equal(t, "iv_curve", got.(map[string]any)["test_type"])
}

func TestStats(t *testing.T) {
	st := NewStore(time.Hour)
	st.Create("a", "u1")
	st.Create("b", "u1")
	st.Create("c", "u2")
	st.Create("d", "")

	stats := st.Stats()
	assert.Equal(t, 4, stats.TotalSessions)
	assert.Equal(t, 2, stats.SessionsByUser["u1"])
	assert.Equal(t, 1, stats.SessionsByUser["u2"])
	require.NotNil(t, stats.OldestSession)
	require.NotNil(t, stats.NewestSession)
	assert.False(t, stats.NewestSession.Before(*stats.OldestSession))
}

func TestDelete(t *testing.T) {
	st := NewStore(time.Hour)
	st.Create("gone", "")

	assert.True(t, st.Delete("gone"))
	assert.False(t, st.Delete("gone"))
}
