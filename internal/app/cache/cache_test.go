package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app-transcript/internal/app/model"
)

var fp = strings.Repeat("0a", 32)

func TestKeyDoesNotCollideAcrossKinds(t *testing.T) {
	audio := Key(model.KindAudio, fp)
	video := Key(model.KindVideo, fp)

	assert.Equal(t, "audio_"+fp, audio)
	assert.Equal(t, "video_"+fp, video)
	assert.NotEqual(t, audio, video)
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache("s1")
	assert.Equal(t, "s1", c.ID())

	_, ok, err := c.Get(ctx, model.KindAudio, fp)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, Entry{Kind: model.KindAudio, Fingerprint: fp, Text: "olá", CreatedAt: time.Unix(2, 0)}))
	require.NoError(t, c.Put(ctx, Entry{Kind: model.KindVideo, Fingerprint: fp, Failed: true, CreatedAt: time.Unix(1, 0)}))

	e, ok, err := c.Get(ctx, model.KindAudio, fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "olá", e.Text)

	e, ok, err = c.Get(ctx, model.KindVideo, fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, e.Failed)
	assert.Empty(t, e.Text)

	entries, err := c.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.KindVideo, entries[0].Kind, "entries are ordered oldest first")
}

func TestMemoryStoreIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)

	a := store.Session("a")
	require.NoError(t, a.Put(ctx, Entry{Kind: model.KindAudio, Fingerprint: fp, Text: "x"}))

	_, ok, err := store.Session("b").Get(ctx, model.KindAudio, fp)
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = store.Session("a").Get(ctx, model.KindAudio, fp)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStoreExpiresIdleSessions(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1000, 0)
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Session("old").Put(ctx, Entry{Kind: model.KindAudio, Fingerprint: fp}))

	now = now.Add(30 * time.Second)
	store.Session("fresh")
	assert.Equal(t, 2, store.Len())

	now = now.Add(45 * time.Second)
	store.Session("fresh")
	assert.Equal(t, 1, store.Len())

	_, ok, err := store.Session("old").Get(ctx, model.KindAudio, fp)
	require.NoError(t, err)
	assert.False(t, ok, "an expired session starts empty")
}

// TestRedisStore runs against a real redis when REDIS_ADDR is set
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()

	store, err := NewRedisStore(ctx, addr, "", 0, time.Minute)
	require.NoError(t, err)
	defer store.Close()

	session := uuid.New().String()
	c := store.Session(session)

	_, ok, err := c.Get(ctx, model.KindAudio, fp)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, Entry{Kind: model.KindAudio, Fingerprint: fp, Text: "olá", CreatedAt: time.Now()}))

	e, ok, err := c.Get(ctx, model.KindAudio, fp)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "olá", e.Text)

	_, ok, err = c.Get(ctx, model.KindVideo, fp)
	require.NoError(t, err)
	assert.False(t, ok)

	entries, err := c.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, ok, err = store.Session(uuid.New().String()).Get(ctx, model.KindAudio, fp)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisKey(t *testing.T) {
	assert.Equal(t, "transcript:s1:audio_"+fp, redisKey("s1", Key(model.KindAudio, fp)))
}
