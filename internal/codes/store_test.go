package codes

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, time.Hour, 0), mr
}

func TestIssueAndVerify(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	code, err := store.Issue(ctx, "bob", "b@x.com")
	require.NoError(t, err)
	require.Len(t, code, 6)
	for _, ch := range code {
		assert.True(t, ch >= '0' && ch <= '9')
	}

	require.NoError(t, store.Verify(ctx, "bob", code))
}

func TestVerifyWrongCode(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	code, err := store.Issue(ctx, "bob", "b@x.com")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	assert.ErrorIs(t, store.Verify(ctx, "bob", wrong), ErrCodeInvalid)

	// the right code still works after a failed attempt
	require.NoError(t, store.Verify(ctx, "bob", code))
}

func TestVerifyIsSingleUse(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	code, err := store.Issue(ctx, "bob", "b@x.com")
	require.NoError(t, err)

	require.NoError(t, store.Verify(ctx, "bob", code))
	assert.ErrorIs(t, store.Verify(ctx, "bob", code), ErrCodeInvalid)
}

func TestVerifyUnknownUsername(t *testing.T) {
	store, _ := newTestStore(t)
	assert.ErrorIs(t, store.Verify(context.Background(), "nobody", "123456"), ErrCodeInvalid)
}

func TestVerifyAttemptCap(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	code, err := store.Issue(ctx, "bob", "b@x.com")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	for i := 0; i < defaultMaxAttempts; i++ {
		assert.ErrorIs(t, store.Verify(ctx, "bob", wrong), ErrCodeInvalid)
	}

	// code dropped after exhausting attempts; even the right one fails now
	assert.ErrorIs(t, store.Verify(ctx, "bob", code), ErrCodeInvalid)
}

func TestCodeExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client, time.Minute, 0)
	ctx := context.Background()

	code, err := store.Issue(ctx, "bob", "b@x.com")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, store.Verify(ctx, "bob", code), ErrCodeInvalid)
}

func TestResendThrottle(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store := NewRedisStore(client, time.Hour, time.Minute)
	ctx := context.Background()

	_, err := store.Issue(ctx, "bob", "b@x.com")
	require.NoError(t, err)

	_, err = store.Issue(ctx, "bob", "b@x.com")
	assert.ErrorIs(t, err, ErrResendThrottled)

	mr.FastForward(2 * time.Minute)
	_, err = store.Issue(ctx, "bob", "b@x.com")
	assert.NoError(t, err)
}

func TestReissueReplacesCode(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.Issue(ctx, "bob", "b@x.com")
	require.NoError(t, err)
	second, err := store.Issue(ctx, "bob", "b@x.com")
	require.NoError(t, err)

	if first != second {
		assert.ErrorIs(t, store.Verify(ctx, "bob", first), ErrCodeInvalid)
	}
	require.NoError(t, store.Verify(ctx, "bob", second))
}
