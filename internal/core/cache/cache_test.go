package cache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := New(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

type row struct {
	ID   uint   `json:"id"`
	Name string `json:"nombre"`
}

func TestGetOrLoadJSONCachesUntilInvalidated(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	load := func(context.Context) ([]row, error) {
		calls++
		return []row{{ID: uint(calls), Name: "Ana"}}, nil
	}

	got, err := GetOrLoadJSON(c, ctx, "usuarios:all", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, []row{{ID: 1, Name: "Ana"}}, got)

	got, err = GetOrLoadJSON(c, ctx, "usuarios:all", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, uint(1), got[0].ID)
	assert.Equal(t, 1, calls)

	require.NoError(t, c.Invalidate(ctx, "usuarios:all"))
	got, err = GetOrLoadJSON(c, ctx, "usuarios:all", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, uint(2), got[0].ID)
}

func TestGetOrLoadPropagatesLoadError(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("db down")
	_, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(context.Context) ([]byte, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestGetOrLoadFallsBackWhenRedisDown(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	c := New(mr.Addr(), "", 0)
	defer c.Close()
	mr.Close()

	b, err := c.GetOrLoad(context.Background(), "k", time.Minute, func(context.Context) ([]byte, error) {
		return []byte(`[]`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
}

func TestOrphanLedgerNewestFirstAndTrimmed(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	l := NewOrphanLedger(c, OrphanKey, 3)

	for i := 1; i <= 5; i++ {
		require.NoError(t, l.Record(ctx, fmt.Sprintf("https://host/usuarios/%d.jpg", i), "insert failed"))
	}

	got, err := l.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "https://host/usuarios/5.jpg", got[0].URL)
	assert.Equal(t, "https://host/usuarios/3.jpg", got[2].URL)
	assert.Equal(t, "insert failed", got[0].Reason)

	got, err = l.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestGetOrLoadJSONReloadsOnCorruptEntry(t *testing.T) {
	c, mr := newTestCache(t)
	require.NoError(t, mr.Set("usuarios:all", "{not json"))

	calls := 0
	got, err := GetOrLoadJSON(c, context.Background(), "usuarios:all", time.Minute, func(context.Context) ([]row, error) {
		calls++
		return []row{{ID: 9, Name: "Luis"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []row{{ID: 9, Name: "Luis"}}, got)
	assert.Equal(t, 1, calls)
	assert.False(t, mr.Exists("usuarios:all"))
}

func TestOrphanLedgerSharedBetweenWriterAndReader(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	writer := NewOrphanLedger(c, OrphanKey, 10)
	require.NoError(t, writer.Record(ctx, "https://host/usuarios/x.jpg", "insert failed"))
	assert.True(t, mr.Exists(OrphanKey))

	// admin 进程用自己的实例读同一个 key
	reader := NewOrphanLedger(New(mr.Addr(), "", 0), OrphanKey, 10)
	got, err := reader.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://host/usuarios/x.jpg", got[0].URL)
}

func TestGetOrLoadDetachesLoadFromCallerCancel(t *testing.T) {
	c, mr := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, err := c.GetOrLoad(ctx, "usuarios:all", time.Minute, func(lctx context.Context) ([]byte, error) {
		if err := lctx.Err(); err != nil {
			return nil, err
		}
		_, ok := lctx.Deadline()
		assert.True(t, ok)
		return []byte(`[]`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(b))
	assert.True(t, mr.Exists("usuarios:all"))
}

func TestGetOrLoadWaitersSurviveFirstCallerCancel(t *testing.T) {
	c, _ := newTestCache(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	load := func(lctx context.Context) ([]byte, error) {
		close(entered)
		<-release
		if err := lctx.Err(); err != nil {
			return nil, err
		}
		return []byte(`[1]`), nil
	}

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.GetOrLoad(first, "k", time.Minute, load)
		firstErr <- err
	}()
	<-entered

	waiterErr := make(chan error, 1)
	go func() {
		b, err := c.GetOrLoad(context.Background(), "k", time.Minute, load)
		if err == nil && string(b) != "[1]" {
			err = errors.New("unexpected payload " + string(b))
		}
		waiterErr <- err
	}()

	cancel()
	time.Sleep(20 * time.Millisecond)
	close(release)

	assert.NoError(t, <-firstErr)
	assert.NoError(t, <-waiterErr)
}
