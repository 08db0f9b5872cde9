package gstore_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xelis-go/funxyvm/internal/gasm"
	"github.com/xelis-go/funxyvm/internal/gstore"
	"github.com/xelis-go/funxyvm/internal/gvalue"
	"github.com/xelis-go/funxyvm/internal/gwire"
)

func buildWireBytes(t *testing.T) []byte {
	t.Helper()
	mb := gasm.NewModule()
	n := mb.Constant(gvalue.DefaultCell(gvalue.U32(7)))
	cb := mb.Chunk(0, 0, false)
	chunkID := cb.Const(n).Return().Build()
	mb.MarkEntry(chunkID)

	data, err := gwire.Encode(mb.Build())
	require.NoError(t, err, "encoding fixture module")
	return data
}

func TestContentHashIsStableAndSensitiveToBytes(t *testing.T) {
	a := buildWireBytes(t)
	require.Equal(t, gstore.ContentHash(a), gstore.ContentHash(a), "hashing the same bytes twice should be stable")

	b := append([]byte{}, a...)
	b[len(b)-1] ^= 0xFF
	require.NotEqual(t, gstore.ContentHash(a), gstore.ContentHash(b), "flipping a byte should change the content hash")
}

func TestCachePutGetRoundTrip(t *testing.T) {
	cache, err := gstore.Open(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	data := buildWireBytes(t)
	hash := gstore.ContentHash(data)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, hash)
	require.NoError(t, err)
	require.False(t, ok, "expected a cache miss before Put")

	require.NoError(t, cache.Put(ctx, hash, data))

	mod, ok, err := cache.Get(ctx, hash)
	require.NoError(t, err)
	require.True(t, ok, "expected a cache hit after Put")
	require.True(t, mod.IsEntry(0), "round-tripped module should still mark chunk 0 as an entry")

	first, ok := mod.Constant(0)
	require.True(t, ok)
	require.Equal(t, uint64(7), first.Prim.AsU64())
}

func TestCachePutOverwritesExistingEntry(t *testing.T) {
	cache, err := gstore.Open(":memory:")
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	data := buildWireBytes(t)
	hash := gstore.ContentHash(data)

	require.NoError(t, cache.Put(ctx, hash, data), "first Put")
	require.NoError(t, cache.Put(ctx, hash, data), "re-storing under the same hash")

	_, ok, err := cache.Get(ctx, hash)
	require.NoError(t, err)
	require.True(t, ok, "expected the entry to still be retrievable after overwrite")
}
