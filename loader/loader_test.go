package loader

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lexigo/blobstore"
	"github.com/hupe1980/lexigo/codec"
	"github.com/hupe1980/lexigo/collector"
	"github.com/hupe1980/lexigo/extract"
	"github.com/hupe1980/lexigo/index"
	"github.com/hupe1980/lexigo/index/memindex"
	"github.com/hupe1980/lexigo/search"
)

type product struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type countingStore struct {
	*blobstore.MemoryStore
	gets atomic.Int64
	fail error
}

func (s *countingStore) Get(ctx context.Context, name string) ([]byte, error) {
	s.gets.Add(1)
	if s.fail != nil {
		return nil, s.fail
	}
	return s.MemoryStore.Get(ctx, name)
}

func seed(t *testing.T, l *Loader[product], n int) {
	t.Helper()
	for i := range n {
		require.NoError(t, l.Put(context.Background(), "products", strconv.Itoa(i), &product{
			Name:  "p" + strconv.Itoa(i),
			Price: float64(i),
		}))
	}
}

func ref(id string) extract.DocRef { return extract.DocRef{Index: "products", ID: id} }

func TestLoader_BatchLoad(t *testing.T) {
	store := &countingStore{MemoryStore: blobstore.NewMemoryStore()}
	l := New[product](store, WithPrefix("docs/"), WithConcurrency(2))
	seed(t, l, 5)

	names, err := store.List(context.Background(), "docs/products/")
	require.NoError(t, err)
	assert.Len(t, names, 5)
	assert.Equal(t, "docs/products/3", l.Name(ref("3")))

	res, err := l.BatchLoad(context.Background(), []extract.DocRef{ref("1"), ref("3"), ref("1"), ref("missing")})
	require.NoError(t, err)
	assert.Equal(t, int64(3), store.gets.Load(), "duplicates are fetched once")

	v, ok := res.Get(ref("3"))
	require.True(t, ok)
	assert.Equal(t, &product{Name: "p3", Price: 3}, v)

	_, ok = res.Get(ref("missing"))
	assert.False(t, ok, "missing documents load as absent")

	fetches, inFlight := l.Stats()
	assert.Equal(t, int64(3), fetches)
	assert.Equal(t, int64(0), inFlight)
}

func TestLoader_Strict(t *testing.T) {
	l := New[product](blobstore.NewMemoryStore(), WithStrict(true))
	seed(t, l, 1)

	_, err := l.BatchLoad(context.Background(), []extract.DocRef{ref("0"), ref("7")})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "7", nf.Ref.ID)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	_, err = l.Get(context.Background(), ref("8"))
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestLoader_Errors(t *testing.T) {
	ctx := context.Background()
	mem := blobstore.NewMemoryStore()
	require.NoError(t, mem.Put(ctx, "products/bad", []byte("{not json")))

	l := New[product](mem, WithCodec(codec.JSON{}))
	_, err := l.BatchLoad(ctx, []extract.DocRef{ref("bad")})
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "json", de.Codec)

	boom := errors.New("backend unavailable")
	failing := New[product](&countingStore{MemoryStore: mem, fail: boom})
	_, err = failing.BatchLoad(ctx, []extract.DocRef{ref("x")})
	assert.ErrorIs(t, err, boom)

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = l.BatchLoad(canceled, []extract.DocRef{ref("bad")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSession_Cache(t *testing.T) {
	store := &countingStore{MemoryStore: blobstore.NewMemoryStore()}
	l := New[product](store, WithCacheEntries(2), WithCacheMemory(1<<20))
	seed(t, l, 3)

	sess := l.NewSession()
	_, err := sess.BatchLoad(context.Background(), []extract.DocRef{ref("0"), ref("1")})
	require.NoError(t, err)
	res, err := sess.BatchLoad(context.Background(), []extract.DocRef{ref("0")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), store.gets.Load(), "second batch served from the session")

	v, _ := res.Get(ref("0"))
	assert.Equal(t, "p0", v.(*product).Name)

	_, err = sess.BatchLoad(context.Background(), []extract.DocRef{ref("2")})
	require.NoError(t, err)
	assert.Equal(t, 2, sess.Len())
	assert.Positive(t, l.opts.rc.MemoryUsage())

	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close())
	assert.Equal(t, 0, sess.Len())
	assert.Equal(t, int64(0), l.opts.rc.MemoryUsage(), "closing releases cached bytes")

	_, err = sess.BatchLoad(context.Background(), []extract.DocRef{ref("0")})
	assert.ErrorIs(t, err, ErrSessionClosed)

	other := l.NewSession()
	defer other.Close()
	_, err = other.BatchLoad(context.Background(), []extract.DocRef{ref("0")})
	require.NoError(t, err)
	assert.Equal(t, int64(4), store.gets.Load(), "sessions do not share objects")
}

func TestSession_CacheDisabled(t *testing.T) {
	store := &countingStore{MemoryStore: blobstore.NewMemoryStore()}
	l := New[product](store, WithCacheEntries(0))
	seed(t, l, 1)

	sess := l.NewSession()
	for range 2 {
		_, err := sess.BatchLoad(context.Background(), []extract.DocRef{ref("0")})
		require.NoError(t, err)
	}
	assert.Equal(t, int64(2), store.gets.Load())
	assert.Equal(t, int64(0), l.opts.rc.MemoryUsage())
}

func TestLoader_MaterializeThroughSearch(t *testing.T) {
	ctx := context.Background()
	ix := memindex.New("products")
	for i, name := range []string{"brass lamp", "desk lamp", "oak desk"} {
		require.NoError(t, ix.Add(memindex.Document{
			ID:   strconv.Itoa(i),
			Text: map[string]string{"name": name},
		}))
	}
	require.NoError(t, ix.Flush())
	reader := ix.Reader()
	defer reader.Close()

	l := New[product](blobstore.NewMemoryStore())
	seed(t, l, 2) // "oak desk" has no stored object

	plan := search.NewPlan(index.Match{Field: "name", Text: "lamp desk"}, search.WithProjection(extract.EntityProjection{}))
	state, err := search.NewExecutor().Execute(ctx, search.NewRequestContext(reader, plan), 0, 10, collector.ExactCount)
	require.NoError(t, err)

	lr, err := search.Extractable[*product](state).Extract(ctx, 0, 10)
	require.NoError(t, err)

	sess := l.NewSession()
	defer sess.Close()
	final, err := lr.Materialize(ctx, sess)
	require.NoError(t, err)

	require.Len(t, final.Hits, 3)
	var found, absent int
	for _, p := range final.Hits {
		if p == nil {
			absent++
			continue
		}
		found++
		assert.Contains(t, []string{"p0", "p1"}, p.Name)
	}
	assert.Equal(t, 2, found)
	assert.Equal(t, 1, absent)
}

func TestLoader_LocalCachingStore(t *testing.T) {
	store := blobstore.NewCachingStore(blobstore.NewLocalStore(t.TempDir()), 0)
	l := New[product](store, WithPrefix("docs/"), WithCodec(codec.JSON{}))
	seed(t, l, 3)

	refs := []extract.DocRef{ref("0"), ref("2"), ref("9")}
	loaded, err := l.BatchLoad(context.Background(), refs)
	require.NoError(t, err)

	v, ok := loaded.Get(ref("2"))
	require.True(t, ok)
	assert.Equal(t, "p2", v.(*product).Name)

	_, ok = loaded.Get(ref("9"))
	assert.False(t, ok, "missing blobs load as absent")
}
