package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/docqa-backend/internal/data/repos/testutil"
	types "github.com/yungbote/docqa-backend/internal/domain"
	"github.com/yungbote/docqa-backend/internal/platform/textsplit"
	"github.com/yungbote/docqa-backend/internal/platform/vectorstore/memory"
)

func newTestRegistry(t *testing.T) (IndexRegistry, *bagEmbedder, *memory.Store) {
	t.Helper()
	emb := &bagEmbedder{}
	store := memory.New()
	return NewIndexRegistry(testutil.Logger(t), emb, store, textsplit.Default(), 3), emb, store
}

func longText() string {
	var b strings.Builder
	topics := []string{"revenue grew in the first quarter.", "costs fell sharply.", "the board approved a dividend."}
	for i := 0; i < 180; i++ {
		b.WriteString(topics[i%len(topics)])
		b.WriteString(" ")
	}
	return b.String()
}

func TestBuildIndexesEveryChunkInOrder(t *testing.T) {
	r, emb, store := newTestRegistry(t)
	ctx := context.Background()
	doc := &types.Document{ID: 7, Text: longText()}

	idx, err := r.Build(ctx, doc)
	require.NoError(t, err)
	want := textsplit.Default().Split(doc.Text)
	assert.Equal(t, len(want), idx.ChunkCount)
	assert.Equal(t, int64(len(want)), emb.docCalls.Load())
	assert.Equal(t, len(want), store.Len(idx.Namespace))

	got, err := r.Search(ctx, idx, "dividend approved by the board", len(want))
	require.NoError(t, err)
	require.Len(t, got, len(want))
	byIndex := map[int]string{}
	for _, c := range got {
		byIndex[c.Index] = c.Text
	}
	for i, c := range want {
		assert.Equal(t, c, byIndex[i], "chunk %d", i)
	}
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Score, got[i].Score)
	}
}

func TestSearchDefaultsToThree(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	ctx := context.Background()
	idx, err := r.Build(ctx, &types.Document{ID: 1, Text: longText()})
	require.NoError(t, err)
	require.Greater(t, idx.ChunkCount, 3)

	got, err := r.Search(ctx, idx, "costs", 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultTopK)
}

func TestSearchFewerChunksThanK(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	ctx := context.Background()
	idx, err := r.Build(ctx, &types.Document{ID: 1, Text: "Revenue grew 10% in Q1."})
	require.NoError(t, err)

	got, err := r.Search(ctx, idx, "revenue", 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Revenue grew 10% in Q1.", got[0].Text)
}

func TestBuildReplacesPreviousIndex(t *testing.T) {
	r, _, store := newTestRegistry(t)
	ctx := context.Background()
	first, err := r.Build(ctx, &types.Document{ID: 3, Text: "old text"})
	require.NoError(t, err)
	second, err := r.Build(ctx, &types.Document{ID: 3, Text: "new text"})
	require.NoError(t, err)

	assert.NotEqual(t, first.Namespace, second.Namespace)
	assert.Zero(t, store.Len(first.Namespace))
	cur, ok := r.Get(3)
	require.True(t, ok)
	assert.Equal(t, second.Namespace, cur.Namespace)
}

func TestBuildEmbeddingFailureKeepsNoEntry(t *testing.T) {
	r, emb, _ := newTestRegistry(t)
	emb.failDocs.Store(true)
	_, err := r.Build(context.Background(), &types.Document{ID: 5, Text: longText()})
	require.ErrorIs(t, err, ErrEmbedding)
	_, ok := r.Get(5)
	assert.False(t, ok)
}

func TestEnsureReusesExistingIndex(t *testing.T) {
	r, emb, _ := newTestRegistry(t)
	ctx := context.Background()
	doc := &types.Document{ID: 9, Text: "Revenue grew 10% in Q1."}

	a, err := r.Ensure(ctx, doc)
	require.NoError(t, err)
	calls := emb.docCalls.Load()
	b, err := r.Ensure(ctx, doc)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, calls, emb.docCalls.Load())
}

func TestConcurrentEnsureSameDocument(t *testing.T) {
	r, _, store := newTestRegistry(t)
	ctx := context.Background()
	doc := &types.Document{ID: 11, Text: longText()}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Ensure(ctx, doc)
		}()
	}
	wg.Wait()

	idx, ok := r.Get(11)
	require.True(t, ok)
	assert.Equal(t, idx.ChunkCount, store.Len(idx.Namespace))
	got, err := r.Search(ctx, idx, "costs", 3)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestRemoveAndClose(t *testing.T) {
	r, _, store := newTestRegistry(t)
	ctx := context.Background()
	a, err := r.Build(ctx, &types.Document{ID: 1, Text: "alpha"})
	require.NoError(t, err)
	b, err := r.Build(ctx, &types.Document{ID: 2, Text: "beta"})
	require.NoError(t, err)

	require.NoError(t, r.Remove(ctx, 1))
	require.NoError(t, r.Remove(ctx, 1))
	assert.Zero(t, store.Len(a.Namespace))
	_, ok := r.Get(1)
	assert.False(t, ok)

	require.NoError(t, r.Close())
	assert.Zero(t, store.Len(b.Namespace))
	_, ok = r.Get(2)
	assert.False(t, ok)
}

func TestSearchSupersededIndexFollowsCurrent(t *testing.T) {
	r, _, store := newTestRegistry(t)
	ctx := context.Background()
	doc := &types.Document{ID: 4, Text: "Revenue grew 10% in Q1."}
	stale, err := r.Build(ctx, doc)
	require.NoError(t, err)
	_, err = r.Build(ctx, doc)
	require.NoError(t, err)
	require.Zero(t, store.Len(stale.Namespace))

	got, err := r.Search(ctx, stale, "What happened to revenue?", 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Revenue grew 10% in Q1.", got[0].Text)
}

func TestSearchRemovedIndexFails(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	ctx := context.Background()
	idx, err := r.Build(ctx, &types.Document{ID: 4, Text: "Revenue grew 10% in Q1."})
	require.NoError(t, err)
	require.NoError(t, r.Remove(ctx, 4))

	_, err = r.Search(ctx, idx, "revenue", 3)
	require.ErrorIs(t, err, ErrRetrieval)
}

func TestBuildAfterRemoveIsRefused(t *testing.T) {
	r, emb, _ := newTestRegistry(t)
	ctx := context.Background()
	doc := &types.Document{ID: 6, Text: "Revenue grew 10% in Q1."}
	_, err := r.Build(ctx, doc)
	require.NoError(t, err)
	require.NoError(t, r.Remove(ctx, 6))
	calls := emb.docCalls.Load()

	_, err = r.Build(ctx, doc)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = r.Ensure(ctx, doc)
	require.ErrorIs(t, err, ErrNotFound)
	_, ok := r.Get(6)
	assert.False(t, ok)
	assert.Equal(t, calls, emb.docCalls.Load())
}

// gateEmbedder blocks EmbedDocument until release is closed.
type gateEmbedder struct {
	bagEmbedder
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (e *gateEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	e.once.Do(func() { close(e.started) })
	<-e.release
	return e.bagEmbedder.EmbedDocument(ctx, text)
}

func TestRemoveDuringBuildDiscardsIndex(t *testing.T) {
	emb := &gateEmbedder{started: make(chan struct{}), release: make(chan struct{})}
	store := memory.New()
	r := NewIndexRegistry(testutil.Logger(t), emb, store, textsplit.Default(), 1)
	ctx := context.Background()

	type result struct {
		idx *ChunkIndex
		err error
	}
	done := make(chan result, 1)
	go func() {
		idx, err := r.Build(ctx, &types.Document{ID: 8, Text: "Revenue grew 10% in Q1."})
		done <- result{idx, err}
	}()
	<-emb.started
	require.NoError(t, r.Remove(ctx, 8))
	close(emb.release)

	res := <-done
	require.ErrorIs(t, res.err, ErrNotFound)
	assert.Nil(t, res.idx)
	_, ok := r.Get(8)
	assert.False(t, ok)
	assert.Zero(t, store.Len("doc:8:1"))
}
