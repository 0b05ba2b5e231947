package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/docqa-backend/internal/domain"
	"github.com/yungbote/docqa-backend/internal/platform/embedding"
	"github.com/yungbote/docqa-backend/internal/platform/logger"
	"github.com/yungbote/docqa-backend/internal/platform/textsplit"
	"github.com/yungbote/docqa-backend/internal/platform/vectorstore"
)

const DefaultTopK = 3

// ChunkIndex points at the vectors built for one document.
type ChunkIndex struct {
	DocumentID uint
	Namespace  string
	ChunkCount int
	BuiltAt    time.Time
}

type ScoredChunk struct {
	Text  string
	Index int
	Score float64
}

// IndexRegistry owns the per-document chunk indexes. Indexes live only in
// process memory and are rebuilt from stored text on demand.
type IndexRegistry interface {
	// Build replaces any existing index for doc.
	Build(ctx context.Context, doc *types.Document) (*ChunkIndex, error)
	Ensure(ctx context.Context, doc *types.Document) (*ChunkIndex, error)
	Get(id uint) (*ChunkIndex, bool)
	Search(ctx context.Context, idx *ChunkIndex, query string, k int) ([]ScoredChunk, error)
	Remove(ctx context.Context, id uint) error
	Close() error
}

type indexRegistry struct {
	log      *logger.Logger
	embedder embedding.Embedder
	store    vectorstore.VectorStore
	splitter textsplit.Splitter
	embedMax int

	gen     atomic.Uint64
	mu      sync.RWMutex
	indexes map[uint]*ChunkIndex
	// removed holds ids whose document is gone. Document ids are never
	// reused, so a removed id can never be indexed again.
	removed map[uint]struct{}
}

// errIndexRemoved is returned by Build when the document was removed before
// or while its index was being built.
var errIndexRemoved = fmt.Errorf("%w: document removed", ErrNotFound)

func NewIndexRegistry(
	baseLog *logger.Logger,
	embedder embedding.Embedder,
	store vectorstore.VectorStore,
	splitter textsplit.Splitter,
	embedConcurrency int,
) IndexRegistry {
	if embedConcurrency < 1 {
		embedConcurrency = 1
	}
	return &indexRegistry{
		log:      baseLog.With("service", "IndexRegistry"),
		embedder: embedder,
		store:    store,
		splitter: splitter,
		embedMax: embedConcurrency,
		indexes:  map[uint]*ChunkIndex{},
		removed:  map[uint]struct{}{},
	}
}

func (r *indexRegistry) Build(ctx context.Context, doc *types.Document) (*ChunkIndex, error) {
	if doc == nil || doc.ID == 0 {
		return nil, fmt.Errorf("document required")
	}
	if r.isRemoved(doc.ID) {
		return nil, errIndexRemoved
	}
	start := time.Now()
	chunks := r.splitter.Split(doc.Text)

	vecs := make([][]float32, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.embedMax)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			v, err := r.embedder.EmbedDocument(gctx, chunk)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", i, err)
			}
			vecs[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}

	ns := fmt.Sprintf("doc:%d:%d", doc.ID, r.gen.Add(1))
	vectors := make([]vectorstore.Vector, len(chunks))
	for i, chunk := range chunks {
		vectors[i] = vectorstore.Vector{
			ID:       fmt.Sprintf("%d-%d", doc.ID, i),
			Values:   vecs[i],
			Metadata: map[string]any{"text": chunk, "chunk_index": i},
		}
	}
	if err := r.store.Upsert(ctx, ns, vectors); err != nil {
		_ = r.store.DeleteNamespace(context.WithoutCancel(ctx), ns)
		return nil, fmt.Errorf("%w: upsert: %w", ErrEmbedding, err)
	}

	idx := &ChunkIndex{DocumentID: doc.ID, Namespace: ns, ChunkCount: len(chunks), BuiltAt: time.Now().UTC()}
	r.mu.Lock()
	if _, gone := r.removed[doc.ID]; gone {
		r.mu.Unlock()
		_ = r.store.DeleteNamespace(context.WithoutCancel(ctx), ns)
		r.log.Info("Discarding index for removed document", "document_id", doc.ID)
		return nil, errIndexRemoved
	}
	prev := r.indexes[doc.ID]
	r.indexes[doc.ID] = idx
	r.mu.Unlock()
	if prev != nil {
		_ = r.store.DeleteNamespace(ctx, prev.Namespace)
	}

	r.log.Info("Index built",
		"document_id", doc.ID,
		"chunks", len(chunks),
		"replaced", prev != nil,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return idx, nil
}

func (r *indexRegistry) Ensure(ctx context.Context, doc *types.Document) (*ChunkIndex, error) {
	if doc == nil {
		return nil, fmt.Errorf("document required")
	}
	if idx, ok := r.Get(doc.ID); ok {
		return idx, nil
	}
	r.log.Info("Index missing, rebuilding from stored text", "document_id", doc.ID)
	return r.Build(ctx, doc)
}

func (r *indexRegistry) Get(id uint) (*ChunkIndex, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.indexes[id]
	return idx, ok
}

func (r *indexRegistry) Search(ctx context.Context, idx *ChunkIndex, query string, k int) ([]ScoredChunk, error) {
	if idx == nil {
		return nil, fmt.Errorf("%w: nil index", ErrRetrieval)
	}
	if k <= 0 {
		k = DefaultTopK
	}
	if idx.ChunkCount == 0 {
		return []ScoredChunk{}, nil
	}
	q, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", ErrRetrieval, err)
	}
	matches, err := r.store.QueryMatches(ctx, idx.Namespace, q, k)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", ErrRetrieval, err)
	}
	if len(matches) == 0 {
		// idx was superseded by a concurrent rebuild and its namespace dropped.
		cur, ok := r.Get(idx.DocumentID)
		if !ok {
			return nil, fmt.Errorf("%w: index for document %d was removed", ErrRetrieval, idx.DocumentID)
		}
		if cur.Namespace != idx.Namespace && cur.ChunkCount > 0 {
			matches, err = r.store.QueryMatches(ctx, cur.Namespace, q, k)
			if err != nil {
				return nil, fmt.Errorf("%w: query: %w", ErrRetrieval, err)
			}
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: index %s has no vectors", ErrRetrieval, idx.Namespace)
		}
	}
	out := make([]ScoredChunk, 0, len(matches))
	for _, m := range matches {
		text, _ := m.Metadata["text"].(string)
		pos, _ := m.Metadata["chunk_index"].(int)
		out = append(out, ScoredChunk{Text: text, Index: pos, Score: m.Score})
	}
	return out, nil
}

func (r *indexRegistry) isRemoved(id uint) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, gone := r.removed[id]
	return gone
}

// Remove drops the index for id and stops any later or in-flight Build for
// it from installing one.
func (r *indexRegistry) Remove(ctx context.Context, id uint) error {
	r.mu.Lock()
	idx := r.indexes[id]
	delete(r.indexes, id)
	r.removed[id] = struct{}{}
	r.mu.Unlock()
	if idx == nil {
		return nil
	}
	if err := r.store.DeleteNamespace(ctx, idx.Namespace); err != nil {
		return fmt.Errorf("delete namespace %s: %w", idx.Namespace, err)
	}
	return nil
}

func (r *indexRegistry) Close() error {
	r.mu.Lock()
	all := r.indexes
	r.indexes = map[uint]*ChunkIndex{}
	r.mu.Unlock()
	ctx := context.Background()
	for _, idx := range all {
		_ = r.store.DeleteNamespace(ctx, idx.Namespace)
	}
	return nil
}
