package services

import (
	"context"
	"errors"
	"hash/fnv"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/docqa-backend/internal/data/repos"
	"github.com/yungbote/docqa-backend/internal/data/repos/testutil"
	"github.com/yungbote/docqa-backend/internal/platform/pdftext"
	"github.com/yungbote/docqa-backend/internal/platform/textsplit"
	"github.com/yungbote/docqa-backend/internal/platform/vectorstore/memory"
)

// bagEmbedder hashes lowercase words into a small vector so that texts sharing
// words score higher.
type bagEmbedder struct {
	failDocs  atomic.Bool
	failQuery atomic.Bool
	docCalls  atomic.Int64
}

func (e *bagEmbedder) vec(text string) []float32 {
	v := make([]float32, 32)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,?!%:;")
		if w == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%32]++
	}
	v[31] += 0.01
	return v
}

func (e *bagEmbedder) EmbedDocument(ctx context.Context, text string) ([]float32, error) {
	e.docCalls.Add(1)
	if e.failDocs.Load() {
		return nil, errors.New("embedding quota exceeded")
	}
	return e.vec(text), nil
}

func (e *bagEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if e.failQuery.Load() {
		return nil, errors.New("embedding unavailable")
	}
	return e.vec(text), nil
}

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	answer  string
	err     error
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.answer, nil
}

func (g *fakeGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

// textExtractor treats the upload bytes as the document text; an empty body
// behaves like an image-only PDF.
type textExtractor struct {
	calls atomic.Int64
}

func (x *textExtractor) Extract(data []byte) (pdftext.Result, error) {
	x.calls.Add(1)
	if len(data) == 0 {
		return pdftext.Result{PageCount: 1}, pdftext.ErrNoText
	}
	return pdftext.Result{Text: string(data) + "\n", PageCount: 1, PagesWithText: 1}, nil
}

type memFiles struct {
	mu       sync.Mutex
	objects  map[string][]byte
	failSave bool
}

func newMemFiles() *memFiles { return &memFiles{objects: map[string][]byte{}} }

func (f *memFiles) Save(ctx context.Context, key string, r io.Reader) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return errors.New("disk full")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = b
	return nil
}

func (f *memFiles) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	return nil
}

func (f *memFiles) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func (f *memFiles) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

type harness struct {
	docs      DocumentService
	qa        QAService
	indexes   IndexRegistry
	repo      repos.DocumentRepo
	embedder  *bagEmbedder
	generator *fakeGenerator
	extractor *textExtractor
	files     *memFiles
	vectors   *memory.Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := testutil.Logger(t)
	db := testutil.DB(t)

	h := &harness{
		repo:      repos.NewDocumentRepo(db, log),
		embedder:  &bagEmbedder{},
		generator: &fakeGenerator{answer: "- Revenue grew **10%** in Q1."},
		extractor: &textExtractor{},
		files:     newMemFiles(),
		vectors:   memory.New(),
	}
	h.indexes = NewIndexRegistry(log, h.embedder, h.vectors, textsplit.Default(), 4)
	ds := NewDocumentService(log, h.repo, h.files, h.extractor, h.indexes).(*documentService)
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	ds.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	h.docs = ds
	h.qa = NewQAService(log, h.repo, h.indexes, h.generator)
	t.Cleanup(func() { _ = h.indexes.Close() })
	return h
}
