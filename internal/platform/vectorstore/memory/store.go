// Package memory is a process-local vector store using brute-force cosine
// similarity. Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/yungbote/docqa-backend/internal/platform/vectorstore"
)

type entry struct {
	seq    int
	values []float32
	norm   float64
	meta   map[string]any
}

type namespace struct {
	dim     int
	nextSeq int
	entries map[string]*entry
}

type Store struct {
	mu sync.RWMutex
	ns map[string]*namespace
}

func New() *Store {
	return &Store{ns: map[string]*namespace{}}
}

var _ vectorstore.VectorStore = (*Store)(nil)

func (s *Store) Upsert(ctx context.Context, ns string, vectors []vectorstore.Vector) error {
	ns = strings.TrimSpace(ns)
	if ns == "" {
		return fmt.Errorf("namespace required")
	}
	if len(vectors) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.ns[ns]
	if n == nil {
		n = &namespace{entries: map[string]*entry{}}
	}
	dim := n.dim
	if dim == 0 {
		dim = len(vectors[0].Values)
	}
	for _, v := range vectors {
		if strings.TrimSpace(v.ID) == "" {
			return fmt.Errorf("vector id required")
		}
		if len(v.Values) == 0 || len(v.Values) != dim {
			return fmt.Errorf("vector %s: dimension %d, want %d", v.ID, len(v.Values), dim)
		}
	}

	n.dim = dim
	for _, v := range vectors {
		vals := append([]float32(nil), v.Values...)
		e := &entry{values: vals, norm: norm(vals), meta: v.Metadata}
		if old, ok := n.entries[v.ID]; ok {
			e.seq = old.seq
		} else {
			e.seq = n.nextSeq
			n.nextSeq++
		}
		n.entries[v.ID] = e
	}
	s.ns[ns] = n
	return nil
}

// QueryMatches orders equal scores by insertion order.
func (s *Store) QueryMatches(ctx context.Context, ns string, q []float32, topK int) ([]vectorstore.VectorMatch, error) {
	if topK <= 0 {
		return []vectorstore.VectorMatch{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.ns[strings.TrimSpace(ns)]
	if n == nil || len(n.entries) == 0 {
		return []vectorstore.VectorMatch{}, nil
	}
	if len(q) != n.dim {
		return nil, fmt.Errorf("query dimension %d, want %d", len(q), n.dim)
	}

	qn := norm(q)
	type scored struct {
		id  string
		e   *entry
		val float64
	}
	all := make([]scored, 0, len(n.entries))
	for id, e := range n.entries {
		all = append(all, scored{id: id, e: e, val: cosine(q, qn, e.values, e.norm)})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].val != all[j].val {
			return all[i].val > all[j].val
		}
		return all[i].e.seq < all[j].e.seq
	})
	if topK > len(all) {
		topK = len(all)
	}
	out := make([]vectorstore.VectorMatch, 0, topK)
	for _, sc := range all[:topK] {
		out = append(out, vectorstore.VectorMatch{ID: sc.id, Score: sc.val, Metadata: sc.e.meta})
	}
	return out, nil
}

func (s *Store) DeleteNamespace(ctx context.Context, ns string) error {
	s.mu.Lock()
	delete(s.ns, strings.TrimSpace(ns))
	s.mu.Unlock()
	return nil
}

// Len reports how many vectors a namespace holds.
func (s *Store) Len(ns string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n := s.ns[strings.TrimSpace(ns)]; n != nil {
		return len(n.entries)
	}
	return 0
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, an float64, b []float32, bn float64) float64 {
	if an == 0 || bn == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (an * bn)
}
