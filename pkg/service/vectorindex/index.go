// Package vectorindex is a flat Euclidean nearest neighbor index over content
// embeddings. Slots are assigned in insertion order and translated to content
// IDs through an identifier map persisted next to the vectors.
package vectorindex

import (
	"context"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/hupe1980/vecgo/distance"
	"github.com/learnloop/lumen/pkg/domain/interfaces"
	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/learnloop/lumen/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Index is safe for concurrent use. Insert calls are serialized once their
// embedding is computed and become visible to Search only after both
// artifacts are on disk.
type Index struct {
	mu sync.RWMutex

	dir       string
	dimension int
	embedder  interfaces.Embedder

	// vectors holds len(ids)*dimension values, slot-major
	vectors    []float32
	ids        []int64
	generation uuid.UUID
}

var _ interfaces.VectorIndex = &Index{}

// Open loads the index stored in dir, or starts an empty one when no artifacts
// exist. It fails with model.ErrCorruptIndexState when the artifacts do not
// agree with each other or with dimension.
func Open(ctx context.Context, dir string, dimension int, embedder interfaces.Embedder) (*Index, error) {
	if dir == "" {
		return nil, goerr.New("index directory is required")
	}
	if dimension <= 0 {
		return nil, goerr.New("index dimension must be positive", goerr.V("dimension", dimension))
	}
	if embedder == nil {
		return nil, goerr.New("embedder is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, goerr.Wrap(err, "failed to create index directory", goerr.V("dir", dir))
	}

	st, err := load(dir)
	if err != nil {
		return nil, err
	}
	if st.exists && st.dimension != dimension {
		return nil, goerr.Wrap(model.ErrCorruptIndexState, "stored dimension differs from configured dimension",
			goerr.V("dir", dir),
			goerr.V("stored", st.dimension),
			goerr.V("configured", dimension))
	}

	idx := &Index{
		dir:        dir,
		dimension:  dimension,
		embedder:   embedder,
		vectors:    st.vectors,
		ids:        st.ids,
		generation: st.generation,
	}

	logging.From(ctx).Info("Vector index opened",
		"dir", dir,
		"size", len(idx.ids),
		"dimension", dimension,
		"generation", idx.generation.String())
	return idx, nil
}

// Size returns the number of stored embeddings
func (x *Index) Size() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.ids)
}

// Dimension returns the configured vector size
func (x *Index) Dimension() int {
	return x.dimension
}

// Generation returns the identifier shared by the currently persisted artifacts
func (x *Index) Generation() uuid.UUID {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return x.generation
}

// Insert embeds text and stores it under a new slot mapped to contentID. Both
// artifacts are persisted before the new slot is published; on any failure
// the in-memory state is left untouched.
func (x *Index) Insert(ctx context.Context, contentID int64, text string) error {
	vec, err := x.embedder.Embed(ctx, text)
	if err != nil {
		return goerr.Wrap(err, "failed to embed content", goerr.V("content_id", contentID))
	}
	if len(vec) != x.dimension {
		return goerr.New("embedding dimension mismatch",
			goerr.V("content_id", contentID),
			goerr.V("expected", x.dimension),
			goerr.V("actual", len(vec)),
			goerr.T(model.ErrTagEmbedding))
	}

	// only append, persist and publish hold the write lock
	x.mu.Lock()
	defer x.mu.Unlock()

	// Appending may write into spare capacity past len, which no reader
	// observes until the slices are swapped below.
	vectors := append(x.vectors, vec...)
	ids := append(x.ids, contentID)
	generation := uuid.New()

	if err := persist(ctx, x.dir, artifacts{
		generation: generation,
		dimension:  x.dimension,
		vectors:    vectors,
		ids:        ids,
	}); err != nil {
		return goerr.Wrap(err, "failed to persist index",
			goerr.V("content_id", contentID),
			goerr.V("dir", x.dir))
	}

	x.vectors = vectors
	x.ids = ids
	x.generation = generation

	logging.From(ctx).Debug("Content indexed",
		"content_id", contentID,
		"slot", len(ids)-1,
		"generation", generation.String())
	return nil
}

// Search returns up to topK content IDs ordered by ascending distance to the
// embedded query. An empty index yields an empty result without embedding.
func (x *Index) Search(ctx context.Context, query string, topK int) ([]int64, error) {
	if topK <= 0 || x.Size() == 0 {
		return []int64{}, nil
	}

	vec, err := x.embedder.Embed(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}
	if len(vec) != x.dimension {
		return nil, goerr.New("query embedding dimension mismatch",
			goerr.V("expected", x.dimension),
			goerr.V("actual", len(vec)),
			goerr.T(model.ErrTagEmbedding))
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	slots := x.nearest(vec, topK)
	result := make([]int64, 0, len(slots))
	for _, slot := range slots {
		id, ok := x.lookup(slot)
		if !ok {
			logging.From(ctx).Warn("Skipping unmapped index slot", "slot", slot, "size", len(x.ids))
			continue
		}
		result = append(result, id)
	}
	return result, nil
}

// WriteSnapshot encodes the current artifacts to the given writers under the
// read lock, so the pair is always consistent.
func (x *Index) WriteSnapshot(indexW, mapW io.Writer) error {
	x.mu.RLock()
	defer x.mu.RUnlock()

	a := artifacts{
		generation: x.generation,
		dimension:  x.dimension,
		vectors:    x.vectors,
		ids:        x.ids,
	}
	if err := encodeIndex(indexW, a); err != nil {
		return err
	}
	return encodeIDMap(mapW, a)
}

type candidate struct {
	slot     int
	distance float32
}

// nearest must be called with the read lock held
func (x *Index) nearest(query []float32, topK int) []int {
	count := len(x.vectors) / x.dimension
	candidates := make([]candidate, count)
	for slot := 0; slot < count; slot++ {
		offset := slot * x.dimension
		candidates[slot] = candidate{
			slot:     slot,
			distance: distance.SquaredL2(query, x.vectors[offset:offset+x.dimension]),
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}
	slots := make([]int, topK)
	for i := range slots {
		slots[i] = candidates[i].slot
	}
	return slots
}

func (x *Index) lookup(slot int) (int64, bool) {
	if slot < 0 || slot >= len(x.ids) {
		return 0, false
	}
	return x.ids[slot], true
}

