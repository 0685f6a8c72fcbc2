package vectorindex

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/learnloop/lumen/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// IndexFileName holds the zstd compressed vectors
	IndexFileName = "index.bin"
	// IDMapFileName holds the slot to content ID map
	IDMapFileName = "id_map.json"

	formatVersion = 1

	// upper bound on count*dimension accepted from disk
	maxStoredValues = 1 << 28
)

var indexMagic = [4]byte{'L', 'V', 'I', 'X'}

type indexHeader struct {
	Magic      [4]byte
	Version    uint16
	Generation uuid.UUID
	Dimension  uint32
	Count      uint32
}

type idMapFile struct {
	Generation string  `json:"generation"`
	Dimension  int     `json:"dimension"`
	IDs        []int64 `json:"ids"`
}

type artifacts struct {
	generation uuid.UUID
	dimension  int
	vectors    []float32
	ids        []int64
}

type loadedState struct {
	artifacts
	exists bool
}

func corrupt(msg string, opts ...goerr.Option) error {
	return goerr.Wrap(model.ErrCorruptIndexState, msg, opts...)
}

// load reads and cross-checks both artifacts in dir. A directory with neither
// file is an empty index.
func load(dir string) (*loadedState, error) {
	indexPath := filepath.Join(dir, IndexFileName)
	mapPath := filepath.Join(dir, IDMapFileName)

	idx, err := readIndexFile(indexPath)
	if err != nil {
		return nil, err
	}
	idMap, err := readIDMapFile(mapPath)
	if err != nil {
		return nil, err
	}

	return reconcile(idx, idMap, indexPath, mapPath)
}

// reconcile cross-checks a decoded index and identifier map. Either may be
// nil when its file is absent.
func reconcile(idx *artifacts, idMap *idMapFile, indexPath, mapPath string) (*loadedState, error) {
	switch {
	case idx == nil && idMap == nil:
		return &loadedState{}, nil

	case idx == nil:
		if len(idMap.IDs) > 0 {
			return nil, corrupt("identifier map present without index",
				goerr.V("path", mapPath),
				goerr.V("map_size", len(idMap.IDs)))
		}
		gen, err := parseGeneration(idMap.Generation, mapPath)
		if err != nil {
			return nil, err
		}
		return &loadedState{
			artifacts: artifacts{generation: gen, dimension: idMap.Dimension},
			exists:    true,
		}, nil

	case idMap == nil:
		count := len(idx.vectors) / idx.dimension
		if count > 0 {
			return nil, corrupt("index present without identifier map",
				goerr.V("path", indexPath),
				goerr.V("index_size", count))
		}
		return &loadedState{artifacts: *idx, exists: true}, nil
	}

	gen, err := parseGeneration(idMap.Generation, mapPath)
	if err != nil {
		return nil, err
	}
	if gen != idx.generation {
		return nil, corrupt("index and identifier map belong to different generations",
			goerr.V("index_generation", idx.generation.String()),
			goerr.V("map_generation", gen.String()))
	}
	if idMap.Dimension != idx.dimension {
		return nil, corrupt("index and identifier map disagree on dimension",
			goerr.V("index_dimension", idx.dimension),
			goerr.V("map_dimension", idMap.Dimension))
	}
	count := len(idx.vectors) / idx.dimension
	if count != len(idMap.IDs) {
		return nil, corrupt("index size differs from identifier map size",
			goerr.V("index_size", count),
			goerr.V("map_size", len(idMap.IDs)))
	}

	idx.ids = idMap.IDs
	return &loadedState{artifacts: *idx, exists: true}, nil
}

func parseGeneration(s, path string) (uuid.UUID, error) {
	gen, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, goerr.Wrap(model.ErrCorruptIndexState, "invalid generation in identifier map",
			goerr.V("path", path),
			goerr.V("generation", s),
			goerr.V("cause", err.Error()))
	}
	return gen, nil
}

// readIndexFile returns nil without error when the file does not exist
func readIndexFile(path string) (*artifacts, error) {
	f, err := os.Open(path) // #nosec G304
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open index file", goerr.V("path", path))
	}
	defer func() { _ = f.Close() }()

	a, err := decodeIndex(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to decode index file", goerr.V("path", path))
	}
	return a, nil
}

func decodeIndex(r io.Reader) (*artifacts, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, corrupt("failed to create decompressor", goerr.V("cause", err.Error()))
	}
	defer dec.Close()

	br := bufio.NewReader(dec)
	var h indexHeader
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, corrupt("failed to read index header", goerr.V("cause", err.Error()))
	}
	if h.Magic != indexMagic {
		return nil, corrupt("unexpected index magic", goerr.V("magic", string(h.Magic[:])))
	}
	if h.Version != formatVersion {
		return nil, corrupt("unsupported index format version", goerr.V("version", h.Version))
	}
	if h.Dimension == 0 {
		return nil, corrupt("index dimension is zero")
	}
	total := uint64(h.Count) * uint64(h.Dimension)
	if total > maxStoredValues {
		return nil, corrupt("index too large", goerr.V("count", h.Count), goerr.V("dimension", h.Dimension))
	}

	vectors := make([]float32, total)
	if err := binary.Read(br, binary.LittleEndian, vectors); err != nil {
		return nil, corrupt("failed to read index vectors",
			goerr.V("count", h.Count),
			goerr.V("cause", err.Error()))
	}

	return &artifacts{
		generation: h.Generation,
		dimension:  int(h.Dimension),
		vectors:    vectors,
	}, nil
}

// readIDMapFile returns nil without error when the file does not exist
func readIDMapFile(path string) (*idMapFile, error) {
	data, err := os.ReadFile(path) // #nosec G304
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read identifier map", goerr.V("path", path))
	}

	var m idMapFile
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, corrupt("failed to parse identifier map",
			goerr.V("path", path),
			goerr.V("cause", err.Error()))
	}
	return &m, nil
}

func decodePair(indexData, mapData []byte) (*loadedState, error) {
	idx, err := decodeIndex(bytes.NewReader(indexData))
	if err != nil {
		return nil, err
	}

	var m idMapFile
	if err := json.Unmarshal(mapData, &m); err != nil {
		return nil, corrupt("failed to parse identifier map", goerr.V("cause", err.Error()))
	}
	return reconcile(idx, &m, IndexFileName, IDMapFileName)
}

func encodeIndex(w io.Writer, a artifacts) error {
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return goerr.Wrap(err, "failed to create compressor")
	}

	h := indexHeader{
		Magic:      indexMagic,
		Version:    formatVersion,
		Generation: a.generation,
		Dimension:  uint32(a.dimension), // #nosec G115
		Count:      uint32(len(a.ids)),  // #nosec G115
	}
	if err := binary.Write(enc, binary.LittleEndian, h); err != nil {
		_ = enc.Close()
		return goerr.Wrap(err, "failed to write index header")
	}
	if err := binary.Write(enc, binary.LittleEndian, a.vectors[:len(a.ids)*a.dimension]); err != nil {
		_ = enc.Close()
		return goerr.Wrap(err, "failed to write index vectors")
	}
	if err := enc.Close(); err != nil {
		return goerr.Wrap(err, "failed to flush compressor")
	}
	return nil
}

func encodeIDMap(w io.Writer, a artifacts) error {
	ids := a.ids
	if ids == nil {
		ids = []int64{}
	}
	data, err := json.Marshal(idMapFile{
		Generation: a.generation.String(),
		Dimension:  a.dimension,
		IDs:        ids,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to marshal identifier map")
	}
	if _, err := w.Write(data); err != nil {
		return goerr.Wrap(err, "failed to write identifier map")
	}
	return nil
}

// persist writes both artifacts to temporary files and renames them into
// place, identifier map last. A crash between the two renames leaves a
// generation mismatch that load reports as corrupt.
func persist(ctx context.Context, dir string, a artifacts) error {
	indexPath := filepath.Join(dir, IndexFileName)
	mapPath := filepath.Join(dir, IDMapFileName)

	indexTmp, err := writeTemp(ctx, indexPath, func(w io.Writer) error { return encodeIndex(w, a) })
	if err != nil {
		return err
	}
	mapTmp, err := writeTemp(ctx, mapPath, func(w io.Writer) error { return encodeIDMap(w, a) })
	if err != nil {
		safe.Remove(ctx, indexTmp)
		return err
	}

	if err := os.Rename(indexTmp, indexPath); err != nil {
		safe.Remove(ctx, indexTmp)
		safe.Remove(ctx, mapTmp)
		return goerr.Wrap(err, "failed to replace index file", goerr.V("path", indexPath))
	}
	if err := os.Rename(mapTmp, mapPath); err != nil {
		safe.Remove(ctx, mapTmp)
		return goerr.Wrap(err, "failed to replace identifier map", goerr.V("path", mapPath))
	}
	return nil
}

func writeTemp(ctx context.Context, path string, write func(io.Writer) error) (string, error) {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) // #nosec G304
	if err != nil {
		return "", goerr.Wrap(err, "failed to create temporary file", goerr.V("path", tmp))
	}

	bw := bufio.NewWriter(f)
	if err := write(bw); err != nil {
		_ = f.Close()
		safe.Remove(ctx, tmp)
		return "", err
	}
	if err := bw.Flush(); err != nil {
		_ = f.Close()
		safe.Remove(ctx, tmp)
		return "", goerr.Wrap(err, "failed to flush temporary file", goerr.V("path", tmp))
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		safe.Remove(ctx, tmp)
		return "", goerr.Wrap(err, "failed to sync temporary file", goerr.V("path", tmp))
	}
	if err := f.Close(); err != nil {
		safe.Remove(ctx, tmp)
		return "", goerr.Wrap(err, "failed to close temporary file", goerr.V("path", tmp))
	}
	return tmp, nil
}
