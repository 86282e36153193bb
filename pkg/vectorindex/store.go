package vectorindex

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"cognimed-be/pkg/embedding"
)

const (
	fileMagic   = "cognimed/vectorindex"
	fileVersion = 1
)

// Progress is called after each text is embedded during Build.
type Progress func(done, total int)

type persistedIndex struct {
	Magic     string
	Version   int
	Dimension int
	Entries   []Entry
}

// Store persists one Index at a fixed path and embeds text through the
// configured provider. Every call reads or writes the file; nothing is cached
// between calls.
type Store struct {
	path     string
	embedder embedding.EmbeddingProvider
}

func NewStore(path string, embedder embedding.EmbeddingProvider) *Store {
	return &Store{
		path:     path,
		embedder: embedder,
	}
}

func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted index. A missing, truncated or otherwise unreadable
// file yields (nil, nil): callers treat it as a cold start.
func (s *Store) Load(ctx context.Context) (*Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("[WARN] vectorindex: cannot open %s, treating as absent: %v", s.path, err)
		}
		return nil, nil
	}
	defer f.Close()

	var p persistedIndex
	if err := gob.NewDecoder(f).Decode(&p); err != nil {
		log.Printf("[WARN] vectorindex: corrupt index at %s, treating as absent: %v", s.path, err)
		return nil, nil
	}
	if p.Magic != fileMagic || p.Version != fileVersion {
		log.Printf("[WARN] vectorindex: unknown index format at %s (magic=%q version=%d), treating as absent", s.path, p.Magic, p.Version)
		return nil, nil
	}
	for i, e := range p.Entries {
		if len(e.Vector) != p.Dimension {
			log.Printf("[WARN] vectorindex: entry %d has dimension %d, want %d; treating index as absent", i, len(e.Vector), p.Dimension)
			return nil, nil
		}
	}

	return &Index{Dimension: p.Dimension, Entries: p.Entries}, nil
}

// Build embeds every text and returns a fresh index. It does not touch the
// persisted file; call Save to replace it.
func (s *Store) Build(ctx context.Context, texts []string, metadatas []map[string]string) (*Index, error) {
	return s.BuildWithProgress(ctx, texts, metadatas, nil)
}

func (s *Store) BuildWithProgress(ctx context.Context, texts []string, metadatas []map[string]string, progress Progress) (*Index, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: build requires at least one text", ErrValidation)
	}
	if metadatas != nil && len(metadatas) != len(texts) {
		return nil, fmt.Errorf("%w: %d texts but %d metadatas", ErrValidation, len(texts), len(metadatas))
	}

	idx := &Index{Entries: make([]Entry, 0, len(texts))}
	for i, text := range texts {
		vec, err := s.embed(ctx, "build", text, embedding.TaskRetrievalDocument)
		if err != nil {
			return nil, err
		}
		var meta map[string]string
		if metadatas != nil {
			meta = metadatas[i]
		}
		if err := idx.append(vec, text, meta); err != nil {
			return nil, fmt.Errorf("build entry %d: %w", i, err)
		}
		if progress != nil {
			progress(i+1, len(texts))
		}
	}

	return idx, nil
}

// Add embeds text and appends it to idx. Adding the same text twice stores it twice.
func (s *Store) Add(ctx context.Context, idx *Index, text string, metadata map[string]string) (*Index, error) {
	if idx == nil {
		return nil, fmt.Errorf("%w: add requires a loaded index", ErrValidation)
	}

	vec, err := s.embed(ctx, "add", text, embedding.TaskRetrievalDocument)
	if err != nil {
		return nil, err
	}
	if err := idx.append(vec, text, metadata); err != nil {
		return nil, fmt.Errorf("add: %w", err)
	}
	return idx, nil
}

// Save replaces the persisted index with idx. The file is written to a
// temporary sibling and renamed into place so readers never see a partial file.
func (s *Store) Save(ctx context.Context, idx *Index) error {
	if idx == nil {
		return fmt.Errorf("%w: cannot save a nil index", ErrValidation)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".vectorindex-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp index: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	p := persistedIndex{
		Magic:     fileMagic,
		Version:   fileVersion,
		Dimension: idx.Dimension,
		Entries:   idx.Entries,
	}
	if err := gob.NewEncoder(tmp).Encode(&p); err != nil {
		tmp.Close()
		return fmt.Errorf("encode index: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close index: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace index: %w", err)
	}
	return nil
}

// Search returns up to k entries ordered by decreasing similarity to query.
// A nil or empty index, or k == 0, returns an empty slice without embedding.
func (s *Store) Search(ctx context.Context, idx *Index, query string, k int) ([]Hit, error) {
	if k < 0 {
		return nil, fmt.Errorf("%w: k must be >= 0, got %d", ErrValidation, k)
	}
	if idx.Len() == 0 || k == 0 {
		return []Hit{}, nil
	}

	vec, err := s.embed(ctx, "search", query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, err
	}
	if len(vec) != idx.Dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", ErrDimensionMismatch, len(vec), idx.Dimension)
	}

	return idx.nearest(vec, k), nil
}

// Remove drops every entry whose post_id metadata equals postID.
func Remove(idx *Index, postID string) (*Index, int) {
	if idx == nil {
		return nil, 0
	}
	kept := idx.Entries[:0]
	removed := 0
	for _, e := range idx.Entries {
		if e.Metadata[MetaPostID] == postID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	idx.Entries = kept
	return idx, removed
}

func (s *Store) embed(ctx context.Context, op, text, taskType string) ([]float32, error) {
	res, err := s.embedder.Generate(ctx, text, taskType)
	if err != nil {
		return nil, &EmbeddingError{Op: op, Err: err}
	}
	if res == nil || len(res.Embedding.Values) == 0 {
		return nil, &EmbeddingError{Op: op, Err: errors.New("provider returned an empty vector")}
	}
	return res.Embedding.Values, nil
}
