package vectorindex

import (
	"context"
	"path/filepath"
	"sync"
)

// fileLocks holds one mutex per absolute index path, shared by every Writer in
// the process.
var fileLocks sync.Map

// Writer serialises load-modify-save sequences against one index file. Reads
// through Store.Load and Store.Search do not take the lock.
type Writer struct {
	store *Store
	mu    *sync.Mutex
}

func NewWriter(store *Store) *Writer {
	key, err := filepath.Abs(store.Path())
	if err != nil {
		key = store.Path()
	}
	mu, _ := fileLocks.LoadOrStore(key, &sync.Mutex{})
	return &Writer{
		store: store,
		mu:    mu.(*sync.Mutex),
	}
}

func (w *Writer) Store() *Store {
	return w.store
}

// Append adds one text, building the index first when none exists, and
// returns the number of entries after the save.
func (w *Writer) Append(ctx context.Context, text string, metadata map[string]string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx, err := w.store.Load(ctx)
	if err != nil {
		return 0, err
	}

	if idx == nil {
		idx, err = w.store.Build(ctx, []string{text}, []map[string]string{metadata})
	} else {
		idx, err = w.store.Add(ctx, idx, text, metadata)
	}
	if err != nil {
		return 0, err
	}

	if err := w.store.Save(ctx, idx); err != nil {
		return 0, err
	}
	return idx.Len(), nil
}

// Retract removes all entries for the given post ids and returns how many were dropped.
func (w *Writer) Retract(ctx context.Context, postIDs ...string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx, err := w.store.Load(ctx)
	if err != nil || idx == nil {
		return 0, err
	}

	total := 0
	for _, id := range postIDs {
		var n int
		idx, n = Remove(idx, id)
		total += n
	}
	if total == 0 {
		return 0, nil
	}

	if err := w.store.Save(ctx, idx); err != nil {
		return 0, err
	}
	return total, nil
}

// Replace builds a fresh index from texts and overwrites the persisted one.
// The lock is held for the whole build so concurrent appends wait rather than
// being overwritten.
func (w *Writer) Replace(ctx context.Context, texts []string, metadatas []map[string]string, progress Progress) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	idx, err := w.store.BuildWithProgress(ctx, texts, metadatas, progress)
	if err != nil {
		return 0, err
	}
	if err := w.store.Save(ctx, idx); err != nil {
		return 0, err
	}
	return idx.Len(), nil
}
