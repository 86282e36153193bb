package vectorindex

import (
	"math"
	"sort"
)

// Metadata keys written by the post index.
const (
	MetaPostID      = "post_id"
	MetaUserID      = "user_id"
	MetaDoctorID    = "doctor_id"
	MetaCreatedTime = "created_time"
)

// Entry is one embedded text with its metadata.
type Entry struct {
	Vector   []float32
	Text     string
	Metadata map[string]string
}

// Index is a flat, exact nearest-neighbour index held in memory.
type Index struct {
	Dimension int
	Entries   []Entry
}

// Hit is a search result.
type Hit struct {
	Text     string
	Metadata map[string]string
	Score    float64
}

func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.Entries)
}

func (idx *Index) append(vec []float32, text string, metadata map[string]string) error {
	if idx.Dimension == 0 {
		idx.Dimension = len(vec)
	}
	if len(vec) != idx.Dimension {
		return ErrDimensionMismatch
	}
	idx.Entries = append(idx.Entries, Entry{
		Vector:   vec,
		Text:     text,
		Metadata: copyMetadata(metadata),
	})
	return nil
}

// nearest returns the k entries closest to query by cosine similarity.
// Ties keep insertion order.
func (idx *Index) nearest(query []float32, k int) []Hit {
	n := idx.Len()
	if k > n {
		k = n
	}
	if k == 0 {
		return []Hit{}
	}

	qNorm := norm(query)
	hits := make([]Hit, n)
	for i, e := range idx.Entries {
		hits[i] = Hit{
			Text:     e.Text,
			Metadata: e.Metadata,
			Score:    cosine(query, qNorm, e.Vector),
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	return hits[:k]
}

func cosine(q []float32, qNorm float64, v []float32) float64 {
	vNorm := norm(v)
	if qNorm == 0 || vNorm == 0 {
		return 0
	}
	var dot float64
	for i := range q {
		dot += float64(q[i]) * float64(v[i])
	}
	return dot / (qNorm * vNorm)
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func copyMetadata(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
