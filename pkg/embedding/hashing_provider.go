package embedding

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"
)

// DefaultHashingDimension matches the vector(768) column used by the pgvector backend.
const DefaultHashingDimension = 768

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`)

// HashingProvider is an offline, deterministic embedder. Each lowercase token is
// hashed into one of Dimension buckets and the term-frequency vector is L2
// normalised, so texts sharing tokens get a positive cosine similarity.
type HashingProvider struct {
	Dimension int
}

func NewHashingProvider(dimension int) EmbeddingProvider {
	if dimension <= 0 {
		dimension = DefaultHashingDimension
	}
	return &HashingProvider{Dimension: dimension}
}

func (p *HashingProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	values := make([]float32, p.Dimension)
	for _, token := range Tokenize(text) {
		h := fnv.New32a()
		h.Write([]byte(token))
		values[h.Sum32()%uint32(p.Dimension)]++
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{
			Values: normalizeVector(values),
		},
	}, nil
}

// Tokenize lowercases text and splits it into letter/digit runs.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}
