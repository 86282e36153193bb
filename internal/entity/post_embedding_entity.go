package entity

import (
	"time"

	"github.com/google/uuid"
)

type PostEmbedding struct {
	Id             uuid.UUID
	PostId         uuid.UUID
	Document       string
	EmbeddingValue []float32
	Metadata       map[string]string
	CreatedAt      time.Time
}

type ScoredPostEmbedding struct {
	PostEmbedding
	Similarity float64
}
