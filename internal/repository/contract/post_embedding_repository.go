package contract

import (
	"context"

	"cognimed-be/internal/entity"

	"github.com/google/uuid"
)

type PostEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.PostEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.PostEmbedding) error
	DeleteByPostIds(ctx context.Context, postIds []uuid.UUID) (int64, error)
	DeleteAll(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*entity.ScoredPostEmbedding, error)
}
