package implementation

import (
	"context"

	"cognimed-be/internal/entity"
	"cognimed-be/internal/mapper"
	"cognimed-be/internal/model"
	"cognimed-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type PostEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PostEmbeddingMapper
}

func NewPostEmbeddingRepository(db *gorm.DB) contract.PostEmbeddingRepository {
	return &PostEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewPostEmbeddingMapper(),
	}
}

func (r *PostEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.PostEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *PostEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.PostEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := make([]*model.PostEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.ToModel(e)
	}

	if err := r.db.WithContext(ctx).CreateInBatches(models, 200).Error; err != nil {
		return err
	}

	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *PostEmbeddingRepositoryImpl) DeleteByPostIds(ctx context.Context, postIds []uuid.UUID) (int64, error) {
	if len(postIds) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("post_id IN ?", postIds).Delete(&model.PostEmbedding{})
	return res.RowsAffected, res.Error
}

func (r *PostEmbeddingRepositoryImpl) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.PostEmbedding{}).Error
}

func (r *PostEmbeddingRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.PostEmbedding{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore ranks by cosine similarity, 1 - (embedding_value <=> query).
func (r *PostEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int) ([]*entity.ScoredPostEmbedding, error) {
	if limit <= 0 {
		return []*entity.ScoredPostEmbedding{}, nil
	}

	type result struct {
		model.PostEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("post_embeddings").
		Select("post_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*entity.ScoredPostEmbedding, len(results))
	for i := range results {
		scored[i] = &entity.ScoredPostEmbedding{
			PostEmbedding: *r.mapper.ToEntity(&results[i].PostEmbedding),
			Similarity:    results[i].Similarity,
		}
	}
	return scored, nil
}
