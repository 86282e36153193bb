package mapper

import (
	"encoding/json"

	"cognimed-be/internal/entity"
	"cognimed-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type PostEmbeddingMapper struct{}

func NewPostEmbeddingMapper() *PostEmbeddingMapper {
	return &PostEmbeddingMapper{}
}

func (m *PostEmbeddingMapper) ToEntity(e *model.PostEmbedding) *entity.PostEmbedding {
	if e == nil {
		return nil
	}

	meta := map[string]string{}
	if len(e.Metadata) > 0 {
		_ = json.Unmarshal(e.Metadata, &meta)
	}

	return &entity.PostEmbedding{
		Id:             e.Id,
		PostId:         e.PostId,
		Document:       e.Document,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		Metadata:       meta,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *PostEmbeddingMapper) ToModel(e *entity.PostEmbedding) *model.PostEmbedding {
	if e == nil {
		return nil
	}

	var meta datatypes.JSON
	if e.Metadata != nil {
		raw, _ := json.Marshal(e.Metadata)
		meta = datatypes.JSON(raw)
	}

	return &model.PostEmbedding{
		Id:             e.Id,
		PostId:         e.PostId,
		Document:       e.Document,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		Metadata:       meta,
		CreatedAt:      e.CreatedAt,
	}
}
