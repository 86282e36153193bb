package contract

import (
	"context"

	"cognimed-be/internal/entity"
	"cognimed-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PostRepository interface {
	Create(ctx context.Context, post *entity.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Post, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Post, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// ParentOf returns the parent id of post id, nil for a top-level or missing post.
	ParentOf(ctx context.Context, id uuid.UUID) (*uuid.UUID, error)
	// SubtreeIDs returns id and the ids of every transitive reply.
	SubtreeIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
}
