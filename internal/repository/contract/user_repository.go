package contract

import (
	"context"

	"cognimed-be/internal/entity"
	"cognimed-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, doctor *entity.Doctor) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Doctor, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Doctor, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type CredentialRepository interface {
	Create(ctx context.Context, credential *entity.Credential) error
	DeleteByUsername(ctx context.Context, username string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Credential, error)
}
