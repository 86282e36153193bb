package contract

import (
	"context"

	"cognimed-be/internal/entity"
	"cognimed-be/internal/repository/specification"
)

type PrescriptionRepository interface {
	Create(ctx context.Context, p *entity.Prescription) error
	Update(ctx context.Context, p *entity.Prescription) error
	Delete(ctx context.Context, id uint) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Prescription, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Prescription, error)
}
