package implementation

import (
	"context"
	"errors"

	"cognimed-be/internal/entity"
	"cognimed-be/internal/mapper"
	"cognimed-be/internal/model"
	"cognimed-be/internal/repository/contract"
	"cognimed-be/internal/repository/specification"

	"gorm.io/gorm"
)

type PrescriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PrescriptionMapper
}

func NewPrescriptionRepository(db *gorm.DB) contract.PrescriptionRepository {
	return &PrescriptionRepositoryImpl{
		db:     db,
		mapper: mapper.NewPrescriptionMapper(),
	}
}

func (r *PrescriptionRepositoryImpl) Create(ctx context.Context, p *entity.Prescription) error {
	m := r.mapper.ToModel(p)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*p = *r.mapper.ToEntity(m)
	return nil
}

func (r *PrescriptionRepositoryImpl) Update(ctx context.Context, p *entity.Prescription) error {
	m := r.mapper.ToModel(p)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*p = *r.mapper.ToEntity(m)
	return nil
}

func (r *PrescriptionRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Prescription{}, id).Error
}

func (r *PrescriptionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Prescription, error) {
	var m model.Prescription
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PrescriptionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Prescription, error) {
	var models []*model.Prescription
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
