package implementation

import (
	"context"
	"errors"

	"cognimed-be/internal/entity"
	"cognimed-be/internal/mapper"
	"cognimed-be/internal/model"
	"cognimed-be/internal/repository/contract"
	"cognimed-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UserMapper
}

func NewUserRepository(db *gorm.DB) contract.UserRepository {
	return &UserRepositoryImpl{
		db:     db,
		mapper: mapper.NewUserMapper(),
	}
}

func (r *UserRepositoryImpl) Create(ctx context.Context, user *entity.User) error {
	m := r.mapper.ToModel(user)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*user = *r.mapper.ToEntity(m)
	return nil
}

func (r *UserRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.User{}, "id = ?", id).Error
}

func (r *UserRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	var m model.User
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *UserRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.User{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type DoctorRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DoctorMapper
}

func NewDoctorRepository(db *gorm.DB) contract.DoctorRepository {
	return &DoctorRepositoryImpl{
		db:     db,
		mapper: mapper.NewDoctorMapper(),
	}
}

func (r *DoctorRepositoryImpl) Create(ctx context.Context, doctor *entity.Doctor) error {
	m := r.mapper.ToModel(doctor)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*doctor = *r.mapper.ToEntity(m)
	return nil
}

func (r *DoctorRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Doctor, error) {
	var m model.Doctor
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DoctorRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Doctor, error) {
	var models []*model.Doctor
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *DoctorRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.Doctor{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

type CredentialRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.CredentialMapper
}

func NewCredentialRepository(db *gorm.DB) contract.CredentialRepository {
	return &CredentialRepositoryImpl{
		db:     db,
		mapper: mapper.NewCredentialMapper(),
	}
}

func (r *CredentialRepositoryImpl) Create(ctx context.Context, credential *entity.Credential) error {
	m := r.mapper.ToModel(credential)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*credential = *r.mapper.ToEntity(m)
	return nil
}

func (r *CredentialRepositoryImpl) DeleteByUsername(ctx context.Context, username string) error {
	return r.db.WithContext(ctx).Where("username = ?", username).Delete(&model.Auth{}).Error
}

func (r *CredentialRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Credential, error) {
	var m model.Auth
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
