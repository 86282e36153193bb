package mapper

import (
	"cognimed-be/internal/entity"
	"cognimed-be/internal/model"
)

type UserMapper struct {
	posts *PostMapper
}

func NewUserMapper() *UserMapper {
	return &UserMapper{posts: NewPostMapper()}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:                 u.Id,
		Name:               u.Name,
		Email:              u.Email,
		Username:           u.Username,
		Phone:              u.Phone,
		DateOfBirth:        u.DateOfBirth,
		Gender:             u.Gender,
		BloodGroup:         u.BloodGroup,
		RelationNumber:     u.RelationNumber,
		FamilyDoctorName:   u.FamilyDoctorName,
		FamilyDoctorNumber: u.FamilyDoctorNumber,
		Height:             u.Height,
		Weight:             u.Weight,
		AadhaarNumber:      u.AadhaarNumber,
		CreatedAt:          u.CreatedAt,
		Posts:              m.posts.ToEntitiesFromValues(u.Posts),
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:                 u.Id,
		Name:               u.Name,
		Email:              u.Email,
		Username:           u.Username,
		Phone:              u.Phone,
		DateOfBirth:        u.DateOfBirth,
		Gender:             u.Gender,
		BloodGroup:         u.BloodGroup,
		RelationNumber:     u.RelationNumber,
		FamilyDoctorName:   u.FamilyDoctorName,
		FamilyDoctorNumber: u.FamilyDoctorNumber,
		Height:             u.Height,
		Weight:             u.Weight,
		AadhaarNumber:      u.AadhaarNumber,
		CreatedAt:          u.CreatedAt,
	}
}

type DoctorMapper struct {
	posts *PostMapper
}

func NewDoctorMapper() *DoctorMapper {
	return &DoctorMapper{posts: NewPostMapper()}
}

func (m *DoctorMapper) ToEntity(d *model.Doctor) *entity.Doctor {
	if d == nil {
		return nil
	}
	return &entity.Doctor{
		Id:             d.Id,
		Name:           d.Name,
		Email:          d.Email,
		Username:       d.Username,
		Phone:          d.Phone,
		Specialization: d.Specialization,
		HospitalName:   d.HospitalName,
		CreatedAt:      d.CreatedAt,
		Posts:          m.posts.ToEntitiesFromValues(d.Posts),
	}
}

func (m *DoctorMapper) ToModel(d *entity.Doctor) *model.Doctor {
	if d == nil {
		return nil
	}
	return &model.Doctor{
		Id:             d.Id,
		Name:           d.Name,
		Email:          d.Email,
		Username:       d.Username,
		Phone:          d.Phone,
		Specialization: d.Specialization,
		HospitalName:   d.HospitalName,
		CreatedAt:      d.CreatedAt,
	}
}

func (m *DoctorMapper) ToEntities(doctors []*model.Doctor) []*entity.Doctor {
	entities := make([]*entity.Doctor, len(doctors))
	for i, d := range doctors {
		entities[i] = m.ToEntity(d)
	}
	return entities
}

type CredentialMapper struct{}

func NewCredentialMapper() *CredentialMapper {
	return &CredentialMapper{}
}

func (m *CredentialMapper) ToEntity(a *model.Auth) *entity.Credential {
	if a == nil {
		return nil
	}
	return &entity.Credential{
		Id:             a.Id,
		Username:       a.Username,
		HashedPassword: a.HashedPassword,
		IsDoctor:       a.IsDoctor,
	}
}

func (m *CredentialMapper) ToModel(c *entity.Credential) *model.Auth {
	if c == nil {
		return nil
	}
	return &model.Auth{
		Id:             c.Id,
		Username:       c.Username,
		HashedPassword: c.HashedPassword,
		IsDoctor:       c.IsDoctor,
	}
}
