package mapper

import (
	"cognimed-be/internal/entity"
	"cognimed-be/internal/model"
)

type PrescriptionMapper struct{}

func NewPrescriptionMapper() *PrescriptionMapper {
	return &PrescriptionMapper{}
}

func (m *PrescriptionMapper) ToEntity(p *model.Prescription) *entity.Prescription {
	if p == nil {
		return nil
	}
	return &entity.Prescription{
		Id:           p.Id,
		DoctorName:   p.DoctorName,
		VisitDate:    p.VisitDate,
		VisitTime:    p.VisitTime,
		HospitalName: p.HospitalName,
		Username:     p.Username,
		FileURL:      p.FileURL,
		Extracted:    p.Extracted,
		CreatedAt:    p.CreatedAt,
	}
}

func (m *PrescriptionMapper) ToModel(p *entity.Prescription) *model.Prescription {
	if p == nil {
		return nil
	}
	return &model.Prescription{
		Id:           p.Id,
		DoctorName:   p.DoctorName,
		VisitDate:    p.VisitDate,
		VisitTime:    p.VisitTime,
		HospitalName: p.HospitalName,
		Username:     p.Username,
		FileURL:      p.FileURL,
		Extracted:    p.Extracted,
		CreatedAt:    p.CreatedAt,
	}
}

func (m *PrescriptionMapper) ToEntities(items []*model.Prescription) []*entity.Prescription {
	entities := make([]*entity.Prescription, len(items))
	for i, p := range items {
		entities[i] = m.ToEntity(p)
	}
	return entities
}
