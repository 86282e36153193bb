package dto

import "time"

type UploadPrescriptionRequest struct {
	DoctorName   string `form:"doctor_name" validate:"required"`
	VisitDate    string `form:"visit_date" validate:"required"`
	VisitTime    string `form:"visit_time" validate:"required"`
	HospitalName string `form:"hospital_name" validate:"required"`
	Username     string `form:"username" validate:"required"`

	FileName string `form:"-"`
	MimeType string `form:"-"`
	Content  []byte `form:"-"`
}

type UploadPrescriptionResponse struct {
	Detail  string `json:"detail"`
	FileURL string `json:"file_url"`
	Id      uint   `json:"id"`
}

type PrescriptionResponse struct {
	Id           uint        `json:"id"`
	DoctorName   string      `json:"doctor_name"`
	VisitDate    string      `json:"visit_date"`
	VisitTime    string      `json:"visit_time"`
	HospitalName string      `json:"hospital_name"`
	Username     string      `json:"username"`
	FileURL      string      `json:"file_url"`
	Extracted    interface{} `json:"extracted,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}
