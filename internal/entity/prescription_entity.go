package entity

import (
	"time"

	"gorm.io/datatypes"
)

type Prescription struct {
	Id           uint
	DoctorName   string
	VisitDate    string
	VisitTime    string
	HospitalName string
	Username     string
	FileURL      string
	Extracted    datatypes.JSON
	CreatedAt    time.Time
}
