package model

import (
	"time"

	"gorm.io/datatypes"
)

type Prescription struct {
	Id           uint           `gorm:"primaryKey"`
	DoctorName   string         `gorm:"type:varchar(255);not null"`
	VisitDate    string         `gorm:"type:varchar(50);not null"`
	VisitTime    string         `gorm:"type:varchar(50);not null"`
	HospitalName string         `gorm:"type:varchar(255);not null"`
	Username     string         `gorm:"type:varchar(100);not null;index"`
	FileURL      string         `gorm:"type:text;not null"`
	Extracted    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
}

func (Prescription) TableName() string {
	return "priscriptions"
}
