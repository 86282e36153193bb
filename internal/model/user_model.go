package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id                 uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name               string    `gorm:"type:varchar(255);not null"`
	Email              string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Username           string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Phone              string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	DateOfBirth        string    `gorm:"type:varchar(50);not null"`
	Gender             string    `gorm:"type:varchar(50);not null"`
	BloodGroup         string    `gorm:"type:varchar(10);not null"`
	RelationNumber     string    `gorm:"type:varchar(50);not null"`
	FamilyDoctorName   string    `gorm:"type:varchar(255);not null"`
	FamilyDoctorNumber string    `gorm:"type:varchar(50);not null"`
	Height             string    `gorm:"type:varchar(20);not null"`
	Weight             string    `gorm:"type:varchar(20);not null"`
	AadhaarNumber      string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
	Posts              []Post    `gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

type Doctor struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string    `gorm:"type:varchar(255);not null"`
	Email          string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Username       string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Phone          string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	Specialization string    `gorm:"type:varchar(255);not null"`
	HospitalName   string    `gorm:"type:varchar(255);not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	Posts          []Post    `gorm:"foreignKey:DoctorId;constraint:OnDelete:CASCADE"`
}

func (Doctor) TableName() string {
	return "doctors"
}

type Auth struct {
	Id             uint   `gorm:"primaryKey"`
	Username       string `gorm:"type:varchar(100);uniqueIndex;not null"`
	HashedPassword string `gorm:"type:varchar(255);not null"`
	IsDoctor       bool   `gorm:"not null;default:false"`
}

func (Auth) TableName() string {
	return "auth"
}
