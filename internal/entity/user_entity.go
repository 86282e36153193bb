package entity

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id                 uuid.UUID
	Name               string
	Email              string
	Username           string
	Phone              string
	DateOfBirth        string
	Gender             string
	BloodGroup         string
	RelationNumber     string
	FamilyDoctorName   string
	FamilyDoctorNumber string
	Height             string
	Weight             string
	AadhaarNumber      string
	CreatedAt          time.Time
	Posts              []*Post
}

type Doctor struct {
	Id             uuid.UUID
	Name           string
	Email          string
	Username       string
	Phone          string
	Specialization string
	HospitalName   string
	CreatedAt      time.Time
	Posts          []*Post
}

// Credential is a row of the auth table, shared by users and doctors.
type Credential struct {
	Id             uint
	Username       string
	HashedPassword string
	IsDoctor       bool
}
