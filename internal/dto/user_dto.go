package dto

import (
	"github.com/google/uuid"
)

type UserProfileResponse struct {
	Id                 uuid.UUID      `json:"id"`
	Email              string         `json:"email"`
	Username           string         `json:"username"`
	Name               string         `json:"name"`
	Phone              string         `json:"phone"`
	DateOfBirth        string         `json:"date_of_birth"`
	Gender             string         `json:"gender"`
	BloodGroup         string         `json:"blood_group"`
	RelationNumber     string         `json:"relation_number"`
	FamilyDoctorName   string         `json:"family_doctor_name"`
	FamilyDoctorNumber string         `json:"family_doctor_number"`
	Height             string         `json:"height"`
	Weight             string         `json:"weight"`
	AadhaarNumber      string         `json:"aadhaar_number"`
	Posts              []PostResponse `json:"posts"`
}

type DoctorProfileResponse struct {
	Id             uuid.UUID      `json:"id"`
	Email          string         `json:"email"`
	Username       string         `json:"username"`
	Name           string         `json:"name"`
	Phone          string         `json:"phone"`
	Specialization string         `json:"specialization"`
	HospitalName   string         `json:"hospital_name"`
	Posts          []PostResponse `json:"posts"`
}

// MeResponse carries exactly one of User or Doctor.
type MeResponse struct {
	Kind   string                 `json:"kind"`
	User   *UserProfileResponse   `json:"user,omitempty"`
	Doctor *DoctorProfileResponse `json:"doctor,omitempty"`
}
