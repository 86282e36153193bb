package dto

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterUserRequest struct {
	Email              string `json:"email" validate:"required,email"`
	Username           string `json:"username" validate:"required,min=3,max=100"`
	Password           string `json:"password" validate:"required,min=6"`
	Name               string `json:"name" validate:"required"`
	Phone              string `json:"phone" validate:"required"`
	DateOfBirth        string `json:"date_of_birth" validate:"required"`
	Gender             string `json:"gender" validate:"required"`
	BloodGroup         string `json:"blood_group" validate:"required"`
	RelationNumber     string `json:"relation_number" validate:"required"`
	FamilyDoctorName   string `json:"family_doctor_name" validate:"required"`
	FamilyDoctorNumber string `json:"family_doctor_number" validate:"required"`
	Height             string `json:"height" validate:"required"`
	Weight             string `json:"weight" validate:"required"`
	AadhaarNumber      string `json:"aadhaar_number" validate:"required"`
}

type RegisterDoctorRequest struct {
	Username       string `json:"username" validate:"required,min=3,max=100"`
	Name           string `json:"name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"required"`
	Password       string `json:"password" validate:"required,min=6"`
	Specialization string `json:"specialization" validate:"required"`
	HospitalName   string `json:"hospital_name" validate:"required"`
}

type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
