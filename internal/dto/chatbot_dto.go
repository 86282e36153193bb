package dto

type ChatRequest struct {
	Message         string `json:"message" validate:"required"`
	PatientUsername string `json:"patient_username"`
}

type ChatResponse struct {
	Response string `json:"response"`
}

type AskMedicineRequest struct {
	PatientUsername string
	Image           []byte
	MimeType        string
}
