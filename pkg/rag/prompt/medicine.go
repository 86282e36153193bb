package prompt

import "strings"

// MedicineBuilder composes the prompt sent with a photo of a pill or tablet.
// Missing documents are rendered as empty sections.
type MedicineBuilder struct {
	recordText        string
	notificationsJSON string
}

func NewMedicineBuilder(recordText, notificationsJSON string) *MedicineBuilder {
	return &MedicineBuilder{
		recordText:        recordText,
		notificationsJSON: notificationsJSON,
	}
}

func (b *MedicineBuilder) Build() string {
	var prompt strings.Builder

	prompt.WriteString("You are a medical assistant. Given the following documents and an image of a pill or tablet, answer these questions:\n")
	prompt.WriteString("1. What is the name of the medicine shown in the image?\n")
	prompt.WriteString("2. What is the purpose of that particular medicine?\n")
	prompt.WriteString("3. Why does the patient have to use it specifically?\n")
	prompt.WriteString("4. How much dosage should I take?\n")
	prompt.WriteString("5. Which time of the day should I take it?\n")
	prompt.WriteString("\n---\n")

	prompt.WriteString("Patient's Medical Record (PDF):\n")
	prompt.WriteString(b.recordText)
	prompt.WriteString("\n\n")

	prompt.WriteString("Patient's Medical Notifications (JSON):\n")
	prompt.WriteString(b.notificationsJSON)
	prompt.WriteString("\n\n")

	prompt.WriteString("Please answer using only the information from the provided documents and the image.")

	return prompt.String()
}
