package prompt

import (
	"strings"
)

const (
	patientRecordHeader = "Here is the patient's medical record (PDF):\n"
	messagesHeader      = "Here are the most relevant messages posted by users as context for your answer:\n"
	questionPrefix      = "User question: "
	answerWithRecord    = "Answer based on the above medical record and messages."
	answerMessagesOnly  = "Answer based on the above messages."
	truncationMarker    = "\n[... record truncated ...]"
)

// ContextBuilder assembles the chat prompt from ranked post snippets and an
// optional patient record. Snippets are emitted verbatim and in the order given.
type ContextBuilder struct {
	query       string
	snippets    []string
	patientText string
	maxChars    int
}

func NewContextBuilder(query string, snippets []string, patientText string) *ContextBuilder {
	return &ContextBuilder{
		query:       query,
		snippets:    snippets,
		patientText: patientText,
	}
}

// WithBudget caps the prompt at maxChars runes. Zero or negative disables the cap.
// Over budget, whole snippets are dropped from the end of the list first, then
// the patient record is cut. The question is never dropped.
func (b *ContextBuilder) WithBudget(maxChars int) *ContextBuilder {
	b.maxChars = maxChars
	return b
}

func (b *ContextBuilder) Build() string {
	snippets := b.snippets
	patient := strings.TrimSpace(b.patientText)

	if b.maxChars > 0 {
		snippets, patient = b.fit(snippets, patient)
	}

	return render(b.query, snippets, patient)
}

func (b *ContextBuilder) fit(snippets []string, patient string) ([]string, string) {
	for len(snippets) > 0 && runeLen(render(b.query, snippets, patient)) > b.maxChars {
		snippets = snippets[:len(snippets)-1]
	}

	over := runeLen(render(b.query, snippets, patient)) - b.maxChars
	if over <= 0 || patient == "" {
		return snippets, patient
	}

	keep := runeLen(patient) - over - runeLen(truncationMarker)
	if keep <= 0 {
		return snippets, ""
	}
	return snippets, string([]rune(patient)[:keep]) + truncationMarker
}

func render(query string, snippets []string, patient string) string {
	var prompt strings.Builder

	if patient != "" {
		writePatientRecord(&prompt, patient)
	}
	writeMessages(&prompt, snippets)
	writeQuestion(&prompt, query, patient != "")

	return prompt.String()
}

func writePatientRecord(prompt *strings.Builder, patient string) {
	prompt.WriteString(patientRecordHeader)
	prompt.WriteString(patient)
	prompt.WriteString("\n\n")
}

func writeMessages(prompt *strings.Builder, snippets []string) {
	prompt.WriteString(messagesHeader)
	for i, s := range snippets {
		if i > 0 {
			prompt.WriteString("\n")
		}
		prompt.WriteString("- ")
		prompt.WriteString(s)
	}
	prompt.WriteString("\n\n")
}

func writeQuestion(prompt *strings.Builder, query string, withRecord bool) {
	prompt.WriteString(questionPrefix)
	prompt.WriteString(query)
	prompt.WriteString("\n")
	if withRecord {
		prompt.WriteString(answerWithRecord)
	} else {
		prompt.WriteString(answerMessagesOnly)
	}
}

func runeLen(s string) int {
	return len([]rune(s))
}
