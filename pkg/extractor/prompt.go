package extractor

// MedicalRecordPrompt asks for a structured record followed by a ```json block
// that ParseNotification understands.
const MedicalRecordPrompt = "Extract medical record in two parts:\n" +
	"PART 1: Structured text format with:\n" +
	"1. Patient Information: Name, Age, Gender\n" +
	"2. Medical History: Conditions, Medications, Allergies\n" +
	"3. Vitals: Blood Pressure, Heart Rate, Temperature\n" +
	"4. Lab Results: Blood Tests, Urinalysis, Imaging Results etc.. \n" +
	"5. If a data is not available, leave it and don't mention about that data at all.\n" +
	"6. If any additional data is given extract that and mention it in the report.\n" +
	"7. Doctor's Notes: Diagnosis, Recommendations\n\n" +
	"PART 2: JSON format for notifications (inside ```json markers):\n" +
	"- Extract prescription details including:\n" +
	"  - Medicine names\n" +
	"  - Dosage instructions\n" +
	"  - Intake times with boolean flags for:\n" +
	"    - morning\n" +
	"    - afternoon\n" +
	"    - evening\n" +
	"    - night\n" +
	"  - Duration (in days/weeks/months)\n" +
	"- Extract follow-up information:\n" +
	"  - Next doctor visit date (YYYY-MM-DD format)\n" +
	"  - Reason for follow-up\n" +
	"- If no prescription found, return empty arrays\n" +
	"Example format:\n" +
	"```json\n" +
	"{\n" +
	"  \"patient_info\": {\"name\": \"John Doe\", \"age\": 35, \"gender\": \"male\"},\n" +
	"  \"medications\": [\n" +
	"    {\n" +
	"      \"name\": \"Paracetamol\",\n" +
	"      \"dosage\": \"500mg\",\n" +
	"      \"morning\": \"yes\",\n" +
	"      \"afternoon\": \"no\",\n" +
	"      \"evening\": \"yes\",\n" +
	"      \"night\": \"no\",\n" +
	"      \"duration\": \"7 days\",\n" +
	"      \"instructions\": \"Take after meals\"\n" +
	"    }\n" +
	"  ],\n" +
	"  \"next_visit\": {\n" +
	"    \"date\": \"2024-03-15\",\n" +
	"    \"reason\": \"Follow-up checkup\"\n" +
	"  }\n" +
	"}\n" +
	"```"
