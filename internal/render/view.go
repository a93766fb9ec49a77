package render

// PrescriptionView is the fully denormalized input to the PDF bridge. All
// display strings are resolved before rendering; the bridge performs no
// lookups of its own.
type PrescriptionView struct {
	PrescriptionID string `json:"prescription_id"`
	ClinicName     string `json:"clinic_name"`
	PatientName    string `json:"patient_name"`
	DoctorName     string `json:"doctor_name"`
	Date           string `json:"date"`
	Diagnosis      string `json:"diagnosis"`

	// MedicationLines and TestLines are preformatted display rows,
	// e.g. "Amoxicillin 500mg, twice daily for 7 days (x21)".
	MedicationLines []string `json:"medication_lines"`
	TestLines       []string `json:"test_lines,omitempty"`

	Notes string `json:"notes,omitempty"`

	// WhiteboardPNG is an optional base64-encoded drawing embedded into the
	// rendered page.
	WhiteboardPNG string `json:"whiteboard_png,omitempty"`
}
