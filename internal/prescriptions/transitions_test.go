package prescriptions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 11, 0, 0, 0, time.UTC)

func newDraft() *Prescription {
	return &Prescription{
		ID:            "RX001",
		AppointmentID: "apt-1",
		PatientID:     "pat-1",
		DoctorID:      "doc-1",
		Diagnosis:     "Acute bronchitis",
		Medications: []MedicationLine{
			{Name: "Amoxicillin", Dosage: "500mg", Frequency: "twice daily", Duration: "7 days", Quantity: 21},
		},
		Status:    StatusDraft,
		CreatedAt: testNow.Add(-time.Hour),
		UpdatedAt: testNow.Add(-time.Hour),
	}
}

func TestApplyStatus_FullLifecycle(t *testing.T) {
	p := newDraft()

	require.NoError(t, ApplyStatus(p, StatusSubmitted, testNow))
	assert.Equal(t, StatusSubmitted, p.Status)
	assert.Nil(t, p.SentToPharmacyAt, "submitted must not stamp the pharmacy handoff")

	sentAt := testNow.Add(5 * time.Minute)
	require.NoError(t, ApplyStatus(p, StatusSentToPharmacy, sentAt))
	require.NotNil(t, p.SentToPharmacyAt)
	assert.Equal(t, sentAt, *p.SentToPharmacyAt)
	assert.Nil(t, p.FulfilledAt)

	fulfilledAt := testNow.Add(2 * time.Hour)
	require.NoError(t, ApplyStatus(p, StatusFulfilled, fulfilledAt))
	require.NotNil(t, p.FulfilledAt)
	assert.Equal(t, fulfilledAt, *p.FulfilledAt)

	// The handoff timestamp survives the later transition.
	assert.Equal(t, sentAt, *p.SentToPharmacyAt)
}

func TestApplyStatus_UnknownRejected(t *testing.T) {
	p := newDraft()
	before := *p

	err := ApplyStatus(p, Status("expired"), testNow)
	require.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, before.Status, p.Status)
	assert.Equal(t, before.UpdatedAt, p.UpdatedAt)
	assert.Nil(t, p.SentToPharmacyAt)
}

func TestApplyStatus_OneDirectional(t *testing.T) {
	p := newDraft()
	require.NoError(t, ApplyStatus(p, StatusSubmitted, testNow))

	err := ApplyStatus(p, StatusDraft, testNow)
	assert.ErrorIs(t, err, ErrTransitionNotAllowed)
	assert.Equal(t, StatusSubmitted, p.Status)
}

func TestApplyStatus_CancelAbsorbing(t *testing.T) {
	for _, from := range []Status{StatusDraft, StatusSubmitted, StatusSentToPharmacy} {
		p := newDraft()
		p.Status = from

		require.NoError(t, ApplyStatus(p, StatusCancelled, testNow), "cancel from %s", from)
		require.NotNil(t, p.CancelledAt)

		err := ApplyStatus(p, StatusSubmitted, testNow)
		assert.ErrorIs(t, err, ErrTransitionNotAllowed, "cancelled must be absorbing")
	}

	// fulfilled is terminal: no cancel afterwards.
	p := newDraft()
	p.Status = StatusFulfilled
	assert.ErrorIs(t, ApplyStatus(p, StatusCancelled, testNow), ErrTransitionNotAllowed)
}

func TestApplyContent_DraftOnly(t *testing.T) {
	p := newDraft()

	edit := &UpdateContentRequest{
		Diagnosis:   "Acute bronchitis, mild",
		Medications: p.Medications,
		Notes:       "re-check in a week",
	}
	require.NoError(t, p.ApplyContent(edit, testNow))
	assert.Equal(t, "Acute bronchitis, mild", p.Diagnosis)
	assert.Equal(t, "re-check in a week", p.Notes)

	require.NoError(t, ApplyStatus(p, StatusSubmitted, testNow))
	err := p.ApplyContent(edit, testNow)
	assert.ErrorIs(t, err, ErrNotEditable)
}

func TestCreateRequestValidate(t *testing.T) {
	req := &CreatePrescriptionRequest{
		AppointmentID: "apt-1",
		PatientID:     "pat-1",
		DoctorID:      "doc-1",
		Diagnosis:     "flu",
	}
	assert.NoError(t, req.Validate())

	assert.ErrorIs(t, (&CreatePrescriptionRequest{PatientID: "p", DoctorID: "d", Diagnosis: "x"}).Validate(), ErrMissingAppointment)
	assert.ErrorIs(t, (&CreatePrescriptionRequest{AppointmentID: "a", DoctorID: "d", Diagnosis: "x"}).Validate(), ErrMissingPatient)
	assert.ErrorIs(t, (&CreatePrescriptionRequest{AppointmentID: "a", PatientID: "p", Diagnosis: "x"}).Validate(), ErrMissingDoctor)
	assert.ErrorIs(t, (&CreatePrescriptionRequest{AppointmentID: "a", PatientID: "p", DoctorID: "d"}).Validate(), ErrEmptyContent)
}
