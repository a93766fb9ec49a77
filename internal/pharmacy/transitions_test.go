package pharmacy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

func newTestOrder() *Order {
	return &Order{
		ID:             "ord-1",
		PrescriptionID: "RX001",
		PatientID:      "pat-1",
		Status:         StatusPending,
		CustomerStatus: CustomerWaiting,
		Items: []OrderItem{
			{MedicationName: "Amoxicillin", Dosage: "500mg", Quantity: 21},
			{MedicationName: "Ibuprofen", Dosage: "200mg", Quantity: 10},
		},
		CreatedAt: testNow.Add(-time.Hour),
		UpdatedAt: testNow.Add(-time.Hour),
	}
}

func TestApplyStatus_ForwardFlow(t *testing.T) {
	order := newTestOrder()

	require.NoError(t, ApplyStatus(order, StatusProcessing, testNow))
	assert.Nil(t, order.ReadyAt)

	require.NoError(t, ApplyStatus(order, StatusReady, testNow))
	require.NotNil(t, order.ReadyAt)

	require.NoError(t, ApplyStatus(order, StatusDispensed, testNow))
	require.NotNil(t, order.DispensedAt)

	// dispensed is terminal
	assert.ErrorIs(t, ApplyStatus(order, StatusCancelled, testNow), ErrTransitionNotAllowed)
}

func TestApplyStatus_UnknownRejected(t *testing.T) {
	order := newTestOrder()
	before := *order

	err := ApplyStatus(order, Status("shipped"), testNow)
	require.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, before.Status, order.Status)
	assert.Equal(t, before.UpdatedAt, order.UpdatedAt)
}

func TestApplyCustomerStatus_Notified(t *testing.T) {
	order := newTestOrder()

	require.NoError(t, ApplyCustomerStatus(order, CustomerNotified, "", testNow))
	assert.Equal(t, CustomerNotified, order.CustomerStatus)
	require.NotNil(t, order.CustomerNotifiedAt)
	assert.Equal(t, StatusPending, order.Status, "notified must not touch fulfillment status")
}

func TestApplyCustomerStatus_CollectedCascadesToDispensed(t *testing.T) {
	order := newTestOrder()
	require.NoError(t, ApplyStatus(order, StatusReady, testNow))
	require.NoError(t, ApplyCustomerStatus(order, CustomerNotified, "", testNow))

	require.NoError(t, ApplyCustomerStatus(order, CustomerCollected, "", testNow))

	assert.Equal(t, CustomerCollected, order.CustomerStatus)
	assert.Equal(t, StatusDispensed, order.Status)
	require.NotNil(t, order.CustomerCollectedAt)
	require.NotNil(t, order.DispensedAt)
	assert.Equal(t, testNow, *order.CustomerCollectedAt)
	assert.Equal(t, testNow, *order.DispensedAt)
}

func TestApplyCustomerStatus_RejectedRequiresReason(t *testing.T) {
	order := newTestOrder()

	err := ApplyCustomerStatus(order, CustomerRejected, "", testNow)
	require.ErrorIs(t, err, ErrReasonRequired)
	assert.Equal(t, CustomerWaiting, order.CustomerStatus)
	assert.Nil(t, order.CustomerRejectedAt)

	require.NoError(t, ApplyCustomerStatus(order, CustomerRejected, "patient declined pickup", testNow))
	assert.Equal(t, "patient declined pickup", order.CustomerRejectionReason)
	require.NotNil(t, order.CustomerRejectedAt)
}

func TestApplyCustomerStatus_AbsorbingStates(t *testing.T) {
	for _, terminal := range []CustomerStatus{CustomerCollected, CustomerRejected, CustomerExpired} {
		t.Run(string(terminal), func(t *testing.T) {
			order := newTestOrder()
			order.CustomerStatus = terminal

			err := ApplyCustomerStatus(order, CustomerNotified, "", testNow)
			assert.ErrorIs(t, err, ErrTransitionNotAllowed)
		})
	}
}

func TestApplyCustomerStatus_Unknown(t *testing.T) {
	order := newTestOrder()
	err := ApplyCustomerStatus(order, CustomerStatus("ghosted"), "", testNow)
	assert.ErrorIs(t, err, ErrInvalidCustomerStatus)
}

func TestSupplyMedication_SingleLine(t *testing.T) {
	order := newTestOrder()

	require.NoError(t, SupplyMedication(order, 0, 21, "full course", testNow))

	assert.True(t, order.Items[0].Supplied)
	assert.Equal(t, 21, order.Items[0].SuppliedQuantity)
	assert.Equal(t, "full course", order.Items[0].Notes)
	require.NotNil(t, order.Items[0].SuppliedAt)

	// Line 1 untouched.
	assert.False(t, order.Items[1].Supplied)
	assert.Zero(t, order.Items[1].SuppliedQuantity)
	assert.Nil(t, order.Items[1].SuppliedAt)

	// Aggregate status untouched.
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, CustomerWaiting, order.CustomerStatus)
}

func TestSupplyMedication_IgnoresAggregateStatus(t *testing.T) {
	order := newTestOrder()
	require.NoError(t, ApplyStatus(order, StatusCancelled, testNow))

	require.NoError(t, SupplyMedication(order, 0, 21, "", testNow))
	assert.True(t, order.Items[0].Supplied)
	assert.Equal(t, StatusCancelled, order.Status)
}

func TestSupplyMedication_IndexOutOfRange(t *testing.T) {
	order := newTestOrder()

	for _, idx := range []int{-1, 2, 99} {
		err := SupplyMedication(order, idx, 1, "", testNow)
		assert.ErrorIs(t, err, ErrLineIndexOutOfRange, "index %d", idx)
	}
}

func TestStatusEnumerations(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusProcessing, StatusReady, StatusDispensed, StatusRejected, StatusCancelled} {
		assert.True(t, ValidStatus(s))
	}
	assert.False(t, ValidStatus(Status("draft")))

	for _, s := range []CustomerStatus{CustomerWaiting, CustomerNotified, CustomerCollected, CustomerRejected, CustomerExpired} {
		assert.True(t, ValidCustomerStatus(s))
	}
	assert.False(t, ValidCustomerStatus(CustomerStatus("queued")))
}
