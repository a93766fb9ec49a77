package pharmacy

import (
	"strings"
	"time"
)

// Status is the fulfillment state of a pharmacy order.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusDispensed  Status = "dispensed"
	StatusRejected   Status = "rejected"
	StatusCancelled  Status = "cancelled"
)

// CustomerStatus is the customer-facing state of a pharmacy order.
type CustomerStatus string

const (
	CustomerWaiting   CustomerStatus = "waiting"
	CustomerNotified  CustomerStatus = "notified"
	CustomerCollected CustomerStatus = "collected"
	CustomerRejected  CustomerStatus = "rejected"
	CustomerExpired   CustomerStatus = "expired"
)

// OrderItem is one medication line within an order, supplied individually.
type OrderItem struct {
	MedicationName   string     `json:"medication_name"`
	Dosage           string     `json:"dosage"`
	Quantity         int        `json:"quantity"`
	Supplied         bool       `json:"supplied"`
	SuppliedQuantity int        `json:"supplied_quantity,omitempty"`
	SuppliedAt       *time.Time `json:"supplied_at,omitempty"`
	Notes            string     `json:"notes,omitempty"`
}

// Order is the dispensing workflow derived from a prescription. It carries two
// coupled status dimensions: the fulfillment status and the customer-facing
// status. Some customer transitions force a fulfillment transition.
type Order struct {
	ID             string      `json:"id"`
	PrescriptionID string      `json:"prescription_id"`
	PatientID      string      `json:"patient_id"`
	Status         Status      `json:"status"`
	CustomerStatus CustomerStatus `json:"customer_status"`
	Items          []OrderItem `json:"items"`

	ReadyAt     *time.Time `json:"ready_at,omitempty"`
	DispensedAt *time.Time `json:"dispensed_at,omitempty"`
	RejectedAt  *time.Time `json:"rejected_at,omitempty"`

	CustomerNotifiedAt      *time.Time `json:"customer_notified_at,omitempty"`
	CustomerCollectedAt     *time.Time `json:"customer_collected_at,omitempty"`
	CustomerRejectedAt      *time.Time `json:"customer_rejected_at,omitempty"`
	CustomerExpiredAt       *time.Time `json:"customer_expired_at,omitempty"`
	CustomerRejectionReason string     `json:"customer_rejection_reason,omitempty"`

	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateOrderRequest is the request body for opening an order from a prescription.
type CreateOrderRequest struct {
	PrescriptionID string      `json:"prescription_id"`
	PatientID      string      `json:"patient_id"`
	Items          []OrderItem `json:"items"`
}

// Validate validates the create order request
func (r *CreateOrderRequest) Validate() error {
	if strings.TrimSpace(r.PrescriptionID) == "" {
		return ErrMissingPrescription
	}
	if strings.TrimSpace(r.PatientID) == "" {
		return ErrMissingPatient
	}
	if len(r.Items) == 0 {
		return ErrNoItems
	}
	return nil
}
