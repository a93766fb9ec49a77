package users

import (
	"strings"
	"time"
)

// Role discriminates the user variants.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleReceptionist Role = "receptionist"
	RoleDoctor       Role = "doctor"
	RolePharmacy     Role = "pharmacy"
	RolePatient      Role = "patient"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleReceptionist, RoleDoctor, RolePharmacy, RolePatient:
		return true
	}
	return false
}

// DoctorProfile is the doctor-specific payload.
type DoctorProfile struct {
	Specialty     string `json:"specialty"`
	LicenseNumber string `json:"license_number"`
	Room          string `json:"room,omitempty"`
}

// PatientProfile is the patient-specific payload.
type PatientProfile struct {
	DateOfBirth  string `json:"date_of_birth"`
	BloodGroup   string `json:"blood_group,omitempty"`
	Allergies    string `json:"allergies,omitempty"`
	EmergencyTel string `json:"emergency_tel,omitempty"`
}

// PharmacyProfile is the pharmacy-staff payload.
type PharmacyProfile struct {
	Counter string `json:"counter,omitempty"`
}

// ReceptionistProfile is the front-desk payload.
type ReceptionistProfile struct {
	Desk string `json:"desk,omitempty"`
}

// AdminProfile is the administrator payload.
type AdminProfile struct {
	Scope string `json:"scope,omitempty"`
}

// User is a role-tagged union: the shared core plus exactly one variant
// payload selected by Role. Email is immutable after creation.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Role  Role   `json:"role"`

	Doctor       *DoctorProfile       `json:"doctor,omitempty"`
	Patient      *PatientProfile      `json:"patient,omitempty"`
	Pharmacy     *PharmacyProfile     `json:"pharmacy,omitempty"`
	Receptionist *ReceptionistProfile `json:"receptionist,omitempty"`
	Admin        *AdminProfile        `json:"admin,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the core fields and the role/variant pairing: exactly one
// variant may be set, and it must match the role tag.
func (u *User) Validate() error {
	if strings.TrimSpace(u.Email) == "" {
		return ErrMissingEmail
	}
	if strings.TrimSpace(u.Name) == "" {
		return ErrMissingName
	}
	if !ValidRole(u.Role) {
		return ErrInvalidRole
	}

	variants := 0
	var matches bool
	if u.Doctor != nil {
		variants++
		matches = matches || u.Role == RoleDoctor
	}
	if u.Patient != nil {
		variants++
		matches = matches || u.Role == RolePatient
	}
	if u.Pharmacy != nil {
		variants++
		matches = matches || u.Role == RolePharmacy
	}
	if u.Receptionist != nil {
		variants++
		matches = matches || u.Role == RoleReceptionist
	}
	if u.Admin != nil {
		variants++
		matches = matches || u.Role == RoleAdmin
	}

	if variants > 1 {
		return ErrMultipleVariants
	}
	if variants == 1 && !matches {
		return ErrVariantRoleMismatch
	}
	return nil
}
